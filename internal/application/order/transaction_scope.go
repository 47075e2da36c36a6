package order

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
)

// TransactionScope runs checkout and restock steps atomically.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to the current transaction.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	OrderRepo() order.Repository
}

// NoOpTransactionScope runs functions without a transaction, for tests.
type NoOpTransactionScope struct {
	productRepo catalog.ProductRepository
	orderRepo   order.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(productRepo catalog.ProductRepository, orderRepo order.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{productRepo: productRepo, orderRepo: orderRepo}
}

// Execute runs fn directly.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.Repository {
	return s.orderRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
