package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	domainaddress "github.com/storefront/backend/internal/domain/address"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// URLResolver turns stored image references into URLs
type URLResolver interface {
	ResolveURL(ref string) string
}

// CartSource loads server carts and removes checked-out lines
type CartSource interface {
	Load(ctx context.Context, owner shared.OwnerKey) (*cart.Cart, error)
	RemovePurchased(ctx context.Context, owner shared.OwnerKey, purchased []cart.Item) error
}

// Metrics records placed orders
type Metrics interface {
	RecordOrderCreated(ctx context.Context, paymentMethod string, total decimal.Decimal)
}

// Pricing holds the shipping rules applied at checkout
type Pricing struct {
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// Service handles checkout and order lifecycle operations
type Service struct {
	txScope   TransactionScope
	orders    order.Repository
	addresses domainaddress.Repository
	carts     CartSource
	pricing   Pricing
	urls      URLResolver
	publisher shared.EventPublisher
	metrics   Metrics
	logger    *zap.Logger
}

// NewService creates an order Service
func NewService(
	txScope TransactionScope,
	orders order.Repository,
	addresses domainaddress.Repository,
	carts CartSource,
	pricing Pricing,
	urls URLResolver,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		txScope:   txScope,
		orders:    orders,
		addresses: addresses,
		carts:     carts,
		pricing:   pricing,
		urls:      urls,
		logger:    logger,
	}
}

// SetEventPublisher sets the publisher for order events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *Service) SetMetrics(metrics Metrics) {
	s.metrics = metrics
}

// Checkout turns the user's server cart into a pending order.
// Stock is decremented conditionally per line inside one transaction.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*OrderResponse, error) {
	method := order.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, shared.NewInvalidInputError("Unsupported payment method")
	}
	shipping, err := s.shippingAddress(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	owner := shared.UserOwner(userID)
	c, err := s.carts.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.NewInvalidInputError("Your cart is empty")
	}

	o, err := order.New(userID, method, shipping, req.Notes)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		products := repos.ProductRepo()
		for _, line := range c.Items {
			product, err := products.FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.NewInvalidInputError(fmt.Sprintf("%s is no longer available", line.Name))
				}
				return err
			}
			if !product.IsActive {
				return shared.NewInvalidInputError(fmt.Sprintf("%s is no longer available", product.Name))
			}
			if err := products.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return shared.NewDomainError(shared.CodeInsufficientStock,
						fmt.Sprintf("Not enough stock for %s", product.Name))
				}
				return err
			}

			var image string
			if len(product.Images) > 0 {
				image = product.Images[0]
			}
			if err := o.AddItem(product.ID, product.Name, image, line.Size, line.Color, product.Price, line.Quantity); err != nil {
				return err
			}
		}

		o.ApplyShipping(s.pricing.ShippingFee, s.pricing.FreeShippingThreshold)
		if err := o.Place(); err != nil {
			return err
		}
		return repos.OrderRepo().Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.RemovePurchased(ctx, owner, c.Items); err != nil {
		s.logger.Warn("Failed to remove purchased lines from cart",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
	s.publishEvents(ctx, o)
	if s.metrics != nil {
		s.metrics.RecordOrderCreated(ctx, string(o.PaymentMethod), o.Total)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.String("total", o.Total.StringFixed(2)),
	)
	resp := ToOrderResponse(o, s.urls)
	return &resp, nil
}

func (s *Service) shippingAddress(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (order.ShippingAddress, error) {
	var fields domainaddress.Fields
	switch {
	case req.AddressID != nil && req.Address != nil:
		return order.ShippingAddress{}, shared.NewInvalidInputError("Provide either an address id or an address, not both")
	case req.AddressID != nil:
		a, err := s.addresses.FindForUser(ctx, userID, *req.AddressID)
		if err != nil {
			return order.ShippingAddress{}, err
		}
		fields = a.Fields()
	case req.Address != nil:
		a, err := domainaddress.New(userID, domainaddress.Fields{
			Recipient:  req.Address.Recipient,
			Phone:      req.Address.Phone,
			Line1:      req.Address.Line1,
			Line2:      req.Address.Line2,
			City:       req.Address.City,
			State:      req.Address.State,
			PostalCode: req.Address.PostalCode,
			Country:    req.Address.Country,
		})
		if err != nil {
			return order.ShippingAddress{}, err
		}
		fields = a.Fields()
	default:
		return order.ShippingAddress{}, shared.NewInvalidInputError("A shipping address is required")
	}
	return order.ShippingAddress{
		Recipient:  fields.Recipient,
		Phone:      fields.Phone,
		Line1:      fields.Line1,
		Line2:      fields.Line2,
		City:       fields.City,
		State:      fields.State,
		PostalCode: fields.PostalCode,
		Country:    fields.Country,
	}, nil
}

// ListMy returns a page of the user's orders
func (s *Service) ListMy(ctx context.Context, userID uuid.UUID, f ListFilter) (*ListResult, error) {
	filter := f.toFilter()
	filter.Filters["user_id"] = userID
	return s.list(ctx, filter)
}

// GetMy returns one of the user's orders; other users' orders are NOT_FOUND
func (s *Service) GetMy(ctx context.Context, userID, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o, s.urls)
	return &resp, nil
}

// CancelMy cancels a pending order of the user and restocks its items
func (s *Service) CancelMy(ctx context.Context, userID, id uuid.UUID) (*OrderResponse, error) {
	var o *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		o, err = repos.OrderRepo().FindForUser(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := o.CancelByCustomer(); err != nil {
			return err
		}
		if err := repos.OrderRepo().UpdateStatus(ctx, o); err != nil {
			return err
		}
		return s.restock(ctx, repos, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	s.logger.Info("Order cancelled by customer",
		zap.String("order_id", o.ID.String()), zap.String("user_id", userID.String()))
	resp := ToOrderResponse(o, s.urls)
	return &resp, nil
}

// List returns a page of all orders for the back-office
func (s *Service) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	return s.list(ctx, f.toFilter())
}

// Get returns any order
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o, s.urls)
	return &resp, nil
}

// UpdateStatus applies a status transition. Cancelling restocks the items.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	target := order.Status(req.Status)
	var o *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		o, err = repos.OrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := o.TransitionTo(target); err != nil {
			return err
		}
		if err := repos.OrderRepo().UpdateStatus(ctx, o); err != nil {
			return err
		}
		if target == order.StatusCancelled {
			return s.restock(ctx, repos, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	s.logger.Info("Order status changed",
		zap.String("order_id", o.ID.String()), zap.String("status", string(o.Status)))
	resp := ToOrderResponse(o, s.urls)
	return &resp, nil
}

func (s *Service) list(ctx context.Context, filter shared.Filter) (*ListResult, error) {
	rows, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]OrderResponse, len(rows))
	for i := range rows {
		out[i] = ToOrderResponse(&rows[i], s.urls)
	}
	return &ListResult{Orders: out, Total: total}, nil
}

// restock returns ordered quantities to stock; deleted products are skipped
func (s *Service) restock(ctx context.Context, repos TransactionalRepositories, o *order.Order) error {
	for _, it := range o.Items {
		err := repos.ProductRepo().IncrementStock(ctx, it.ProductID, it.Quantity)
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Skipping restock of missing product",
				zap.String("order_id", o.ID.String()), zap.String("product_id", it.ProductID.String()))
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// publishEvents publishes after commit; failures are logged, not returned
func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events",
			zap.String("order_id", o.ID.String()), zap.Error(err))
	}
}
