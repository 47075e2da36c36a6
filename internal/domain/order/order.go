package order

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Status represents the fulfilment status of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists statuses in lifecycle order
var AllStatuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether target is reachable from s in one step
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	default:
		return false
	}
}

// PaymentMethod is how the shopper pays
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentCard           PaymentMethod = "card"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	return m == PaymentCashOnDelivery || m == PaymentCard
}

// ShippingAddress is the address snapshot stored on an order
type ShippingAddress struct {
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Item is an order line with a price snapshot
type Item struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Image       string
	Size        string
	Color       string
	UnitPrice   decimal.Decimal
	Quantity    int
	LineTotal   decimal.Decimal
}

// Order is the aggregate root for a placed order
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber   string
	UserID        uuid.UUID
	Status        Status
	Items         []Item
	Subtotal      decimal.Decimal
	ShippingFee   decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Shipping      ShippingAddress
	Notes         string
	CancelledAt   *time.Time
}

// New creates a pending order without lines
func New(userID uuid.UUID, method PaymentMethod, shipping ShippingAddress, notes string) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Order requires a user")
	}
	if !method.IsValid() {
		return nil, shared.NewInvalidInputError("Unsupported payment method")
	}
	if utf8.RuneCountInString(notes) > 1000 {
		return nil, shared.NewInvalidInputError("Notes cannot exceed 1000 characters")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Status:            StatusPending,
		Items:             make([]Item, 0),
		Subtotal:          decimal.Zero,
		ShippingFee:       decimal.Zero,
		Total:             decimal.Zero,
		PaymentMethod:     method,
		Shipping:          shipping,
		Notes:             strings.TrimSpace(notes),
	}
	o.OrderNumber = GenerateOrderNumber(o.CreatedAt)
	return o, nil
}

// AddItem appends a line and recalculates totals
func (o *Order) AddItem(productID uuid.UUID, name, image, size, color string, unitPrice decimal.Decimal, qty int) error {
	if o.Status != StatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, "Items can only be added to pending orders")
	}
	if qty < 1 {
		return shared.NewInvalidInputError("Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return shared.NewInvalidInputError("Unit price cannot be negative")
	}

	o.Items = append(o.Items, Item{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   productID,
		ProductName: name,
		Image:       image,
		Size:        size,
		Color:       color,
		UnitPrice:   unitPrice,
		Quantity:    qty,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(qty))),
	})
	o.recalculate()
	return nil
}

// ApplyShipping sets the shipping fee: flat unless the subtotal reaches freeThreshold.
// A zero threshold disables free shipping.
func (o *Order) ApplyShipping(flatFee, freeThreshold decimal.Decimal) {
	if freeThreshold.IsPositive() && o.Subtotal.GreaterThanOrEqual(freeThreshold) {
		o.ShippingFee = decimal.Zero
	} else {
		o.ShippingFee = flatFee
	}
	o.recalculate()
}

// Place finalizes a new order and records the placed event
func (o *Order) Place() error {
	if len(o.Items) == 0 {
		return shared.NewInvalidInputError("Order has no items")
	}
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return nil
}

// TransitionTo moves the order to target if the status machine allows it
func (o *Order) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewInvalidInputError("Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot change order from %s to %s", o.Status, target))
	}

	old := o.Status
	o.Status = target
	if target == StatusCancelled {
		now := time.Now()
		o.CancelledAt = &now
	}
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old, target))
	return nil
}

// CancelByCustomer cancels the order on the shopper's request.
// Shoppers may only cancel orders that are still pending.
func (o *Order) CancelByCustomer() error {
	if o.Status != StatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, "Only pending orders can be cancelled")
	}
	return o.TransitionTo(StatusCancelled)
}

// ItemCount returns the total quantity ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// CountsAsRevenue reports whether the order total contributes to revenue
func (o *Order) CountsAsRevenue() bool {
	return o.Status != StatusCancelled
}

func (o *Order) recalculate() {
	subtotal := decimal.Zero
	for _, it := range o.Items {
		subtotal = subtotal.Add(it.LineTotal)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.ShippingFee)
}

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateOrderNumber returns ORD-YYYYMMDD-XXXXXX
func GenerateOrderNumber(at time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		copy(buf, []byte(fmt.Sprintf("%06d", at.UnixNano()%1000000)))
	}
	for i := range buf {
		buf[i] = orderNumberAlphabet[int(buf[i])%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), string(buf))
}
