package order

import "time"

type OrderStatus string

const (
	StatusPendingConfirmation OrderStatus = "Pending Confirmation"
	StatusConfirmed           OrderStatus = "Confirmed"
	StatusProcessing          OrderStatus = "Processing"
	StatusShipped             OrderStatus = "Shipped"
	StatusDelivered           OrderStatus = "Delivered"
	StatusCompleted           OrderStatus = "Completed"
	StatusCancelled           OrderStatus = "Cancelled"
)

var AllStatuses = []OrderStatus{
	StatusPendingConfirmation,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCompleted,
	StatusCancelled,
}

func (s OrderStatus) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
)

// Owner is the user that placed the order. Name and Email are only
// populated when the store joins the users table.
type Owner struct {
	ID    uint   `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// OrderItem is a snapshot of a cart line at checkout time. Price is the
// unit price including any customization surcharge.
type OrderItem struct {
	Product                string            `json:"product" validate:"required"`
	Name                   string            `json:"name" validate:"required"`
	Image                  string            `json:"image"`
	Price                  float64           `json:"price" validate:"gte=0"`
	Quantity               int               `json:"quantity" validate:"gte=1"`
	SelectedCustomizations map[string]string `json:"selectedCustomizations,omitempty"`
	Measurements           map[string]string `json:"measurements,omitempty"`
}

type ShippingAddress struct {
	FullName     string `json:"fullName" validate:"required"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	PostalCode   string `json:"postalCode" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	Owner           Owner           `json:"user"`
	Items           []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	TotalPrice      float64         `json:"totalPrice"`
	OrderStatus     OrderStatus     `json:"orderStatus"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaidAt          *time.Time      `json:"paidAt"`
	DeliveredAt     *time.Time      `json:"deliveredAt"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ItemsTotal sums unit price times quantity over all items.
func (o *Order) ItemsTotal() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

type CreateOrderInput struct {
	Items           []OrderItem     `json:"orderItems" validate:"dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	TotalPrice      float64         `json:"totalPrice" validate:"gte=0"`
}

type UpdateStatusInput struct {
	OrderStatus OrderStatus `json:"orderStatus"`
}
