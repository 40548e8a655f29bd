package models

import "time"

// ShippingStatus represents the fulfilment state of an order.
type ShippingStatus string

const (
	ShippingPreparing   ShippingStatus = "Preparing"
	ShippingShipped     ShippingStatus = "Shipped"
	ShippingInTransit   ShippingStatus = "In Transit"
	ShippingDelivered   ShippingStatus = "Delivered"
	ShippingIntercepted ShippingStatus = "Intercepted"
)

// Terminal reports whether the status blocks interception. Once an order is
// shipped it cannot revert to Intercepted.
func (s ShippingStatus) Terminal() bool {
	switch s {
	case ShippingShipped, ShippingInTransit, ShippingDelivered:
		return true
	}
	return false
}

// LineItem is one product line on an order.
type LineItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Order is an immutable base order record. Runtime modifications (shipment
// interceptions) live in the overlay and are merged on read, so the loaded
// dataset stays reloadable and inspectable.
type Order struct {
	ID              string         `json:"order_id"`
	CustomerID      string         `json:"customer_id"`
	CustomerEmail   string         `json:"customer_email"`
	Status          string         `json:"status"`
	ShippingStatus  ShippingStatus `json:"shipping_status"`
	TotalAmount     float64        `json:"total_amount"`
	Currency        string         `json:"currency"`
	TrackingNumber  string         `json:"tracking_number,omitempty"`
	ShippingAddress string         `json:"shipping_address"`
	Items           []LineItem     `json:"items,omitempty"`
	InterceptReason string         `json:"intercept_reason,omitempty"`
	InterceptTime   *time.Time     `json:"intercept_time,omitempty"`
}
