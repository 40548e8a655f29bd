package core

import (
	"sync"
	"time"

	"github.com/valter-silva-au/mail-triage/pkg/models"
)

// OrderOverride holds the runtime field overrides for one order. Only the
// fields a shipment interception touches are represented.
type OrderOverride struct {
	ShippingStatus  models.ShippingStatus
	InterceptReason string
	InterceptTime   time.Time
}

// Overlay is the process-local mutable layer over the static order table.
// It is an explicit object passed to the operations layer so tests can
// construct isolated instances; the mutex makes the intercept check-then-act
// sequence safe should concurrent request handling ever be added.
type Overlay struct {
	mu      sync.RWMutex
	byOrder map[string]OrderOverride
}

// NewOverlay creates an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{byOrder: make(map[string]OrderOverride)}
}

// Get returns the override for an order, if any.
func (o *Overlay) Get(orderID string) (OrderOverride, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	ov, ok := o.byOrder[orderID]
	return ov, ok
}

// Set records an override for an order, replacing any previous one.
func (o *Overlay) Set(orderID string, ov OrderOverride) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.byOrder[orderID] = ov
}

// Len returns the number of orders with overrides.
func (o *Overlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.byOrder)
}

// Reset discards every override, restoring the loaded dataset as-is.
func (o *Overlay) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.byOrder = make(map[string]OrderOverride)
}

// Apply returns the order with its override shallow-merged on top.
func (o *Overlay) Apply(order models.Order) models.Order {
	ov, ok := o.Get(order.ID)
	if !ok {
		return order
	}
	if ov.ShippingStatus != "" {
		order.ShippingStatus = ov.ShippingStatus
	}
	if ov.InterceptReason != "" {
		order.InterceptReason = ov.InterceptReason
	}
	if !ov.InterceptTime.IsZero() {
		t := ov.InterceptTime
		order.InterceptTime = &t
	}
	return order
}
