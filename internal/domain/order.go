package domain

import "time"

// OrderStatus is the lifecycle state of an order. Transitions move forward
// only: draft -> confirmed -> closed.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusClosed    OrderStatus = "closed"
)

// Order is a tenant-scoped order. Version starts at 1 and increases by
// exactly one on every successful mutation.
type Order struct {
	ID         string
	TenantID   string
	Status     OrderStatus
	Version    int64
	TotalCents *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewDraft builds a version-1 draft order with no total amount.
func NewDraft(id, tenantID string, now time.Time) Order {
	return Order{
		ID:        id,
		TenantID:  tenantID,
		Status:    OrderStatusDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
