package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"github.com/10Sirus/orders-api-test/internal/clock"
	"github.com/10Sirus/orders-api-test/internal/domain"
	"github.com/10Sirus/orders-api-test/internal/pagination"
)

// OrderStore is the order persistence the workflow needs.
type OrderStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateDraft(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, id, tenantID string) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, id, tenantID string) (*domain.Order, error)
	UpdateToConfirmed(ctx context.Context, order domain.Order, totalCents int64, now time.Time) (domain.Order, error)
	UpdateToClosed(ctx context.Context, order domain.Order, now time.Time) (domain.Order, error)
	ListByTenant(ctx context.Context, tenantID string, limit int, after *pagination.Cursor) ([]domain.Order, error)
}

// IdempotencyStore persists single-use (tenant, key) records.
type IdempotencyStore interface {
	Find(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error)
	Store(ctx context.Context, record domain.IdempotencyRecord) error
	Delete(ctx context.Context, tenantID, key string) error
}

// OutboxStore records domain events transactionally with state changes.
type OutboxStore interface {
	RecordEvent(ctx context.Context, event domain.OutboxEvent) error
}

// OrderService orchestrates the idempotent-create, optimistic-confirm and
// transactional-close workflows. It holds no order state between calls;
// every operation re-reads through the stores inside one transaction.
type OrderService struct {
	orders OrderStore
	idem   IdempotencyStore
	outbox OutboxStore
	clock  clock.Clock
	ttl    time.Duration
	logger *slog.Logger
}

func NewOrderService(orders OrderStore, idem IdempotencyStore, outbox OutboxStore, clk clock.Clock, ttl time.Duration, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		orders: orders,
		idem:   idem,
		outbox: outbox,
		clock:  clk,
		ttl:    ttl,
		logger: logger,
	}
}

type CreateOrderInput struct {
	TenantID       string
	IdempotencyKey string
	Body           map[string]any
}

type CreateOrderResult struct {
	// Response is the draft-order representation, stored verbatim in the
	// idempotency record and replayed byte-for-byte on retry.
	Response json.RawMessage
	Created  bool
}

type draftOrderResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateOrderIdempotent creates a draft order, or replays the stored response
// when the same (tenant, key, body) is retried inside the TTL window. A live
// record is consumed on replay; reusing the key with a different body is a
// conflict and leaves the record in place.
func (s *OrderService) CreateOrderIdempotent(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	if in.TenantID == "" {
		return CreateOrderResult{}, domain.ErrTenantRequired
	}
	if in.IdempotencyKey == "" {
		return CreateOrderResult{}, domain.ErrIdempotencyKeyRequired
	}

	now := s.clock.Now()
	bodyHash, err := fingerprintBody(in.Body)
	if err != nil {
		return CreateOrderResult{}, err
	}

	var result CreateOrderResult
	err = s.orders.WithTx(ctx, func(txCtx context.Context) error {
		record, err := s.idem.Find(txCtx, in.TenantID, in.IdempotencyKey)
		if err != nil {
			return err
		}

		if record != nil {
			// Deleting first keeps the key reusable after the TTL while the
			// conflict path rolls the delete back, preserving the record.
			if err := s.idem.Delete(txCtx, in.TenantID, in.IdempotencyKey); err != nil {
				return err
			}
			if !record.ExpiredAt(now, s.ttl) {
				if record.BodyHash == bodyHash {
					result = CreateOrderResult{Response: record.Response, Created: false}
					return nil
				}
				return domain.ErrIdempotencyConflict
			}
			// Expired records fall through and are superseded.
		}

		order := domain.NewDraft(newUUID(), in.TenantID, now)
		if err := s.orders.CreateDraft(txCtx, order); err != nil {
			return err
		}

		response, err := json.Marshal(draftOrderResponse{
			ID:        order.ID,
			TenantID:  order.TenantID,
			Status:    string(order.Status),
			Version:   order.Version,
			CreatedAt: order.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("encode draft order response: %w", err)
		}

		// Two concurrent first uses both pass the Find above; the insert
		// decides the winner and the loser surfaces the conflict.
		if err := s.idem.Store(txCtx, domain.IdempotencyRecord{
			TenantID:  in.TenantID,
			Key:       in.IdempotencyKey,
			BodyHash:  bodyHash,
			Response:  response,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		result = CreateOrderResult{Response: response, Created: true}
		return nil
	})
	if err != nil {
		return CreateOrderResult{}, err
	}

	s.logger.InfoContext(ctx, "order create handled",
		slog.String("tenant_id", in.TenantID),
		slog.Bool("created", result.Created),
	)
	return result, nil
}

type ConfirmOrderInput struct {
	OrderID         string
	TenantID        string
	ExpectedVersion int64
	TotalCents      int64
}

// ConfirmOrder sets the total amount and moves the order to confirmed when
// the caller's expected version matches the stored one. Races are detected,
// not prevented: the store's compare-and-swap makes any concurrent mutation
// between read and write fail with a stale version.
func (s *OrderService) ConfirmOrder(ctx context.Context, in ConfirmOrderInput) (domain.Order, error) {
	if in.TenantID == "" {
		return domain.Order{}, domain.ErrTenantRequired
	}

	now := s.clock.Now()
	var confirmed domain.Order

	err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.orders.FindByID(txCtx, in.OrderID, in.TenantID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if order.Version != in.ExpectedVersion {
			return domain.ErrStaleVersion
		}

		confirmed, err = s.orders.UpdateToConfirmed(txCtx, *order, in.TotalCents, now)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.InfoContext(ctx, "order confirmed",
		slog.String("order_id", confirmed.ID),
		slog.Int64("version", confirmed.Version),
	)
	return confirmed, nil
}

type closedEventPayload struct {
	OrderID    string    `json:"orderId"`
	TenantID   string    `json:"tenantId"`
	TotalCents *int64    `json:"totalCents"`
	ClosedAt   time.Time `json:"closedAt"`
}

// CloseOrder moves a confirmed order to closed and records an orders.closed
// outbox event in the same transaction. The row lock serializes concurrent
// closes: the loser re-reads a closed order and fails the status check.
func (s *OrderService) CloseOrder(ctx context.Context, orderID, tenantID string) (domain.Order, error) {
	if tenantID == "" {
		return domain.Order{}, domain.ErrTenantRequired
	}

	now := s.clock.Now()
	var closed domain.Order

	err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.orders.FindByIDForUpdate(txCtx, orderID, tenantID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if order.Status != domain.OrderStatusConfirmed {
			return domain.ErrOrderNotConfirmed
		}

		closed, err = s.orders.UpdateToClosed(txCtx, *order, now)
		if err != nil {
			return err
		}

		payload, err := json.Marshal(closedEventPayload{
			OrderID:    closed.ID,
			TenantID:   closed.TenantID,
			TotalCents: closed.TotalCents,
			ClosedAt:   closed.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("encode closed event payload: %w", err)
		}

		return s.outbox.RecordEvent(txCtx, domain.OutboxEvent{
			ID:        newUUID(),
			EventType: domain.EventTypeOrderClosed,
			OrderID:   closed.ID,
			TenantID:  closed.TenantID,
			Payload:   payload,
			CreatedAt: now,
		})
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.InfoContext(ctx, "order closed",
		slog.String("order_id", closed.ID),
		slog.Int64("version", closed.Version),
	)
	return closed, nil
}

type ListOrdersInput struct {
	TenantID string
	Limit    int
	Cursor   string
}

type ListOrdersResult struct {
	Orders     []domain.Order
	NextCursor string
}

// ListOrders returns one page of the tenant's orders in strict
// (createdAt, id) descending order, fetching limit+1 rows to detect whether
// more pages exist.
func (s *OrderService) ListOrders(ctx context.Context, in ListOrdersInput) (ListOrdersResult, error) {
	if in.TenantID == "" {
		return ListOrdersResult{}, domain.ErrTenantRequired
	}

	after, err := pagination.Decode(in.Cursor)
	if err != nil {
		return ListOrdersResult{}, err
	}

	orders, err := s.orders.ListByTenant(ctx, in.TenantID, in.Limit, after)
	if err != nil {
		return ListOrdersResult{}, err
	}

	result := ListOrdersResult{Orders: orders}
	if len(orders) > in.Limit {
		last := orders[in.Limit-1]
		result.NextCursor = pagination.Encode(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.Orders = orders[:in.Limit]
	}
	return result, nil
}
