package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/10Sirus/orders-api-test/internal/app"
	"github.com/10Sirus/orders-api-test/internal/domain"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// OrderCreator is the minimal interface needed for idempotent creation.
type OrderCreator interface {
	CreateOrderIdempotent(ctx context.Context, in app.CreateOrderInput) (app.CreateOrderResult, error)
}

// OrderConfirmer is the minimal interface needed to confirm an order.
type OrderConfirmer interface {
	ConfirmOrder(ctx context.Context, in app.ConfirmOrderInput) (domain.Order, error)
}

// OrderCloser is the minimal interface needed to close an order.
type OrderCloser interface {
	CloseOrder(ctx context.Context, orderID, tenantID string) (domain.Order, error)
}

// OrderLister is the minimal interface needed to list orders.
type OrderLister interface {
	ListOrders(ctx context.Context, in app.ListOrdersInput) (app.ListOrdersResult, error)
}

// HandleCreateOrder returns the handler for POST /orders. A replayed request
// answers 200 with the stored payload; a first use answers 201.
func HandleCreateOrder(svc OrderCreator, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		key, err := idempotencyKeyFromRequest(r)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		body, err := decodeBodyObject(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.CreateOrderIdempotent(r.Context(), app.CreateOrderInput{
			TenantID:       tenantID,
			IdempotencyKey: key,
			Body:           body,
		})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if res.Created {
			w.WriteHeader(http.StatusCreated)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_, _ = w.Write(res.Response)
	}
}

type confirmOrderRequest struct {
	TotalCents *int64 `json:"totalCents"`
}

type confirmOrderResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Version    int64  `json:"version"`
	TotalCents *int64 `json:"totalCents"`
}

// HandleConfirmOrder returns the handler for PATCH /orders/{id}/confirm.
func HandleConfirmOrder(svc OrderConfirmer, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		expectedVersion, err := expectedVersionFromRequest(r)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		var req confirmOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil || req.TotalCents == nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		order, err := svc.ConfirmOrder(r.Context(), app.ConfirmOrderInput{
			OrderID:         chi.URLParam(r, "id"),
			TenantID:        tenantID,
			ExpectedVersion: expectedVersion,
			TotalCents:      *req.TotalCents,
		})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, confirmOrderResponse{
			ID:         order.ID,
			Status:     string(order.Status),
			Version:    order.Version,
			TotalCents: order.TotalCents,
		})
	}
}

type closeOrderResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Version int64  `json:"version"`
}

// HandleCloseOrder returns the handler for POST /orders/{id}/close.
func HandleCloseOrder(svc OrderCloser, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		order, err := svc.CloseOrder(r.Context(), chi.URLParam(r, "id"), tenantID)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, closeOrderResponse{
			ID:      order.ID,
			Status:  string(order.Status),
			Version: order.Version,
		})
	}
}

type orderItem struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	Status     string    `json:"status"`
	Version    int64     `json:"version"`
	TotalCents *int64    `json:"totalCents"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type listOrdersResponse struct {
	Items      []orderItem `json:"items"`
	NextCursor *string     `json:"nextCursor"`
}

// HandleListOrders returns the handler for GET /orders.
func HandleListOrders(svc OrderLister, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFromRequest(r)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		limit := defaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > maxListLimit {
				writeError(w, http.StatusBadRequest, codeInvalidLimit, "limit must be an integer between 1 and 100")
				return
			}
			limit = parsed
		}

		res, err := svc.ListOrders(r.Context(), app.ListOrdersInput{
			TenantID: tenantID,
			Limit:    limit,
			Cursor:   r.URL.Query().Get("cursor"),
		})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		resp := listOrdersResponse{Items: make([]orderItem, 0, len(res.Orders))}
		for _, order := range res.Orders {
			resp.Items = append(resp.Items, orderItem{
				ID:         order.ID,
				TenantID:   order.TenantID,
				Status:     string(order.Status),
				Version:    order.Version,
				TotalCents: order.TotalCents,
				CreatedAt:  order.CreatedAt,
				UpdatedAt:  order.UpdatedAt,
			})
		}
		if res.NextCursor != "" {
			resp.NextCursor = &res.NextCursor
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// decodeBodyObject reads a JSON object body; an absent or empty body is the
// empty object.
func decodeBodyObject(body io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		obj = map[string]any{}
	}
	return obj, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
