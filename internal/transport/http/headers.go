package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/10Sirus/orders-api-test/internal/domain"
)

const (
	tenantHeader        = "X-Tenant-Id"
	idempotencyHeader   = "Idempotency-Key"
	ifMatchHeader       = "If-Match"
	correlationIDHeader = "X-Correlation-Id"
)

func tenantFromRequest(r *http.Request) (string, error) {
	tenant := strings.TrimSpace(r.Header.Get(tenantHeader))
	if tenant == "" {
		return "", domain.ErrTenantRequired
	}
	return tenant, nil
}

func idempotencyKeyFromRequest(r *http.Request) (string, error) {
	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if key == "" {
		return "", domain.ErrIdempotencyKeyRequired
	}
	return key, nil
}

// expectedVersionFromRequest parses the If-Match header as a positive
// integer, accepting both bare (1) and quoted ("1") forms.
func expectedVersionFromRequest(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(ifMatchHeader))
	if raw == "" {
		return 0, domain.ErrInvalidVersion
	}
	raw = strings.Trim(raw, `"`)

	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || version < 1 {
		return 0, domain.ErrInvalidVersion
	}
	return version, nil
}
