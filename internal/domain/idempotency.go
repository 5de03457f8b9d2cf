package domain

import (
	"time"

	json "github.com/goccy/go-json"
)

// IdempotencyRecord binds a (tenant, key) pair to the fingerprint of the
// request body that first used it and the response that was produced.
// Records are never updated in place: they are created on first use and
// deleted when consumed or expired.
type IdempotencyRecord struct {
	TenantID  string
	Key       string
	BodyHash  string
	Response  json.RawMessage
	CreatedAt time.Time
}

// ExpiredAt reports whether the record is past the TTL window at the given
// instant and therefore eligible for replacement.
func (r IdempotencyRecord) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.CreatedAt) >= ttl
}
