// Package pagination implements the opaque keyset cursor used by order
// listing. A cursor pins a (createdAt, id) position; rows strictly before it
// in (createdAt DESC, id DESC) order belong to the next page.
package pagination

import (
	"encoding/base64"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/10Sirus/orders-api-test/internal/domain"
)

// Cursor is the decoded form of a pagination token.
type Cursor struct {
	CreatedAt time.Time `json:"ts"`
	ID        string    `json:"id"`
}

// Encode serializes the cursor as URL-safe base64 over JSON. The token is
// opaque to callers; only Decode understands it.
func Encode(c Cursor) string {
	raw, err := json.Marshal(c)
	if err != nil {
		// Cursor has no unmarshalable fields; keep the signature simple.
		return ""
	}
	return base64.URLEncoding.EncodeToString(raw)
}

// Decode parses a cursor token. An empty token means "start of list" and
// yields (nil, nil). Anything malformed wraps domain.ErrInvalidCursor.
func Decode(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}
	if c.CreatedAt.IsZero() || c.ID == "" {
		return nil, fmt.Errorf("%w: missing fields", domain.ErrInvalidCursor)
	}
	if _, err := uuid.Parse(c.ID); err != nil {
		return nil, fmt.Errorf("%w: bad id", domain.ErrInvalidCursor)
	}
	return &c, nil
}
