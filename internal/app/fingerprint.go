package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	json "github.com/goccy/go-json"
)

// fingerprintBody hashes the canonical JSON form of a request body. Map keys
// are serialized in sorted order at every nesting level, so two structurally
// equal bodies fingerprint identically regardless of field order. A nil body
// is the empty object.
func fingerprintBody(body map[string]any) (string, error) {
	if body == nil {
		body = map[string]any{}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("fingerprint body: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
