// AngelaMos | 2026
// keys.go

package ledger

import (
	"strings"

	"github.com/google/uuid"
)

const (
	keyPrefixLength = 8
	keyPrefixMarker = "..."
)

// KeySealer turns a plaintext API key into its opaque at-rest form.
type KeySealer interface {
	Seal(plaintext string) (string, error)
}

// NewKeySecret returns 64 hex characters built from two random UUIDs.
func NewKeySecret() string {
	return dashless(uuid.New()) + dashless(uuid.New())
}

// KeyPrefix is the display form of a key: its first eight characters
// followed by an ellipsis marker.
func KeyPrefix(fullKey string) string {
	if len(fullKey) <= keyPrefixLength {
		return fullKey + keyPrefixMarker
	}
	return fullKey[:keyPrefixLength] + keyPrefixMarker
}

func dashless(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}
