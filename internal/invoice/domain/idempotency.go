package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// IdempotencyKey derives a stable processor key for one booking-scoped action.
func IdempotencyKey(bookingID snowflake.ID, purpose, fingerprint string) string {
	sum := sha256.Sum256([]byte(fingerprint))
	return fmt.Sprintf("booking:%s:%s:%s", bookingID.String(), purpose, hex.EncodeToString(sum[:])[:16])
}
