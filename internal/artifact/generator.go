package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"kaskom/internal/core"
)

// Generator produces the derived artifacts for a transaction: the nota
// receipt PDF and the QR image. Both are pure functions of the transaction's
// fields, which is what makes the cache safe.
type Generator struct {
	cache *lruCache
}

func NewGenerator() *Generator {
	return &Generator{
		cache: newLRUCache(256, time.Hour),
	}
}

// contentKey identifies a transaction's current field values. A patched
// transaction gets a different key, so stale renders age out instead of
// being served.
func contentKey(kind string, tx core.Transaction) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf(
		"%s\x00%s\x00%d\x00%s\x00%s\x00%s\x00%s\x00%s\x00%d",
		tx.ID, tx.Type, tx.Amount, tx.Category, tx.Description,
		tx.Treasurer, tx.Date, tx.ImageURL, len(tx.Comments),
	)))
	return kind + ":" + tx.ID + ":" + hex.EncodeToString(sum[:8])
}
