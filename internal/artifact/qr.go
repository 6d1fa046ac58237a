package artifact

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"kaskom/internal/core"
)

const qrSize = 256

// QRPayload is the canonical text a transaction's QR encodes: fixed field
// order, pipe-delimited, versioned so a scanner can tell formats apart.
func QRPayload(tx core.Transaction) string {
	return fmt.Sprintf("KAS|v1|%s|%d|%s|%s", tx.ID, tx.Amount, tx.Date, tx.Type)
}

// QR renders the transaction's QR code as a PNG. Deterministic given the
// same transaction fields.
func (g *Generator) QR(tx core.Transaction) ([]byte, error) {
	key := contentKey("qr", tx)
	if cached, ok := g.cache.Get(key); ok {
		return cached, nil
	}

	body, err := qrcode.Encode(QRPayload(tx), qrcode.Medium, qrSize)
	if err != nil {
		return nil, &core.ArtifactError{Cause: err}
	}

	g.cache.Set(key, body)
	return body, nil
}
