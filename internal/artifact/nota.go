package artifact

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"kaskom/internal/core"
)

// notaEpoch pins the PDF creation date so renders of the same transaction
// are byte-for-byte identical.
var notaEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Nota renders the receipt document for a transaction. Deterministic given
// the same transaction fields.
func (g *Generator) Nota(tx core.Transaction) ([]byte, error) {
	key := contentKey("nota", tx)
	if cached, ok := g.cache.Get(key); ok {
		return cached, nil
	}

	body, err := renderNota(tx)
	if err != nil {
		return nil, &core.ArtifactError{Cause: err}
	}

	g.cache.Set(key, body)
	return body, nil
}

func renderNota(tx core.Transaction) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetCreationDate(notaEpoch)
	pdf.SetTitle("Nota "+tx.ID, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Nota Transaksi", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Kas Komunitas", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	label := func(name, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 7, name, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	jenis := "Pengeluaran"
	if tx.Type == core.Income {
		jenis = "Pemasukan"
	}

	label("No. Nota", tx.ID)
	label("Tanggal", tx.Date)
	label("Jenis", jenis)
	label("Kategori", tx.Category)
	label("Jumlah", "Rp "+core.FormatRupiah(tx.Amount))
	label("Deskripsi", tx.Description)
	label("Bendahara", tx.Treasurer)
	label("Komentar", fmt.Sprintf("%d", len(tx.Comments)))

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Dokumen ini dibuat otomatis dari catatan kas komunitas.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render nota pdf: %w", err)
	}
	return buf.Bytes(), nil
}
