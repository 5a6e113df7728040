package infra

// label_pdf.go — printable A4 shipment label using go-pdf/fpdf.
// The label carries:
//   - Branch code and name header
//   - A large centered QR code whose payload is the shipment's qrSlug
//   - The slug in monospace under the code (manual entry fallback)
//   - Piece count and creation date
//
// The output file is saved to storagePath/label_{qrSlug}.pdf.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/EdinMesanovic/postinfo/internal/model"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelFilePath returns the canonical on-disk location of a shipment label.
func LabelFilePath(storagePath, qrSlug string) string {
	return filepath.Join(storagePath, fmt.Sprintf("label_%s.pdf", qrSlug))
}

// GenerateLabelPDF renders the A4 label for a shipment and returns the
// absolute path of the written file. storagePath is created if needed.
func GenerateLabelPDF(shipment *model.Shipment, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("label: create storage dir: %w", err)
	}

	png, err := qrcode.Encode(shipment.QRSlug, qrcode.Medium, 512)
	if err != nil {
		return "", fmt.Errorf("label: encode QR: %w", err)
	}

	filePath := LabelFilePath(storagePath, shipment.QRSlug)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 40

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(contentW, 12, fmt.Sprintf("PJ %s", shipment.PJCode), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(contentW, 8, shipment.PJName, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	// ── QR code ──────────────────────────────────────────────────────────────
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr_"+shipment.QRSlug, opts, bytes.NewReader(png))
	qrSize := 110.0
	qrX := (pageW - qrSize) / 2
	pdf.ImageOptions("qr_"+shipment.QRSlug, qrX, pdf.GetY(), qrSize, qrSize, false, opts, 0, "")
	pdf.SetY(pdf.GetY() + qrSize + 4)

	pdf.SetFont("Courier", "B", 16)
	pdf.CellFormat(contentW, 8, shipment.QRSlug, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// ── Details ──────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 11)
	if shipment.Pieces != nil {
		pdf.CellFormat(contentW, 6, fmt.Sprintf("Pieces: %d", *shipment.Pieces), "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(contentW, 6, shipment.CreatedAt.Format("02.01.2006 15:04"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("label: write PDF: %w", err)
	}
	return filePath, nil
}
