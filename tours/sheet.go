package tours

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"campusexplorer/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// ShareQR encodes link as a PNG QR code.
func ShareQR(link string) ([]byte, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// RenderSheet writes a printable A4 tour sheet: the tour header, one line per
// stop in visiting order, and a QR code pointing back at link.
func RenderSheet(w io.Writer, t models.Tour, stops []models.ResolvedStop, link string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(t.Name, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, t.Name)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	if t.Description != "" {
		pdf.MultiCell(140, 6, t.Description, "", "L", false)
		pdf.Ln(2)
	}
	summary := fmt.Sprintf("%d stops", t.StopCount())
	if t.EstimatedDuration != nil {
		summary += fmt.Sprintf(" - about %d minutes", *t.EstimatedDuration)
	}
	pdf.Cell(0, 8, summary)
	pdf.Ln(8)
	if len(t.Tags) > 0 {
		pdf.Cell(0, 8, "Tags: "+strings.Join(t.Tags, ", "))
		pdf.Ln(8)
	}
	pdf.Ln(4)

	for _, stop := range stops {
		pdf.SetFont("Arial", "B", 12)
		label := fmt.Sprintf("%d. %s", stop.Index+1, stop.Building.Name)
		if stop.Building.Code != "" {
			label += " (" + stop.Building.Code + ")"
		}
		pdf.Cell(0, 8, label)
		pdf.Ln(7)

		pdf.SetFont("Arial", "", 10)
		switch {
		case stop.Missing:
			pdf.Cell(0, 6, "This building is no longer in the campus catalog.")
			pdf.Ln(6)
		case stop.Building.Hours != "":
			pdf.Cell(0, 6, "Hours: "+stop.Building.Hours)
			pdf.Ln(6)
		}
		pdf.Ln(2)
	}

	if link != "" {
		png, err := ShareQR(link)
		if err != nil {
			return err
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("share-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("share-qr", 160, 15, 35, 35, false, opts, 0, link)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render tour sheet: %w", err)
	}
	return nil
}
