package badge

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
)

// Badge is the printable card of one directory user.
type Badge struct {
	ID        int64
	Name      string
	Email     string
	Role      string
	CreatedAt time.Time
	// DetailURL is encoded in the QR code; it opens the user's detail panel.
	DetailURL string
}

// Code is the Code128 value printed for a user id.
func Code(id int64) string {
	return fmt.Sprintf("U%08d", id)
}

// RenderPDF renders badges one per page on A6 landscape.
func RenderPDF(badges ...Badge) ([]byte, error) {
	if len(badges) == 0 {
		return nil, fmt.Errorf("no badges to render")
	}

	pdf := gofpdf.New("L", "mm", "A6", "")
	pdf.SetTitle("User Badges", false)
	pdf.SetAutoPageBreak(false, 0)

	for _, b := range badges {
		if err := addBadgePage(pdf, b); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func addBadgePage(pdf *gofpdf.Fpdf, b Badge) error {
	code := Code(b.ID)
	barcodePNG, err := renderCode128PNG(code, 900, 180)
	if err != nil {
		return fmt.Errorf("badge %d barcode: %w", b.ID, err)
	}

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}

	name := strings.TrimSpace(b.Name)
	if name == "" {
		name = "Unnamed User"
	}
	textW := pageW - 20
	if b.DetailURL != "" {
		qrPNG, err := renderQRPNG(b.DetailURL, 400)
		if err != nil {
			return fmt.Errorf("badge %d qr: %w", b.ID, err)
		}
		qrName := fmt.Sprintf("badge-qr-%d", b.ID)
		pdf.RegisterImageOptionsReader(qrName, opt, bytes.NewReader(qrPNG))
		pdf.ImageOptions(qrName, pageW-48, 10, 38, 38, false, opt, 0, "")
		textW = pageW - 62
	}

	pdf.SetXY(10, 12)
	pdf.SetFont("Helvetica", "B", fitFontSizeForWidth(pdf, "Helvetica", "B", 26, 12, name, textW))
	pdf.CellFormat(textW, 12, name, "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(textW, 7, b.Email, "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(textW, 8, strings.ToUpper(b.Role), "", 2, "L", false, 0, "")
	if !b.CreatedAt.IsZero() {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(textW, 6, "Member since "+b.CreatedAt.Format("02/01/2006"), "", 2, "L", false, 0, "")
	}

	barcodeName := fmt.Sprintf("badge-barcode-%d", b.ID)
	pdf.RegisterImageOptionsReader(barcodeName, opt, bytes.NewReader(barcodePNG))
	imgW, imgH := pageW-20, 18.0
	y := pageH - imgH - 16
	pdf.ImageOptions(barcodeName, 10, y, imgW, imgH, false, opt, 0, "")
	pdf.SetXY(10, y+imgH+1)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(imgW, 6, code, "", 0, "C", false, 0, "")
	return nil
}

func fitFontSizeForWidth(pdf *gofpdf.Fpdf, family, style string, base, min float64, text string, maxWidth float64) float64 {
	if maxWidth <= 0 {
		return min
	}
	size := base
	pdf.SetFont(family, style, size)
	for size > min && pdf.GetStringWidth(text) > maxWidth {
		size -= 0.5
		pdf.SetFont(family, style, size)
	}
	return size
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	return scaledPNG(code, width, height)
}

func renderQRPNG(value string, size int) ([]byte, error) {
	code, err := qr.Encode(value, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	return scaledPNG(code, size, size)
}

func scaledPNG(code barcode.Barcode, width, height int) ([]byte, error) {
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, toNRGBA(scaled)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
