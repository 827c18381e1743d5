// Package tspl encodes garment tags into TSPL command buffers for TSC-family
// label printers. Every spatial value is expressed in print-head dots; each
// command line is CRLF-terminated and one tag always yields one contiguous
// buffer ending in a single PRINT command.
package tspl

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/nixxel-company-limited/laundry-print-server/pos"
)

const crlf = "\r\n"

// Fixed right-anchor offsets in dots. The printer cannot report glyph
// widths, so right-aligned fields are anchored by subtracting a fixed
// offset from the label width. Known to drift if fonts or scales change.
const (
	rightTextOffset    = 80
	rightBarcodeOffset = 48
)

const borderInset = 4

// LabelConfig carries the physical label geometry and head tuning used for
// both the per-tag SIZE command and the session init sequence.
type LabelConfig struct {
	WidthMM  float64
	HeightMM float64
	DPI      int
	Speed    int
	Density  int
}

// DefaultLabelConfig matches the 75x45mm stock loaded in the shop printers.
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{
		WidthMM:  75,
		HeightMM: 45,
		DPI:      203,
		Speed:    3,
		Density:  8,
	}
}

// Dots converts millimeters to whole print-head dots. Truncation, not
// rounding: a fractional dot does not exist on the head.
func Dots(mm float64, dpi int) int {
	return int(mm * float64(dpi) / 25.4)
}

func (c LabelConfig) widthDots() int  { return Dots(c.WidthMM, c.DPI) }
func (c LabelConfig) heightDots() int { return Dots(c.HeightMM, c.DPI) }

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// lastDigits returns the trailing n digit characters of a phone string.
func lastDigits(phone string, n int) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) > n {
		digits = digits[len(digits)-n:]
	}
	return string(digits)
}

// customerLine compresses the customer identity to fit the small font:
// a 10-char name plus the last 4 phone digits, or a 14-char name alone.
func customerLine(tag pos.Tag) string {
	if tag.CustomerPhone != "" {
		return truncate(tag.CustomerName, 10) + "-" + lastDigits(tag.CustomerPhone, 4)
	}
	return truncate(tag.CustomerName, 14)
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) cmd(format string, args ...interface{}) {
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteString(crlf)
}

func (w *writer) text(x, y int, font string, xScale, yScale int, s string) {
	w.cmd(`TEXT %d,%d,"%s",0,%d,%d,"%s"`, x, y, font, xScale, yScale, escape(s))
}

// escape keeps literal quotes out of TSPL string arguments.
func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `'`)
}

// EncodeTag renders one physical tag as a complete TSPL job.
func EncodeTag(tag pos.Tag, cfg LabelConfig) []byte {
	w := &writer{}
	width := cfg.widthDots()
	height := cfg.heightDots()

	w.cmd("SIZE %g mm,%g mm", cfg.WidthMM, cfg.HeightMM)
	w.cmd("CLS")

	// Header: business top-left, bill number right-anchored.
	w.text(borderInset+6, 10, "2", 1, 1, truncate(tag.LaundryName, 16))
	w.text(width-rightTextOffset, 10, "2", 1, 1, "#"+tag.BillNumber)

	// Customer identity.
	w.text(borderInset+6, 44, "2", 1, 1, customerLine(tag))

	// Item name dominates the tag face.
	w.text(borderInset+6, 80, "3", 1, 1, truncate(strings.ToUpper(tag.ItemName), 12))

	if tag.WashType != "" {
		w.text(borderInset+6, height-40, "2", 1, 1, tag.WashType)
	}

	// Index counter, double-struck for weight.
	counter := fmt.Sprintf("%d/%d", tag.TagIndex, tag.TotalTags)
	w.text(width-rightTextOffset, height-40, "2", 1, 1, counter)
	w.text(width-rightTextOffset+1, height-40, "2", 1, 1, counter)

	// Barcode wins over QR when both payloads are present.
	if tag.Barcode != "" {
		w.cmd(`BARCODE %d,%d,"128",40,0,0,2,2,"%s"`, width-rightBarcodeOffset, 44, escape(tag.Barcode))
	} else if tag.QRData != "" {
		w.cmd(`QRCODE %d,%d,M,4,A,0,"%s"`, width-rightBarcodeOffset, 44, escape(tag.QRData))
	}

	w.cmd("BOX %d,%d,%d,%d,2", borderInset, borderInset, width-borderInset, height-borderInset)
	w.cmd("PRINT 1")

	return w.buf.Bytes()
}

// InitSequence is transmitted once after a label session connects, before
// the first tag job.
func InitSequence(cfg LabelConfig) []byte {
	w := &writer{}
	w.cmd("SIZE %g mm,%g mm", cfg.WidthMM, cfg.HeightMM)
	w.cmd("SPEED %d", cfg.Speed)
	w.cmd("DENSITY %d", cfg.Density)
	w.cmd("DIRECTION 1")
	w.cmd("SET RIBBON OFF")
	w.cmd("SET TEAR ON")
	w.cmd("CLS")
	return w.buf.Bytes()
}
