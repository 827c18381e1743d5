// Package escpos encodes laundry receipts into ESC/POS command streams for
// narrow (32 column) thermal roll printers. Encoding is pure: the same
// order and preset always produce byte-identical output.
package escpos

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/nixxel-company-limited/laundry-print-server/pos"
)

// ESC/POS control bytes
const (
	ESC byte = 0x1B
	GS  byte = 0x1D
	NL  byte = 0x0A
)

// paperWidth is the column count of the 58mm roll in the default font.
const paperWidth = 32

// Receipt item columns: ITEM(16) QTY(4) RATE(6) AMT(6)
const (
	colItem = 16
	colQty  = 4
	colRate = 6
	colAmt  = 6
)

const currencyPrefix = "Rs"

type builder struct {
	buf bytes.Buffer
}

func (b *builder) raw(p ...byte) { b.buf.Write(p) }

func (b *builder) text(s string) { b.buf.WriteString(s) }

func (b *builder) line(s string) {
	b.buf.WriteString(s)
	b.buf.WriteByte(NL)
}

func (b *builder) reset() { b.raw(ESC, '@') }

func (b *builder) align(a byte) { b.raw(ESC, 'a', a) } // 0 left, 1 center, 2 right

func (b *builder) emphasize(on bool) {
	var e byte
	if on {
		e = 1
	}
	b.raw(ESC, 'E', e)
}

func (b *builder) charSpacing(n byte) { b.raw(ESC, ' ', n) }

func (b *builder) lineHeight(n byte) { b.raw(ESC, '3', n) }

func (b *builder) feed(lines int) {
	for i := 0; i < lines; i++ {
		b.buf.WriteByte(NL)
	}
}

// partial cut with feed, GS V 66 n
func (b *builder) cut() { b.raw(GS, 'V', 66, 0) }

func divider() string { return strings.Repeat("=", paperWidth) }

func dashedDivider() string { return strings.Repeat("-", paperWidth) }

// money renders an integer-rounded currency value, e.g. "Rs120".
func money(v float64) string {
	return fmt.Sprintf("%s%d", currencyPrefix, int(math.Round(v)))
}

// pad hard-truncates s to width, then right-pads with spaces. Over-length
// values lose their tail; there is no ellipsis and no reflow.
func pad(s string, width int) string {
	if len(s) > width {
		s = s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// EncodeReceipt renders one order as a complete ESC/POS job, from reset
// through paper cut.
func EncodeReceipt(o *pos.Order, p Preset) []byte {
	var b builder

	b.reset()
	b.charSpacing(p.CharSpacing)
	b.lineHeight(p.LineHeight)

	// Masthead
	b.align(1)
	b.emphasize(true)
	b.line(o.LaundryName)
	b.emphasize(false)
	if o.LaundryAddress != "" {
		b.line(o.LaundryAddress)
	}
	if o.LaundryPhone != "" {
		b.line("Ph: " + o.LaundryPhone)
	}

	// Bill metadata
	b.align(0)
	b.line(divider())
	date := o.CreatedAt.Format("02/01/2006 15:04")
	b.line(pad("Bill: "+o.BillNumber, paperWidth/2) + fmt.Sprintf("%16s", date))
	if o.CustomerName != "" {
		customer := o.CustomerName
		if o.CustomerPhone != "" {
			customer += " " + o.CustomerPhone
		}
		b.line(pad(customer, paperWidth))
	}
	b.line(divider())

	// Item table. High-clarity presets double-strike the body rows.
	b.line(pad("ITEM", colItem) + pad("QTY", colQty) + pad("RATE", colRate) + pad("AMT", colAmt))
	if p.Emphasis {
		b.emphasize(true)
	}
	for _, item := range o.Items {
		row := pad(item.Name, colItem) +
			pad(fmt.Sprintf("%d", item.Quantity), colQty) +
			pad(money(item.Rate), colRate) +
			pad(money(item.Amount), colAmt)
		b.line(row)
	}
	if p.Emphasis {
		b.emphasize(false)
	}
	b.line(dashedDivider())

	// Totals, right aligned; zero-valued adjustments are omitted entirely.
	b.align(2)
	if o.Subtotal != 0 {
		b.line("Subtotal: " + money(o.Subtotal))
	}
	if o.Discount != 0 {
		b.line("Discount: -" + money(o.Discount))
	}
	if o.Delivery != 0 {
		b.line("Delivery: " + money(o.Delivery))
	}
	if o.GST != 0 {
		b.line("GST: " + money(o.GST))
	}
	b.emphasize(true)
	b.line("TOTAL: " + money(o.GrandTotal))
	b.emphasize(false)

	// Footer
	b.align(0)
	b.line(divider())
	b.align(1)
	msg := o.ClosingMessage
	if msg == "" {
		msg = "Thank You! Visit Again"
	}
	b.line(msg)

	b.feed(3)
	b.cut()

	return b.buf.Bytes()
}

// Reset returns the bare initialization sequence a receipt session sends
// after connecting.
func Reset() []byte {
	return []byte{ESC, '@'}
}
