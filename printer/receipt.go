package printer

import (
	"github.com/rs/zerolog"

	"github.com/nixxel-company-limited/laundry-print-server/adapter"
	"github.com/nixxel-company-limited/laundry-print-server/escpos"
	"github.com/nixxel-company-limited/laundry-print-server/pos"
)

// ReceiptSession drives the thermal roll printer. Connect sends a bare
// ESC/POS reset; receipts are encoded with the session's clarity preset.
type ReceiptSession struct {
	*Session
	preset escpos.Preset
}

func NewReceiptSession(transport adapter.Adapter, preset escpos.Preset, log zerolog.Logger) *ReceiptSession {
	return &ReceiptSession{
		Session: newSession("thermal", transport, escpos.Reset(), log),
		preset:  preset,
	}
}

// PrintReceipt encodes and transmits one customer receipt.
func (s *ReceiptSession) PrintReceipt(o *pos.Order) error {
	return s.Send(escpos.EncodeReceipt(o, s.preset))
}

// Preset returns the clarity preset this session prints with.
func (s *ReceiptSession) Preset() escpos.Preset {
	return s.preset
}
