package printer

import (
	"github.com/rs/zerolog"

	"github.com/nixxel-company-limited/laundry-print-server/adapter"
	"github.com/nixxel-company-limited/laundry-print-server/pos"
	"github.com/nixxel-company-limited/laundry-print-server/tspl"
)

// LabelSession drives the TSC-family label printer. Connect transmits the
// full TSPL setup sequence (size, speed, density, orientation, ribbon off,
// tear on, clear) before the first tag.
type LabelSession struct {
	*Session
	cfg tspl.LabelConfig
}

func NewLabelSession(transport adapter.Adapter, cfg tspl.LabelConfig, log zerolog.Logger) *LabelSession {
	return &LabelSession{
		Session: newSession("tsc", transport, tspl.InitSequence(cfg), log),
		cfg:     cfg,
	}
}

// PrintTag encodes and transmits one garment tag.
func (s *LabelSession) PrintTag(tag pos.Tag) error {
	return s.Send(tspl.EncodeTag(tag, s.cfg))
}

// Config returns the label geometry and tuning for this session.
func (s *LabelSession) Config() tspl.LabelConfig {
	return s.cfg
}
