package printer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nixxel-company-limited/laundry-print-server/pos"
)

// Consecutive tags need a short pause so the label printer's buffer keeps
// up. Fixed pacing, not a cancellable timeout.
const defaultTagDelay = 150 * time.Millisecond

// ConnStatus reports per-family connection state.
type ConnStatus struct {
	Thermal bool `json:"thermal"`
	TSC     bool `json:"tsc"`
}

// PrintService coordinates both printer sessions to fulfill one composite
// print request. The two sessions are independent: one family's failure
// never aborts the other's attempt, and partial success is a normal
// outcome, never an error of the call.
type PrintService struct {
	receipt  *ReceiptSession
	label    *LabelSession
	tagDelay time.Duration
	log      zerolog.Logger
}

func NewPrintService(receipt *ReceiptSession, label *LabelSession, log zerolog.Logger) *PrintService {
	return &PrintService{
		receipt:  receipt,
		label:    label,
		tagDelay: defaultTagDelay,
		log:      log.With().Str("module", "print-service").Logger(),
	}
}

// ProcessLaundryOrder prints the customer receipt and, when the order asks
// for them, one tag per garment unit.
func (s *PrintService) ProcessLaundryOrder(o *pos.Order) pos.PrintOutcome {
	outcome := pos.PrintOutcome{}

	s.printBill(o, &outcome)
	if o.PrintTags {
		s.printTags(o, &outcome)
	}

	s.log.Info().
		Str("bill", o.BillNumber).
		Bool("billPrinted", outcome.BillPrinted).
		Bool("tagsPrinted", outcome.TagsPrinted).
		Int("errors", len(outcome.Errors)).
		Msg("order processed")
	return outcome
}

// PrintBillOnly prints just the receipt, regardless of the order's tag
// flags.
func (s *PrintService) PrintBillOnly(o *pos.Order) pos.PrintOutcome {
	outcome := pos.PrintOutcome{}
	s.printBill(o, &outcome)
	return outcome
}

// PrintTagsOnly prints just the garment tags, treating the order as if
// PrintTags were set.
func (s *PrintService) PrintTagsOnly(o *pos.Order) pos.PrintOutcome {
	outcome := pos.PrintOutcome{}
	s.printTags(o, &outcome)
	return outcome
}

func (s *PrintService) printBill(o *pos.Order, outcome *pos.PrintOutcome) {
	if !s.receipt.IsConnected() {
		outcome.Errors = append(outcome.Errors, "receipt printer not connected")
		return
	}
	if err := s.receipt.PrintReceipt(o); err != nil {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("receipt print failed: %v", err))
		return
	}
	outcome.BillPrinted = true
}

func (s *PrintService) printTags(o *pos.Order, outcome *pos.PrintOutcome) {
	tags := pos.ExpandTags(o)
	if len(tags) == 0 {
		return
	}
	if !s.label.IsConnected() {
		outcome.Errors = append(outcome.Errors, "label printer not connected")
		return
	}

	for i, tag := range tags {
		if err := s.label.PrintTag(tag); err != nil {
			outcome.Errors = append(outcome.Errors,
				fmt.Sprintf("tag %d/%d print failed: %v", tag.TagIndex, tag.TotalTags, err))
			return
		}
		if i < len(tags)-1 {
			time.Sleep(s.tagDelay)
		}
	}
	outcome.TagsPrinted = true
}

// ConnectAllPrinters attempts both sessions independently. One family
// failing to connect leaves the other's result untouched.
func (s *PrintService) ConnectAllPrinters() ConnStatus {
	status := ConnStatus{}

	if err := s.receipt.Connect(); err != nil {
		s.log.Warn().Err(err).Msg("receipt printer connect failed")
	} else {
		status.Thermal = true
	}

	if err := s.label.Connect(); err != nil {
		s.log.Warn().Err(err).Msg("label printer connect failed")
	} else {
		status.TSC = true
	}

	return status
}

// TestAllPrinters pushes a canned order through both sessions, bypassing
// any order ledger.
func (s *PrintService) TestAllPrinters() pos.PrintOutcome {
	order := testOrder()
	return s.ProcessLaundryOrder(order)
}

// GetPrinterStatus re-polls both sessions' live connection state.
func (s *PrintService) GetPrinterStatus() ConnStatus {
	return ConnStatus{
		Thermal: s.receipt.IsConnected(),
		TSC:     s.label.IsConnected(),
	}
}

// DisconnectAllPrinters releases both sessions best-effort; either side's
// failure is logged and swallowed.
func (s *PrintService) DisconnectAllPrinters() {
	if err := s.receipt.Disconnect(); err != nil {
		s.log.Warn().Err(err).Msg("receipt printer disconnect failed")
	}
	if err := s.label.Disconnect(); err != nil {
		s.log.Warn().Err(err).Msg("label printer disconnect failed")
	}
}

// testOrder builds the fixed sample order used by TestAllPrinters. The
// bill number gets a random suffix so consecutive test prints are
// distinguishable on paper.
func testOrder() *pos.Order {
	suffix := uuid.NewString()[:8]
	order, _ := pos.NewOrder(pos.Order{
		LaundryName:    "PRINTER TEST",
		LaundryAddress: "Test Lane 1",
		LaundryPhone:   "0000000000",
		BillNumber:     "TEST-" + suffix,
		CustomerName:   "Test Customer",
		CustomerPhone:  "9999999999",
		Items: []pos.LineItem{
			{ID: "t1", Name: "Test Shirt", Quantity: 1, Rate: 10, Amount: 10, WashType: "Wash"},
		},
		Subtotal:         10,
		GrandTotal:       10,
		ClosingMessage:   "Test print OK",
		PrintTags:        true,
		GenerateBarcodes: true,
	})
	return order
}
