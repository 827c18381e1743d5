package printer

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixxel-company-limited/laundry-print-server/escpos"
	"github.com/nixxel-company-limited/laundry-print-server/pos"
	"github.com/nixxel-company-limited/laundry-print-server/tspl"
)

func newTestService() (*PrintService, *mockAdapter, *mockAdapter) {
	receiptMock := &mockAdapter{}
	labelMock := &mockAdapter{}
	receipt := NewReceiptSession(receiptMock, escpos.PresetStandard, zerolog.Nop())
	label := NewLabelSession(labelMock, tspl.DefaultLabelConfig(), zerolog.Nop())
	svc := NewPrintService(receipt, label, zerolog.Nop())
	svc.tagDelay = 0 // no pacing in tests
	return svc, receiptMock, labelMock
}

func serviceOrder(t *testing.T) *pos.Order {
	t.Helper()
	o, err := pos.NewOrder(pos.Order{
		LaundryName:  "Sparkle Laundry",
		BillNumber:   "B-2001",
		CustomerName: "Ravi",
		Items: []pos.LineItem{
			{ID: "i1", Name: "Shirt", Quantity: 2, Rate: 50, Amount: 100},
		},
		Subtotal:   100,
		GrandTotal: 100,
		PrintTags:  true,
	})
	require.NoError(t, err)
	return o
}

func TestProcessLaundryOrderFullSuccess(t *testing.T) {
	svc, receiptMock, labelMock := newTestService()
	svc.ConnectAllPrinters()

	outcome := svc.ProcessLaundryOrder(serviceOrder(t))

	assert.True(t, outcome.BillPrinted)
	assert.True(t, outcome.TagsPrinted)
	assert.Empty(t, outcome.Errors)

	// receipt: init + one bill; label: init + one payload per unit
	assert.Len(t, receiptMock.writes, 2)
	require.Len(t, labelMock.writes, 3)
	assert.Contains(t, string(labelMock.writes[1]), `"1/2"`)
	assert.Contains(t, string(labelMock.writes[2]), `"2/2"`)
}

func TestProcessLaundryOrderNoTagsRequested(t *testing.T) {
	svc, _, labelMock := newTestService()
	svc.ConnectAllPrinters()

	o := serviceOrder(t)
	o.PrintTags = false
	outcome := svc.ProcessLaundryOrder(o)

	assert.True(t, outcome.BillPrinted)
	assert.False(t, outcome.TagsPrinted)
	assert.Empty(t, outcome.Errors)
	// label session saw only its init sequence, never a tag
	assert.Len(t, labelMock.writes, 1)
}

func TestProcessLaundryOrderPartialReceiptDown(t *testing.T) {
	svc, receiptMock, _ := newTestService()
	receiptMock.failOpen = true
	svc.ConnectAllPrinters()

	outcome := svc.ProcessLaundryOrder(serviceOrder(t))

	assert.False(t, outcome.BillPrinted)
	assert.True(t, outcome.TagsPrinted)
	require.Len(t, outcome.Errors, 1)
	assert.Contains(t, outcome.Errors[0], "receipt printer not connected")
}

func TestProcessLaundryOrderPartialLabelDown(t *testing.T) {
	svc, _, labelMock := newTestService()
	labelMock.failOpen = true
	svc.ConnectAllPrinters()

	outcome := svc.ProcessLaundryOrder(serviceOrder(t))

	assert.True(t, outcome.BillPrinted)
	assert.False(t, outcome.TagsPrinted)
	require.Len(t, outcome.Errors, 1)
	assert.Contains(t, outcome.Errors[0], "label printer not connected")
}

func TestProcessLaundryOrderBothDown(t *testing.T) {
	svc, _, _ := newTestService()

	outcome := svc.ProcessLaundryOrder(serviceOrder(t))

	assert.False(t, outcome.BillPrinted)
	assert.False(t, outcome.TagsPrinted)
	assert.Len(t, outcome.Errors, 2)
}

func TestProcessLaundryOrderTagSendFailure(t *testing.T) {
	svc, _, labelMock := newTestService()
	svc.ConnectAllPrinters()

	labelMock.failWrite = true
	outcome := svc.ProcessLaundryOrder(serviceOrder(t))

	assert.True(t, outcome.BillPrinted)
	assert.False(t, outcome.TagsPrinted)
	require.Len(t, outcome.Errors, 1)
	assert.Contains(t, outcome.Errors[0], "tag 1/2 print failed")
}

func TestPrintBillOnly(t *testing.T) {
	svc, receiptMock, labelMock := newTestService()
	svc.ConnectAllPrinters()

	outcome := svc.PrintBillOnly(serviceOrder(t))

	assert.True(t, outcome.BillPrinted)
	assert.False(t, outcome.TagsPrinted)
	assert.Len(t, receiptMock.writes, 2)
	assert.Len(t, labelMock.writes, 1) // init only
}

func TestPrintTagsOnly(t *testing.T) {
	svc, receiptMock, labelMock := newTestService()
	svc.ConnectAllPrinters()

	o := serviceOrder(t)
	o.PrintTags = false // ignored by PrintTagsOnly
	outcome := svc.PrintTagsOnly(o)

	assert.False(t, outcome.BillPrinted)
	assert.True(t, outcome.TagsPrinted)
	assert.Len(t, receiptMock.writes, 1) // init only
	assert.Len(t, labelMock.writes, 3)
}

func TestConnectAllPrintersIsolatesFailures(t *testing.T) {
	svc, _, labelMock := newTestService()
	// the label device chooser is cancelled; the receipt device matches
	labelMock.failOpen = true

	status := svc.ConnectAllPrinters()

	assert.True(t, status.Thermal)
	assert.False(t, status.TSC)
	// receipt session stays Ready despite the label failure
	assert.True(t, svc.receipt.IsConnected())
	assert.False(t, svc.label.IsConnected())
}

func TestGetPrinterStatusLivePoll(t *testing.T) {
	svc, receiptMock, _ := newTestService()

	status := svc.GetPrinterStatus()
	assert.False(t, status.Thermal)
	assert.False(t, status.TSC)

	svc.ConnectAllPrinters()
	status = svc.GetPrinterStatus()
	assert.True(t, status.Thermal)
	assert.True(t, status.TSC)

	// stale handle shows up immediately on re-poll
	receiptMock.open = false
	status = svc.GetPrinterStatus()
	assert.False(t, status.Thermal)
	assert.True(t, status.TSC)
}

func TestTestAllPrinters(t *testing.T) {
	svc, receiptMock, labelMock := newTestService()
	svc.ConnectAllPrinters()

	outcome := svc.TestAllPrinters()

	assert.True(t, outcome.BillPrinted)
	assert.True(t, outcome.TagsPrinted)
	assert.Empty(t, outcome.Errors)

	bill := string(receiptMock.writes[1])
	assert.Contains(t, bill, "PRINTER TEST")
	assert.Contains(t, bill, "Bill: TEST-")

	tag := string(labelMock.writes[1])
	assert.Contains(t, tag, "BARCODE ")
	assert.Contains(t, tag, `"1/1"`)
}

func TestTestAllPrintersDistinctBills(t *testing.T) {
	svc, receiptMock, _ := newTestService()
	svc.ConnectAllPrinters()

	svc.TestAllPrinters()
	svc.TestAllPrinters()

	first := string(receiptMock.writes[1])
	second := string(receiptMock.writes[2])
	billOf := func(s string) string {
		i := strings.Index(s, "Bill: TEST-")
		return s[i : i+19]
	}
	assert.NotEqual(t, billOf(first), billOf(second))
}

func TestDisconnectAllPrintersBestEffort(t *testing.T) {
	svc, receiptMock, _ := newTestService()
	svc.ConnectAllPrinters()
	receiptMock.failClose = true

	svc.DisconnectAllPrinters()

	assert.False(t, svc.receipt.IsConnected())
	assert.False(t, svc.label.IsConnected())
}
