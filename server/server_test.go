package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixxel-company-limited/laundry-print-server/escpos"
	"github.com/nixxel-company-limited/laundry-print-server/pos"
	"github.com/nixxel-company-limited/laundry-print-server/printer"
	"github.com/nixxel-company-limited/laundry-print-server/tspl"
)

// mockAdapter is a minimal in-memory transport for bridge tests.
type mockAdapter struct {
	open     bool
	failOpen bool
	writes   [][]byte
}

func (m *mockAdapter) Open() error {
	if m.failOpen {
		return errors.New("no device match")
	}
	m.open = true
	return nil
}

func (m *mockAdapter) Write(data []byte) (int, error) {
	if !m.open {
		return 0, errors.New("device not open")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.writes = append(m.writes, buf)
	return len(data), nil
}

func (m *mockAdapter) Read(buf []byte) (int, error) { return 0, nil }

func (m *mockAdapter) Close() error {
	m.open = false
	return nil
}

func (m *mockAdapter) IsOpen() bool { return m.open }

func newTestBridge() (*Server, *mockAdapter, *mockAdapter) {
	receiptMock := &mockAdapter{}
	labelMock := &mockAdapter{}
	receipt := printer.NewReceiptSession(receiptMock, escpos.PresetStandard, zerolog.Nop())
	label := printer.NewLabelSession(labelMock, tspl.DefaultLabelConfig(), zerolog.Nop())
	service := printer.NewPrintService(receipt, label, zerolog.Nop())
	return New(service, "localhost:9100", zerolog.Nop()), receiptMock, labelMock
}

func orderBody(t *testing.T, mutate func(*pos.Order)) *bytes.Buffer {
	t.Helper()
	o := pos.Order{
		LaundryName:  "Sparkle Laundry",
		BillNumber:   "B-3001",
		CustomerName: "Meera",
		Items: []pos.LineItem{
			{ID: "i1", Name: "Kurta", Quantity: 1, Rate: 80, Amount: 80},
		},
		Subtotal:   80,
		GrandTotal: 80,
		PrintTags:  true,
	}
	if mutate != nil {
		mutate(&o)
	}
	body, err := json.Marshal(o)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func doRequest(t *testing.T, srv *Server, method, path string, body *bytes.Buffer) (*httptest.ResponseRecorder, response) {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestNewServer(t *testing.T) {
	srv, _, _ := newTestBridge()
	assert.NotNil(t, srv)
	assert.Equal(t, "localhost:9100", srv.Address())
	assert.False(t, srv.IsRunning())
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestBridge()
	rec, resp := doRequest(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Message)
}

func TestPrintOrderSuccess(t *testing.T) {
	srv, receiptMock, labelMock := newTestBridge()
	doRequest(t, srv, http.MethodPost, "/printers/connect", nil)

	rec, resp := doRequest(t, srv, http.MethodPost, "/print/order", orderBody(t, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Outcome)
	assert.True(t, resp.Outcome.BillPrinted)
	assert.True(t, resp.Outcome.TagsPrinted)

	assert.Len(t, receiptMock.writes, 2) // init + bill
	assert.Len(t, labelMock.writes, 2)   // init + one tag
}

func TestPrintOrderPartialFailure(t *testing.T) {
	srv, _, labelMock := newTestBridge()
	labelMock.failOpen = true
	doRequest(t, srv, http.MethodPost, "/printers/connect", nil)

	rec, resp := doRequest(t, srv, http.MethodPost, "/print/order", orderBody(t, nil))

	// the HTTP exchange itself succeeded; the outcome carries the failure
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Outcome)
	assert.True(t, resp.Outcome.BillPrinted)
	assert.False(t, resp.Outcome.TagsPrinted)
	assert.Contains(t, resp.Outcome.Errors[0], "label printer not connected")
}

func TestPrintBillAndTagsRoutes(t *testing.T) {
	srv, receiptMock, labelMock := newTestBridge()
	doRequest(t, srv, http.MethodPost, "/printers/connect", nil)

	_, resp := doRequest(t, srv, http.MethodPost, "/print/bill", orderBody(t, nil))
	assert.True(t, resp.Outcome.BillPrinted)
	assert.False(t, resp.Outcome.TagsPrinted)

	_, resp = doRequest(t, srv, http.MethodPost, "/print/tags", orderBody(t, func(o *pos.Order) {
		o.PrintTags = false // tags route prints regardless
	}))
	assert.False(t, resp.Outcome.BillPrinted)
	assert.True(t, resp.Outcome.TagsPrinted)

	assert.Len(t, receiptMock.writes, 2) // init + bill only
	assert.Len(t, labelMock.writes, 2)   // init + tag only
}

func TestPrintOrderRejectsMalformedBody(t *testing.T) {
	srv, _, _ := newTestBridge()
	rec, resp := doRequest(t, srv, http.MethodPost, "/print/order", bytes.NewBufferString("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "invalid order payload")
}

func TestPrintOrderRejectsInvalidOrder(t *testing.T) {
	srv, _, _ := newTestBridge()
	rec, resp := doRequest(t, srv, http.MethodPost, "/print/order", orderBody(t, func(o *pos.Order) {
		o.Items[0].Quantity = -2
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "order rejected")
}

func TestPrinterStatusAndConnect(t *testing.T) {
	srv, _, labelMock := newTestBridge()
	labelMock.failOpen = true

	_, resp := doRequest(t, srv, http.MethodGet, "/printers/status", nil)
	require.NotNil(t, resp.Status)
	assert.False(t, resp.Status.Thermal)
	assert.False(t, resp.Status.TSC)

	_, resp = doRequest(t, srv, http.MethodPost, "/printers/connect", nil)
	require.NotNil(t, resp.Status)
	assert.True(t, resp.Success) // one of two came up
	assert.True(t, resp.Status.Thermal)
	assert.False(t, resp.Status.TSC)

	_, resp = doRequest(t, srv, http.MethodGet, "/printers/status", nil)
	assert.True(t, resp.Status.Thermal)
	assert.False(t, resp.Status.TSC)
}

func TestPrinterTestRoute(t *testing.T) {
	srv, receiptMock, _ := newTestBridge()
	doRequest(t, srv, http.MethodPost, "/printers/connect", nil)

	_, resp := doRequest(t, srv, http.MethodPost, "/printers/test", nil)
	assert.True(t, resp.Success)
	assert.True(t, resp.Outcome.BillPrinted)
	assert.Contains(t, string(receiptMock.writes[1]), "PRINTER TEST")
}

func TestPrinterDisconnectRoute(t *testing.T) {
	srv, receiptMock, labelMock := newTestBridge()
	doRequest(t, srv, http.MethodPost, "/printers/connect", nil)
	require.True(t, receiptMock.IsOpen())
	require.True(t, labelMock.IsOpen())

	_, resp := doRequest(t, srv, http.MethodPost, "/printers/disconnect", nil)
	assert.True(t, resp.Success)
	assert.False(t, receiptMock.IsOpen())
	assert.False(t, labelMock.IsOpen())
}

func TestServerStartStop(t *testing.T) {
	srv, _, _ := newTestBridge()
	srv.address = "127.0.0.1:0"

	err := srv.StartAsync()
	require.NoError(t, err)
	assert.True(t, srv.IsRunning())

	// double start
	err = srv.StartAsync()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	err = srv.Stop()
	require.NoError(t, err)
	assert.False(t, srv.IsRunning())

	// double stop is harmless
	assert.NoError(t, srv.Stop())
}

func TestServerInvalidAddress(t *testing.T) {
	srv, _, _ := newTestBridge()
	srv.address = "invalid:address:9100"

	err := srv.StartAsync()
	assert.Error(t, err)
	assert.False(t, srv.IsRunning())
}
