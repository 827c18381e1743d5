package adapter

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Printers attach at a fixed framing: 9600 baud, 8 data bits, no parity,
// one stop bit, no flow control. Not configurable per call.
const serialBaudRate = 9600

const serialReadTimeout = 3 * time.Second

var ErrNoSerialDevice = errors.New("no matching serial printer found")

// SerialAdapter manages one RS-232/USB-serial printer connection.
type SerialAdapter struct {
	portName string
	port     serial.Port
	isOpen   bool
	mu       sync.Mutex
}

// NewSerialAdapter creates an adapter bound to an explicit port name.
func NewSerialAdapter(portName string) *SerialAdapter {
	return &SerialAdapter{portName: portName}
}

// NewSerialAdapterAuto discovers the port by scanning USB serial devices
// against a vendor ID allow-list.
func NewSerialAdapterAuto(allowedVendors []uint16) (*SerialAdapter, error) {
	portName, err := FindSerialPort(allowedVendors)
	if err != nil {
		return nil, err
	}
	return &SerialAdapter{portName: portName}, nil
}

// FindSerialPort returns the first USB serial port whose vendor ID is in
// the allow-list.
func FindSerialPort(allowedVendors []uint16) (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	for _, port := range ports {
		if !port.IsUSB {
			continue
		}
		vid, err := strconv.ParseUint(port.VID, 16, 16)
		if err != nil {
			continue
		}
		if vendorAllowed(uint16(vid), allowedVendors) {
			return port.Name, nil
		}
	}

	return "", ErrNoSerialDevice
}

// Open opens the serial port at the fixed printer framing.
func (a *SerialAdapter) Open() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.isOpen {
		return errors.New("port already open")
	}
	if a.portName == "" {
		return ErrNoSerialDevice
	}

	mode := &serial.Mode{
		BaudRate: serialBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(a.portName, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", a.portName, err)
	}
	port.SetReadTimeout(serialReadTimeout)

	a.port = port
	a.isOpen = true
	return nil
}

// Write sends raw bytes to the printer.
func (a *SerialAdapter) Write(data []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.isOpen || a.port == nil {
		return 0, errors.New("port not open")
	}

	n, err := a.port.Write(data)
	if err != nil {
		return n, fmt.Errorf("serial write failed: %w", err)
	}
	return n, nil
}

// Read reads status bytes from the printer, bounded by the read timeout.
func (a *SerialAdapter) Read(buf []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.isOpen || a.port == nil {
		return 0, errors.New("port not open")
	}

	n, err := a.port.Read(buf)
	if err != nil {
		return n, fmt.Errorf("serial read failed: %w", err)
	}
	return n, nil
}

// Close releases the port. Always ends closed, even if the OS-level close
// reports an error.
func (a *SerialAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.isOpen {
		return nil
	}

	var err error
	if a.port != nil {
		err = a.port.Close()
		a.port = nil
	}
	a.isOpen = false

	if err != nil {
		return fmt.Errorf("serial close failed: %w", err)
	}
	return nil
}

// IsOpen reports whether the port handle is currently held.
func (a *SerialAdapter) IsOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isOpen && a.port != nil
}

// PortName returns the bound port name, resolved or explicit.
func (a *SerialAdapter) PortName() string {
	return a.portName
}
