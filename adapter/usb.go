package adapter

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/gousb"
)

// USB interface class for printers.
// Reference: http://www.usb.org/developers/defined_class
const ifaceClassPrinter = 0x07

var ErrNoUSBDevice = errors.New("no matching usb printer found")

// USBAdapter manages one directly-attached USB printer. It is the alternate
// attachment for shops whose printers skip the serial bridge.
type USBAdapter struct {
	device      *gousb.Device
	ctx         *gousb.Context
	outEndpoint *gousb.OutEndpoint
	inEndpoint  *gousb.InEndpoint
	iface       *gousb.Interface
	isOpen      bool
	mu          sync.Mutex
}

// NewUSBAdapterAuto claims the first printer-class device whose vendor ID
// is in the allow-list.
func NewUSBAdapterAuto(allowedVendors []uint16) (*USBAdapter, error) {
	ctx := gousb.NewContext()

	devices := findPrinters(ctx, allowedVendors)
	if len(devices) == 0 {
		ctx.Close()
		return nil, ErrNoUSBDevice
	}

	// Keep the first match, release the rest.
	for _, dev := range devices[1:] {
		dev.Close()
	}

	return &USBAdapter{ctx: ctx, device: devices[0]}, nil
}

// isPrinterClass checks whether any interface of the device reports the
// USB printer class.
func isPrinterClass(dev *gousb.Device) bool {
	if dev == nil {
		return false
	}

	cfgNum, err := dev.ActiveConfigNum()
	if err != nil {
		return false
	}

	cfg, err := dev.Config(cfgNum)
	if err != nil {
		return false
	}
	defer cfg.Close()

	for _, iface := range cfg.Desc.Interfaces {
		for _, alt := range iface.AltSettings {
			if alt.Class == ifaceClassPrinter {
				return true
			}
		}
	}
	return false
}

// findPrinters opens every printer-class device in the vendor allow-list.
func findPrinters(ctx *gousb.Context, allowedVendors []uint16) []*gousb.Device {
	var printers []*gousb.Device

	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return vendorAllowed(uint16(desc.Vendor), allowedVendors)
	})
	if err != nil {
		// OpenDevices can return matches alongside an error; keep what we got.
		if len(devices) == 0 {
			return printers
		}
	}

	for _, dev := range devices {
		if isPrinterClass(dev) {
			printers = append(printers, dev)
		} else {
			dev.Close()
		}
	}
	return printers
}

// Open claims the printer interface and resolves its endpoints.
func (a *USBAdapter) Open() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.isOpen {
		return errors.New("device already open")
	}
	if a.device == nil {
		return ErrNoUSBDevice
	}

	if runtime.GOOS == "linux" {
		a.device.SetAutoDetach(true)
	}

	cfgNum, err := a.device.ActiveConfigNum()
	if err != nil {
		return fmt.Errorf("failed to get active config: %w", err)
	}

	cfg, err := a.device.Config(cfgNum)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}
	defer cfg.Close()

	printerIfaceNum := -1
	for _, iface := range cfg.Desc.Interfaces {
		for _, alt := range iface.AltSettings {
			if alt.Class == ifaceClassPrinter {
				printerIfaceNum = iface.Number
				break
			}
		}
		if printerIfaceNum >= 0 {
			break
		}
	}
	if printerIfaceNum < 0 {
		return errors.New("no printer interface found")
	}

	iface, err := cfg.Interface(printerIfaceNum, 0)
	if err != nil {
		return fmt.Errorf("failed to claim interface: %w", err)
	}
	a.iface = iface

	for _, epDesc := range iface.Setting.Endpoints {
		if epDesc.Direction == gousb.EndpointDirectionOut && a.outEndpoint == nil {
			if ep, err := iface.OutEndpoint(epDesc.Number); err == nil {
				a.outEndpoint = ep
			}
		}
		if epDesc.Direction == gousb.EndpointDirectionIn && a.inEndpoint == nil {
			if ep, err := iface.InEndpoint(epDesc.Number); err == nil {
				a.inEndpoint = ep
			}
		}
	}

	if a.outEndpoint == nil {
		a.iface.Close()
		a.iface = nil
		return errors.New("cannot find output endpoint from printer")
	}

	a.isOpen = true
	return nil
}

// Write sends data to the printer.
func (a *USBAdapter) Write(data []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.isOpen {
		return 0, errors.New("device not open")
	}
	if a.outEndpoint == nil {
		return 0, errors.New("output endpoint not available")
	}

	n, err := a.outEndpoint.Write(data)
	if err != nil {
		return n, fmt.Errorf("usb write failed: %w", err)
	}
	return n, nil
}

// Read reads data from the printer.
func (a *USBAdapter) Read(buf []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.isOpen {
		return 0, errors.New("device not open")
	}
	if a.inEndpoint == nil {
		return 0, errors.New("input endpoint not available")
	}

	n, err := a.inEndpoint.Read(buf)
	if err != nil {
		return n, fmt.Errorf("usb read failed: %w", err)
	}
	return n, nil
}

// Close releases the interface, device and context. Partial failures are
// collected; the adapter always ends closed.
func (a *USBAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.device == nil && a.ctx == nil {
		return nil
	}

	var errs []error

	if a.iface != nil {
		a.iface.Close()
		a.iface = nil
	}
	if a.device != nil {
		if err := a.device.Close(); err != nil {
			errs = append(errs, err)
		}
		a.device = nil
	}
	if a.ctx != nil {
		if err := a.ctx.Close(); err != nil {
			errs = append(errs, err)
		}
		a.ctx = nil
	}

	a.isOpen = false
	a.outEndpoint = nil
	a.inEndpoint = nil

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// IsOpen returns whether the device interface is claimed.
func (a *USBAdapter) IsOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isOpen
}
