package device

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/gousb"

	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/status"
)

// A USB talks to a printer attached over USB using its printer-class bulk endpoints. USB printers answer status
// requests and report status while printing.
type USB struct {
	// Filter restricts the printers Open accepts. An Unknown model accepts any known model.
	Filter catalog.Model
	// Serial restricts Open to the printer with this serial number, if set.
	Serial string

	ctx   *gousb.Context
	dev   *gousb.Device
	cfg   *gousb.Config
	intf  *gousb.Interface
	in    *gousb.InEndpoint
	out   *gousb.OutEndpoint
	model catalog.Model
}

// NewUSB creates a closed USB transport.
func NewUSB(filter catalog.Model, serial string) *USB {
	return &USB{Filter: filter, Serial: serial, model: filter}
}

func (u *USB) accepts(desc *gousb.DeviceDesc) bool {
	if desc.Vendor != gousb.ID(BrotherVendorID) {
		return false
	}
	m := catalog.ModelByUSBID(uint16(desc.Product))
	if !m.Known() {
		return false
	}
	return !u.Filter.Known() || m == u.Filter
}

func (u *USB) Open() error {
	if u.dev != nil {
		return errors.New("usb device already open")
	}

	ctx := gousb.NewContext()
	devs, err := ctx.OpenDevices(u.accepts)
	if err != nil && len(devs) == 0 {
		ctx.Close()
		return fmt.Errorf("enumerate usb devices: %w", err)
	}

	var dev *gousb.Device
	for _, d := range devs {
		if dev == nil && u.matchesSerial(d) {
			dev = d
			continue
		}
		d.Close()
	}
	if dev == nil {
		ctx.Close()
		return errors.New("no matching usb printer found")
	}

	if err := u.setup(dev); err != nil {
		u.release()
		dev.Close()
		ctx.Close()
		return err
	}
	u.ctx, u.dev = ctx, dev
	u.model = catalog.ModelByUSBID(uint16(dev.Desc.Product))
	return nil
}

func (u *USB) matchesSerial(d *gousb.Device) bool {
	if u.Serial == "" {
		return true
	}
	sn, err := d.SerialNumber()
	return err == nil && sn == u.Serial
}

func (u *USB) setup(dev *gousb.Device) error {
	if err := dev.SetAutoDetach(true); err != nil {
		return fmt.Errorf("detach kernel driver: %w", err)
	}
	cfg, err := dev.Config(1)
	if err != nil {
		return fmt.Errorf("select configuration: %w", err)
	}
	u.cfg = cfg

	for _, id := range cfg.Desc.Interfaces {
		for _, alt := range id.AltSettings {
			if alt.Class != gousb.ClassPrinter {
				continue
			}
			intf, err := cfg.Interface(id.Number, alt.Alternate)
			if err != nil {
				return fmt.Errorf("claim interface %d: %w", id.Number, err)
			}
			u.intf = intf
			for _, ep := range alt.Endpoints {
				if ep.TransferType != gousb.TransferTypeBulk {
					continue
				}
				if ep.Direction == gousb.EndpointDirectionIn && u.in == nil {
					if u.in, err = intf.InEndpoint(ep.Number); err != nil {
						return fmt.Errorf("open in endpoint: %w", err)
					}
				} else if ep.Direction == gousb.EndpointDirectionOut && u.out == nil {
					if u.out, err = intf.OutEndpoint(ep.Number); err != nil {
						return fmt.Errorf("open out endpoint: %w", err)
					}
				}
			}
			if u.in == nil || u.out == nil {
				return errors.New("printer interface is missing bulk endpoints")
			}
			return nil
		}
	}
	return errors.New("device has no printer interface")
}

func (u *USB) release() {
	if u.intf != nil {
		u.intf.Close()
	}
	if u.cfg != nil {
		u.cfg.Close()
	}
	u.intf, u.cfg, u.in, u.out = nil, nil, nil, nil
}

func (u *USB) Model() catalog.Model {
	return u.model
}

// ReadStatus reads one status frame. A timeout or a short read returns no frame.
func (u *USB) ReadStatus(timeout time.Duration) ([]byte, error) {
	if u.in == nil {
		return nil, errors.New("usb device not open")
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	b := make([]byte, status.FrameSize)
	n, err := u.in.ReadContext(ctx, b)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, gousb.TransferTimedOut) ||
			errors.Is(err, gousb.TransferCancelled) {
			return nil, nil
		}
		return nil, fmt.Errorf("read status: %w", err)
	}
	if n < status.FrameSize {
		return nil, nil
	}
	return b, nil
}

func (u *USB) Write(b []byte, timeout time.Duration) error {
	if u.out == nil {
		return errors.New("usb device not open")
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := u.out.WriteContext(ctx, b); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (u *USB) IsClosed() bool {
	return u.dev == nil
}

func (u *USB) Close() error {
	if u.dev == nil {
		return nil
	}
	u.release()
	err := u.dev.Close()
	u.ctx.Close()
	u.dev, u.ctx = nil, nil
	return err
}

func (u *USB) SelfReporting() bool {
	return true
}

// ListUSB returns the addresses of every Brother QL printer attached over USB.
func ListUSB() ([]string, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var u USB
	devs, err := ctx.OpenDevices(u.accepts)
	if err != nil && len(devs) == 0 {
		return nil, fmt.Errorf("enumerate usb devices: %w", err)
	}

	var addresses []string
	for _, d := range devs {
		addresses = append(addresses, usbAddress(catalog.ModelByUSBID(uint16(d.Desc.Product)), serialNumber(d)))
		d.Close()
	}
	return addresses, nil
}

func serialNumber(d *gousb.Device) string {
	sn, err := d.SerialNumber()
	if err != nil {
		return ""
	}
	return sn
}

func usbAddress(model catalog.Model, serial string) string {
	u := url.URL{Scheme: "usb", Host: "Brother", Path: "/" + model.Name}
	if serial != "" {
		u.RawQuery = url.Values{"serial": {serial}}.Encode()
	}
	return u.String()
}
