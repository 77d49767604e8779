package device

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pgavlin/brotherql/internal/catalog"
)

// Open returns the closed transport named by address. Supported addresses are
//
//	usb://[Brother/MODEL][?serial=SERIAL]   the first matching USB printer
//	tcp://HOST[:PORT]/MODEL                 a network printer's raw port
//	serial:///DEV?model=MODEL[&baud=N]      a serial or Bluetooth RFCOMM port
//	file:///PATH[?model=MODEL]              a file, written when the transport closes
//	sim://MODEL[?media=MEDIA]               an in-memory simulator
//
// An empty address selects the first USB printer.
func Open(address string) (Device, error) {
	if address == "" {
		return NewUSB(catalog.Unknown, ""), nil
	}

	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("parse address %q: %w", address, err)
	}
	q := u.Query()

	switch strings.ToLower(u.Scheme) {
	case "usb":
		model := catalog.Unknown
		if name := strings.Trim(u.Path, "/"); name != "" {
			if model, err = lookupModel(name); err != nil {
				return nil, err
			}
		}
		return NewUSB(model, q.Get("serial")), nil
	case "tcp":
		if u.Hostname() == "" {
			return nil, fmt.Errorf("address %q: missing host", address)
		}
		port := 0
		if p := u.Port(); p != "" {
			if port, err = strconv.Atoi(p); err != nil || port <= 0 || port > 65535 {
				return nil, fmt.Errorf("address %q: invalid port %q", address, p)
			}
		}
		model, err := lookupModel(strings.Trim(u.Path, "/"))
		if err != nil {
			return nil, err
		}
		return NewTCP(u.Hostname(), port, model), nil
	case "serial":
		if u.Path == "" {
			return nil, fmt.Errorf("address %q: missing device path", address)
		}
		model, err := lookupModel(q.Get("model"))
		if err != nil {
			return nil, err
		}
		baud := 0
		if b := q.Get("baud"); b != "" {
			if baud, err = strconv.Atoi(b); err != nil || baud <= 0 {
				return nil, fmt.Errorf("address %q: invalid baud rate %q", address, b)
			}
		}
		return NewSerial(u.Path, baud, model), nil
	case "file":
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == "" {
			return nil, fmt.Errorf("address %q: missing path", address)
		}
		model := catalog.QL500
		if name := q.Get("model"); name != "" {
			if model, err = lookupModel(name); err != nil {
				return nil, err
			}
		}
		return NewFile(path, model), nil
	case "sim":
		name := u.Host
		if name == "" {
			name = u.Opaque
		}
		model, err := lookupModel(name)
		if err != nil {
			return nil, err
		}
		media, ok := catalog.MediaByName(q.Get("media"))
		if !ok {
			if q.Get("media") != "" {
				return nil, fmt.Errorf("address %q: unknown media %q", address, q.Get("media"))
			}
			media = defaultSimMedia(model)
		}
		return NewSimulator(model, media), nil
	default:
		return nil, fmt.Errorf("address %q: unsupported scheme %q", address, u.Scheme)
	}
}

func lookupModel(name string) (catalog.Model, error) {
	if name == "" {
		return catalog.Unknown, fmt.Errorf("missing printer model")
	}
	m := catalog.ModelByName(name)
	if !m.Known() {
		return catalog.Unknown, fmt.Errorf("unknown printer model %q", name)
	}
	return m, nil
}

// defaultSimMedia loads 62mm continuous tape of the model's line family.
func defaultSimMedia(model catalog.Model) catalog.Media {
	m, _ := catalog.Identify(model, catalog.Continuous, 62, 0)
	return m
}
