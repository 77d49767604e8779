package device

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/status"
)

func TestReadyFrame(t *testing.T) {
	b := readyFrame(catalog.QL720NW)
	st := status.Parse(b, catalog.QL720NW)
	if st.Type() != status.Ready || st.Phase() != status.Waiting {
		t.Fatalf("readyFrame() = %v", st)
	}
	if st.ModelCode() != catalog.QL720NW.StatusCode {
		t.Errorf("model code = %#x; want %#x", st.ModelCode(), catalog.QL720NW.StatusCode)
	}
	if len(st.Errors()) != 0 {
		t.Errorf("unexpected errors: %v", st.Errors())
	}
}

func TestSimulator(t *testing.T) {
	media, _ := catalog.MediaByName("CT_62_720")
	sim := NewSimulator(catalog.QL700, media)

	if !sim.IsClosed() {
		t.Fatal("new simulator should be closed")
	}
	if err := sim.Write([]byte{0x1B}, time.Second); err == nil {
		t.Fatal("write to closed simulator should fail")
	}
	if err := sim.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := sim.Open(); err == nil {
		t.Fatal("second Open() should fail")
	}

	b, err := sim.ReadStatus(time.Second)
	if err != nil {
		t.Fatalf("ReadStatus() failed: %v", err)
	}
	st := status.Parse(b, sim.Model())
	if got, ok := st.Media(); !ok || got.Name != "CT_62_720" {
		t.Errorf("Media() = %v, %v; want CT_62_720", got, ok)
	}

	if err := sim.Write([]byte{0x1B, 0x40}, time.Second); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if err := sim.Write([]byte{0x0c}, time.Second); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if got, want := sim.Tx(), "1B40\n0C\n"; got != want {
		t.Errorf("Tx() = %q; want %q", got, want)
	}
	if got := sim.Bytes(); !bytes.Equal(got, []byte{0x1B, 0x40, 0x0C}) {
		t.Errorf("Bytes() = % x", got)
	}

	sim.ClearTx()
	if sim.Tx() != "" {
		t.Errorf("Tx() after ClearTx() = %q", sim.Tx())
	}

	failure := errors.New("unplugged")
	sim.FailWrites(failure)
	if err := sim.Write([]byte{0x00}, time.Second); !errors.Is(err, failure) {
		t.Errorf("Write() = %v; want %v", err, failure)
	}

	if err := sim.Close(); err != nil || !sim.IsClosed() {
		t.Errorf("Close() = %v, closed = %v", err, sim.IsClosed())
	}
}

func TestSimulatorScript(t *testing.T) {
	media, _ := catalog.MediaByName("DC_29X90_720")
	sim := NewSimulator(catalog.QL800, media)
	if err := sim.Open(); err != nil {
		t.Fatal(err)
	}

	printing := sim.Frame(status.PhaseChange, status.Printing)
	sim.Script(printing, nil)

	b, _ := sim.ReadStatus(time.Second)
	if st := status.Parse(b, sim.Model()); st.Phase() != status.Printing {
		t.Errorf("first read phase = %v; want printing", st.Phase())
	}
	if b, _ = sim.ReadStatus(time.Second); b != nil {
		t.Errorf("second read = % x; want a timeout", b)
	}

	sim.SetStatusType(status.PrintingCompleted)
	b, _ = sim.ReadStatus(time.Second)
	if st := status.Parse(b, sim.Model()); st.Type() != status.PrintingCompleted || st.Phase() != status.Waiting {
		t.Errorf("third read = %v", st)
	}
	if got := sim.Reads(); got != 3 {
		t.Errorf("Reads() = %d; want 3", got)
	}

	// Changing the frame after Frame() must not affect the returned copy.
	sim.SetErrors(0x01, 0x00)
	if printing[8] != 0 {
		t.Error("Frame() aliases the simulator's frame")
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.bin")
	f := NewFile(path, catalog.QL700)

	if err := f.Write([]byte{0x01}, time.Second); err == nil {
		t.Fatal("write to closed file should fail")
	}
	if err := f.Open(); err != nil {
		t.Fatal(err)
	}
	if f.SelfReporting() {
		t.Error("file transport should not be self-reporting")
	}
	if err := f.Write([]byte{0x1B, 0x40}, time.Second); err != nil {
		t.Fatal(err)
	}
	if err := f.Write([]byte{0x1A}, time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file written before Close(): %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x1B, 0x40, 0x1A}) {
		t.Errorf("file contents = % x", got)
	}
	if err := f.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			received <- nil
			return
		}
		defer conn.Close()
		b, _ := io.ReadAll(conn)
		received <- b
	}()

	addr := ln.Addr().(*net.TCPAddr)
	tcp := NewTCP("127.0.0.1", addr.Port, catalog.QL720NW)
	if err := tcp.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	b, err := tcp.ReadStatus(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if st := status.Parse(b, tcp.Model()); st.Type() != status.Ready {
		t.Errorf("ReadStatus() = %v", st)
	}
	if err := tcp.Write([]byte{0x1B, 0x40, 0x0C}, time.Second); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if err := tcp.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-received:
		if !bytes.Equal(got, []byte{0x1B, 0x40, 0x0C}) {
			t.Errorf("server received % x", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not receive the job")
	}
}

type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(b []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, nil
	}
	n := copy(b, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func TestReadFrame(t *testing.T) {
	full := readyFrame(catalog.QL700)

	b, err := readFrame(&chunkReader{chunks: [][]byte{full[:10], full[10:]}})
	if err != nil || !bytes.Equal(b, full) {
		t.Errorf("readFrame(chunked) = % x, %v", b, err)
	}

	b, err = readFrame(&chunkReader{chunks: [][]byte{full[:10]}})
	if err != nil || b != nil {
		t.Errorf("readFrame(short) = % x, %v; want no frame", b, err)
	}
}

func TestOpenAddress(t *testing.T) {
	tests := []struct {
		address string
		check   func(t *testing.T, d Device)
	}{
		{"", func(t *testing.T, d Device) {
			u := d.(*USB)
			if u.Filter.Known() || u.Serial != "" {
				t.Errorf("unexpected usb filter %v/%q", u.Filter, u.Serial)
			}
		}},
		{"usb://Brother/QL-700?serial=000G0Z123456", func(t *testing.T, d Device) {
			u := d.(*USB)
			if u.Filter != catalog.QL700 || u.Serial != "000G0Z123456" {
				t.Errorf("unexpected usb filter %v/%q", u.Filter, u.Serial)
			}
		}},
		{"tcp://192.168.1.20/QL-720NW", func(t *testing.T, d Device) {
			c := d.(*TCP)
			if c.Address() != "192.168.1.20:9100" || c.Model() != catalog.QL720NW {
				t.Errorf("unexpected tcp transport %v/%v", c.Address(), c.Model())
			}
		}},
		{"tcp://printer.local:9101/ql-820nwb", func(t *testing.T, d Device) {
			c := d.(*TCP)
			if c.Address() != "printer.local:9101" || c.Model() != catalog.QL820NWB {
				t.Errorf("unexpected tcp transport %v/%v", c.Address(), c.Model())
			}
		}},
		{"serial:///dev/rfcomm0?model=QL-820NWB&baud=115200", func(t *testing.T, d Device) {
			s := d.(*Serial)
			if s.name != "/dev/rfcomm0" || s.baud != 115200 || s.Model() != catalog.QL820NWB || !s.SelfReporting() {
				t.Errorf("unexpected serial transport %+v", s)
			}
		}},
		{"file:///tmp/job.bin", func(t *testing.T, d Device) {
			f := d.(*File)
			if f.Path() != "/tmp/job.bin" || f.Model() != catalog.QL500 {
				t.Errorf("unexpected file transport %v/%v", f.Path(), f.Model())
			}
		}},
		{"file:///tmp/job.bin?model=QL-1060N", func(t *testing.T, d Device) {
			if m := d.Model(); m != catalog.QL1060N {
				t.Errorf("Model() = %v", m)
			}
		}},
		{"sim://QL-1110NWB", func(t *testing.T, d Device) {
			s := d.(*Simulator)
			if err := s.Open(); err != nil {
				t.Fatal(err)
			}
			b, _ := s.ReadStatus(time.Second)
			if m, ok := status.Parse(b, s.Model()).Media(); !ok || m.Name != "CT_62_1296" {
				t.Errorf("Media() = %v, %v", m, ok)
			}
		}},
		{"sim://QL-700?media=DC_62X100_720", func(t *testing.T, d Device) {
			s := d.(*Simulator)
			if err := s.Open(); err != nil {
				t.Fatal(err)
			}
			b, _ := s.ReadStatus(time.Second)
			if m, ok := status.Parse(b, s.Model()).Media(); !ok || m.Name != "DC_62X100_720" {
				t.Errorf("Media() = %v, %v", m, ok)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			d, err := Open(tt.address)
			if err != nil {
				t.Fatalf("Open(%q) failed: %v", tt.address, err)
			}
			if !d.IsClosed() {
				t.Errorf("Open(%q) returned an open transport", tt.address)
			}
			tt.check(t, d)
		})
	}
}

func TestOpenAddressErrors(t *testing.T) {
	for _, address := range []string{
		"lpt://1",
		"tcp:///QL-700",
		"tcp://host/QL-9999",
		"tcp://host:99999/QL-700",
		"tcp://host",
		"serial:///dev/ttyS0",
		"serial:///dev/ttyS0?model=QL-700&baud=fast",
		"usb://Brother/QL-1",
		"sim://QL-700?media=CT_1000_720",
		"sim://",
	} {
		t.Run(address, func(t *testing.T) {
			if _, err := Open(address); err == nil {
				t.Errorf("Open(%q) should fail", address)
			}
		})
	}
}

func TestUSBAddress(t *testing.T) {
	if got, want := usbAddress(catalog.QL700, "A1B2"), "usb://Brother/QL-700?serial=A1B2"; got != want {
		t.Errorf("usbAddress() = %q; want %q", got, want)
	}
	if got, want := usbAddress(catalog.QL820NWB, ""), "usb://Brother/QL-820NWB"; got != want {
		t.Errorf("usbAddress() = %q; want %q", got, want)
	}
}
