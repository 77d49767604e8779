package main

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pgavlin/brotherql/internal/catalog"
	"github.com/pgavlin/brotherql/internal/config"
	"github.com/pgavlin/brotherql/internal/device"
	"github.com/pgavlin/brotherql/internal/logging"
)

func newTestServer(t *testing.T, model catalog.Model, media string) (*httptest.Server, *device.Simulator) {
	t.Helper()
	m, ok := catalog.MediaByName(media)
	if !ok {
		t.Fatalf("unknown media %v", media)
	}
	sim := device.NewSimulator(model, m)

	cfg := config.Default()
	cfg.Printer.Address = "sim://" + model.Name
	cfg.Printer.LockDir = t.TempDir()
	st := newStation(&cfg, logging.NewNop())
	st.open = func(string) (device.Device, error) { return sim, nil }

	srv := httptest.NewServer((&server{cfg: &cfg, station: st, log: logging.NewNop()}).handler())
	t.Cleanup(srv.Close)
	return srv, sim
}

func pngBody(t *testing.T, w, h int, c color.Color) *bytes.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestServerPrint(t *testing.T) {
	srv, sim := newTestServer(t, catalog.QL700, "CT_62_720")

	resp, err := http.Post(srv.URL+"/print", "image/png", pngBody(t, 696, 150, color.White))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /print = %v", resp.Status)
	}
	if !strings.HasSuffix(sim.Tx(), "\n1A\n") {
		t.Error("job was not printed")
	}
	if !sim.IsClosed() {
		t.Error("printer left open after the job")
	}
}

func TestServerPreview(t *testing.T) {
	srv, sim := newTestServer(t, catalog.QL820NWB, "DC_29X90_720")

	resp, err := http.Post(srv.URL+"/print?preview=1", "image/png", pngBody(t, 306, 991, color.Black))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("POST /print?preview=1 = %v (%v)", resp.Status, resp.Header.Get("Content-Type"))
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 720 || b.Dy() != 991 {
		t.Errorf("preview bounds = %v", b)
	}
	if strings.Contains(sim.Tx(), "1B697A") {
		t.Error("preview printed the job")
	}
}

func TestServerErrors(t *testing.T) {
	srv, _ := newTestServer(t, catalog.QL700, "CT_62_720")

	tests := []struct {
		name string
		url  string
		body *bytes.Reader
		want int
	}{
		{"not an image", "/print", bytes.NewReader([]byte("hello")), http.StatusBadRequest},
		{"wrong width", "/print", pngBody(t, 100, 150, color.White), http.StatusUnprocessableEntity},
		{"unknown media", "/print?media=CT_1000_720", pngBody(t, 696, 150, color.White), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+tt.url, "image/png", tt.body)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("POST %s = %v; want %d", tt.url, resp.Status, tt.want)
			}
		})
	}

	resp, err := http.Get(srv.URL + "/print")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /print = %v", resp.Status)
	}
}

func TestServerStatus(t *testing.T) {
	srv, _ := newTestServer(t, catalog.QL700, "CT_62_720")

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body bytes.Buffer
	body.ReadFrom(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body.String(), "model=QL-700 status=ready") {
		t.Errorf("GET /status = %v: %q", resp.Status, body.String())
	}
}
