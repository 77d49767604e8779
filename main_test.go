package main

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupCLITest isolates the configuration and lock files of a test.
func setupCLITest(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Chdir(base)
	return base
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

func TestModelsCommand(t *testing.T) {
	setupCLITest(t)
	out, err := runCLI(t, "models")
	if err != nil {
		t.Fatalf("models failed: %v", err)
	}
	for _, want := range []string{"QL-700", "QL-820NWB", "QL-1110NWB"} {
		if !strings.Contains(out, want) {
			t.Errorf("models output lacks %s:\n%s", want, out)
		}
	}
}

func TestMediaCommand(t *testing.T) {
	setupCLITest(t)
	out, err := runCLI(t, "media")
	if err != nil {
		t.Fatalf("media failed: %v", err)
	}
	for _, want := range []string{"CT_62_720", "CT_62_RB_720", "62mm x 100mm"} {
		if !strings.Contains(out, want) {
			t.Errorf("media output lacks %s:\n%s", want, out)
		}
	}
}

func TestPrintCommand(t *testing.T) {
	base := setupCLITest(t)
	path := filepath.Join(base, "label.png")
	writePNG(t, path, 696, 150, color.White)

	out, err := runCLI(t, "--printer", "sim://QL-700", "print", path, path)
	if err != nil {
		t.Fatalf("print failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "(1/2)") || !strings.Contains(out, "(2/2)") {
		t.Errorf("unexpected print output:\n%s", out)
	}
}

func TestPrintCommandRejectsWrongSize(t *testing.T) {
	base := setupCLITest(t)
	path := filepath.Join(base, "label.png")
	writePNG(t, path, 600, 150, color.White)

	_, err := runCLI(t, "--printer", "sim://QL-700", "print", path)
	if err == nil || !strings.Contains(err.Error(), "expected 696 dots, got 600") {
		t.Errorf("print = %v; want a width mismatch", err)
	}
}

func TestPrintCommandToFile(t *testing.T) {
	base := setupCLITest(t)
	path := filepath.Join(base, "label.png")
	writePNG(t, path, 306, 991, color.White)
	stream := filepath.Join(base, "job.bin")

	_, err := runCLI(t, "--printer", "file://"+stream+"?model=QL-700", "print", "--media", "DC_29X90_720", path)
	if err != nil {
		t.Fatalf("print failed: %v", err)
	}
	data, err := os.ReadFile(stream)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte{0x1B, 0x69, 0x61, 0x01}) || data[len(data)-1] != 0x1A {
		t.Errorf("unexpected stream framing: % x ... % x", data[:4], data[len(data)-1:])
	}
}

func TestRasterCommand(t *testing.T) {
	base := setupCLITest(t)
	path := filepath.Join(base, "label.png")
	writePNG(t, path, 696, 200, color.Black)
	preview := filepath.Join(base, "preview.png")
	stream := filepath.Join(base, "job.bin")

	out, err := runCLI(t, "raster", "--model", "QL-700", "--media", "CT_62_720", "-o", preview, "--raw", stream, path, path)
	if err != nil {
		t.Fatalf("raster failed: %v\n%s", err, out)
	}

	img := decodePNG(t, preview)
	if b := img.Bounds(); b.Dx() != 720 || b.Dy() != 2*200+previewGap {
		t.Errorf("preview bounds = %v", b)
	}
	if r, g, b, _ := img.At(360, 10).RGBA(); r|g|b != 0 {
		t.Errorf("body of a black label is not black")
	}

	data, err := os.ReadFile(stream)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte{0x1B, 0x69, 0x61, 0x01}) {
		t.Errorf("raw stream starts with % x", data[:4])
	}
	if n := bytes.Count(data, []byte{0x67, 0x00, 0x5A}); n < 400 {
		t.Errorf("raw stream has %d raster lines; want at least 400", n)
	}
}

func TestRasterCommandAsksPrinter(t *testing.T) {
	base := setupCLITest(t)
	path := filepath.Join(base, "label.png")
	writePNG(t, path, 1164, 300, color.White)
	preview := filepath.Join(base, "preview.png")

	if _, err := runCLI(t, "--printer", "sim://QL-1110NWB?media=CT_102_1296", "raster", "-o", preview, path); err != nil {
		t.Fatalf("raster failed: %v", err)
	}
	if b := decodePNG(t, preview).Bounds(); b.Dx() != 1296 || b.Dy() != 300 {
		t.Errorf("preview bounds = %v", b)
	}
}

func TestCodeCommand(t *testing.T) {
	base := setupCLITest(t)
	output := filepath.Join(base, "code.png")

	_, err := runCLI(t, "code", "--model", "QL-700", "--media", "DC_62X29_720", "-s", "datamatrix", "-o", output, "hello")
	if err != nil {
		t.Fatalf("code failed: %v", err)
	}
	if b := decodePNG(t, output).Bounds(); b.Dx() != 696 || b.Dy() != 271 {
		t.Errorf("code bounds = %v", b)
	}

	if _, err := runCLI(t, "--printer", "sim://QL-700", "code", "hello"); err != nil {
		t.Fatalf("printing a code failed: %v", err)
	}
}

func TestStatusCommand(t *testing.T) {
	setupCLITest(t)
	out, err := runCLI(t, "--printer", "sim://QL-820NWB?media=DC_62X100_720", "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	for _, want := range []string{"QL-820NWB", "ready", "DC_62X100_720"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output lacks %s:\n%s", want, out)
		}
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	base := setupCLITest(t)
	path := filepath.Join(base, "brotherql.toml")

	out, err := runCLI(t, "config", "init", "-o", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("unexpected init output: %s", out)
	}
	if _, err := runCLI(t, "config", "init", "-o", path); err == nil {
		t.Error("config init should refuse to overwrite")
	}

	out, err = runCLI(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Errorf("unexpected validate output: %s", out)
	}
}

func TestLockName(t *testing.T) {
	tests := map[string]string{
		"":                              "usb.lock",
		"tcp://192.168.1.20/QL-720NW":   "tcp___192.168.1.20_QL-720NW.lock",
		"usb://Brother/QL-700?serial=1": "usb___Brother_QL-700_serial_1.lock",
	}
	for address, want := range tests {
		if got := lockName(address); got != want {
			t.Errorf("lockName(%q) = %q; want %q", address, got, want)
		}
	}
}
