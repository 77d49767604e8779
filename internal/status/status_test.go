package status

import (
	"testing"

	"github.com/pgavlin/brotherql/internal/catalog"
)

func frame(width, mediaType, length, statusType, phase byte) []byte {
	b := make([]byte, FrameSize)
	b[0], b[1], b[2], b[3] = 0x80, 0x20, 0x42, 0x34
	b[4] = 0x35
	b[10] = width
	b[11] = mediaType
	b[17] = length
	b[18] = statusType
	b[19] = phase
	return b
}

func TestParseReady(t *testing.T) {
	s := Parse(frame(62, 0x0A, 0, 0x00, 0x00), catalog.QL700)
	if s.MediaWidth() != 62 {
		t.Errorf("MediaWidth() = %d; want 62", s.MediaWidth())
	}
	if s.MediaType() != catalog.Continuous {
		t.Errorf("MediaType() = %v; want continuous", s.MediaType())
	}
	if s.MediaLength() != 0 {
		t.Errorf("MediaLength() = %d; want 0", s.MediaLength())
	}
	if s.Type() != Ready {
		t.Errorf("Type() = %v; want ready", s.Type())
	}
	if s.Phase() != Waiting {
		t.Errorf("Phase() = %v; want waiting", s.Phase())
	}
	if s.ModelCode() != 0x35 {
		t.Errorf("ModelCode() = %#x; want 0x35", s.ModelCode())
	}
	if len(s.Errors()) != 0 {
		t.Errorf("Errors() = %v; want none", s.Errors())
	}
	m, ok := s.Media()
	if !ok || m.Name != "CT_62_720" {
		t.Errorf("Media() = %v, %v; want CT_62_720", m, ok)
	}
	if got, want := s.String(), "status=ready media=continuous (62mm) phase=waiting"; got != want {
		t.Errorf("String() = %q; want %q", got, want)
	}
}

func TestParseResolvesUnknownModel(t *testing.T) {
	b := frame(62, 0x0A, 0, 0x00, 0x00)
	b[4] = 0x4F
	if got := Parse(b, catalog.Unknown).Model(); got != catalog.QL550 {
		t.Errorf("Model() = %v; want QL-550", got)
	}
	if got := Parse(b, catalog.QL500).Model(); got != catalog.QL500 {
		t.Errorf("Model() = %v; want the given QL-500", got)
	}
}

func TestParseDoesNotAlias(t *testing.T) {
	b := frame(62, 0x0A, 0, 0x00, 0x00)
	s := Parse(b, catalog.QL700)
	b[10] = 29
	if s.MediaWidth() != 62 {
		t.Errorf("status changed with its source buffer")
	}
}

func TestParseShortFrame(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		model catalog.Model
		want  Type
	}{
		{"nil from unknown model", nil, catalog.Unknown, NotConnected},
		{"nil from known model", nil, catalog.QL700, Unavailable},
		{"short", make([]byte, 31), catalog.QL700, Unavailable},
		{"short from unknown model", make([]byte, 12), catalog.Unknown, Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Parse(tt.frame, tt.model)
			if s.Type() != tt.want {
				t.Errorf("Type() = %v; want %v", s.Type(), tt.want)
			}
			if s.Phase() != Unknown {
				t.Errorf("Phase() = %v; want unknown", s.Phase())
			}
			if s.MediaType() != catalog.UnknownMedia {
				t.Errorf("MediaType() = %v; want unknown", s.MediaType())
			}
			if !s.Synthetic() {
				t.Error("Synthetic() = false")
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	errs := DecodeErrors(0x01, 0x02)
	if !errs.Has(NoMediaWhenPrinting) {
		t.Errorf("DecodeErrors(0x01, 0x02) = %v; want no-media", errs)
	}
	for _, k := range []ErrorKind{TransmissionError, CoverOpened, CannotFeed, SystemError} {
		if errs.Has(k) {
			t.Errorf("DecodeErrors(0x01, 0x02) contains %v", k)
		}
	}
	if len(errs) != 1 {
		t.Errorf("DecodeErrors(0x01, 0x02) = %v; want exactly one kind", errs)
	}
}

func TestDecodeEachError(t *testing.T) {
	tests := []struct {
		err1, err2 byte
		want       ErrorKind
	}{
		{0x01, 0, NoMediaWhenPrinting},
		{0x02, 0, EndOfMedia},
		{0x04, 0, TapeCutterJam},
		{0x10, 0, UnitInUse},
		{0x80, 0, FanDoesntWork},
		{0, 0x04, TransmissionError},
		{0, 0x10, CoverOpened},
		{0, 0x40, CannotFeed},
		{0, 0x80, SystemError},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			errs := DecodeErrors(tt.err1, tt.err2)
			if len(errs) != 1 || errs[0] != tt.want {
				t.Errorf("DecodeErrors(%#x, %#x) = %v; want %v", tt.err1, tt.err2, errs, tt.want)
			}
		})
	}
}

func TestDecodeMultipleErrors(t *testing.T) {
	errs := DecodeErrors(0xFF, 0xFF)
	if len(errs) != len(ErrorKinds()) {
		t.Errorf("DecodeErrors(0xff, 0xff) = %v; want every kind", errs)
	}
	if got := (Errors{EndOfMedia, CoverOpened}).String(); got != "end-of-media,cover-open" {
		t.Errorf("String() = %q", got)
	}
}

func TestStringWithErrors(t *testing.T) {
	b := frame(29, 0x0B, 90, 0x02, 0x00)
	b[8] = 0x02
	s := Parse(b, catalog.QL700)
	if got, want := s.String(), "status=error media=die-cut (29mm x 90mm) phase=waiting errors=end-of-media"; got != want {
		t.Errorf("String() = %q; want %q", got, want)
	}
}

func TestUnknownCodes(t *testing.T) {
	s := Parse(frame(0, 0x42, 0, 0x09, 0x07), catalog.QL700)
	if got := s.Type().String(); got != "0x09" {
		t.Errorf("Type().String() = %q", got)
	}
	if got := s.Phase().String(); got != "0x07" {
		t.Errorf("Phase().String() = %q", got)
	}
	if _, ok := s.Media(); ok {
		t.Error("Media() identified an unknown media type")
	}
}
