package colorutil

import (
	"image/color"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff0000", Red, false},
		{"fff", White, false},
		{"#000000ff", Black, false},
		{"#00000000", color.RGBA{}, false},
		{"#12345", color.RGBA{}, true},
		{"#gg0000", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseHex(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithAlpha(t *testing.T) {
	if got := WithAlpha(White, 0); got != (color.RGBA{}) {
		t.Fatalf("transparent white = %v", got)
	}
	if got := WithAlpha(Red, 255); got != Red {
		t.Fatalf("opaque red = %v", got)
	}
}
