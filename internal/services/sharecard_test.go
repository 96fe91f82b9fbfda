package services

import (
	"bytes"
	"image/png"
	"testing"
)

func TestRenderFriendCodePNG(t *testing.T) {
	data, err := RenderFriendCodePNG("ABCD1234EFGH")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("expected valid PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 1200 || bounds.Dy() != 630 {
		t.Fatalf("unexpected dimensions %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderFriendCodePNG_InvalidCode(t *testing.T) {
	if _, err := RenderFriendCodePNG("nope"); err == nil {
		t.Fatal("expected error for invalid code")
	}
}
