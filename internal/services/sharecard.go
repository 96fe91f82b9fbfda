package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/switch2connect/switch2connect/internal/friendcode"
)

var (
	fontOnce       sync.Once
	parsedRegular  *opentype.Font
	parsedBold     *opentype.Font
	parsedFontsErr error
)

// RenderFriendCodePNG renders a shareable card image for a friend code, used
// for link unfurls when players post their code.
func RenderFriendCodePNG(code string) ([]byte, error) {
	formatted, err := friendcode.Format(code)
	if err != nil {
		return nil, err
	}

	const width = 1200
	const height = 630

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{0xE6, 0x00, 0x12, 0xFF}}, image.Point{}, draw.Src)

	// White panel with the code centered on it.
	panel := image.Rect(80, 160, width-80, height-160)
	draw.Draw(img, panel, &image.Uniform{C: color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}}, image.Point{}, draw.Src)

	titleFace, err := newFontFace(gobold.TTF, 48)
	if err != nil {
		return nil, err
	}
	defer func() { _ = titleFace.Close() }()

	codeFace, err := newFontFace(gobold.TTF, 84)
	if err != nil {
		return nil, err
	}
	defer func() { _ = codeFace.Close() }()

	captionFace, err := newFontFace(goregular.TTF, 28)
	if err != nil {
		return nil, err
	}
	defer func() { _ = captionFace.Close() }()

	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	dark := color.RGBA{0x2D, 0x2D, 0x2D, 0xFF}
	grey := color.RGBA{0x6B, 0x6B, 0x6B, 0xFF}

	drawCenteredText(img, titleFace, width/2, 110, "Switch2Connect", white)
	drawCenteredText(img, codeFace, width/2, height/2+30, formatted, dark)
	drawCenteredText(img, captionFace, width/2, height-100, "Add me with this friend code", grey)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func newFontFace(ttf []byte, size float64) (*opentype.Face, error) {
	fontOnce.Do(func() {
		parsedRegular, parsedFontsErr = opentype.Parse(goregular.TTF)
		if parsedFontsErr == nil {
			parsedBold, parsedFontsErr = opentype.Parse(gobold.TTF)
		}
	})
	if parsedFontsErr != nil {
		return nil, fmt.Errorf("parse font: %w", parsedFontsErr)
	}

	parsed := parsedRegular
	if bytes.Equal(ttf, gobold.TTF) {
		parsed = parsedBold
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("load font face: %w", err)
	}
	otFace, ok := face.(*opentype.Face)
	if !ok {
		return nil, fmt.Errorf("load font face: unexpected type")
	}
	return otFace, nil
}

func drawCenteredText(img draw.Image, face font.Face, centerX, baselineY int, text string, clr color.Color) {
	width := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: face,
		Dot:  fixed.P(centerX-width/2, baselineY),
	}
	d.DrawString(text)
}
