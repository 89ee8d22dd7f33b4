// Package imageprep decodes uploaded images, shrinks them to fit the vision
// model's input limit and re-encodes them as PNG.
package imageprep

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/satriahrh/roastme/domain"
)

// OutputMIMEType is the format every prepared image is re-encoded to.
const OutputMIMEType = "image/png"

// DefaultMaxDimension bounds the longest side sent upstream.
const DefaultMaxDimension = 1024

// Prepared is an image ready to send to the vision model
type Prepared struct {
	Data           []byte
	MIMEType       string
	Width          int
	Height         int
	OriginalWidth  int
	OriginalHeight int
	SourceFormat   string
}

// Resized reports whether the image was scaled down.
func (p *Prepared) Resized() bool {
	return p.Width != p.OriginalWidth || p.Height != p.OriginalHeight
}

// Preparer turns raw upload bytes into a bounded PNG
type Preparer struct {
	maxDimension int
}

func NewPreparer(maxDimension int) *Preparer {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Preparer{maxDimension: maxDimension}
}

// DecodeBase64 decodes a base64 image field, dropping any data-URL prefix
// such as "data:image/png;base64,".
func DecodeBase64(field string) ([]byte, error) {
	field = strings.TrimSpace(field)
	if i := strings.IndexByte(field, ','); i >= 0 {
		field = field[i+1:]
	}
	if field == "" {
		return nil, domain.ErrNoImage
	}

	data, err := base64.StdEncoding.DecodeString(field)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed base64: %v", domain.ErrInvalidImage, err)
	}
	return data, nil
}

// Prepare decodes raw, resizes it when it exceeds the maximum dimension and
// encodes the result as PNG.
func (p *Preparer) Prepare(raw []byte) (*Prepared, error) {
	if len(raw) == 0 {
		return nil, domain.ErrNoImage
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	fitted := FitWithin(img, p.maxDimension)

	var buf bytes.Buffer
	if err := png.Encode(&buf, fitted); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	out := fitted.Bounds()
	return &Prepared{
		Data:           buf.Bytes(),
		MIMEType:       OutputMIMEType,
		Width:          out.Dx(),
		Height:         out.Dy(),
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
		SourceFormat:   format,
	}, nil
}

// FitWithin scales img uniformly so neither side exceeds maxDimension. Images
// already within bounds are returned unchanged.
func FitWithin(img image.Image, maxDimension int) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	nw, nh := FittedSize(w, h, maxDimension)
	if nw == w && nh == h {
		return img
	}
	return imaging.Resize(img, nw, nh, imaging.Lanczos)
}

// FittedSize computes the target dimensions for FitWithin.
func FittedSize(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}

	scale := math.Min(float64(maxDimension)/float64(width), float64(maxDimension)/float64(height))
	nw := int(math.Round(float64(width) * scale))
	nh := int(math.Round(float64(height) * scale))
	return max(nw, 1), max(nh, 1)
}
