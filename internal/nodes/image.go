package nodes

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	// decoders for image.Decode
	_ "image/jpeg"

	_ "golang.org/x/image/webp"

	"github.com/openmined/dsmanager/internal/utils"
)

// Dataset entries are written uncompressed; the compress endpoint shrinks them later.
var rawEncoder = &png.Encoder{CompressionLevel: png.NoCompression}

// DecodeFile reads a png, jpeg or webp file as RGBA.
func DecodeFile(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return toRGBA(img), nil
}

// toRGBA returns an opaque-composited RGBA copy anchored at the origin.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

func blackImage(size image.Point) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(out, out.Bounds(), image.Black, image.Point{}, draw.Src)
	return out
}

func writePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := rawEncoder.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	_, err := utils.WriteFileAtomic(path, &buf)
	return err
}
