package export

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/ivlev/slideslicer/internal/system"
)

// Format-specific save policies:
//
//	png       lossless, zero compression, 300x300 DPI pHYs metadata
//	jpg/jpeg  composited over opaque white, quality 30, no alpha
//	tiff/bmp  encoder defaults
//	other     plain png encode with default settings
const jpegQuality = 30

func saveTile(img *image.NRGBA, path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(format) {
	case "png":
		data, err := encodePNG300DPI(img)
		if err != nil {
			return err
		}
		_, err = f.Write(data)
		return err
	case "jpg", "jpeg":
		flat := flattenWhite(img)
		defer system.PutImage(flat)
		return jpeg.Encode(f, flat, &jpeg.Options{Quality: jpegQuality})
	case "tif", "tiff":
		return tiff.Encode(f, img, nil)
	case "bmp":
		flat := flattenWhite(img)
		defer system.PutImage(flat)
		return bmp.Encode(f, flat)
	default:
		return png.Encode(f, img)
	}
}

// flattenWhite composites the tile onto an opaque white background using its
// alpha channel, for encoders without transparency. Canvases come from the
// shared image pool: every tile of a slide has identical dimensions.
func flattenWhite(img *image.NRGBA) *image.RGBA {
	dst := system.GetImage(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Over)
	return dst
}

// 300 DPI expressed as the pHYs unit, pixels per metre.
const pixelsPerMetre300DPI = 11811

// encodePNG300DPI encodes without compression and splices a pHYs chunk in
// right after IHDR, since image/png has no metadata support of its own.
func encodePNG300DPI(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return injectPHYs(buf.Bytes(), pixelsPerMetre300DPI), nil
}

// injectPHYs inserts a pHYs chunk (x ppm, y ppm, unit=metre) into an encoded
// PNG. IHDR is mandatory and always first: 8 signature bytes, then
// length(4) + type(4) + payload(13) + CRC(4).
func injectPHYs(raw []byte, ppm uint32) []byte {
	const ihdrEnd = 8 + 4 + 4 + 13 + 4

	payload := make([]byte, 9)
	binary.BigEndian.PutUint32(payload[0:4], ppm)
	binary.BigEndian.PutUint32(payload[4:8], ppm)
	payload[8] = 1 // unit: metre

	chunk := make([]byte, 0, 4+4+9+4)
	chunk = binary.BigEndian.AppendUint32(chunk, uint32(len(payload)))
	chunk = append(chunk, "pHYs"...)
	chunk = append(chunk, payload...)
	crc := crc32.NewIEEE()
	crc.Write([]byte("pHYs"))
	crc.Write(payload)
	chunk = binary.BigEndian.AppendUint32(chunk, crc.Sum32())

	out := make([]byte, 0, len(raw)+len(chunk))
	out = append(out, raw[:ihdrEnd]...)
	out = append(out, chunk...)
	out = append(out, raw[ihdrEnd:]...)
	return out
}
