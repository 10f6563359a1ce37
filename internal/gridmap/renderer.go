package gridmap

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/slideslicer/internal/grid"
)

var annotation = color.NRGBA{B: 255, A: 255}

const outlineWidth = 2

// Renderer draws the annotated overview map for one slide and writes the
// tile manifest next to it.
type Renderer struct {
	Font       *opentype.Font
	TileWidth  int
	TileHeight int
	// StampQR adds a QR code of the slide source path to the map's
	// bottom-right corner.
	StampQR bool
}

// Render annotates the preview overview with every content tile's box and
// sequence number, crops it to the grid extent and saves both the map image
// and the JSON manifest under outDir. Returns the manifest path.
//
// The crop deliberately spans from the first tile's preview corner to the
// last tile's: in row-major order that is the grid's top-left through
// bottom-right cell, background or not.
func (r *Renderer) Render(overview *image.NRGBA, tiles []grid.Tile, sourcePath, folderName, outDir string) (string, error) {
	if len(tiles) == 0 {
		return "", fmt.Errorf("no tiles to render for %s", sourcePath)
	}

	canvas := imaging.Clone(overview)
	faces := make(map[int]font.Face)
	defer func() {
		for _, f := range faces {
			f.Close()
		}
	}()

	for _, t := range tiles {
		if !t.IsContent {
			continue
		}
		drawOutline(canvas, t.Preview)
		if err := r.drawNumber(canvas, t, faces); err != nil {
			return "", err
		}
	}

	first, last := tiles[0].Preview, tiles[len(tiles)-1].Preview
	cropped := imaging.Crop(canvas, image.Rect(first.X0, first.Y0, last.X1+1, last.Y1+1))

	if r.StampQR {
		stampQR(cropped, sourcePath)
	}

	base := fmt.Sprintf("map_%s_%dx%d", folderName, r.TileWidth, r.TileHeight)
	mapPath := filepath.Join(outDir, base+".png")
	if err := imaging.Save(cropped, mapPath); err != nil {
		return "", fmt.Errorf("save grid map: %w", err)
	}
	log.Printf("Gridmap image saved: %s", mapPath)
	fmt.Printf("Gridmap image saved: %s\n", mapPath)

	manifestPath := filepath.Join(outDir, base+".json")
	if err := writeManifest(manifestPath, tiles); err != nil {
		return "", err
	}
	log.Printf("Gridmap manifest saved: %s", manifestPath)
	return manifestPath, nil
}

// drawNumber renders the tile's sequence number anchored near the preview
// box's top-left corner, with the glyph size scaled to a fifth of the box
// width. Faces are cached per size; every full tile in a grid shares one.
func (r *Renderer) drawNumber(canvas *image.NRGBA, t grid.Tile, faces map[int]font.Face) error {
	size := t.Preview.Width() / 5
	if size < 1 {
		return nil
	}
	face, ok := faces[size]
	if !ok {
		var err error
		face, err = opentype.NewFace(r.Font, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			return fmt.Errorf("build %dpx annotation face: %w", size, err)
		}
		faces[size] = face
	}

	// The anchor is the glyph box's top-left; the drawer wants a baseline.
	ascent := face.Metrics().Ascent.Ceil()
	d := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(annotation),
		Face: face,
		Dot:  fixed.P(t.Preview.X0+size, t.Preview.Y0+size+ascent),
	}
	d.DrawString(strconv.Itoa(t.SequenceNumber))
	return nil
}

func drawOutline(img *image.NRGBA, b grid.Box) {
	for t := 0; t < outlineWidth; t++ {
		for x := b.X0 + t; x < b.X1-t; x++ {
			img.SetNRGBA(x, b.Y0+t, annotation)
			img.SetNRGBA(x, b.Y1-1-t, annotation)
		}
		for y := b.Y0 + t; y < b.Y1-t; y++ {
			img.SetNRGBA(b.X0+t, y, annotation)
			img.SetNRGBA(b.X1-1-t, y, annotation)
		}
	}
}

// stampQR draws a QR code of the slide source path into the bottom-right
// corner so a printed map can be traced back to its slide.
func stampQR(img *image.NRGBA, sourcePath string) {
	const qrSize = 96
	b := img.Bounds()
	if b.Dx() < qrSize*2 || b.Dy() < qrSize*2 {
		return
	}
	code, err := qrcode.New(sourcePath, qrcode.Medium)
	if err != nil {
		log.Printf("[!] QR stamp skipped: %v", err)
		return
	}
	target := image.Rect(b.Max.X-qrSize, b.Max.Y-qrSize, b.Max.X, b.Max.Y)
	draw.Draw(img, target, code.Image(qrSize), image.Point{}, draw.Over)
}

// writeManifest serializes the complete tile grid, content and background
// alike, as a JSON array. The manifest is never touched again once written.
func writeManifest(path string, tiles []grid.Tile) error {
	data, err := json.Marshal(tiles)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a previously written tile manifest.
func ReadManifest(path string) ([]grid.Tile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tiles []grid.Tile
	if err := json.Unmarshal(data, &tiles); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return tiles, nil
}
