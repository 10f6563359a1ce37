// Package slide provides read access to pyramidal whole-slide images.
package slide

import (
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
)

// Source is a pyramidal image reader. Level 0 is the highest resolution and
// every following level is progressively downsampled. Region origins are
// always given in level-0 pixel coordinates, region sizes in the target
// level's own pixels; pixels outside the level extent read as transparent.
//
// ReadRegion must be safe for concurrent use: tile export calls it from many
// goroutines against a single Source.
type Source interface {
	LevelCount() int
	LevelDimensions(level int) (width, height int)
	BestLevelForDownsample(downsample float64) int
	ReadRegion(origin image.Point, level int, size image.Point) (*image.NRGBA, error)
	Close() error
}

// BestResolutionLevel is the level whose downsample is closest to 1.0.
func BestResolutionLevel(src Source) int { return src.BestLevelForDownsample(1.0) }

// MaxZoom is the number of zoom steps above the best-resolution level.
func MaxZoom(src Source) int { return src.LevelCount() - BestResolutionLevel(src) }

// FolderName derives the output naming component for a slide: the name of
// the folder holding the slide file (or the slide directory itself), with
// spaces replaced by underscores.
func FolderName(path string) string {
	name := filepath.Base(filepath.Dir(path))
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		name = filepath.Base(path)
	}
	return strings.ReplaceAll(name, " ", "_")
}

// readRegion copies the rectangle starting at min from a decoded level image
// into a fresh buffer of the requested size. Areas outside the level stay
// transparent, matching how slide scanners pad beyond the scanned extent.
func readRegion(level image.Image, min image.Point, size image.Point) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(out, out.Bounds(), level, min, draw.Src)
	return out
}
