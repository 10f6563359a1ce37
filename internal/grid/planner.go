package grid

import (
	"fmt"
	"image"

	"github.com/ivlev/slideslicer/internal/slide"
)

// Planner partitions a detected work area into fixed-size full-resolution
// tiles laid out row-major, rows outer and columns inner.
type Planner struct {
	TileWidth  int
	TileHeight int
}

// PlannedTile pairs a grid cell with the preview-level pixels it covers,
// read once so classification never touches the slide again.
type PlannedTile struct {
	Tile    Tile
	Preview *image.NRGBA
}

// Plan scales the work area from preview into full-resolution coordinates
// and emits every grid cell covering it. The grid always spans one extra
// partial-or-full row and column so the remainder of the work area is
// covered.
func (p Planner) Plan(src slide.Source, workArea Box, zoom, maxZoom int) ([]PlannedTile, error) {
	if p.TileWidth <= 0 || p.TileHeight <= 0 {
		return nil, fmt.Errorf("tile size %dx%d is not positive", p.TileWidth, p.TileHeight)
	}

	full := workArea.ScalePow2(maxZoom - zoom)
	cols := full.Width()/p.TileWidth + 1
	rows := full.Height()/p.TileHeight + 1
	level := src.LevelCount() - zoom

	tiles := make([]PlannedTile, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			fr := Box{
				X0: full.X0 + col*p.TileWidth,
				Y0: full.Y0 + row*p.TileHeight,
				X1: full.X0 + (col+1)*p.TileWidth,
				Y1: full.Y0 + (row+1)*p.TileHeight,
			}
			pv := fr.ScalePow2(zoom - maxZoom)

			buf, err := src.ReadRegion(image.Pt(fr.X0, fr.Y0), level, image.Pt(pv.Width(), pv.Height()))
			if err != nil {
				return nil, fmt.Errorf("read preview of tile row %d col %d: %w", row, col, err)
			}
			tiles = append(tiles, PlannedTile{Tile: Tile{FullRes: fr, Preview: pv}, Preview: buf})
		}
	}
	return tiles, nil
}

// GridSize reports the column and row counts Plan will produce for a work
// area already scaled to full resolution.
func (p Planner) GridSize(full Box) (cols, rows int) {
	return full.Width()/p.TileWidth + 1, full.Height()/p.TileHeight + 1
}

// Classify runs the empty-tile heuristic over every planned tile.
func Classify(planned []PlannedTile, th Thresholds) {
	for i := range planned {
		planned[i].Tile.IsContent = th.IsContent(planned[i].Preview)
	}
}

// Tiles strips the preview buffers once classification is done.
func Tiles(planned []PlannedTile) []Tile {
	tiles := make([]Tile, len(planned))
	for i := range planned {
		tiles[i] = planned[i].Tile
	}
	return tiles
}

// AssignSequenceNumbers numbers content tiles 1,2,3,... in a single forward
// scan; background tiles keep the count of content tiles seen so far.
// Returns the total number of content tiles.
func AssignSequenceNumbers(tiles []Tile) int {
	n := 0
	for i := range tiles {
		if tiles[i].IsContent {
			n++
		}
		tiles[i].SequenceNumber = n
	}
	return n
}
