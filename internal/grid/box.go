package grid

import "fmt"

// Box is an axis-aligned pixel rectangle: (X0,Y0) top-left inclusive,
// (X1,Y1) bottom-right exclusive.
type Box struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

func (b Box) Width() int  { return b.X1 - b.X0 }
func (b Box) Height() int { return b.Y1 - b.Y0 }

// ScalePow2 multiplies every coordinate by 2^exp. A negative exponent
// downscales with truncation toward zero, matching the rounding of the
// manifest coordinates. Both signs are real paths: the work area is scaled
// up from preview to full resolution, tile boxes are scaled back down.
func (b Box) ScalePow2(exp int) Box {
	s := func(v int) int {
		if exp >= 0 {
			return v << uint(exp)
		}
		return v >> uint(-exp)
	}
	return Box{X0: s(b.X0), Y0: s(b.Y0), X1: s(b.X1), Y1: s(b.Y1)}
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.X0, b.Y0, b.X1, b.Y1)
}

// Tile is one fixed-size cell of the export grid. FullRes is the cell in
// full-resolution coordinates, Preview the same cell in the preview level's
// coordinates. SequenceNumber is assigned after classification: content
// tiles count up from 1, background tiles carry the last assigned number.
type Tile struct {
	SequenceNumber int  `json:"sequence_number"`
	FullRes        Box  `json:"full_res_box"`
	Preview        Box  `json:"preview_box"`
	IsContent      bool `json:"is_content"`
}
