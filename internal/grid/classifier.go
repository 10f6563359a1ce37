package grid

import "image"

// Thresholds tune the empty-tile heuristic. Both values are stain-dependent
// and come from configuration; use DefaultThresholds as the baseline.
type Thresholds struct {
	// Alpha is the minimum fraction of opaque pixels a tile needs before
	// its color is judged at all.
	Alpha float64 `yaml:"alpha_threshold"`
	// ColorRatio is the blue/red sum ratio above which a tile counts as
	// bluish/white background rather than tissue.
	ColorRatio float64 `yaml:"color_ratio_threshold"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Alpha: 0.5, ColorRatio: 0.99}
}

// IsContent reports whether a preview-resolution tile buffer holds tissue.
// Tiles with too little opaque coverage are background; otherwise the
// blue/red channel ratio separates bluish stain background from reddish
// tissue. Pure function of the buffer and the thresholds.
func (t Thresholds) IsContent(img *image.NRGBA) bool {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return false
	}

	var redSum, blueSum uint64
	opaque := 0
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			redSum += uint64(row[x])
			blueSum += uint64(row[x+2])
			if row[x+3] != 0 {
				opaque++
			}
		}
	}

	if float64(opaque)/float64(total) <= t.Alpha {
		return false
	}
	return float64(blueSum)/float64(redSum+1) <= t.ColorRatio
}
