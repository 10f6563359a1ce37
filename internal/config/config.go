// Package config holds the run configuration for the slicing pipeline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/slideslicer/internal/grid"
	"github.com/ivlev/slideslicer/internal/gridmap"
)

type Config struct {
	// DataFolder is the root scanned recursively for slides. Output goes
	// to a "sliced" directory next to it.
	DataFolder string `yaml:"data_folder"`

	// ImageWidth and ImageHeight set the full-resolution tile size.
	ImageWidth  int `yaml:"image_width"`
	ImageHeight int `yaml:"image_height"`

	// SaveCutImages gates the tile export phase entirely; the overview
	// map and manifest are always produced.
	SaveCutImages bool   `yaml:"save_cut_images"`
	ExportFormat  string `yaml:"export_format"`

	// PreviewZoom is the number of pyramid levels below full resolution
	// used for work-area detection and classification.
	PreviewZoom int `yaml:"preview_zoom"`

	Thresholds grid.Thresholds `yaml:",inline"`

	// Workers caps the export pool; 0 means one worker per logical CPU.
	Workers int `yaml:"workers"`

	FontPaths []string `yaml:"font_paths"`
	MapQR     bool     `yaml:"map_qr"`

	// SlideExtensions lists the document file types treated as slides in
	// addition to pyramid directories.
	SlideExtensions []string `yaml:"slide_extensions"`

	// BaseDPI is the level-0 render resolution for document-backed slides.
	BaseDPI float64 `yaml:"base_dpi"`
}

func Default() Config {
	return Config{
		ImageWidth:      512,
		ImageHeight:     512,
		SaveCutImages:   true,
		ExportFormat:    "png",
		PreviewZoom:     4,
		Thresholds:      grid.DefaultThresholds(),
		FontPaths:       gridmap.DefaultFontPaths(),
		SlideExtensions: []string{".pdf"},
		BaseDPI:         300,
	}
}

// Load overlays a YAML file onto the defaults; absent keys keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
