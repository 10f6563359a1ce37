// Command slideslicer cuts pyramidal whole-slide images into fixed-size
// tissue tiles, with an annotated overview map, a JSON tile manifest and a
// cumulative xlsx report per run.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivlev/slideslicer/internal/config"
	"github.com/ivlev/slideslicer/internal/pipeline"
	"github.com/ivlev/slideslicer/internal/system"
)

var (
	cfgPath    string
	width      int
	height     int
	format     string
	zoom       int
	workers    int
	noExport   bool
	mapQR      bool
	alphaThr   float64
	ratioThr   float64
	fontPaths  []string
	extensions []string
)

func main() {
	system.InitResourceLimits()

	rootCmd := &cobra.Command{
		Use:   "slideslicer [data_folder]",
		Short: "Cut pyramidal slide images into tissue tile datasets",
		Long: `slideslicer scans a data folder for pyramidal slide images, detects the
tissue-bearing area of each one, partitions it into fixed-size tiles and
exports every non-empty tile at full resolution. Each slide also gets an
annotated overview map and a JSON manifest of the full grid; a cumulative
report.xlsx tracks the whole run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: run,
	}

	f := rootCmd.Flags()
	f.StringVarP(&cfgPath, "config", "c", "", "YAML config file")
	f.IntVar(&width, "width", 512, "Tile width in full-resolution pixels")
	f.IntVar(&height, "height", 512, "Tile height in full-resolution pixels")
	f.StringVar(&format, "format", "png", "Tile export format: png, jpg, jpeg, tiff, bmp")
	f.IntVar(&zoom, "zoom", 4, "Preview zoom: pyramid levels below full resolution")
	f.IntVar(&workers, "workers", 0, "Export workers (0 = one per logical CPU)")
	f.BoolVar(&noExport, "no-export", false, "Only draw maps and manifests, skip tile export")
	f.BoolVar(&mapQR, "map-qr", false, "Stamp a QR code of the slide path on each map")
	f.Float64Var(&alphaThr, "alpha-threshold", 0.5, "Minimum opaque-pixel ratio for content tiles")
	f.Float64Var(&ratioThr, "color-ratio-threshold", 0.99, "Blue/red ratio above which a tile is background")
	f.StringSliceVar(&fontPaths, "font", nil, "Annotation font file(s), tried in order")
	f.StringSliceVar(&extensions, "ext", nil, "Slide document extensions (default .pdf)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
	}

	// Flags the user actually set win over the config file.
	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.ImageWidth = width
	}
	if flags.Changed("height") {
		cfg.ImageHeight = height
	}
	if flags.Changed("format") {
		cfg.ExportFormat = format
	}
	if flags.Changed("zoom") {
		cfg.PreviewZoom = zoom
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("no-export") {
		cfg.SaveCutImages = !noExport
	}
	if flags.Changed("map-qr") {
		cfg.MapQR = mapQR
	}
	if flags.Changed("alpha-threshold") {
		cfg.Thresholds.Alpha = alphaThr
	}
	if flags.Changed("color-ratio-threshold") {
		cfg.Thresholds.ColorRatio = ratioThr
	}
	if len(fontPaths) > 0 {
		cfg.FontPaths = fontPaths
	}
	if len(extensions) > 0 {
		cfg.SlideExtensions = extensions
	}
	if len(args) > 0 {
		cfg.DataFolder = args[0]
	}
	if cfg.DataFolder == "" {
		return errors.New("data folder required: pass it as argument or set data_folder in the config")
	}

	if err := initLogging(); err != nil {
		return err
	}
	system.LogMemoryStats()

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	if err := p.Run(); err != nil {
		return err
	}

	fmt.Printf("[+++] Done. Artifacts in %s\n", p.OutDir())
	return nil
}

func initLogging() error {
	if err := os.MkdirAll("logs", 0755); err != nil {
		return err
	}
	f, err := os.OpenFile("logs/slideslicer.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags)
	return nil
}
