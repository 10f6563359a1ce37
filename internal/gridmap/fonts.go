package gridmap

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/image/font/opentype"
)

// ErrFontUnavailable means none of the configured annotation fonts could be
// loaded. Overview rendering cannot proceed without one; there is no
// further fallback.
var ErrFontUnavailable = errors.New("no annotation font available")

// DefaultFontPaths mirrors the classic lookup order: a system Arial first,
// the Ubuntu bold face as fallback.
func DefaultFontPaths() []string {
	return []string{"arial.ttf", "Ubuntu-B.ttf"}
}

// LoadAnnotationFont parses the first readable TrueType/OpenType font from
// paths, trying each in order.
func LoadAnnotationFont(paths []string) (*opentype.Font, error) {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		fnt, err := opentype.Parse(data)
		if err != nil {
			log.Printf("[!] Font %s is unreadable: %v", p, err)
			continue
		}
		return fnt, nil
	}
	return nil, fmt.Errorf("%w: tried %s", ErrFontUnavailable, strings.Join(paths, ", "))
}
