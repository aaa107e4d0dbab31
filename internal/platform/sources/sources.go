// Package sources loads crawl sources from YAML file.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSource = errors.New("invalid source")

type fileSource struct {
	URL      string `yaml:"url"`
	ShopID   string `yaml:"shop_id"`
	Category string `yaml:"category"`
	Active   *bool  `yaml:"active"`
}

type document struct {
	Sources []fileSource `yaml:"sources"`
}

// File is YAML source configuration, re-read on every call so edits apply to the next run.
type File struct {
	path string
}

// NewFile returns new File reading path.
func NewFile(path string) File {
	return File{path: path}
}

// ActiveSources returns active sources of file in file order.
func (f File) ActiveSources(_ context.Context) ([]models.Source, error) {
	sources, err := f.All()
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(sources, func(src models.Source) bool { return !src.IsActive }), nil
}

// All returns every source of file.
func (f File) All() ([]models.Source, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("can't open sources file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// Decode reads and validates sources document.
func Decode(r io.Reader) ([]models.Source, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("can't decode sources: %w", err)
	}

	sources := make([]models.Source, 0, len(doc.Sources))
	for ix, fs := range doc.Sources {
		src, err := fs.toSource(ix + 1)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	return sources, nil
}

func (fs fileSource) toSource(id int) (models.Source, error) {
	src := models.Source{
		ID:       id,
		URL:      strings.TrimSpace(fs.URL),
		ShopID:   strings.TrimSpace(fs.ShopID),
		Category: strings.ToLower(strings.TrimSpace(fs.Category)),
		IsActive: fs.Active == nil || *fs.Active,
	}

	parsed, err := url.Parse(src.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return models.Source{}, fmt.Errorf("%w %d: url %q must be absolute http(s)", ErrInvalidSource, id, src.URL)
	}
	if src.ShopID == "" {
		return models.Source{}, fmt.Errorf("%w %d: shop_id is required", ErrInvalidSource, id)
	}
	if !slices.Contains(models.SourceCategories, src.Category) {
		return models.Source{}, fmt.Errorf("%w %d: unknown category %q", ErrInvalidSource, id, src.Category)
	}

	return src, nil
}
