// Package seed loads elements and standard alloys from YAML documents into
// the reference data store. Loading is idempotent: entries already present
// (by element symbol or alloy slug) are updated in place.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/materials-commons/partdensity/pkg/clog"
	"github.com/materials-commons/partdensity/pkg/decoder"
	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
	"github.com/materials-commons/partdensity/pkg/registry"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultSeed string

type File struct {
	Elements []registry.ElementInput `json:"elements"`
	Alloys   []registry.AlloyInput   `json:"alloys"`
}

// ReferenceStore is the part of registry.ReferenceData a seed is applied to.
type ReferenceStore interface {
	GetElement(symbol string) (*dmodel.Element, error)
	CreateElement(in registry.ElementInput) (*dmodel.Element, error)
	UpdateElement(symbol string, in registry.ElementInput) (*dmodel.Element, error)
	GetAlloyBySlug(slug string) (*dmodel.StandardAlloy, error)
	CreateAlloy(in registry.AlloyInput) (*dmodel.StandardAlloy, error)
	UpdateAlloy(alloyID int, in registry.AlloyInput) (*dmodel.StandardAlloy, error)
}

type Summary struct {
	ElementsCreated int `json:"elements_created"`
	ElementsUpdated int `json:"elements_updated"`
	AlloysCreated   int `json:"alloys_created"`
	AlloysUpdated   int `json:"alloys_updated"`
}

var knownSections = map[string]bool{"elements": true, "alloys": true}

// Parse reads a seed document. Unknown sections or unknown keys inside an
// entry are rejected so typos do not silently drop data.
func Parse(r io.Reader) (*File, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &File{}, nil
		}
		return nil, apperr.Validationf("seed is not valid YAML: %s", err)
	}

	var unknown []string
	for key := range doc {
		if !knownSections[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) != 0 {
		sort.Strings(unknown)
		return nil, apperr.Validationf("unknown seed sections: %s", strings.Join(unknown, ", "))
	}

	var (
		f   File
		err error
	)

	if f.Elements, err = decodeSection[registry.ElementInput](doc, "elements"); err != nil {
		return nil, err
	}

	if f.Alloys, err = decodeSection[registry.AlloyInput](doc, "alloys"); err != nil {
		return nil, err
	}

	return &f, nil
}

func decodeSection[T any](doc map[string]any, section string) ([]T, error) {
	raw, ok := doc[section]
	if !ok || raw == nil {
		return nil, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, apperr.Validationf("seed section %s must be a list", section)
	}

	decoded, err := decoder.DecodeEachStrict[T](items)
	if err != nil {
		return nil, apperr.Validationf("seed section %s: %s", section, err)
	}

	return decoded, nil
}

// Defaults returns the built-in seed of common elements and alloys.
func Defaults() *File {
	f, err := Parse(strings.NewReader(defaultSeed))
	if err != nil {
		panic(fmt.Sprintf("built-in seed is broken: %s", err))
	}
	return f
}

// Apply writes f into store. It stops at the first entry the store refuses.
func Apply(store ReferenceStore, f *File) (Summary, error) {
	var summary Summary

	for _, in := range f.Elements {
		_, err := store.GetElement(in.Symbol)
		switch {
		case err == nil:
			if _, err := store.UpdateElement(in.Symbol, in); err != nil {
				return summary, fmt.Errorf("element %s: %w", in.Symbol, err)
			}
			summary.ElementsUpdated++
		case errors.Is(err, apperr.ErrUnknownElement):
			if _, err := store.CreateElement(in); err != nil {
				return summary, fmt.Errorf("element %s: %w", in.Symbol, err)
			}
			summary.ElementsCreated++
		default:
			return summary, err
		}
	}

	for _, in := range f.Alloys {
		slug := (&dmodel.StandardAlloy{Country: in.Country, Name: in.Name}).BaseSlug()
		existing, err := store.GetAlloyBySlug(slug)
		switch {
		case err == nil:
			if _, err := store.UpdateAlloy(existing.ID, in); err != nil {
				return summary, fmt.Errorf("alloy %s: %w", slug, err)
			}
			summary.AlloysUpdated++
		case errors.Is(err, apperr.ErrUnknownAlloy):
			if _, err := store.CreateAlloy(in); err != nil {
				return summary, fmt.Errorf("alloy %s: %w", slug, err)
			}
			summary.AlloysCreated++
		default:
			return summary, err
		}
	}

	clog.UsingCtx("registry").Infof("seed applied: %d/%d elements created/updated, %d/%d alloys created/updated",
		summary.ElementsCreated, summary.ElementsUpdated, summary.AlloysCreated, summary.AlloysUpdated)

	return summary, nil
}
