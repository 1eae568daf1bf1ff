package dictionary

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	seedVersionV1 = "1"
	// SeedVersion exposes the current seed format version for tooling.
	SeedVersion = seedVersionV1
)

// SeedDocument models a YAML file describing dictionaries to preload.
type SeedDocument struct {
	Version      string           `yaml:"version"`
	Dictionaries []SeedDictionary `yaml:"dictionaries"`
	Source       string           `yaml:"-"`
}

// SeedDictionary groups the items of one type.
type SeedDictionary struct {
	Type  string     `yaml:"type"`
	Items []SeedItem `yaml:"items"`
}

// SeedItem is one label/value pair. Sort defaults to the item position.
type SeedItem struct {
	Label       string `yaml:"label"`
	Value       string `yaml:"value"`
	Sort        *int   `yaml:"sort,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ReadSeed loads a seed file from disk.
func ReadSeed(path string) (*SeedDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dictionary: open seed %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeSeed(f)
	if err != nil {
		return nil, fmt.Errorf("dictionary: decode seed %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeSeed reads a seed document from any reader.
func DecodeSeed(r io.Reader) (*SeedDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc SeedDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dictionary: seed is empty")
		}
		return nil, fmt.Errorf("dictionary: parse seed: %w", err)
	}
	if doc.Version == "" {
		doc.Version = seedVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures every entry has a type, label and value, and that no
// (type, value) pair repeats.
func (doc *SeedDocument) Validate() error {
	if doc.Version != seedVersionV1 {
		return fmt.Errorf("dictionary: unsupported seed version %q", doc.Version)
	}
	seen := make(map[string]struct{})
	for idx, dict := range doc.Dictionaries {
		if dict.Type == "" {
			return fmt.Errorf("dictionary: seed dictionary at index %d is missing type", idx)
		}
		for pos, item := range dict.Items {
			if item.Label == "" || item.Value == "" {
				return fmt.Errorf("dictionary: seed %s item %d needs label and value", dict.Type, pos)
			}
			if item.Sort != nil && *item.Sort < 0 {
				return fmt.Errorf("dictionary: seed %s/%s has negative sort", dict.Type, item.Value)
			}
			key := dict.Type + "\x00" + item.Value
			if _, exists := seen[key]; exists {
				return fmt.Errorf("dictionary: seed duplicates %s/%s", dict.Type, item.Value)
			}
			seen[key] = struct{}{}
		}
	}
	return nil
}

// Drafts flattens the document into create payloads.
func (doc *SeedDocument) Drafts() []Draft {
	var drafts []Draft
	for _, dict := range doc.Dictionaries {
		for pos, item := range dict.Items {
			sort := pos + 1
			if item.Sort != nil {
				sort = *item.Sort
			}
			drafts = append(drafts, Draft{
				Type:        dict.Type,
				Label:       item.Label,
				Value:       item.Value,
				Sort:        sort,
				Description: item.Description,
			})
		}
	}
	return drafts
}
