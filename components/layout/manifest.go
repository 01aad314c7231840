package layout

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// WidgetManifest models a YAML/JSON manifest declaring widget descriptors so
// deployments can extend the registry without recompiling.
type WidgetManifest struct {
	Version string       `json:"version" yaml:"version"`
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Widgets []Descriptor `json:"widgets" yaml:"widgets"`
	Source  string       `json:"-" yaml:"-"`
}

// LoadManifestFile reads a manifest from disk and registers it.
func (r *Registry) LoadManifestFile(path string) (*WidgetManifest, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifest(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifest registers every descriptor from a decoded manifest.
func (r *Registry) LoadManifest(doc *WidgetManifest) error {
	if doc == nil {
		return fmt.Errorf("layout: manifest document is nil")
	}
	for _, d := range doc.Widgets {
		if err := r.Register(d); err != nil {
			return fmt.Errorf("layout: register widget %s from %s: %w", d.ID, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file without registering it.
func ReadManifest(path string) (*WidgetManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("layout: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("layout: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*WidgetManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc WidgetManifest
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("layout: manifest is empty")
		}
		return nil, fmt.Errorf("layout: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *WidgetManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("layout: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Widgets))
	for idx, d := range doc.Widgets {
		if d.ID == "" {
			return fmt.Errorf("layout: manifest widget at index %d is missing id", idx)
		}
		if d.Label == "" {
			return fmt.Errorf("layout: manifest widget %s missing label", d.ID)
		}
		if _, exists := seen[d.ID]; exists {
			return fmt.Errorf("layout: manifest duplicates widget id %s", d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}

func (doc *WidgetManifest) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}

// WriteManifest writes the manifest document to disk as YAML.
func WriteManifest(path string, doc *WidgetManifest) error {
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("layout: create manifest %s: %w", path, err)
	}
	defer f.Close()
	tmp := *doc
	tmp.Source = ""
	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(tmp); err != nil {
		return fmt.Errorf("layout: write manifest: %w", err)
	}
	return nil
}
