package collections

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk form of a collection list:
//
//	collections:
//	  - name: blog
//	    base: blog
//	    pattern: "**/*.md"
//	    schema: {...}
//
// A collection that omits schema inherits the default schema of the same
// name.
type Manifest struct {
	Collections []Collection `yaml:"collections"`
}

// ParseManifest decodes a YAML manifest. Unknown keys are rejected.
func ParseManifest(r io.Reader) ([]Collection, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var manifest Manifest
	if err := decoder.Decode(&manifest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: manifest is empty", ErrCollectionInvalid)
		}
		return nil, fmt.Errorf("%w: decode manifest: %v", ErrCollectionInvalid, err)
	}

	defaults := map[string]Collection{}
	for _, def := range DefaultCollections() {
		defaults[def.Name] = def
	}

	out := make([]Collection, 0, len(manifest.Collections))
	for _, def := range manifest.Collections {
		if len(def.Schema) == 0 {
			fallback, ok := defaults[def.Name]
			if !ok {
				return nil, fmt.Errorf("%w: collection %q has no schema", ErrCollectionInvalid, def.Name)
			}
			def.Schema = fallback.Schema
		}
		out = append(out, Define(def.Name, def.Base, def.Pattern, def.Schema))
	}
	if _, err := compileCollections(out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) ([]Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collection manifest: %w", err)
	}
	return ParseManifest(bytes.NewReader(data))
}
