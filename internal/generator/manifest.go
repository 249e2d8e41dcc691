package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const (
	manifestFileName    = ".generator-manifest.json"
	manifestFileVersion = 1
)

// buildManifest records the snapshot digest and artifact checksums of the
// last Write so unchanged content is not rewritten.
type buildManifest struct {
	Version     int               `json:"version"`
	Digest      string            `json:"digest"`
	GeneratedAt time.Time         `json:"generated_at"`
	Files       []manifestFile    `json:"files"`
	index       map[string]string `json:"-"`
}

type manifestFile struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
	Size     int    `json:"size"`
}

func newBuildManifest(digest string, generatedAt time.Time) *buildManifest {
	return &buildManifest{
		Version:     manifestFileVersion,
		Digest:      digest,
		GeneratedAt: generatedAt.UTC(),
		index:       map[string]string{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var manifest buildManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if manifest.Version != manifestFileVersion {
		return nil, nil
	}
	manifest.index = make(map[string]string, len(manifest.Files))
	for _, file := range manifest.Files {
		manifest.index[file.Path] = file.Checksum
	}
	return &manifest, nil
}

func (m *buildManifest) record(path string, content []byte) {
	sum := checksum(content)
	m.index[path] = sum
	m.Files = append(m.Files, manifestFile{Path: path, Checksum: sum, Size: len(content)})
}

func (m *buildManifest) covers(paths []string) bool {
	if m == nil {
		return false
	}
	for _, path := range paths {
		if _, ok := m.index[path]; !ok {
			return false
		}
	}
	return true
}

func (m *buildManifest) marshal() ([]byte, error) {
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path })
	return json.MarshalIndent(m, "", "  ")
}

func checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
