package collections

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// Snapshot is an immutable view of every collection produced by one build.
// Accessors return copies so callers cannot mutate shared state.
type Snapshot struct {
	names   []string
	entries map[string][]Entry
}

func newSnapshot(names []string, entries map[string][]Entry) *Snapshot {
	return &Snapshot{names: slices.Clone(names), entries: entries}
}

// Names lists the declared collections in name order.
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.names)
}

// Len returns the number of valid entries in the named collection.
func (s *Snapshot) Len(name string) int {
	if s == nil {
		return 0
	}
	return len(s.entries[name])
}

// Entries returns every valid entry of the named collection, drafts included.
func (s *Snapshot) Entries(name string) ([]Entry, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	entries, ok := s.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return cloneEntries(entries), nil
}

// Published returns the entries of the named collection that are not drafts.
func (s *Snapshot) Published(name string) ([]Entry, error) {
	entries, err := s.Entries(name)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(entries, func(e Entry) bool { return e.IsDraft }), nil
}

// Entry looks an entry up by slug, falling back to its ID.
func (s *Snapshot) Entry(name, slug string) (Entry, error) {
	entries, err := s.Entries(name)
	if err != nil {
		return Entry{}, err
	}
	key := strings.Trim(strings.TrimSpace(slug), "/")
	for _, entry := range entries {
		if entry.Slug == key {
			return entry, nil
		}
	}
	for _, entry := range entries {
		if entry.ID == key {
			return entry, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s/%s", ErrEntryNotFound, name, slug)
}

// All returns every entry across collections, grouped by collection name.
func (s *Snapshot) All() []Entry {
	if s == nil {
		return nil
	}
	var out []Entry
	for _, name := range s.names {
		out = append(out, cloneEntries(s.entries[name])...)
	}
	return out
}

// Digest hashes collection names, entry IDs and source checksums. Two builds
// over unchanged files produce the same digest.
func (s *Snapshot) Digest() string {
	hash := sha256.New()
	if s != nil {
		for _, name := range s.names {
			fmt.Fprintf(hash, "collection:%s\n", name)
			for _, entry := range s.entries[name] {
				fmt.Fprintf(hash, "%s:%s\n", entry.ID, entry.Checksum)
			}
		}
	}
	return hex.EncodeToString(hash.Sum(nil))
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, entry := range entries {
		out[i] = entry.clone()
	}
	return out
}
