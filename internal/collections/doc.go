// Package collections is the content registry. A collection is a named set of
// markdown documents under one base directory, validated against one JSON
// schema. Build scans every collection and produces an immutable Snapshot that
// page and API code read from; documents failing their schema are reported as
// BuildErrors and never appear in the snapshot.
package collections
