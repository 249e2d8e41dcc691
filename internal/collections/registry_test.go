package collections

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"
)

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	registry, err := NewRegistry(os.DirFS("testdata/content"), DefaultCollections(), opts...)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return registry
}

func TestBuildExcludesInvalidEntriesAndReportsThem(t *testing.T) {
	registry := newTestRegistry(t)

	snapshot, err := registry.Build(context.Background())
	if snapshot == nil {
		t.Fatalf("expected partial snapshot, got nil (err=%v)", err)
	}
	if !errors.Is(err, ErrEntryInvalid) {
		t.Fatalf("expected ErrEntryInvalid, got %v", err)
	}

	failures := AsBuildErrors(err)
	if len(failures) != 2 {
		t.Fatalf("expected 2 build errors, got %d: %v", len(failures), err)
	}

	missing := failures[0]
	if missing.Collection != "blog" || missing.FilePath != "blog/missing-date.md" {
		t.Fatalf("unexpected first failure: %+v", missing)
	}
	if fields := missing.Fields(); len(fields) != 1 || fields[0] != "pubDate" {
		t.Fatalf("expected pubDate field, got %v", fields)
	}
	if !strings.Contains(missing.Error(), "blog/missing-date.md: pubDate is required") {
		t.Fatalf("unexpected message %q", missing.Error())
	}

	badDate := failures[1]
	if badDate.Collection != "guides" || badDate.FilePath != "guides/bad-date.md" {
		t.Fatalf("unexpected second failure: %+v", badDate)
	}
	if fields := badDate.Fields(); len(fields) != 1 || fields[0] != "pubDate" {
		t.Fatalf("expected pubDate field, got %v", fields)
	}

	blog, err := snapshot.Entries("blog")
	if err != nil {
		t.Fatalf("blog entries: %v", err)
	}
	ids := make([]string, 0, len(blog))
	for _, entry := range blog {
		ids = append(ids, entry.ID)
	}
	if got := strings.Join(ids, ","); got != "2023/looking-back,hello-world,work-in-progress" {
		t.Fatalf("unexpected blog ids %s", got)
	}
	if snapshot.Len("tutorials") != 0 {
		t.Fatalf("expected empty tutorials collection")
	}
}

func TestBuildCoercesFrontMatter(t *testing.T) {
	snapshot, _ := newTestRegistry(t).Build(context.Background())

	entry, err := snapshot.Entry("blog", "looking-back")
	if err != nil {
		t.Fatalf("entry lookup: %v", err)
	}
	want := time.Date(2023, time.December, 30, 0, 0, 0, 0, time.UTC)
	if !entry.PubDate.Equal(want) {
		t.Fatalf("expected pubDate %s, got %s", want, entry.PubDate)
	}
	if entry.Image == nil || entry.Image.URL != "/images/looking-back.png" {
		t.Fatalf("unexpected image %+v", entry.Image)
	}
	if _, ok := entry.Data["pubDate"].(time.Time); !ok {
		t.Fatalf("expected coerced pubDate in data, got %T", entry.Data["pubDate"])
	}
	if entry.Checksum == "" || len(entry.Body) == 0 {
		t.Fatalf("expected checksum and body to be populated")
	}

	insight, err := snapshot.Entry("insights", "shipping-small")
	if err != nil {
		t.Fatalf("derived slug lookup: %v", err)
	}
	if insight.OGImageSrc != "/og/shipping-small.png" {
		t.Fatalf("unexpected og image %q", insight.OGImageSrc)
	}
}

func TestSnapshotLookups(t *testing.T) {
	snapshot, _ := newTestRegistry(t).Build(context.Background())

	if _, err := snapshot.Entries("projects"); !errors.Is(err, ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
	if _, err := snapshot.Entry("blog", "nope"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	if _, err := snapshot.Entry("blog", "2023/looking-back"); err != nil {
		t.Fatalf("expected ID fallback, got %v", err)
	}

	published, err := snapshot.Published("blog")
	if err != nil {
		t.Fatalf("published: %v", err)
	}
	for _, entry := range published {
		if entry.IsDraft {
			t.Fatalf("draft %s leaked into published entries", entry.ID)
		}
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 published posts, got %d", len(published))
	}

	SortByPubDate(published)
	if published[0].ID != "hello-world" {
		t.Fatalf("expected newest first, got %s", published[0].ID)
	}

	names := snapshot.Names()
	if strings.Join(names, ",") != "blog,guides,insights,tutorials" {
		t.Fatalf("unexpected names %v", names)
	}
	if len(snapshot.All()) != 5 {
		t.Fatalf("expected 5 entries overall, got %d", len(snapshot.All()))
	}
}

func TestSnapshotEntriesReturnsCopy(t *testing.T) {
	snapshot, _ := newTestRegistry(t).Build(context.Background())

	entries, _ := snapshot.Entries("blog")
	entries[0].Title = "mutated"

	again, _ := snapshot.Entries("blog")
	if again[0].Title == "mutated" {
		t.Fatalf("snapshot entries must not be shared with callers")
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	registry := newTestRegistry(t, WithConcurrency(2))

	first, _ := registry.Build(context.Background())
	second, _ := registry.Build(context.Background())

	if first.Digest() != second.Digest() {
		t.Fatalf("expected identical digests, got %s and %s", first.Digest(), second.Digest())
	}
}

func TestDigestChangesWithContent(t *testing.T) {
	fsys := fstest.MapFS{
		"notes/a.md": {Data: []byte("---\ntitle: A\n---\nbody")},
	}
	defs := []Collection{Define("notes", "notes", "", map[string]any{
		"type":     "object",
		"required": []any{"title"},
	})}
	registry, err := NewRegistry(fsys, defs)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	before, err := registry.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	fsys["notes/a.md"] = &fstest.MapFile{Data: []byte("---\ntitle: A\n---\nedited body")}
	after, err := registry.Build(context.Background())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if before.Digest() == after.Digest() {
		t.Fatalf("expected digest to change after edit")
	}
}

func TestRebuildInstallsSnapshot(t *testing.T) {
	registry := newTestRegistry(t)
	if registry.Current() != nil {
		t.Fatalf("expected no snapshot before first build")
	}

	snapshot, err := registry.Rebuild(context.Background())
	if !errors.Is(err, ErrEntryInvalid) {
		t.Fatalf("expected entry errors to surface, got %v", err)
	}
	if registry.Current() != snapshot {
		t.Fatalf("expected rebuilt snapshot to be current")
	}
}

func TestRebuildKeepsSnapshotOnCancelledContext(t *testing.T) {
	registry := newTestRegistry(t)
	previous, _ := registry.Rebuild(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := registry.Rebuild(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if registry.Current() != previous {
		t.Fatalf("cancelled rebuild must keep the previous snapshot")
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	builds map[string][2]int
}

func (o *recordingObserver) ObserveBuild(collection string, entries, failures int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.builds == nil {
		o.builds = map[string][2]int{}
	}
	o.builds[collection] = [2]int{entries, failures}
}

func TestBuildReportsTotalsToObserver(t *testing.T) {
	observer := &recordingObserver{}
	registry := newTestRegistry(t, WithObserver(observer))
	_, _ = registry.Build(context.Background())

	if got := observer.builds["blog"]; got != [2]int{3, 1} {
		t.Fatalf("unexpected blog totals %v", got)
	}
	if got := observer.builds["guides"]; got != [2]int{1, 1} {
		t.Fatalf("unexpected guides totals %v", got)
	}
}

func TestNewRegistryRejectsInvalidDefinitions(t *testing.T) {
	fsys := fstest.MapFS{}
	cases := map[string][]Collection{
		"empty":     nil,
		"bad name":  {Define("Blog Posts", "blog", "", PostSchema(nil))},
		"no base":   {Define("blog", "", "", PostSchema(nil))},
		"duplicate": {Define("blog", "a", "", PostSchema(nil)), Define("blog", "b", "", PostSchema(nil))},
		"bad schema": {Define("blog", "blog", "", map[string]any{"type": 42})},
	}
	for name, defs := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewRegistry(fsys, defs); !errors.Is(err, ErrCollectionInvalid) {
				t.Fatalf("expected ErrCollectionInvalid, got %v", err)
			}
		})
	}
}

func TestBuildRejectsUnknownFields(t *testing.T) {
	fsys := fstest.MapFS{
		"guides/extra.md": {Data: []byte("---\ntitle: Extra\ndescription: d\npubDate: 2024-01-01\nslug: extra\nisDraft: false\nauthor: someone\n---\nbody")},
	}
	registry, err := NewRegistry(fsys, DefaultCollections())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	_, err = registry.Build(context.Background())
	failures := AsBuildErrors(err)
	if len(failures) != 1 {
		t.Fatalf("expected one failure, got %v", err)
	}
	if fields := failures[0].Fields(); len(fields) != 1 || fields[0] != "author" {
		t.Fatalf("expected author to be rejected, got %v", fields)
	}
}

func TestCoerceDateLayouts(t *testing.T) {
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{"2024-03-05", "March 5, 2024", "Mar 5, 2024", "2024-03-05T00:00:00Z", "2024-03-05 00:00:00"} {
		got, err := CoerceDate(input)
		if err != nil {
			t.Fatalf("coerce %q: %v", input, err)
		}
		if !got.Equal(want) {
			t.Fatalf("coerce %q: expected %s, got %s", input, want, got)
		}
	}
	if _, err := CoerceDate("someday"); err == nil {
		t.Fatalf("expected error for unparseable date")
	}
	if _, err := CoerceDate(42); err == nil {
		t.Fatalf("expected error for non-string date")
	}
}

func TestBuildCoercesEveryAcceptedDateLayout(t *testing.T) {
	post := func(pubDate string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte("---\ntitle: Post\ndescription: d\npubDate: " + pubDate + "\n---\nbody\n")}
	}
	fsys := fstest.MapFS{
		"tutorials/iso.md":        post("2024-03-01"),
		"tutorials/spaced.md":     post("2024-03-02 10:00:00"),
		"tutorials/local.md":      post(`"2024-03-03T09:30:00"`),
		"tutorials/offset.md":     post("2024-03-04T10:00:00+02:00"),
		"tutorials/long-name.md":  post(`"March 5, 2024"`),
		"tutorials/short-name.md": post("Mar 6, 2024"),
		"tutorials/never.md":      post("someday"),
	}
	registry, err := NewRegistry(fsys, DefaultCollections())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	snapshot, err := registry.Build(context.Background())
	if snapshot == nil {
		t.Fatalf("expected snapshot, got nil (err=%v)", err)
	}
	failures := AsBuildErrors(err)
	if len(failures) != 1 || failures[0].FilePath != "tutorials/never.md" {
		t.Fatalf("expected only tutorials/never.md to fail, got %v", err)
	}
	if fields := failures[0].Fields(); len(fields) != 1 || fields[0] != "pubDate" {
		t.Fatalf("expected pubDate issue, got %v", fields)
	}

	want := map[string]time.Time{
		"iso":        time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		"spaced":     time.Date(2024, time.March, 2, 10, 0, 0, 0, time.UTC),
		"local":      time.Date(2024, time.March, 3, 9, 30, 0, 0, time.UTC),
		"offset":     time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC),
		"long-name":  time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		"short-name": time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC),
	}
	if got := snapshot.Len("tutorials"); got != len(want) {
		t.Fatalf("expected %d tutorials, got %d", len(want), got)
	}
	for id, pub := range want {
		entry, err := snapshot.Entry("tutorials", id)
		if err != nil {
			t.Fatalf("entry %s: %v", id, err)
		}
		if !entry.PubDate.Equal(pub) {
			t.Fatalf("entry %s: expected pubDate %s, got %s", id, pub, entry.PubDate)
		}
	}
}

func TestSnapshotAccessorsReturnIndependentCopies(t *testing.T) {
	registry := newTestRegistry(t)
	snapshot, _ := registry.Build(context.Background())
	if snapshot == nil {
		t.Fatalf("expected snapshot")
	}

	entries, err := snapshot.Entries("blog")
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected blog entries, got %v (%v)", entries, err)
	}
	id := entries[0].ID
	entries[0].Data["title"] = "mutated"
	if len(entries[0].Body) > 0 {
		entries[0].Body[0] = '!'
	}
	if entries[0].Image != nil {
		entries[0].Image.URL = "mutated"
	}

	again, err := snapshot.Entry("blog", id)
	if err != nil {
		t.Fatalf("entry %s: %v", id, err)
	}
	if again.Data["title"] == "mutated" {
		t.Fatalf("Data must not be shared with the snapshot")
	}
	if len(again.Body) > 0 && again.Body[0] == '!' {
		t.Fatalf("Body must not be shared with the snapshot")
	}
	if again.Image != nil && again.Image.URL == "mutated" {
		t.Fatalf("Image must not be shared with the snapshot")
	}
}

func TestBuildErrorNamesFileOnce(t *testing.T) {
	fsys := fstest.MapFS{
		"tutorials/broken.md": {Data: []byte("---\ntitle: [unclosed\n---\nbody\n")},
	}
	registry, err := NewRegistry(fsys, DefaultCollections())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	_, err = registry.Build(context.Background())
	failures := AsBuildErrors(err)
	if len(failures) != 1 {
		t.Fatalf("expected one failure, got %v", err)
	}
	if got := strings.Count(failures[0].Error(), "tutorials/broken.md"); got != 1 {
		t.Fatalf("expected the file path once, got %q", failures[0].Error())
	}
}
