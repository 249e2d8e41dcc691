package generator

import (
	"errors"
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/internetdrew/portfolio-v3/internal/collections"
)

const (
	defaultBaseURL = "http://localhost"

	routeGroup      = "site"
	routeHome       = "home"
	routeEntry      = "entry"
	routeCollection = "collection"
	routeFeed       = "feed"
	routeSitemap    = "sitemap"
)

// Site carries the metadata shared by every artifact.
type Site struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	BaseURL     string `json:"baseUrl"`
}

func (s Site) baseURL() string {
	trimmed := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if trimmed == "" {
		return defaultBaseURL
	}
	return trimmed
}

func (s Site) title() string {
	if title := strings.TrimSpace(s.Title); title != "" {
		return title
	}
	return s.baseURL()
}

// Links builds absolute URLs for site routes.
type Links struct {
	group *urlkit.Group
}

// NewLinks registers the site routes under baseURL.
func NewLinks(baseURL string) (*Links, error) {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    routeGroup,
				BaseURL: Site{BaseURL: baseURL}.baseURL(),
				Paths: map[string]string{
					routeHome:       "/",
					routeCollection: "/:collection",
					routeEntry:      "/:collection/:slug",
					routeFeed:       "/:collection/rss.xml",
					routeSitemap:    "/sitemap.xml",
				},
			},
		},
	})
	group, err := lookupGroup(manager, routeGroup)
	if err != nil {
		return nil, err
	}
	return &Links{group: group}, nil
}

// Home returns the site root URL.
func (l *Links) Home() (string, error) {
	return l.build(routeHome, nil)
}

// Collection returns the index URL of a collection.
func (l *Links) Collection(name string) (string, error) {
	return l.build(routeCollection, map[string]any{"collection": name})
}

// Entry returns the canonical URL of an entry.
func (l *Links) Entry(entry collections.Entry) (string, error) {
	if strings.TrimSpace(entry.Slug) == "" {
		return "", fmt.Errorf("generator: entry %s/%s has no slug", entry.Collection, entry.ID)
	}
	return l.build(routeEntry, map[string]any{
		"collection": entry.Collection,
		"slug":       entry.Slug,
	})
}

// Feed returns the RSS URL of a collection.
func (l *Links) Feed(name string) (string, error) {
	return l.build(routeFeed, map[string]any{"collection": name})
}

// Sitemap returns the sitemap URL.
func (l *Links) Sitemap() (string, error) {
	return l.build(routeSitemap, nil)
}

func (l *Links) build(route string, params map[string]any) (url string, err error) {
	if l == nil || l.group == nil {
		return "", errors.New("generator: links not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: route %q: %v", route, rec)
		}
	}()
	builder := l.group.Builder(route)
	for key, value := range params {
		builder.WithParam(key, value)
	}
	return builder.Build()
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	if group == nil {
		return nil, fmt.Errorf("generator: route group %q not found", name)
	}
	return group, nil
}
