package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/internetdrew/portfolio-v3/internal/collections"
	"github.com/internetdrew/portfolio-v3/internal/generator"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

type contentAPI struct {
	source ContentSource
	parser interfaces.MarkdownParser
	site   generator.Site
	now    func() time.Time
}

type collectionSummary struct {
	Name      string `json:"name"`
	Entries   int    `json:"entries"`
	Published int    `json:"published"`
}

type entryResponse struct {
	Entry collections.Entry `json:"entry"`
	HTML  string            `json:"html"`
}

func (api *contentAPI) snapshot() (*collections.Snapshot, error) {
	snapshot := api.source.Current()
	if snapshot == nil {
		return nil, errContentUnavailable
	}
	return snapshot, nil
}

func (api *contentAPI) listCollections(c *gin.Context) {
	snapshot, err := api.snapshot()
	if err != nil {
		writeError(c, err)
		return
	}
	summaries := make([]collectionSummary, 0, len(snapshot.Names()))
	for _, name := range snapshot.Names() {
		published, err := snapshot.Published(name)
		if err != nil {
			writeError(c, err)
			return
		}
		summaries = append(summaries, collectionSummary{
			Name:      name,
			Entries:   snapshot.Len(name),
			Published: len(published),
		})
	}
	c.JSON(http.StatusOK, gin.H{"collections": summaries})
}

func (api *contentAPI) listEntries(c *gin.Context) {
	snapshot, err := api.snapshot()
	if err != nil {
		writeError(c, err)
		return
	}
	name := c.Param("name")
	var entries []collections.Entry
	if parseBoolQuery(c.Query("drafts"), false) {
		entries, err = snapshot.Entries(name)
	} else {
		entries, err = snapshot.Published(name)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	collections.SortByPubDate(entries)
	c.JSON(http.StatusOK, gin.H{"collection": name, "entries": entries})
}

func (api *contentAPI) getEntry(c *gin.Context) {
	snapshot, err := api.snapshot()
	if err != nil {
		writeError(c, err)
		return
	}
	entry, err := snapshot.Entry(c.Param("name"), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	if entry.IsDraft && !parseBoolQuery(c.Query("drafts"), false) {
		writeError(c, collections.ErrEntryNotFound)
		return
	}
	response := entryResponse{Entry: entry}
	if api.parser != nil {
		rendered, err := entry.HTML(api.parser)
		if err != nil {
			_ = c.Error(err)
			writeError(c, err)
			return
		}
		response.HTML = string(rendered)
	}
	c.JSON(http.StatusOK, response)
}

func (api *contentAPI) sitemap(c *gin.Context) {
	api.artifact(c, "application/xml; charset=utf-8", func(snapshot *collections.Snapshot) (string, error) {
		return generator.BuildSitemap(api.site.BaseURL, snapshot.All(), api.now())
	})
}

func (api *contentAPI) robots(c *gin.Context) {
	api.artifact(c, "text/plain; charset=utf-8", func(*collections.Snapshot) (string, error) {
		return generator.BuildRobots(api.site.BaseURL)
	})
}

// feed serves the site-wide RSS feed, or one collection's feed when
// ?collection= is set.
func (api *contentAPI) feed(c *gin.Context) {
	name := strings.TrimSpace(c.Query("collection"))
	api.artifact(c, "application/rss+xml; charset=utf-8", func(snapshot *collections.Snapshot) (string, error) {
		entries := snapshot.All()
		if name != "" {
			var err error
			if entries, err = snapshot.Entries(name); err != nil {
				return "", err
			}
		}
		return generator.BuildRSS(api.site, name, entries, api.now())
	})
}

func (api *contentAPI) artifact(c *gin.Context, contentType string, render func(*collections.Snapshot) (string, error)) {
	snapshot, err := api.snapshot()
	if err != nil {
		writeError(c, err)
		return
	}
	body, err := render(snapshot)
	if err != nil {
		_ = c.Error(err)
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, []byte(body))
}
