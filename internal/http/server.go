package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	command "github.com/goliatone/go-command"

	"github.com/internetdrew/portfolio-v3/internal/collections"
	contactcmd "github.com/internetdrew/portfolio-v3/internal/commands/contact"
	"github.com/internetdrew/portfolio-v3/internal/generator"
	"github.com/internetdrew/portfolio-v3/internal/logging"
	"github.com/internetdrew/portfolio-v3/internal/metrics"
	"github.com/internetdrew/portfolio-v3/pkg/interfaces"
)

// ContentSource provides the snapshot currently served.
type ContentSource interface {
	Current() *collections.Snapshot
}

// Deps wires the router to the rest of the site.
type Deps struct {
	Content ContentSource
	Contact command.Commander[contactcmd.SendContactCommand]
	Parser  interfaces.MarkdownParser
	Metrics *metrics.Metrics
	Logger  interfaces.Logger
	Site    generator.Site
	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string
	// Now defaults to time.Now and stamps generated feeds.
	Now func() time.Time
}

// NewRouter builds the gin engine. Routes whose dependency is missing are
// not registered.
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	router := gin.New()
	router.Use(
		requestIDMiddleware(),
		recoveryMiddleware(logger),
		loggerMiddleware(logger),
		corsMiddleware(deps.AllowedOrigins),
	)

	router.GET("/healthz", healthHandler(deps.Content))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	if deps.Contact != nil {
		contact := &contactAPI{
			relay:   deps.Contact,
			metrics: deps.Metrics,
			logger:  logger,
		}
		router.POST("/api/contact", contact.send)
		router.POST("/api/contact.json", contact.send)
	}

	if deps.Content != nil {
		content := &contentAPI{
			source: deps.Content,
			parser: deps.Parser,
			site:   deps.Site,
			now:    deps.Now,
		}
		api := router.Group("/api/collections")
		api.GET("", content.listCollections)
		api.GET("/:name", content.listEntries)
		api.GET("/:name/:slug", content.getEntry)

		router.GET("/"+generator.SitemapFile, content.sitemap)
		router.GET("/"+generator.RobotsFile, content.robots)
		router.GET("/"+generator.FeedFile, content.feed)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "not_found"})
	})
	return router
}

type healthResponse struct {
	Status  string `json:"status"`
	Entries int    `json:"entries"`
}

func healthHandler(source ContentSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := healthResponse{Status: "ok"}
		if source != nil {
			snapshot := source.Current()
			if snapshot == nil {
				c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "building"})
				return
			}
			response.Entries = len(snapshot.All())
		}
		c.JSON(http.StatusOK, response)
	}
}
