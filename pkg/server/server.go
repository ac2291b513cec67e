package server

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"podcast-rag/pkg/feed"
	"podcast-rag/pkg/logger"
)

// Answerer answers free-form questions about the podcast. Satisfied by
// rag.Engine.
type Answerer interface {
	Answer(ctx context.Context, question string) string
}

// Server exposes the query tools over HTTP. Every tool responds with a
// human-readable string and status 200, including on failure: the callers
// are agent frameworks that expect a string result, not an HTTP fault.
type Server struct {
	engine  Answerer
	catalog feed.Fetcher
	log     *logger.Logger
}

// New creates a query server.
func New(engine Answerer, catalog feed.Fetcher, log *logger.Logger) *Server {
	return &Server{engine: engine, catalog: catalog, log: log}
}

// Router builds the HTTP routes. A non-nil key puts the tool endpoints
// behind bearer authentication; health stays open for probes either way.
func (s *Server) Router(key *rsa.PublicKey) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	tools := router.Group("/tools")
	if key != nil {
		tools.Use(AuthBearer(key))
	}
	tools.POST("/query_podcast", s.queryPodcast)
	tools.GET("/episode_info", s.episodeInfo)
	tools.GET("/episodes", s.listEpisodes)

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := s.log.WithRequest(c.Request)
		c.Next()
		entry.WithField("status", c.Writer.Status()).Info("request handled")
	}
}

type queryRequest struct {
	Question string `json:"question"`
}

func (s *Server) queryPodcast(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusOK, "Error querying podcast: invalid request body")
		return
	}
	if req.Question == "" {
		c.String(http.StatusOK, "Error querying podcast: question is empty")
		return
	}

	c.String(http.StatusOK, s.engine.Answer(c.Request.Context(), req.Question))
}

func (s *Server) episodeInfo(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.String(http.StatusOK, "Error: date parameter is required")
		return
	}

	ep, err := feed.GetEpisodeInfoByDate(s.catalog, date)
	switch {
	case errors.Is(err, feed.ErrInvalidDate):
		c.String(http.StatusOK, fmt.Sprintf("Error: invalid date format: %s", date))
	case errors.Is(err, feed.ErrEpisodeNotFound):
		c.String(http.StatusOK, fmt.Sprintf("No episode found for date %s", date))
	case err != nil:
		c.String(http.StatusOK, fmt.Sprintf("Error: %s", err))
	default:
		body, err := json.Marshal(ep)
		if err != nil {
			c.String(http.StatusOK, fmt.Sprintf("Error: %s", err))
			return
		}
		c.String(http.StatusOK, string(body))
	}
}

func (s *Server) listEpisodes(c *gin.Context) {
	list, err := feed.ListEpisodesInRange(s.catalog, c.Query("beginning"), c.Query("end"))
	if err != nil {
		c.String(http.StatusOK, fmt.Sprintf("Error: %s", err))
		return
	}

	body, err := json.Marshal(list)
	if err != nil {
		c.String(http.StatusOK, fmt.Sprintf("Error: %s", err))
		return
	}
	c.String(http.StatusOK, string(body))
}
