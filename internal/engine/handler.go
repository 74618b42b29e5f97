// Package engine exposes the resolution engine's contract over HTTP so
// the series-management layer can call it as a sidecar. The library's own
// CRUD API is not served here; only the engine operations are.
package engine

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Darius662/Readloom-Angular-sub001/internal/cache"
	"github.com/Darius662/Readloom-Angular-sub001/internal/covers"
	"github.com/Darius662/Readloom-Angular-sub001/internal/knowledge"
	"github.com/Darius662/Readloom-Angular-sub001/internal/resolver"
	"github.com/Darius662/Readloom-Angular-sub001/pkg/models"
)

type Handler struct {
	Resolver *resolver.Resolver
	Cache    *cache.Store
	KB       *knowledge.Base
}

func NewHandler(res *resolver.Resolver, store *cache.Store, kb *knowledge.Base) *Handler {
	return &Handler{Resolver: res, Cache: store, KB: kb}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resolve", h.resolve)            // one title
	rg.POST("/resolve/batch", h.resolveBatch) // one session across many titles
	rg.POST("/covers/match", h.matchCovers)
	rg.GET("/cache/stats", h.cacheStats)
}

func (h *Handler) resolve(c *gin.Context) {
	var req models.ResolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	res, err := h.Resolver.Resolve(c.Request.Context(), resolver.NewSession(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, cache.ErrStoreBroken) {
			// broken storage, not "no data"; callers can tell the two apart
			c.JSON(status, gin.H{"error": "storage broken"})
			return
		}
		c.JSON(status, gin.H{"error": "resolution failed"})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) resolveBatch(c *gin.Context) {
	var reqs []models.ResolutionRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess := resolver.NewSession()
	results := make([]models.ResolutionResult, 0, len(reqs))
	for _, req := range reqs {
		if strings.TrimSpace(req.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		res, err := h.Resolver.Resolve(c.Request.Context(), sess, req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "resolution failed"})
			return
		}
		results = append(results, res)
	}

	c.JSON(http.StatusOK, gin.H{
		"session": sess.ID,
		"results": results,
	})
}

type matchRequest struct {
	Candidates []models.CoverCandidate `json:"candidates"`
	Locals     []models.LocalVolume    `json:"locals"`
}

func (h *Handler) matchCovers(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, covers.Match(req.Candidates, req.Locals))
}

func (h *Handler) cacheStats(c *gin.Context) {
	st, err := h.Cache.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	seed, overlay := h.KB.Len()

	c.JSON(http.StatusOK, gin.H{
		"cache":             st,
		"knowledge_seed":    seed,
		"knowledge_overlay": overlay,
	})
}
