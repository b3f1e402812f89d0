package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amansoomro062/codesign/internal/modules/serializer"
	"github.com/amansoomro062/codesign/internal/modules/service"
)

type StatsHandler struct {
	svc service.StatsService
}

func NewStatsHandler(s service.StatsService) *StatsHandler {
	return &StatsHandler{svc: s}
}

// GetGitHubStats godoc
//
//	@Summary		Repository stats
//	@Description	Stars, forks and contributors of the project repository plus the registered user count
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=service.GitHubStats}
//	@Router			/stats/github [get]
func (h *StatsHandler) GetGitHubStats(c *gin.Context) {
	out, err := h.svc.GitHub(c.Request.Context())
	if err != nil {
		serviceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

// NoRoute answers unknown paths.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
}
