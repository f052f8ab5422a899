package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/sl"
)

type statsUsecaser interface {
	Stats(ctx context.Context) (domain.WaitlistStats, error)
}

type AdminHandler struct {
	stats  statsUsecaser
	logger *slog.Logger
}

func NewAdminHandler(stats statsUsecaser, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{stats: stats, logger: logger.With("component", "admin_handler")}
}

// GET /admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	s, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "load stats", sl.Err(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"total":    s.Total,
		"verified": s.Verified,
		"unlocked": s.Unlocked,
	})
}
