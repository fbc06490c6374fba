package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lowlimit/podbot/app/checker"
	"github.com/lowlimit/podbot/app/database"
)

type Handler struct {
	checker *checker.Checker
	repo    *database.AnnouncementRepository
	version string
}

func NewHandler(checkerSvc *checker.Checker, repo *database.AnnouncementRepository, version string) *Handler {
	return &Handler{
		checker: checkerSvc,
		repo:    repo,
		version: version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	})
}

func (h *Handler) GetStatus(c *gin.Context) {
	status := h.checker.Status()

	resp := gin.H{
		"last_podcast_check": status.LastPodcastCheck.Format(time.RFC3339),
		"last_patreon_check": status.LastPatreonCheck.Format(time.RFC3339),
		"seen_episodes":      status.SeenEpisodes,
	}

	if count, err := h.repo.GetCount(); err == nil {
		resp["announcements"] = count
	} else {
		slog.Error("Database error", "operation", "count_announcements", "error", err)
	}

	if recent, err := h.repo.GetRecent(10); err == nil {
		announcements := make([]gin.H, 0, len(recent))
		for _, a := range recent {
			announcements = append(announcements, gin.H{
				"source":       a.Source,
				"title":        a.Title,
				"url":          a.URL,
				"thread_id":    a.ThreadID,
				"announced_at": a.AnnouncedAt.Format(time.RFC3339),
			})
		}
		resp["recent"] = announcements
	} else {
		slog.Error("Database error", "operation", "recent_announcements", "error", err)
	}

	c.JSON(http.StatusOK, resp)
}

// TriggerCheck starts a check cycle. The cycle runs in the background;
// an in-flight cycle makes this a no-op (single-flight).
func (h *Handler) TriggerCheck(c *gin.Context) {
	mode := checker.Mode(c.DefaultQuery("mode", string(checker.ModeFull)))
	switch mode {
	case checker.ModeFull, checker.ModeFeed, checker.ModePage:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown mode"})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := h.checker.Run(ctx, mode); err != nil {
			slog.Error("Triggered check failed", "mode", mode, "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "check started", "mode": string(mode)})
}
