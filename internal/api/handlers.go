package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Houeta/price-sentinel/internal/models"
	"github.com/Houeta/price-sentinel/internal/repository"
)

// Repository is the read surface the dashboard needs.
type Repository interface {
	ItemSummaries(ctx context.Context) ([]models.ItemSummary, error)
	ProductHistory(ctx context.Context, productID int64) (*models.ProductHistory, error)
}

// Handler serves the read-only dashboard endpoints.
type Handler struct {
	log   *slog.Logger
	repo  Repository
	store string
}

func NewHandler(log *slog.Logger, repo Repository, store string) *Handler {
	return &Handler{log: log, repo: repo, store: store}
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Items handles GET /items: one summary per product with history, latest
// observation against the previous one.
func (h *Handler) Items(c *gin.Context) {
	summaries, err := h.repo.ItemSummaries(c.Request.Context())
	if err != nil {
		h.log.Error("GET /items failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load items"})
		return
	}

	for idx := range summaries {
		summaries[idx].Store = h.store
	}
	if summaries == nil {
		summaries = []models.ItemSummary{}
	}

	c.JSON(http.StatusOK, summaries)
}

// History handles GET /history/:id: the full chronological price history of
// one product.
func (h *Handler) History(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	history, err := h.repo.ProductHistory(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		h.log.Error("GET /history failed", "id", productID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	history.Store = h.store
	if history.History == nil {
		history.History = []models.PricePoint{}
	}

	c.JSON(http.StatusOK, history)
}
