package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/chxlky/trello-cards/database"
	"github.com/chxlky/trello-cards/integrations"
	"github.com/chxlky/trello-cards/internal/listsync"
	"github.com/chxlky/trello-cards/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BoardValidator interface {
	ValidateBoardAccess(ctx context.Context, boardID string, creds models.Credentials) (*models.BoardInfo, error)
}

// Handler serves list state to the panel renderer and target editing to the
// preferences window.
type Handler struct {
	Lists       *listsync.Manager
	Targets     *database.TargetStore
	Boards      BoardValidator
	Credentials func() models.Credentials
	// Trigger schedules a background refresh and reports whether it could.
	Trigger func() bool
}

func (h *Handler) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lists": h.Lists.Views()})
}

func (h *Handler) RefreshHandler(c *gin.Context) {
	if c.Query("wait") != "true" && h.Trigger != nil && h.Trigger() {
		c.JSON(http.StatusAccepted, gin.H{"message": "Refresh scheduled"})
		return
	}

	summary := h.Lists.RefreshAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status":    summary.String(),
		"refreshed": summary.Refreshed,
		"failed":    summary.Failed,
		"lists":     h.Lists.Views(),
	})
}

func (h *Handler) CloseCardHandler(c *gin.Context) {
	cardID := c.Param("id")
	if err := h.Lists.CloseCard(c.Request.Context(), cardID); err != nil {
		zap.L().Warn("Close card request failed", zap.String("cardID", cardID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": models.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Card closed", "id": cardID})
}

func (h *Handler) BoardHandler(c *gin.Context) {
	boardID := integrations.ParseBoardID(c.Param("id"))
	creds := h.Credentials()
	if creds.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please set API key and token first"})
		return
	}

	board, err := h.Boards.ValidateBoardAccess(c.Request.Context(), boardID, creds)
	if err != nil {
		c.JSON(boardErrorStatus(err, http.StatusNotFound), gin.H{"error": models.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, board)
}

// boardErrorStatus maps a board lookup failure to a response code. Trello
// never answering is a gateway problem, anything else uses fallback.
func boardErrorStatus(err error, fallback int) int {
	var transportErr *models.TransportError
	if errors.As(err, &transportErr) && transportErr.Status == 0 {
		return http.StatusBadGateway
	}
	return fallback
}

// bindTarget decodes, normalises and validates a target and checks that its
// board is readable. It writes the error response itself and reports
// whether the caller may continue.
func (h *Handler) bindTarget(c *gin.Context) (models.ListTarget, *models.BoardInfo, bool) {
	var target models.ListTarget
	if err := c.ShouldBindJSON(&target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return target, nil, false
	}
	target = target.Normalize()
	if err := target.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": models.UserMessage(err)})
		return target, nil, false
	}

	creds := h.Credentials()
	if creds.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please set API key and token first"})
		return target, nil, false
	}
	board, err := h.Boards.ValidateBoardAccess(c.Request.Context(), integrations.ParseBoardID(target.BoardID), creds)
	if err != nil {
		c.JSON(boardErrorStatus(err, http.StatusUnprocessableEntity), gin.H{"error": models.UserMessage(err)})
		return target, nil, false
	}
	return target, board, true
}

func (h *Handler) ListTargetsHandler(c *gin.Context) {
	targets, err := h.Targets.List()
	if err != nil {
		zap.L().Error("Error reading target lists", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read target lists"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"targets": targets})
}

// AddTargetHandler checks that the board is readable before storing the
// new target.
func (h *Handler) AddTargetHandler(c *gin.Context) {
	target, board, ok := h.bindTarget(c)
	if !ok {
		return
	}

	saved, err := h.Targets.Add(target)
	switch {
	case errors.Is(err, database.ErrDuplicateTarget):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		zap.L().Error("Error saving target list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save target list"})
		return
	}

	zap.L().Info("Target list added", zap.String("list", saved.ListName), zap.String("board", board.Name))
	c.JSON(http.StatusCreated, gin.H{"target": saved, "board": board})
}

func (h *Handler) UpdateTargetHandler(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target index"})
		return
	}
	target, board, ok := h.bindTarget(c)
	if !ok {
		return
	}

	saved, err := h.Targets.Update(index, target)
	switch {
	case errors.Is(err, database.ErrTargetIndex):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, database.ErrDuplicateTarget):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		zap.L().Error("Error updating target list", zap.Int("index", index), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update target list"})
		return
	}

	zap.L().Info("Target list updated", zap.Int("index", index), zap.String("list", saved.ListName), zap.String("board", board.Name))
	c.JSON(http.StatusOK, gin.H{"target": saved, "board": board})
}

func (h *Handler) DeleteTargetHandler(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target index"})
		return
	}

	if err := h.Targets.Remove(index); err != nil {
		if errors.Is(err, database.ErrTargetIndex) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		zap.L().Error("Error removing target list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove target list"})
		return
	}
	c.Status(http.StatusNoContent)
}
