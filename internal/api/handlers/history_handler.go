package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pollyhq/pollycoach/internal/services"
	"github.com/pollyhq/pollycoach/internal/utils"
)

type HistoryHandler struct {
	history services.HistoryService
}

func NewHistoryHandler(history services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	out, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (h *HistoryHandler) Get(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "HistoryHandler.Get", "missing session_id", nil))
		return
	}

	out, err := h.history.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HistoryHandler) Timeline(c *gin.Context) {
	out, err := h.history.Timeline(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timelines": out})
}

func (h *HistoryHandler) Stats(c *gin.Context) {
	out, err := h.history.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
