package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pollyhq/pollycoach/internal/services"
)

type TopicHandler struct {
	topics *services.TopicService
}

func NewTopicHandler(topics *services.TopicService) *TopicHandler {
	return &TopicHandler{topics: topics}
}

func (h *TopicHandler) Random(c *gin.Context) {
	t := h.topics.Random(c.Query("difficulty"), c.Query("category"))
	c.JSON(http.StatusOK, t)
}

func (h *TopicHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.topics.Categories()})
}
