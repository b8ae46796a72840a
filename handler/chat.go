package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vrushabhh97/NormaAI-RAG/model"
	"github.com/vrushabhh97/NormaAI-RAG/service"
)

type ChatHandler struct {
	chat     *service.TranscriptService
	analysis *service.AnalysisService
	store    *service.SessionStore
}

func NewChatHandler(chat *service.TranscriptService, analysis *service.AnalysisService) *ChatHandler {
	return &ChatHandler{
		chat:     chat,
		analysis: analysis,
		store:    service.GetSessionStore(),
	}
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask submits a question about the session's document and waits for the
// answer. Only one question may be in flight per session.
func (h *ChatHandler) Ask(c *gin.Context) {
	session := tenantSessionParam(c, h.store)
	if session == nil {
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question is required"})
		return
	}

	turn, err := h.chat.Ask(c.Request.Context(), session.ID, session.UpstreamToken, req.Question)
	if err != nil {
		if errors.Is(err, service.ErrQuestionPending) {
			c.JSON(http.StatusConflict, gin.H{"error": "A question is already being processed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, turn)
}

// List returns the session's question/answer transcript in order.
func (h *ChatHandler) List(c *gin.Context) {
	session := tenantSessionParam(c, h.store)
	if session == nil {
		return
	}

	turns := h.chat.List(session.ID)
	if turns == nil {
		turns = []model.Turn{}
	}
	c.JSON(http.StatusOK, gin.H{"turns": turns})
}

// UploadReference sends a regulatory reference PDF to the analysis
// service's guideline index.
func (h *ChatHandler) UploadReference(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
		return
	}

	label := c.PostForm("label")
	if label == "" {
		label = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	message, err := h.analysis.UploadReference(c.Request.Context(), header.Filename, label, file)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Reference upload failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
