package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vrushabhh97/NormaAI-RAG/middleware"
	"github.com/vrushabhh97/NormaAI-RAG/model"
	"github.com/vrushabhh97/NormaAI-RAG/normalize"
	"github.com/vrushabhh97/NormaAI-RAG/pkg/logger"
	"github.com/vrushabhh97/NormaAI-RAG/service"
)

type SessionHandler struct {
	archive  *service.DocumentArchive
	analysis *service.AnalysisService
	store    *service.SessionStore
	actions  *service.ActionService
	chat     *service.TranscriptService
}

func NewSessionHandler(archive *service.DocumentArchive, analysis *service.AnalysisService, actions *service.ActionService, chat *service.TranscriptService) *SessionHandler {
	return &SessionHandler{
		archive:  archive,
		analysis: analysis,
		store:    service.GetSessionStore(),
		actions:  actions,
		chat:     chat,
	}
}

// Upload receives a SOP document, archives it, submits it for analysis
// and normalizes the comparison payload into compliance cards.
func (h *SessionHandler) Upload(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	// Validate file type - PDF and DOCX allowed
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" && ext != ".docx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF and DOCX files are allowed"})
		return
	}

	var expectedContentType string
	if ext == ".pdf" {
		expectedContentType = "application/pdf"
	} else {
		expectedContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = expectedContentType
	} else if ext == ".pdf" && !strings.Contains(contentType, "pdf") {
		// Try to detect from file header for PDF
		buffer := make([]byte, 512)
		if _, err := file.Read(buffer); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
			return
		}
		file.Seek(0, io.SeekStart)

		detectedType := http.DetectContentType(buffer)
		if !strings.Contains(detectedType, "pdf") && detectedType != "application/octet-stream" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
			return
		}
		contentType = "application/pdf"
	} else if ext == ".docx" {
		contentType = expectedContentType
	}

	label := c.PostForm("label")
	if label == "" {
		label = strings.TrimSuffix(header.Filename, ext)
	}

	// Buffer the document once: the archive and the analysis service
	// both need to read it.
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	sessionID := uuid.New().String()
	objectName := fmt.Sprintf("%s/%s/%s", tenant, sessionID, header.Filename)

	if err := h.archive.StoreDocument(c.Request.Context(), objectName, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store document: " + err.Error()})
		return
	}

	documentURL, err := h.archive.GetPresignedURL(c.Request.Context(), objectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate URL: " + err.Error()})
		return
	}

	session := &model.Session{
		ID:          sessionID,
		Filename:    header.Filename,
		Tenant:      tenant,
		DocumentURL: documentURL,
		Status:      model.StatusProcessing,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	h.store.Save(session)

	result, err := h.analysis.SubmitDocument(c.Request.Context(), header.Filename, bytes.NewReader(data), label)
	if err != nil {
		logger.Error(c.Request.Context(), "document analysis failed", "session_id", sessionID, "error", err)
		h.store.UpdateStatus(sessionID, model.StatusFailed, err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "Document analysis failed: " + err.Error()})
		return
	}

	cards, normErr := normalize.Normalize(result.Comparison)
	h.store.UpdateAnalysis(sessionID, result.SessionID, result.Chunks, cards)

	response := gin.H{
		"id":       sessionID,
		"filename": header.Filename,
		"status":   model.StatusCompleted,
		"chunks":   result.Chunks,
		"cards":    cards,
	}
	if normErr != nil {
		logger.Warn(c.Request.Context(), "comparison payload not recognized", "session_id", sessionID, "error", normErr)
		response["warning"] = "Failed to process comparison data format"
	}

	c.JSON(http.StatusOK, response)
}

// List returns all sessions for the current tenant
func (h *SessionHandler) List(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	sessions := h.store.GetByTenant(tenant)

	// Return without cards for list view
	result := make([]gin.H, len(sessions))
	for i, session := range sessions {
		result[i] = gin.H{
			"id":         session.ID,
			"filename":   session.Filename,
			"status":     session.Status,
			"chunks":     session.ChunkCount,
			"created_at": session.CreatedAt.Format(time.RFC3339),
			"updated_at": session.UpdatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, gin.H{"sessions": result})
}

// Get returns a single session with its compliance cards
func (h *SessionHandler) Get(c *gin.Context) {
	session := tenantSessionParam(c, h.store)
	if session == nil {
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetStatus returns the processing status of a session
func (h *SessionHandler) GetStatus(c *gin.Context) {
	session := tenantSessionParam(c, h.store)
	if session == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        session.ID,
		"status":    session.Status,
		"error_msg": session.ErrorMsg,
	})
}

// Delete removes a session along with its action list and transcript
func (h *SessionHandler) Delete(c *gin.Context) {
	session := tenantSessionParam(c, h.store)
	if session == nil {
		return
	}

	if h.archive != nil {
		objectName := fmt.Sprintf("%s/%s/%s", session.Tenant, session.ID, session.Filename)
		if err := h.archive.DeleteDocument(c.Request.Context(), objectName); err != nil {
			logger.Warn(c.Request.Context(), "failed to delete archived document", "session_id", session.ID, "error", err)
		}
	}

	h.store.Delete(session.ID)
	h.actions.Drop(session.ID)
	h.chat.Drop(session.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// tenantSessionParam resolves the :id parameter to a session owned by
// the caller's tenant, writing a 404 response when it does not.
func tenantSessionParam(c *gin.Context, store *service.SessionStore) *model.Session {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	session := store.Get(id)
	if session == nil || session.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil
	}
	return session
}
