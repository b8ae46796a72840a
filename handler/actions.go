package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vrushabhh97/NormaAI-RAG/model"
	"github.com/vrushabhh97/NormaAI-RAG/service"
)

type ActionHandler struct {
	actions *service.ActionService
	store   *service.SessionStore
}

func NewActionHandler(actions *service.ActionService) *ActionHandler {
	return &ActionHandler{
		actions: actions,
		store:   service.GetSessionStore(),
	}
}

// Convert turns the findings of one compliance card into action items.
// A compliant card has nothing to convert and yields an informational
// message instead of items.
func (h *ActionHandler) Convert(c *gin.Context) {
	session := tenantSessionParam(c, h.store)
	if session == nil {
		return
	}

	cardID, err := strconv.Atoi(c.Param("cardID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card id"})
		return
	}

	card := h.store.FindCard(session.ID, cardID)
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}

	created := h.actions.Convert(c.Request.Context(), session.ID, card)
	if created == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "No potential issues found for this item",
			"items":   []any{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": created})
}

// List returns the session's action items in creation order.
func (h *ActionHandler) List(c *gin.Context) {
	session := tenantSessionParam(c, h.store)
	if session == nil {
		return
	}

	items := h.actions.List(session.ID)
	if items == nil {
		items = []model.ActionItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Toggle flips the completion state of one action item.
func (h *ActionHandler) Toggle(c *gin.Context) {
	session := tenantSessionParam(c, h.store)
	if session == nil {
		return
	}

	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	item, ok := h.actions.Toggle(session.ID, itemID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Action item not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// Export writes the session's action list as a CSV download.
func (h *ActionHandler) Export(c *gin.Context) {
	session := tenantSessionParam(c, h.store)
	if session == nil {
		return
	}

	items := h.actions.List(session.ID)

	filename := fmt.Sprintf("fda-compliance-action-items-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Item", "Status"})
	for _, item := range items {
		status := "Pending"
		if item.Completed {
			status = "Completed"
		}
		_ = w.Write([]string{item.Text, status})
	}
	w.Flush()
}
