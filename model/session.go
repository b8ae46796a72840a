package model

import (
	"time"
)

// Session represents one uploaded SOP document under review
type Session struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	Tenant        string    `json:"tenant"`
	DocumentURL   string    `json:"document_url"`
	Status        string    `json:"status"` // pending, processing, completed, failed
	UpstreamToken string    `json:"upstream_token,omitempty"`
	ChunkCount    int       `json:"chunk_count"`
	Cards         []Card    `json:"cards,omitempty"`
	ErrorMsg      string    `json:"error_msg,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SessionStatus constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
