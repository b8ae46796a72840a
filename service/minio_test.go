package service

import (
	"context"
	"strings"
	"testing"

	"github.com/vrushabhh97/NormaAI-RAG/config"
)

func TestNewDocumentArchive(t *testing.T) {
	cfg := &config.MinioConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "sop-documents",
		UseSSL:    false,
	}

	svc, err := NewDocumentArchive(cfg)
	// Client creation does not connect; the first operation does.
	if err != nil {
		t.Fatalf("Unexpected error creating archive: %v", err)
	}
	if svc == nil {
		t.Fatal("Expected non-nil archive")
	}
	if svc.bucket != "sop-documents" {
		t.Errorf("Expected bucket sop-documents, got %s", svc.bucket)
	}
}

func TestNewDocumentArchiveInvalidEndpoint(t *testing.T) {
	cfg := &config.MinioConfig{
		Endpoint:  "://bad endpoint",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "test",
	}

	if _, err := NewDocumentArchive(cfg); err == nil {
		t.Error("Expected error for invalid endpoint")
	}
}

// Test context cancellation
func TestDocumentArchiveWithCancelledContext(t *testing.T) {
	cfg := &config.MinioConfig{
		Endpoint:   "localhost:9000",
		AccessKey:  "test",
		SecretKey:  "test",
		Bucket:     "test",
		UseSSL:     false,
		ExpireDays: 7,
	}

	svc, err := NewDocumentArchive(cfg)
	if err != nil {
		t.Skip("Could not create document archive")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = svc.StoreDocument(ctx, "test", strings.NewReader("test"), 4, "text/plain")
	if err == nil {
		t.Error("Expected error with cancelled context")
	}
}
