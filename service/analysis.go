package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/vrushabhh97/NormaAI-RAG/config"
)

// AnalysisService talks to the upstream analysis service that performs
// the document comparison, question answering, and actionize calls.
// Transport failures are returned as errors; callers apply their own
// fallback rules.
type AnalysisService struct {
	config     *config.AnalysisConfig
	httpClient *http.Client
}

// AnalysisResult is the combined upload-and-compare response. The
// Comparison field is deliberately untyped: its shape varies between
// upstream versions and is handed to the normalizer as-is.
type AnalysisResult struct {
	UploadStatus     string `json:"upload_status"`
	SessionID        string `json:"session_id"`
	Chunks           int    `json:"chunks"`
	Comparison       any    `json:"comparison"`
	ComparisonStatus string `json:"comparison_status,omitempty"`
	ComparisonError  string `json:"comparison_error,omitempty"`
}

type askRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
	Error  string `json:"error,omitempty"`
}

type actionizeRequest struct {
	Issue string `json:"issue"`
}

type actionizeResponse struct {
	Action string `json:"action"`
	Error  string `json:"error,omitempty"`
}

type referenceResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func NewAnalysisService(cfg *config.AnalysisConfig) *AnalysisService {
	return &AnalysisService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// SubmitDocument uploads a SOP document for indexing and comparison.
// The returned Comparison payload is the raw value to normalize.
func (s *AnalysisService) SubmitDocument(ctx context.Context, filename string, file io.Reader, sessionLabel string) (*AnalysisResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.WriteField("session_id", sessionLabel); err != nil {
		return nil, fmt.Errorf("failed to write session field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/upload_to_faiss", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	respBody, err := s.do(req)
	if err != nil {
		return nil, err
	}

	var result AnalysisResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, body: %s", err, string(respBody))
	}
	if result.SessionID == "" {
		return nil, fmt.Errorf("analysis service returned no session id")
	}

	return &result, nil
}

// AskQuestion sends one question against an indexed session and returns
// the answer text.
func (s *AnalysisService) AskQuestion(ctx context.Context, sessionToken, question string) (string, error) {
	respBody, err := s.postJSON(ctx, "/ask_sop", askRequest{SessionID: sessionToken, Question: question})
	if err != nil {
		return "", err
	}

	var result askResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("analysis service error: %s", result.Error)
	}

	return result.Answer, nil
}

// Actionize converts one finding's text into an imperative action
// description.
func (s *AnalysisService) Actionize(ctx context.Context, issue string) (string, error) {
	respBody, err := s.postJSON(ctx, "/make_actionable", actionizeRequest{Issue: issue})
	if err != nil {
		return "", err
	}

	var result actionizeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("analysis service error: %s", result.Error)
	}
	if result.Action == "" {
		return "", fmt.Errorf("analysis service returned no action")
	}

	return result.Action, nil
}

// UploadReference uploads an FDA reference document to the shared
// regulatory index.
func (s *AnalysisService) UploadReference(ctx context.Context, filename, label string, file io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.WriteField("label", label); err != nil {
		return "", fmt.Errorf("failed to write label field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/upload_pdf", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	respBody, err := s.do(req)
	if err != nil {
		return "", err
	}

	var result referenceResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("analysis service error: %s", result.Error)
	}

	return result.Message, nil
}

func (s *AnalysisService) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return s.do(req)
}

func (s *AnalysisService) do(req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
