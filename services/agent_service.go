package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/pathforge/pathforge_backend/models"
)

// AgentService talks to the external AI agent that turns career assessments
// into roadmaps. The agent is an opaque HTTP collaborator; callers decide
// whether a failure aborts their operation.
type AgentService struct {
	baseURL string
	token   string
	client  *http.Client
}

// AgentResponse is the thin envelope the agent answers with
type AgentResponse struct {
	Status  string          `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewAgentService creates an AI agent client from environment configuration
func NewAgentService() *AgentService {
	baseURL := os.Getenv("AI_AGENT_URL")
	token := os.Getenv("AI_AGENT_TOKEN")

	if baseURL == "" {
		log.Printf("WARNING: AI_AGENT_URL is not set; assessment forwarding is disabled")
	}
	if token == "" {
		log.Printf("WARNING: AI_AGENT_TOKEN is not set")
	}

	return &AgentService{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether the agent is configured
func (s *AgentService) Enabled() bool {
	return s.baseURL != ""
}

// SubmitAssessment forwards a stored assessment to the agent
func (s *AgentService) SubmitAssessment(ctx context.Context, assessment *models.CareerAssessment) (*AgentResponse, error) {
	return s.makeRequest(ctx, http.MethodPost, "/api/assessments", assessment)
}

// makeRequest performs an HTTP request against the agent API
func (s *AgentService) makeRequest(ctx context.Context, method, endpoint string, payload interface{}) (*AgentResponse, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("AI agent not configured")
	}

	url := s.baseURL + endpoint

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var agentResp AgentResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &agentResp); err != nil {
			return nil, fmt.Errorf("failed to decode agent response: %w", err)
		}
	}

	return &agentResp, nil
}
