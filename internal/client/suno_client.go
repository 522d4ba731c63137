package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/songlesson/api/internal/config"
	"github.com/songlesson/api/internal/logging"
)

var ErrMusicNotConfigured = errors.New("music generation is not configured")

// MusicGenerator defines the interface for music rendering jobs
type MusicGenerator interface {
	SubmitJob(ctx context.Context, req *SubmitJobRequest) (string, error)
	JobStatus(ctx context.Context, jobID string) ([]byte, error)
	IsConfigured() bool
}

// SunoClient implements MusicGenerator for the sunoapi.org API
type SunoClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	callbackURL string
	log         logging.Logger
}

// SubmitJobRequest holds the song fields sent to the renderer
type SubmitJobRequest struct {
	Title  string
	Lyrics string
	Style  string
}

type generateRequest struct {
	Prompt       string `json:"prompt"`
	Style        string `json:"style"`
	Title        string `json:"title"`
	CustomMode   bool   `json:"customMode"`
	Instrumental bool   `json:"instrumental"`
	Model        string `json:"model"`
	CallBackURL  string `json:"callBackUrl"`
}

// apiEnvelope is the common response wrapper of the API
type apiEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// NewSunoClient creates a new Suno API client
func NewSunoClient(cfg *config.SunoConfig) *SunoClient {
	return &SunoClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		callbackURL: cfg.CallbackURL,
		log:         logging.New("suno"),
	}
}

// SubmitJob creates a rendering job for the given lyrics and returns the
// provider's task id
func (c *SunoClient) SubmitJob(ctx context.Context, req *SubmitJobRequest) (string, error) {
	if !c.IsConfigured() {
		return "", ErrMusicNotConfigured
	}

	body := &generateRequest{
		Prompt:       req.Lyrics,
		Style:        req.Style,
		Title:        req.Title,
		CustomMode:   true,
		Instrumental: false,
		Model:        c.model,
		CallBackURL:  c.callbackURL,
	}

	env, err := c.post(ctx, "/api/v1/generate", body)
	if err != nil {
		return "", err
	}

	var data struct {
		TaskID string `json:"taskId"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return "", fmt.Errorf("failed to unmarshal task: %w", err)
		}
	}
	if data.TaskID == "" {
		return "", fmt.Errorf("suno API returned no task id")
	}
	return data.TaskID, nil
}

// JobStatus fetches the raw status document of a rendering job. The shape is
// loosely defined by the provider and is normalized by the caller.
func (c *SunoClient) JobStatus(ctx context.Context, jobID string) ([]byte, error) {
	if !c.IsConfigured() {
		return nil, ErrMusicNotConfigured
	}

	endpoint := "/api/v1/generate/record-info?taskId=" + url.QueryEscape(jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	respBody, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	if _, err := decodeEnvelope(respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

// post sends a POST request with JSON body
func (c *SunoClient) post(ctx context.Context, endpoint string, body interface{}) (*apiEnvelope, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	respBody, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(respBody)
}

// doRequest executes an HTTP request and returns the response body
func (c *SunoClient) doRequest(req *http.Request) ([]byte, error) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.log.Debugf("[Suno API] → %s %s", req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnf("[Suno API] ✗ %s %s — request failed: %v", req.Method, req.URL.String(), err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warnf("[Suno API] ✗ %s %s — failed to read response: %v", req.Method, req.URL.String(), err)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("[Suno API] ← %d %s %s — %s", resp.StatusCode, req.Method, req.URL.String(), string(respBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("suno API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// decodeEnvelope rejects responses whose embedded code is not 200
func decodeEnvelope(body []byte) (*apiEnvelope, error) {
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if env.Code != 0 && env.Code != http.StatusOK {
		return nil, fmt.Errorf("suno API error (code %d): %s", env.Code, env.Msg)
	}
	return &env, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *SunoClient) IsConfigured() bool {
	return c.apiKey != ""
}
