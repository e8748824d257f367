package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-journaling-be/internal/dto"
	"ai-journaling-be/internal/pkg/apperrors"
)

// Client is a thin HTTP SDK for the journaling API, used by the session
// controller and by integration tooling.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: 120 * time.Second})
}

// NewWithHTTPClient allows injecting a custom transport, mainly for tests.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// envelope matches the server's response wrapper.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiError struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (c *Client) SendMessage(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	var res dto.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// StreamMessage opens the SSE endpoint and invokes onEvent for every frame
// until the stream ends. A terminal done or error event is delivered through
// onEvent like any other; transport failures return an error.
func (c *Client) StreamMessage(ctx context.Context, req *dto.ChatRequest, onEvent func(dto.StreamEvent) error) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat/stream", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	// The done frame carries the full assistant message, which can exceed
	// the default line buffer.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event dto.StreamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			return fmt.Errorf("malformed stream frame: %w", err)
		}
		if err := onEvent(event); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (c *Client) ListJournals(ctx context.Context, limit, offset int) (*dto.ListJournalsResponse, error) {
	var res dto.ListJournalsResponse
	path := fmt.Sprintf("/api/journals?limit=%d&offset=%d", limit, offset)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetJournal(ctx context.Context, journalId string) (*dto.JournalDTO, error) {
	var res dto.JournalDTO
	if err := c.do(ctx, http.MethodGet, "/api/journals/"+journalId, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) SaveJournal(ctx context.Context, req *dto.SaveJournalRequest) (*dto.JournalMetadataDTO, error) {
	var res dto.JournalMetadataDTO
	if err := c.do(ctx, http.MethodPost, "/api/journals", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DeleteJournal(ctx context.Context, journalId string) (*dto.DeleteJournalResponse, error) {
	var res dto.DeleteJournalResponse
	if err := c.do(ctx, http.MethodDelete, "/api/journals/"+journalId, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UpdateTitle(ctx context.Context, req *dto.UpdateJournalTitleRequest) (*dto.JournalMetadataDTO, error) {
	var res dto.JournalMetadataDTO
	if err := c.do(ctx, http.MethodPut, "/api/journals/title", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UpdateWriteContent(ctx context.Context, req *dto.UpdateWriteContentRequest) (*dto.JournalMetadataDTO, error) {
	var res dto.JournalMetadataDTO
	if err := c.do(ctx, http.MethodPut, "/api/journals/write-content", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) AskAI(ctx context.Context, req *dto.AskAIRequest) (*dto.AskAIResponse, error) {
	var res dto.AskAIResponse
	if err := c.do(ctx, http.MethodPost, "/api/journals/ask-ai", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// decodeError converts an error response body into a typed AppError so
// callers can branch on status and retryability.
func decodeError(resp *http.Response) error {
	var body apiError
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Message == "" {
		body.Message = resp.Status
		body.Retryable = resp.StatusCode >= 500
	}
	return &apperrors.AppError{
		Code:      resp.StatusCode,
		Message:   body.Message,
		Retryable: body.Retryable,
	}
}
