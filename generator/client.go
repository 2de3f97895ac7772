// Package generator is the client for the external AI blog-generation
// service. The service accepts a topic and tone and answers either a
// structured blog payload or a plain chat reply; callers get one attempt and
// must surface their own fallback on failure.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	ToneProfessional = "professional"
	ToneCasual       = "casual"
	ToneInformative  = "informative"
	ToneEngaging     = "engaging"
)

func ValidTone(tone string) bool {
	switch tone {
	case ToneProfessional, ToneCasual, ToneInformative, ToneEngaging:
		return true
	}
	return false
}

type Request struct {
	Topic string `json:"topic"`
	Tone  string `json:"tone"`
}

// Result is the normalized reply. Structured is true when the service
// returned a full blog payload; otherwise only Response carries text.
type Result struct {
	Structured      bool   `json:"structured"`
	Status          string `json:"status,omitempty"`
	Title           string `json:"title,omitempty"`
	Content         string `json:"content,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	BlogPreview     string `json:"blog_preview,omitempty"`
	Response        string `json:"response,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Generate posts the topic to the service. One attempt, no retry.
func (c *Client) Generate(ctx context.Context, topic, tone string) (*Result, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("generator service not configured")
	}

	body, err := json.Marshal(Request{Topic: topic, Tone: tone})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("generator service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return parseReply(raw)
}

// parseReply accepts both reply shapes: the structured blog payload and the
// plain {response|message|content} chat answer.
func parseReply(raw []byte) (*Result, error) {
	var structured struct {
		Status          string `json:"status"`
		Title           string `json:"title"`
		Content         string `json:"content"`
		MetaDescription string `json:"meta_description"`
		BlogPreview     string `json:"blog_preview"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil && structured.Title != "" && structured.Content != "" {
		return &Result{
			Structured:      true,
			Status:          structured.Status,
			Title:           structured.Title,
			Content:         structured.Content,
			MetaDescription: structured.MetaDescription,
			BlogPreview:     structured.BlogPreview,
		}, nil
	}

	var plain map[string]interface{}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, fmt.Errorf("unrecognized generator reply: %w", err)
	}
	for _, key := range []string{"response", "message", "content"} {
		if text, ok := plain[key].(string); ok && text != "" {
			return &Result{Response: text}, nil
		}
	}
	return nil, fmt.Errorf("generator reply carried no text")
}
