package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hubal/internal/config"
)

// Gateway turns a room photo and a prompt into a redesigned image.
type Gateway interface {
	Generate(ctx context.Context, imageURL, prompt string) (*Result, error)
}

// Result is the gateway's answer. ImageURL is empty when the model
// replied with text only.
type Result struct {
	ImageURL string
	Text     string
}

// Client calls an OpenAI-compatible chat-completions endpoint that can
// return images.
type Client struct {
	url    string
	apiKey string
	model  string
	http   *http.Client
}

func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		url:    cfg.GatewayURL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type completionRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Modalities []string      `json:"modalities"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Images  []struct {
				ImageURL imageRef `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
}

const instructionTemplate = `Generate a new image of this room redesigned as: %q.

You MUST output an actual image of the redesigned room. Keep the room's structure and dimensions and apply the requested style realistically.`

func (c *Client) Generate(ctx context.Context, imageURL, prompt string) (*Result, error) {
	body, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "image_url", ImageURL: &imageRef{URL: imageURL}},
				{Type: "text", Text: fmt.Sprintf(instructionTemplate, prompt)},
			},
		}},
		Modalities: []string{"image", "text"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai gateway request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return nil, ErrPaymentRequired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(snippet), Elapsed: time.Since(start)}
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ai gateway response: %w", err)
	}

	res := &Result{}
	if len(out.Choices) > 0 {
		msg := out.Choices[0].Message
		res.Text = msg.Content
		if len(msg.Images) > 0 {
			res.ImageURL = msg.Images[0].ImageURL.URL
		}
	}
	return res, nil
}
