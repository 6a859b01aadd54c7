// Package translate wraps a cognitive translation REST API for language
// detection and text translation.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const apiVersion = "3.0"

// Client is a client for the translation API.
type Client struct {
	BaseURL         string
	Key             string
	Region          string
	WorkingLanguage string
	client          *http.Client
}

// NewClient creates a translation client. workingLanguage is the language
// the indexed content is written in; blank text detects as it.
func NewClient(baseURL, key, region, workingLanguage string) *Client {
	return &Client{
		BaseURL:         baseURL,
		Key:             key,
		Region:          region,
		WorkingLanguage: workingLanguage,
		client:          http.DefaultClient,
	}
}

// Passthrough is a stand-in for deployments without a translation endpoint.
// Every text detects as Language and translation returns the text unchanged.
type Passthrough struct {
	Language string
}

// Detect reports the configured language for any text.
func (p Passthrough) Detect(ctx context.Context, text string) (string, error) {
	return p.Language, nil
}

// Translate returns the text unchanged.
func (p Passthrough) Translate(ctx context.Context, text, from, to string) (string, error) {
	return text, nil
}

type textItem struct {
	Text string `json:"text"`
}

type detectResult struct {
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

type translateResult struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Detect returns the language code of the given text. Blank text counts as
// the working language.
func (c *Client) Detect(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return c.WorkingLanguage, nil
	}

	var results []detectResult
	if err := c.post(ctx, "/detect", nil, text, &results); err != nil {
		return "", fmt.Errorf("detect language: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("detect language: empty response")
	}
	return results[0].Language, nil
}

// Translate translates text between two language codes. Blank text and
// identical languages pass through unchanged.
func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	if strings.TrimSpace(text) == "" || from == to {
		return text, nil
	}

	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)

	var results []translateResult
	if err := c.post(ctx, "/translate", params, text, &results); err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if len(results) == 0 || len(results[0].Translations) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}
	return results[0].Translations[0].Text, nil
}

func (c *Client) post(ctx context.Context, path string, params url.Values, text string, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api-version", apiVersion)
	endpoint := fmt.Sprintf("%s%s?%s", c.BaseURL, path, params.Encode())

	body, err := json.Marshal([]textItem{{Text: text}})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.Key)
	req.Header.Set("Ocp-Apim-Subscription-Region", c.Region)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
