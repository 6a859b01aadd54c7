// Package groundedness checks an answer against its grounding sources via a
// content-safety API and redacts ungrounded spans.
package groundedness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultThreshold is the ungrounded fraction at or above which flagged
// spans are redacted.
const DefaultThreshold = 0.25

// Span is one flagged region of the checked text, in byte offsets.
type Span struct {
	Offset int
	Length int
	Reason string
}

// Report is the outcome of a groundedness check.
type Report struct {
	UngroundedDetected bool
	UngroundedFraction float64
	Spans              []Span
}

// Client is a client for the content-safety groundedness detection API.
type Client struct {
	BaseURL    string
	Key        string
	APIVersion string

	// The detection service delegates span reasoning to an LLM deployment.
	LLMEndpoint string
	LLMModel    string

	client *http.Client
}

// NewClient creates a groundedness client.
func NewClient(baseURL, key, apiVersion, llmEndpoint, llmModel string) *Client {
	return &Client{
		BaseURL:     baseURL,
		Key:         key,
		APIVersion:  apiVersion,
		LLMEndpoint: llmEndpoint,
		LLMModel:    llmModel,
		client:      http.DefaultClient,
	}
}

type checkRequest struct {
	Domain           string      `json:"domain"`
	Task             string      `json:"task"`
	Text             string      `json:"text"`
	GroundingSources []string    `json:"groundingSources"`
	Reasoning        bool        `json:"reasoning"`
	Correction       bool        `json:"correction"`
	QnA              qnaSection  `json:"qna"`
	LLMResource      llmResource `json:"llmResource"`
}

type qnaSection struct {
	Query string `json:"query"`
}

type llmResource struct {
	ResourceType   string `json:"resourceType"`
	Endpoint       string `json:"azureOpenAIEndpoint"`
	DeploymentName string `json:"azureOpenAIDeploymentName"`
}

type checkResponse struct {
	UngroundedDetected  bool    `json:"ungroundedDetected"`
	UngroundedPercentage float64 `json:"ungroundedPercentage"`
	UngroundedDetails   []struct {
		Text   string `json:"text"`
		Offset struct {
			UTF8 int `json:"utf8"`
		} `json:"offset"`
		Length struct {
			UTF8 int `json:"utf8"`
		} `json:"length"`
		Reason string `json:"reason"`
	} `json:"ungroundedDetails"`
}

// Check asks the detection service whether the answer is grounded in the
// given sources for the query.
func (c *Client) Check(ctx context.Context, answer, query string, sources []string) (Report, error) {
	payload := checkRequest{
		Domain:           "GENERIC",
		Task:             "QNA",
		Text:             answer,
		GroundingSources: sources,
		Reasoning:        true,
		Correction:       false,
		QnA:              qnaSection{Query: query},
		LLMResource: llmResource{
			ResourceType:   "AzureOpenAI",
			Endpoint:       c.LLMEndpoint,
			DeploymentName: c.LLMModel,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Report{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/contentsafety/text:detectGroundedness?api-version=%s", c.BaseURL, c.APIVersion)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return Report{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return Report{}, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var checkResp checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&checkResp); err != nil {
		return Report{}, fmt.Errorf("failed to decode response: %w", err)
	}

	report := Report{
		UngroundedDetected: checkResp.UngroundedDetected,
		UngroundedFraction: checkResp.UngroundedPercentage,
	}
	for _, d := range checkResp.UngroundedDetails {
		report.Spans = append(report.Spans, Span{
			Offset: d.Offset.UTF8,
			Length: d.Length.UTF8,
			Reason: d.Reason,
		})
	}
	return report, nil
}

// ApplyRedactions removes flagged spans from text when the report's
// ungrounded fraction meets the threshold. Below it, or when nothing was
// detected, the text passes through unchanged.
func ApplyRedactions(text string, report Report, threshold float64) string {
	if !report.UngroundedDetected || report.UngroundedFraction < threshold {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, span := range report.Spans {
		if span.Offset < pos || span.Offset > len(text) {
			continue
		}
		end := span.Offset + span.Length
		if end > len(text) {
			end = len(text)
		}
		b.WriteString(text[pos:span.Offset])
		pos = end
	}
	b.WriteString(text[pos:])
	return b.String()
}
