package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-2.0-flash"

	// maxErrorBody bounds how much of a failed response ends up in an Error.
	maxErrorBody = 512
)

// Part is a single piece of content. Only text is supported.
type Part struct {
	Text string `json:"text"`
}

// Content is an ordered list of parts.
type Content struct {
	Parts []Part `json:"parts"`
}

// Request is the body of a generateContent call.
type Request struct {
	Contents []Content `json:"contents"`
}

// ResponsePart is a part of a candidate. Text is nil when the part carries
// something other than text.
type ResponsePart struct {
	Text *string `json:"text,omitempty"`
}

// ResponseContent is the content of a candidate.
type ResponseContent struct {
	Parts []ResponsePart `json:"parts"`
}

// Candidate is one alternative answer for a prompt.
type Candidate struct {
	Content      ResponseContent `json:"content"`
	FinishReason string          `json:"finishReason,omitempty"`
}

// Response is the body returned by a generateContent call.
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// PromptRequest builds a single-turn request carrying prompt as-is.
func PromptRequest(prompt string) Request {
	return Request{
		Contents: []Content{
			{Parts: []Part{{Text: prompt}}},
		},
	}
}

// Client calls the Gemini generateContent endpoint and implements llms.Model.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
}

var _ llms.Model = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the API base URL, e.g. https://host/v1beta.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithModel sets the default model ID.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a Client. The API key is not validated here; a bad key shows
// up as a status error on the first call.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		endpoint:   DefaultEndpoint,
		model:      DefaultModel,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the default model ID.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) url(model string) string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	return c.endpoint + "/models/" + url.PathEscape(model) + ":generateContent?" + q.Encode()
}

// Generate sends req to model (the default model if empty) and decodes the
// reply. Every failure is an *Error.
func (c *Client) Generate(ctx context.Context, model string, req Request) (*Response, error) {
	if model == "" {
		model = c.model
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Kind: KindParse, Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(model), bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("create request: %w", stripURL(err))}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: stripURL(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("read response: %w", err)}
	}

	var result *Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &Error{Kind: KindParse, Err: fmt.Errorf("decode response: %w", err)}
	}
	if result == nil {
		return nil, &Error{Kind: KindParse, Err: errors.New("empty response body")}
	}

	return result, nil
}

// GenerateContent implements llms.Model. Each message becomes one content
// entry holding its text parts; each candidate becomes one choice whose
// Content is the candidate's first part.
func (c *Client) GenerateContent(
	ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	req := Request{Contents: make([]Content, 0, len(messages))}
	for _, msg := range messages {
		var content Content
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				content.Parts = append(content.Parts, Part{Text: p.Text})
			case *llms.TextContent:
				content.Parts = append(content.Parts, Part{Text: p.Text})
			default:
				return nil, fmt.Errorf("unsupported content part %T", part)
			}
		}
		req.Contents = append(req.Contents, content)
	}

	resp, err := c.Generate(ctx, opts.Model, req)
	if err != nil {
		return nil, err
	}

	choices := make([]*llms.ContentChoice, 0, len(resp.Candidates))
	for i, cand := range resp.Candidates {
		text, ok := cand.firstText()
		if !ok && i == 0 {
			return nil, &Error{Kind: KindParse, Err: errors.New("first candidate has no text part")}
		}
		choices = append(choices, &llms.ContentChoice{
			Content:    text,
			StopReason: cand.FinishReason,
		})
	}

	return &llms.ContentResponse{Choices: choices}, nil
}

// firstText returns the text of the candidate's first part.
func (c Candidate) firstText() (string, bool) {
	if len(c.Content.Parts) == 0 || c.Content.Parts[0].Text == nil {
		return "", false
	}
	return *c.Content.Parts[0].Text, true
}

// Call implements llms.Model for a single text prompt.
func (c *Client) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, c, prompt, options...)
}

// stripURL drops the request URL from transport errors so the API key in
// the query string never reaches the logs.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", strings.ToLower(urlErr.Op), urlErr.Err)
	}
	return err
}
