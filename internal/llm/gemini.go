package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiClient implements LLMClient on top of the Gemini SDK.
type geminiClient struct {
	cfg      LLMConfig
	observer Observer
	opts     []option.ClientOption
}

// NewGeminiClient creates an LLMClient for Google Gemini. Extra client
// options (endpoint, HTTP client) are appended after the API key.
func NewGeminiClient(cfg LLMConfig, observer Observer, opts ...option.ClientOption) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &geminiClient{cfg: cfg, observer: observer, opts: opts}
}

func (c *geminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	model := c.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	if c.cfg.GeminiAPIKey == "" {
		c.report(req.Task, model, start, 0, 0, ErrNotConfigured)
		return nil, ErrNotConfigured
	}

	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(c.cfg.GeminiAPIKey)}, c.opts...)...)
	if err != nil {
		c.report(req.Task, model, start, 0, 0, ErrUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer cl.Close()

	temp, maxTok := resolveSampling(c.cfg, req)
	m := cl.GenerativeModel(model)
	m.SetTemperature(float32(temp))
	if maxTok > 0 {
		m.SetMaxOutputTokens(int32(maxTok))
	}
	if req.SystemPrompt != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}

	timeout := time.Duration(c.cfg.TaskTimeout(req.Task)) * time.Millisecond

	var lastErr error
	tried := 0
	for i := 0; i < 1+c.cfg.MaxRetries; i++ {
		tried++
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := m.GenerateContent(attemptCtx, genai.Text(req.UserPrompt))
		cancel()
		if err == nil {
			text := strings.TrimSpace(firstText(resp))
			tokens := 0
			if resp.UsageMetadata != nil {
				tokens = int(resp.UsageMetadata.TotalTokenCount)
			}
			c.report(req.Task, model, start, tried, tokens, nil)
			return &GenerateResponse{
				Text:       text,
				Model:      model,
				LatencyMs:  time.Since(start).Milliseconds(),
				TokensUsed: tokens,
			}, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		time.Sleep(time.Duration(i+1) * 300 * time.Millisecond)
	}

	err = classify(ctx, lastErr)
	c.report(req.Task, model, start, tried, 0, err)
	return nil, err
}

// Available only checks configuration; the SDK has no cheap ping.
func (c *geminiClient) Available(context.Context) bool {
	return c.cfg.GeminiAPIKey != ""
}

func (c *geminiClient) report(task TaskType, model string, start time.Time, attempts, tokens int, err error) {
	c.observer.OnCallComplete(LLMCallEvent{
		Task:       task,
		Provider:   ProviderGemini,
		Model:      model,
		LatencyMs:  time.Since(start).Milliseconds(),
		TokensUsed: tokens,
		Attempts:   attempts,
		Success:    err == nil,
		ErrorCode:  errorCode(err),
	})
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
