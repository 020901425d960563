package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"merchflow/backend/internal/settings"
)

var ErrGenerateFailed = fmt.Errorf("gemini: generation failed")

// DynamicGenerator is the chat model client. Like DynamicEmbedder it reads
// the API key and model name from settings on every call.
type DynamicGenerator struct {
	settingsSvc *settings.Service
	client      *genai.Client
	currentKey  string
	mu          sync.RWMutex
	clientOpts  []option.ClientOption
}

func NewDynamicGenerator(svc *settings.Service, opts ...option.ClientOption) *DynamicGenerator {
	return &DynamicGenerator{
		settingsSvc: svc,
		clientOpts:  opts,
	}
}

// Generate runs a single chat turn: system instruction plus user message.
func (g *DynamicGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	s, err := g.settingsSvc.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	if s.GeminiAPIKey == "" || s.ChatModel == "" {
		return "", ErrUnavailable
	}

	client, err := g.getClient(ctx, s.GeminiAPIKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerateFailed, err)
	}

	model := client.GenerativeModel(s.ChatModel)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	res, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerateFailed, err)
	}

	reply := collectText(res)
	if reply == "" {
		return "", fmt.Errorf("%w: empty response", ErrGenerateFailed)
	}
	return reply, nil
}

func collectText(res *genai.GenerateContentResponse) string {
	if res == nil {
		return ""
	}
	var out string
	for _, cand := range res.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				out += string(t)
			}
		}
	}
	return out
}

func (g *DynamicGenerator) getClient(ctx context.Context, key string) (*genai.Client, error) {
	g.mu.RLock()
	if g.client != nil && g.currentKey == key {
		defer g.mu.RUnlock()
		return g.client, nil
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil && g.currentKey == key {
		return g.client, nil
	}

	if g.client != nil {
		if err := g.client.Close(); err != nil {
			slog.Warn("failed to close previous genai client", "error", err)
		}
	}

	opts := append(g.clientOpts, option.WithAPIKey(key))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	g.client = client
	g.currentKey = key
	return client, nil
}
