package external

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
)

// DefaultModel is used when no chat model is configured.
const DefaultModel = "gpt-4o-mini"

const defaultTimeout = 20 * time.Second

const intentSystemPrompt = `You translate tactical RPG player input into one JSON object:
{"action": "...", "target": "...", "item_id": "...", "skill_id": "...", "parameters": {}, "narrative_flavor": "..."}
Action must be one of: ATTACK, MOVE, SEARCH, TALK, INTERACT, USE, REST, SKILL, ITEM.
Reply with the JSON object only.`

const narratorSystemPrompt = `You are the Oracle, narrator of a grim tactical saga.
Describe only what mechanically happened; two short paragraphs at most. Never invent game state.`

const chroniclerSystemPrompt = `You are a chronicler. Summarize the following events into a single dense paragraph.`

// OpenAIProvider implements NarrativeProvider over the OpenAI API.
type OpenAIProvider struct {
	client  oai.Client
	model   string
	timeout time.Duration
}

var _ NarrativeProvider = (*OpenAIProvider)(nil)

type openAIConfig struct {
	baseURL string
	timeout time.Duration
}

// OpenAIOption is a functional option for OpenAIProvider.
type OpenAIOption func(*openAIConfig)

// WithBaseURL overrides the default API base URL, for self-hosted
// compatible endpoints.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openAIConfig) {
		c.timeout = d
	}
}

// NewOpenAIProvider creates an OpenAIProvider.
func NewOpenAIProvider(apiKey, model string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.InvalidArgument("api key cannot be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &openAIConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o(cfg)
	}

	return &OpenAIProvider{
		client:  oai.NewClient(clientOptions(apiKey, cfg)...),
		model:   model,
		timeout: cfg.timeout,
	}, nil
}

func clientOptions(apiKey string, cfg *openAIConfig) []option.RequestOption {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	return reqOpts
}

// ResolveIntent asks the model for a structured intent. Callers fall
// back to entities.FallbackIntent on error.
func (p *OpenAIProvider) ResolveIntent(ctx context.Context, input string) (*entities.Intent, error) {
	content, err := p.complete(ctx, intentSystemPrompt, input)
	if err != nil {
		return nil, err
	}

	var intent entities.Intent
	if err := json.Unmarshal([]byte(extractJSON(content)), &intent); err != nil {
		return nil, errors.Wrap(err, "failed to parse intent response")
	}
	intent.Action = entities.Action(strings.ToUpper(string(intent.Action)))
	if !intent.Action.Valid() {
		return nil, errors.InvalidArgumentf("model returned unknown action %q", intent.Action)
	}
	return &intent, nil
}

// Narrate renders the turn's prose from the composite context.
func (p *OpenAIProvider) Narrate(ctx context.Context, req *NarrativeRequest) (string, error) {
	if req == nil {
		return "", errors.InvalidArgument("request cannot be nil")
	}

	var b strings.Builder
	b.WriteString("PLAYER INPUT: " + req.PlayerInput + "\n")
	if req.Intent != nil {
		b.WriteString("RESOLVED ACTION: " + string(req.Intent.Action) + "\n")
	}
	if len(req.MechanicsLog) > 0 {
		b.WriteString("MECHANICS:\n" + strings.Join(req.MechanicsLog, "\n") + "\n")
	}
	if len(req.Lore) > 0 {
		b.WriteString("LORE:\n" + strings.Join(req.Lore, "\n") + "\n")
	}
	if req.History != "" {
		b.WriteString("HISTORY:\n" + req.History + "\n")
	}
	if len(req.ActiveQuests) > 0 {
		b.WriteString("ACTIVE QUESTS: " + strings.Join(req.ActiveQuests, "; ") + "\n")
	}
	if req.Position != "" {
		b.WriteString("POSITION: " + req.Position + "\n")
	}

	return p.complete(ctx, narratorSystemPrompt, b.String())
}

// Summarize folds a transcript into the running adventure summary.
func (p *OpenAIProvider) Summarize(ctx context.Context, existingSummary, transcript string) (string, error) {
	prompt := "Existing Summary: " + existingSummary +
		"\n\nRecent Events:\n" + transcript +
		"\n\nDistill the above into a concise chronological summary of our adventure so far. Focus on key plot points and character status."
	return p.complete(ctx, chroniclerSystemPrompt, prompt)
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(system),
			oai.UserMessage(user),
		},
		Temperature: param.NewOpt(0.7),
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.Internal("chat completion returned no choices")
	}

	slog.DebugContext(ctx, "chat completion",
		"model", p.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp.Choices[0].Message.Content, nil
}

// extractJSON strips markdown fences and surrounding prose from a
// model reply that should be a bare JSON object.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
