package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/path-finder/backend/internal/config"
	"github.com/zhouzirui/path-finder/backend/internal/logger"
)

const (
	defaultTimeout = 60 * time.Second
	// maxToolRounds caps how many times one Generate call feeds tool results back to the model.
	maxToolRounds = 3
)

// GenerationRequest is one call to the generation service.
//
// Single-shot calls leave Messages empty and Contents becomes the user message. Chat calls pass
// the assembled context in Messages (ending with the new user message) and Contents becomes the
// instruction block. A non-nil Search offers the web_search tool to the model and answers its
// calls before the final text is returned.
type GenerationRequest struct {
	Template     string
	ModelID      string
	Contents     string
	OutputSchema *SchemaSpec
	Messages     []*schema.Message
	Search       Searcher
}

// Generator is the boundary every service depends on.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// ModelProvider builds the chat model for a model id.
type ModelProvider func(ctx context.Context, modelID string) (model.BaseChatModel, error)

// Client invokes the generation service through an eino chain per model id.
type Client struct {
	provider ModelProvider
	timeout  time.Duration
	log      *logger.Logger

	mu     sync.Mutex
	chains map[string]compose.Runnable[map[string]any, *schema.Message]
}

// NewClient validates the credential once and returns a client bound to cfg.
func NewClient(cfg config.AIConfig, log *logger.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, &ConfigurationError{Reason: "set ARK_MODEL and ARK_API_KEY (or ARK_ACCESS_KEY and ARK_SECRET_KEY)"}
	}
	return NewClientWithProvider(cfg.NewChatModel, cfg.GenerationTimeout, log), nil
}

// NewClientWithProvider builds a client around an arbitrary model provider.
func NewClientWithProvider(provider ModelProvider, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		provider: provider,
		timeout:  timeout,
		log:      log.With("component", "generation"),
		chains:   make(map[string]compose.Runnable[map[string]any, *schema.Message]),
	}
}

// Warm builds the chains for the given models so credential or model errors show up at startup.
func (c *Client) Warm(ctx context.Context, modelIDs ...string) error {
	for _, id := range modelIDs {
		if _, err := c.chain(ctx, id); err != nil {
			return &ConfigurationError{Reason: fmt.Sprintf("model %q: %v", id, err)}
		}
	}
	return nil
}

// Generate runs one generation and returns the raw text. Without Search that is exactly one
// upstream call; with Search the model may request up to maxToolRounds searches first.
func (c *Client) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	runnable, err := c.chain(ctx, req.ModelID)
	if err != nil {
		return "", &GenerationError{Template: req.Template, Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var opts []compose.Option
	if req.Search != nil {
		opts = append(opts, compose.WithChatModelOption(model.WithTools(SearchTools())))
	}

	system, messages := buildChainInput(req)
	started := time.Now()
	searches := 0

	for {
		msg, err := runnable.Invoke(callCtx, map[string]any{"system": system, "messages": messages}, opts...)
		if err != nil {
			if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("timed out after %s: %w", c.timeout, context.DeadlineExceeded)
			}
			c.log.Warn("generation call failed", "template", req.Template, "model", req.ModelID, "error", err)
			return "", &GenerationError{Template: req.Template, Err: err}
		}

		if msg != nil && len(msg.ToolCalls) > 0 {
			if req.Search == nil {
				c.log.Warn("model requested a tool that was not offered", "template", req.Template, "model", req.ModelID)
				return "", &GenerationError{Template: req.Template, Err: ErrNoText}
			}
			if searches == maxToolRounds {
				c.log.Warn("tool round limit reached", "template", req.Template, "model", req.ModelID)
				return "", &GenerationError{Template: req.Template, Err: ErrToolLoop}
			}
			searches++
			messages = append(slices.Clip(messages), msg)
			messages = append(messages, c.answerToolCalls(callCtx, req, msg.ToolCalls)...)
			continue
		}

		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			c.log.Warn("generation returned no text", "template", req.Template, "model", req.ModelID)
			return "", &GenerationError{Template: req.Template, Err: ErrNoText}
		}

		c.log.Debug("generation completed",
			"template", req.Template,
			"model", req.ModelID,
			"structured", req.OutputSchema != nil,
			"searches", searches,
			"length", len(msg.Content),
			"elapsed", time.Since(started),
		)
		return msg.Content, nil
	}
}

// answerToolCalls runs every requested search and returns one tool message per call. A failed
// search is reported to the model as text so it can still answer from its own knowledge.
func (c *Client) answerToolCalls(ctx context.Context, req GenerationRequest, calls []schema.ToolCall) []*schema.Message {
	out := make([]*schema.Message, 0, len(calls))
	for _, call := range calls {
		if call.Function.Name != SearchToolName {
			out = append(out, schema.ToolMessage(fmt.Sprintf("unknown tool %q", call.Function.Name), call.ID))
			continue
		}

		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil || strings.TrimSpace(args.Query) == "" {
			out = append(out, schema.ToolMessage("search skipped: a non-empty query argument is required", call.ID))
			continue
		}

		results, err := req.Search.Search(ctx, args.Query)
		if err != nil {
			c.log.Warn("web search failed", "template", req.Template, "query", args.Query, "error", err)
			out = append(out, schema.ToolMessage("search failed: "+err.Error(), call.ID))
			continue
		}
		c.log.Debug("web search answered", "template", req.Template, "query", args.Query, "results", len(results))
		out = append(out, schema.ToolMessage(FormatSearchResults(results), call.ID))
	}
	return out
}

func (c *Client) chain(ctx context.Context, modelID string) (compose.Runnable[map[string]any, *schema.Message], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if runnable, ok := c.chains[modelID]; ok {
		return runnable, nil
	}

	chatModel, err := c.provider(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("messages", false),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	c.chains[modelID] = runnable
	return runnable, nil
}

const singleShotSystemPrompt = "You are the assistant of Path Finder, a career and study guidance service for students."

func buildChainInput(req GenerationRequest) (string, []*schema.Message) {
	var system strings.Builder
	messages := req.Messages
	if len(messages) == 0 {
		system.WriteString(singleShotSystemPrompt)
		messages = []*schema.Message{schema.UserMessage(req.Contents)}
	} else {
		system.WriteString(req.Contents)
	}

	if req.OutputSchema != nil {
		system.WriteString("\n\nRespond with a single JSON value that conforms to the following JSON schema. ")
		system.WriteString("Do not wrap it in Markdown and do not add any other text.\n")
		system.WriteString(req.OutputSchema.JSON())
	}

	return system.String(), messages
}

// Unavailable is the Generator used when no credential is configured. Every call fails with
// the startup ConfigurationError so generation routes answer 503 while the rest keeps working.
type Unavailable struct {
	Err *ConfigurationError
}

func (u Unavailable) Generate(context.Context, GenerationRequest) (string, error) {
	if u.Err == nil {
		return "", &ConfigurationError{Reason: "generation service is not configured"}
	}
	return "", u.Err
}
