package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Eys-55/StillPoint-sub000/internal/models"
)

// ModelMode selects which model configuration a session runs on. The two
// modes differ only in model name and output-length cap.
type ModelMode string

const (
	ModeLite     ModelMode = "lite"
	ModeThinking ModelMode = "thinking"
)

type modelSpec struct {
	name      string
	maxTokens int
}

var modelSpecs = map[ModelMode]modelSpec{
	ModeLite:     {name: "gemini-2.0-flash", maxTokens: 2048},
	ModeThinking: {name: "gemini-2.5-pro", maxTokens: 8192},
}

// Client builds model handles from a profile context. A handle is a pure
// function of its inputs; when the profile context changes the caller builds
// a fresh handle instead of patching the old one.
type Client interface {
	BuildModel(ctx context.Context, profile models.ProfileContext, mode ModelMode) (Model, error)
}

// Model is a configured generative model: it can open stateful chat sessions
// and run one-shot completions (used for summarization).
type Model interface {
	StartSession(history []models.Message) Session
	GenerateOnce(ctx context.Context, prompt string) (string, error)
}

// Session is a stateful chat. It owns the rolling history: the seed history
// is supplied once at StartSession, after which only single turns are sent.
type Session interface {
	StreamMessage(ctx context.Context, text string) (TurnStream, error)
}

// TurnStream is one in-flight streamed reply. Recv yields the cumulative
// assistant text so far and returns io.EOF (with the final text) once the
// model has finished. A stream is finite and not restartable.
type TurnStream interface {
	Recv() (string, error)
	Close()
}

// GeminiClient implements Client on top of the Gemini API.
type GeminiClient struct {
	genaiClient *genai.Client
	logger      *zap.Logger
}

func NewGeminiClient(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{genaiClient: c, logger: logger}, nil
}

func (c *GeminiClient) BuildModel(ctx context.Context, profile models.ProfileContext, mode ModelMode) (Model, error) {
	spec, ok := modelSpecs[mode]
	if !ok {
		return nil, fmt.Errorf("unknown model mode: %q", mode)
	}
	maxTokens := spec.maxTokens
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:    c.genaiClient,
		Model:     spec.name,
		MaxTokens: &maxTokens,
	})
	if err != nil {
		return nil, &GenerationError{Op: "build model", Err: err}
	}
	return &geminiModel{
		chatModel:   cm,
		instruction: BuildSystemInstruction(profile),
		logger:      c.logger,
	}, nil
}

type geminiModel struct {
	chatModel   model.BaseChatModel
	instruction string
	logger      *zap.Logger
}

func (m *geminiModel) StartSession(history []models.Message) Session {
	valid := ValidateHistory(history, m.logger)
	msgs := make([]*schema.Message, 0, len(valid)+1)
	msgs = append(msgs, schema.SystemMessage(m.instruction))
	msgs = append(msgs, FormatHistory(valid)...)
	return &geminiSession{model: m.chatModel, history: msgs}
}

func (m *geminiModel) GenerateOnce(ctx context.Context, prompt string) (string, error) {
	out, err := m.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", &GenerationError{Op: "generate", Err: err}
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", &GenerationError{Op: "generate", Err: errors.New("model returned no text")}
	}
	return out.Content, nil
}

type geminiSession struct {
	model model.BaseChatModel

	mu      sync.Mutex
	history []*schema.Message
}

func (s *geminiSession) StreamMessage(ctx context.Context, text string) (TurnStream, error) {
	s.mu.Lock()
	s.history = append(s.history, schema.UserMessage(text))
	input := make([]*schema.Message, len(s.history))
	copy(input, s.history)
	s.mu.Unlock()

	reader, err := s.model.Stream(ctx, input)
	if err != nil {
		return nil, &GenerationError{Op: "stream", Err: err}
	}
	return &turnStream{reader: reader, session: s}, nil
}

// commit appends the finalized assistant turn to the rolling history so the
// next StreamMessage call carries the full accumulated context.
func (s *geminiSession) commit(text string) {
	s.mu.Lock()
	s.history = append(s.history, schema.AssistantMessage(text, nil))
	s.mu.Unlock()
}
