package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Eys-55/StillPoint-sub000/internal/events"
	"github.com/Eys-55/StillPoint-sub000/internal/llm/client"
	"github.com/Eys-55/StillPoint-sub000/internal/models"
	"github.com/Eys-55/StillPoint-sub000/internal/repositories"
)

// Guard errors for session transitions. Callers surface these as a one-line
// notice at most; none of them invalidate the session.
var (
	ErrSessionNotReady   = errors.New("chat session is not ready")
	ErrSendInFlight      = errors.New("a send is already in flight")
	ErrTemporarySession  = errors.New("temporary sessions cannot be summarized")
	ErrEmptyConversation = errors.New("conversation has no messages to summarize")
)

// assistantErrorText replaces the streamed reply when generation fails.
// Whatever partial text had accumulated is discarded in favor of it.
const assistantErrorText = "Sorry, I ran into a problem while replying. Please try sending that again."

// SessionState is the lifecycle position of a ChatSession.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateLoading
	StateReady
	StateSending
)

// ChatService creates chat sessions. All collaborators are injected so tests
// can substitute stub backends.
type ChatService struct {
	conversations  repositories.ConversationRepository
	llmClient      client.Client
	profileContext ProfileContextService
	logger         *zap.Logger
	ctx            context.Context
}

func NewChatService(conversations repositories.ConversationRepository, llmClient client.Client, profileContext ProfileContextService, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		conversations:  conversations,
		llmClient:      llmClient,
		profileContext: profileContext,
		logger:         logger,
	}
}

func (s *ChatService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// ChatSession is one open chat view's state: the authoritative in-memory
// message list, the model session seeded once with validated history, and a
// single persistence worker that applies writes in submission order.
type ChatSession struct {
	service   *ChatService
	userID    string
	temporary bool

	mu             sync.Mutex
	state          SessionState
	conversationID string
	liveMessages   []models.Message
	model          client.Model
	modelSession   client.Session

	persistCh chan persistOp
	wg        sync.WaitGroup
	closed    bool
	closeOnce sync.Once
}

type persistOp struct {
	conversationID string
	updates        map[string]interface{}
	done           chan error // nil for fire-and-forget mirrors
}

// StartSession opens a chat session for userID. A non-empty conversationID
// loads that conversation's history; if the record no longer exists an empty
// one is recreated in its place. Temporary sessions never touch the store
// and never acquire a conversation id.
func (s *ChatService) StartSession(ctx context.Context, userID, conversationID string, temporary bool, mode client.ModelMode) (*ChatSession, error) {
	userID = strings.TrimSpace(userID)
	conversationID = strings.TrimSpace(conversationID)
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if temporary && conversationID != "" {
		return nil, fmt.Errorf("temporary sessions cannot load an existing conversation")
	}

	sess := &ChatSession{
		service:   s,
		userID:    userID,
		temporary: temporary,
		state:     StateLoading,
		persistCh: make(chan persistOp, 16),
	}
	sess.wg.Add(1)
	go sess.persistLoop()

	var history []models.Message
	if conversationID != "" {
		conv, err := s.conversations.Get(userID, conversationID)
		if err != nil {
			sess.Close()
			return nil, fmt.Errorf("load conversation: %w", err)
		}
		if conv == nil {
			// The selected conversation is gone; recreate it empty so the
			// view still has a record to write into.
			id, err := s.conversations.Create(userID, &models.Conversation{})
			if err != nil {
				sess.Close()
				return nil, fmt.Errorf("recreate conversation: %w", err)
			}
			sess.conversationID = id
		} else {
			history, err = conv.Messages()
			if err != nil {
				sess.Close()
				return nil, fmt.Errorf("decode stored messages: %w", err)
			}
			sess.conversationID = conv.ID
		}
	}

	// The model must not be built until both profile sources have resolved;
	// Build returns an error rather than a partial context.
	profile, err := s.profileContext.Build(userID)
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("build profile context: %w", err)
	}
	mdl, err := s.llmClient.BuildModel(ctx, profile, mode)
	if err != nil {
		sess.Close()
		return nil, err
	}

	sess.mu.Lock()
	sess.model = mdl
	sess.modelSession = mdl.StartSession(history)
	sess.liveMessages = history
	sess.state = StateReady
	sess.mu.Unlock()
	return sess, nil
}

// Submit sends one user turn. Empty (after trim) input is a no-op. A second
// Submit while a send is in flight returns ErrSendInFlight without touching
// state, which keeps sends serialized per session.
func (c *ChatSession) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionNotReady
	}
	if c.state == StateSending {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	if c.state != StateReady || c.modelSession == nil {
		c.mu.Unlock()
		return ErrSessionNotReady
	}
	c.state = StateSending
	c.liveMessages = append(c.liveMessages, models.Message{Role: models.RoleUser, Text: text})
	firstSend := c.conversationID == "" && !c.temporary
	snapshot := stripPending(c.liveMessages)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state = StateReady
		c.mu.Unlock()
	}()

	if firstSend {
		// The record must exist before the model is contacted so the reply
		// has somewhere to land.
		conv := &models.Conversation{}
		if err := conv.SetMessages(snapshot); err != nil {
			c.rollbackLastMessage()
			return fmt.Errorf("encode messages: %w", err)
		}
		id, err := c.service.conversations.Create(c.userID, conv)
		if err != nil {
			c.rollbackLastMessage()
			return fmt.Errorf("create conversation: %w", err)
		}
		c.mu.Lock()
		c.conversationID = id
		c.mu.Unlock()
	} else if !c.temporary {
		c.mirrorMessages(snapshot)
	}

	c.streamReply(ctx, text)
	return nil
}

// streamReply drives one streamed model turn into liveMessages. Failures
// surface as a synthetic assistant message, never as an error to the caller.
func (c *ChatSession) streamReply(ctx context.Context, text string) {
	ctx = events.WithSession(ctx, c.SessionKey())

	c.mu.Lock()
	c.liveMessages = append(c.liveMessages, models.Message{Role: models.RoleAssistant, Pending: true})
	c.mu.Unlock()

	stream, err := c.modelSession.StreamMessage(ctx, text)
	if err != nil {
		c.service.logger.Warn("starting reply stream failed", zap.Error(err))
		c.finalizeAssistant(ctx, assistantErrorText, true)
		return
	}
	defer stream.Close()

	for {
		partial, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.finalizeAssistant(ctx, strings.TrimRight(partial, " \t\r\n"), false)
				return
			}
			c.service.logger.Warn("reply stream failed mid-turn", zap.Error(err))
			c.finalizeAssistant(ctx, assistantErrorText, true)
			return
		}
		c.mu.Lock()
		c.liveMessages[len(c.liveMessages)-1].Text = partial
		c.mu.Unlock()
		events.Emit(ctx, events.ChatEventToken, events.NewInfo(partial))
	}
}

// finalizeAssistant replaces the pending placeholder with the finished (or
// synthetic error) text and mirrors the result for non-temporary sessions.
func (c *ChatSession) finalizeAssistant(ctx context.Context, text string, isError bool) {
	c.mu.Lock()
	c.liveMessages[len(c.liveMessages)-1] = models.Message{Role: models.RoleAssistant, Text: text}
	snapshot := stripPending(c.liveMessages)
	c.mu.Unlock()

	if !c.temporary {
		c.mirrorMessages(snapshot)
	}
	if isError {
		events.Emit(ctx, events.ChatEventError, events.NewError(text))
	} else {
		events.Emit(ctx, events.ChatEventDone, events.NewSuccess(text))
	}
}

// EndConversation summarizes the transcript and writes title, summary and
// the ended flag back to the store. Temporary and empty sessions are
// rejected; a summarizer failure leaves the stored fields untouched.
func (c *ChatSession) EndConversation(ctx context.Context) (title, summary string, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", "", ErrSessionNotReady
	}
	if c.temporary {
		c.mu.Unlock()
		return "", "", ErrTemporarySession
	}
	if c.state == StateSending {
		c.mu.Unlock()
		return "", "", ErrSendInFlight
	}
	if len(c.liveMessages) == 0 || c.conversationID == "" {
		c.mu.Unlock()
		return "", "", ErrEmptyConversation
	}
	transcript := client.FormatTranscript(stripPending(c.liveMessages))
	mdl := c.model
	convID := c.conversationID
	c.mu.Unlock()

	raw, err := mdl.GenerateOnce(ctx, client.SummaryPrompt(transcript))
	if err != nil {
		return "", "", err
	}
	title, summary, err = client.ParseSummary(raw)
	if err != nil {
		return "", "", err
	}

	// The summarization write goes through the same ordered queue as message
	// mirrors so it cannot overtake an in-flight mirror, but it is awaited
	// because the caller needs a decisive result.
	done := make(chan error, 1)
	c.enqueuePersist(convID, map[string]interface{}{
		"title":         title,
		"summary":       summary,
		"ended":         true,
		"summarized_at": time.Now(),
	}, done)
	if err := <-done; err != nil {
		return "", "", fmt.Errorf("save summary: %w", err)
	}

	events.Emit(events.WithSession(ctx, c.SessionKey()), events.ChatEventSummary, events.NewSuccess(title))
	return title, summary, nil
}

// Messages returns a copy of the in-memory message list for rendering.
func (c *ChatSession) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.liveMessages))
	copy(out, c.liveMessages)
	return out
}

func (c *ChatSession) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

func (c *ChatSession) Temporary() bool {
	return c.temporary
}

func (c *ChatSession) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionKey scopes emitted events to this session.
func (c *ChatSession) SessionKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.temporary {
		return "temporary"
	}
	if c.conversationID == "" {
		return "unsaved"
	}
	return "conversation:" + c.conversationID
}

// Close stops the persistence worker after draining queued writes. Safe to
// call more than once; Submit and EndConversation on a closed session return
// ErrSessionNotReady.
func (c *ChatSession) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.persistCh)
		c.wg.Wait()
	})
}

// persistLoop applies queued writes one at a time so a later mirror can
// never overtake an earlier one for the same conversation.
func (c *ChatSession) persistLoop() {
	defer c.wg.Done()
	for op := range c.persistCh {
		err := c.service.conversations.Update(c.userID, op.conversationID, op.updates)
		if op.done != nil {
			op.done <- err
			continue
		}
		if err != nil {
			// In-memory state stays authoritative; a later successful write
			// reconciles the store.
			c.service.logger.Error("conversation write failed",
				zap.String("conversationID", op.conversationID),
				zap.Error(err))
		}
	}
}

func (c *ChatSession) enqueuePersist(conversationID string, updates map[string]interface{}, done chan error) {
	c.persistCh <- persistOp{conversationID: conversationID, updates: updates, done: done}
}

func (c *ChatSession) mirrorMessages(snapshot []models.Message) {
	encoded, err := models.EncodeMessages(snapshot)
	if err != nil {
		c.service.logger.Error("encoding messages for mirror failed", zap.Error(err))
		return
	}
	c.mu.Lock()
	convID := c.conversationID
	c.mu.Unlock()
	c.enqueuePersist(convID, map[string]interface{}{"messages_json": encoded}, nil)
}

func (c *ChatSession) rollbackLastMessage() {
	c.mu.Lock()
	c.liveMessages = c.liveMessages[:len(c.liveMessages)-1]
	c.mu.Unlock()
}

// stripPending returns a copy of msgs with the streaming flag cleared, the
// shape in which messages are persisted.
func stripPending(msgs []models.Message) []models.Message {
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	for i := range out {
		out[i].Pending = false
	}
	return out
}
