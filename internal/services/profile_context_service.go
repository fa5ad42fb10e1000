package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Eys-55/StillPoint-sub000/internal/llm/client"
	"github.com/Eys-55/StillPoint-sub000/internal/models"
	"github.com/Eys-55/StillPoint-sub000/internal/repositories"
)

// ProfileContextService assembles the system-instruction inputs from stored
// data. Build never returns a partial context: either both sources resolved
// (possibly to empty text) or it fails.
type ProfileContextService interface {
	Startup(ctx context.Context)
	Build(userID string) (models.ProfileContext, error)
}

type profileContextService struct {
	conversations  repositories.ConversationRepository
	questionnaires repositories.QuestionnaireRepository
	logger         *zap.Logger
	ctx            context.Context
}

func NewProfileContextService(conversations repositories.ConversationRepository, questionnaires repositories.QuestionnaireRepository, logger *zap.Logger) ProfileContextService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &profileContextService{
		conversations:  conversations,
		questionnaires: questionnaires,
		logger:         logger,
	}
}

func (s *profileContextService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func (s *profileContextService) Build(userID string) (models.ProfileContext, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.ProfileContext{}, fmt.Errorf("user ID is required")
	}

	convs, err := s.conversations.ListWithSummary(userID)
	if err != nil {
		return models.ProfileContext{}, fmt.Errorf("load prior summaries: %w", err)
	}
	answers, err := s.questionnaires.GetAnswers(userID)
	if err != nil {
		return models.ProfileContext{}, fmt.Errorf("load questionnaire answers: %w", err)
	}

	return models.ProfileContext{
		SystemPrompt:   client.SystemPrompt(),
		PriorSummaries: formatSummaries(convs),
		PreferenceText: s.formatPreferences(answers),
	}, nil
}

func formatSummaries(convs []models.Conversation) string {
	var lines []string
	for _, conv := range convs {
		summary := strings.TrimSpace(conv.Summary)
		if summary == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", conv.Title, summary))
	}
	return strings.Join(lines, "\n")
}

func (s *profileContextService) formatPreferences(answers []models.QuestionnaireAnswer) string {
	var lines []string
	for _, ans := range answers {
		byAnswer, ok := answerMeanings[ans.Question]
		if !ok {
			s.logger.Warn("unknown questionnaire question", zap.String("question", ans.Question))
			continue
		}
		meaning, ok := byAnswer[ans.Answer]
		if !ok {
			s.logger.Warn("unknown questionnaire answer",
				zap.String("question", ans.Question),
				zap.String("answer", ans.Answer))
			continue
		}
		lines = append(lines, meaning)
	}
	return strings.Join(lines, "\n")
}

// answerMeanings maps stored questionnaire keys to the preference sentences
// fed into the system instruction. Keys mirror the onboarding questionnaire.
var answerMeanings = map[string]map[string]string{
	"tone": {
		"gentle":  "The user prefers a gentle, reassuring tone.",
		"direct":  "The user prefers direct, practical feedback.",
		"neutral": "The user prefers a calm, neutral tone.",
	},
	"session_goal": {
		"vent":    "The user mainly wants space to vent and feel heard.",
		"reflect": "The user wants help noticing patterns in their thoughts.",
		"cope":    "The user wants concrete coping strategies they can try.",
	},
	"reply_length": {
		"short":    "The user prefers short, focused replies.",
		"detailed": "The user prefers detailed, thorough replies.",
	},
	"follow_up": {
		"yes": "The user appreciates gentle follow-up questions.",
		"no":  "The user prefers not to be asked too many questions.",
	},
}
