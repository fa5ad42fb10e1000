package services

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Eys-55/StillPoint-sub000/internal/repositories"
)

// DbServices aggregates the database-backed collaborators of the
// conversation core.
type DbServices struct {
	Conversations  repositories.ConversationRepository
	Questionnaires repositories.QuestionnaireRepository
	ProfileContext ProfileContextService
}

// NewDbServices constructs the service container using repositories backed by db.
func NewDbServices(db *gorm.DB, logger *zap.Logger) *DbServices {
	conversationRepo := repositories.NewConversationRepository(db)
	questionnaireRepo := repositories.NewQuestionnaireRepository(db)

	return &DbServices{
		Conversations:  conversationRepo,
		Questionnaires: questionnaireRepo,
		ProfileContext: NewProfileContextService(conversationRepo, questionnaireRepo, logger),
	}
}
