package mocks

import (
	"github.com/Eys-55/StillPoint-sub000/internal/models"
)

type QuestionnaireRepositoryMock struct {
	GetAnswersFunc func(userID string) ([]models.QuestionnaireAnswer, error)
}

func (m *QuestionnaireRepositoryMock) GetAnswers(userID string) ([]models.QuestionnaireAnswer, error) {
	if m.GetAnswersFunc != nil {
		return m.GetAnswersFunc(userID)
	}
	return nil, nil
}
