package mocks

import (
	"github.com/Eys-55/StillPoint-sub000/internal/models"
)

type ConversationRepositoryMock struct {
	GetFunc             func(userID, id string) (*models.Conversation, error)
	CreateFunc          func(userID string, conv *models.Conversation) (string, error)
	UpdateFunc          func(userID, id string, updates map[string]interface{}) error
	ListWithSummaryFunc func(userID string) ([]models.Conversation, error)
}

func (m *ConversationRepositoryMock) Get(userID, id string) (*models.Conversation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(userID, id)
	}
	return nil, nil
}

func (m *ConversationRepositoryMock) Create(userID string, conv *models.Conversation) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(userID, conv)
	}
	return "", nil
}

func (m *ConversationRepositoryMock) Update(userID, id string, updates map[string]interface{}) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(userID, id, updates)
	}
	return nil
}

func (m *ConversationRepositoryMock) ListWithSummary(userID string) ([]models.Conversation, error) {
	if m.ListWithSummaryFunc != nil {
		return m.ListWithSummaryFunc(userID)
	}
	return nil, nil
}
