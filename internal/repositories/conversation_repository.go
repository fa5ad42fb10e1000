package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Eys-55/StillPoint-sub000/internal/models"
)

// ConversationRepository is the persistence gateway for conversation
// documents. Get returns (nil, nil) when the conversation does not exist.
type ConversationRepository interface {
	Get(userID, id string) (*models.Conversation, error)
	Create(userID string, conv *models.Conversation) (string, error)
	Update(userID, id string, updates map[string]interface{}) error
	ListWithSummary(userID string) ([]models.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Get(userID, id string) (*models.Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is required")
	}
	if id == "" {
		return nil, fmt.Errorf("conversation id is required")
	}
	var conv models.Conversation
	res := r.db.Where("user_id = ? AND id = ?", userID, id).Take(&conv)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &conv, nil
}

// Create assigns the conversation its identifier and inserts it. The assigned
// id is returned so the caller can adopt it as the active conversation id.
func (r *conversationRepository) Create(userID string, conv *models.Conversation) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("userID is required")
	}
	if conv == nil {
		return "", fmt.Errorf("conversation is required")
	}
	conv.ID = uuid.NewString()
	conv.UserID = userID
	if conv.Title == "" {
		conv.Title = models.DefaultConversationTitle
	}
	if err := r.db.Create(conv).Error; err != nil {
		return "", err
	}
	return conv.ID, nil
}

// Update applies a partial field update. UpdatedAt is bumped by GORM on every
// persisted mutation.
func (r *conversationRepository) Update(userID, id string, updates map[string]interface{}) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}
	if id == "" {
		return fmt.Errorf("conversation id is required")
	}
	if len(updates) == 0 {
		return fmt.Errorf("updates are required")
	}
	res := r.db.Model(&models.Conversation{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListWithSummary returns the user's summarized conversations, oldest first
// so derived text is deterministic for unchanged data.
func (r *conversationRepository) ListWithSummary(userID string) ([]models.Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is required")
	}
	var convs []models.Conversation
	res := r.db.
		Where("user_id = ? AND summary <> ''", userID).
		Order("created_at asc").
		Find(&convs)
	if res.Error != nil {
		return nil, res.Error
	}
	return convs, nil
}
