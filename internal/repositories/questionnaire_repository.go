package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Eys-55/StillPoint-sub000/internal/models"
)

// QuestionnaireRepository reads stored questionnaire responses. GetAnswers
// returns an empty slice when the user has not answered the questionnaire.
type QuestionnaireRepository interface {
	GetAnswers(userID string) ([]models.QuestionnaireAnswer, error)
}

type questionnaireRepository struct {
	db *gorm.DB
}

func NewQuestionnaireRepository(db *gorm.DB) QuestionnaireRepository {
	return &questionnaireRepository{db: db}
}

func (r *questionnaireRepository) GetAnswers(userID string) ([]models.QuestionnaireAnswer, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is required")
	}
	var answers []models.QuestionnaireAnswer
	res := r.db.Where("user_id = ?", userID).Order("question asc").Find(&answers)
	if res.Error != nil {
		return nil, res.Error
	}
	return answers, nil
}
