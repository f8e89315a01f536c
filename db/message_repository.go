package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/carefront/models"
	"gorm.io/gorm"
)

// MessageRepository is the durable store for messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	List(ctx context.Context, filter models.MessageFilter, limit int) ([]models.Message, error)
	FindByID(ctx context.Context, id string) (*models.Message, error)
	Update(ctx context.Context, id string, update models.MessageUpdate) (*models.Message, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type messageRepo struct {
	DB *gorm.DB
}

func NewMessageRepo(db *GormDB) MessageRepository {
	return &messageRepo{db.DB}
}

func (r *messageRepo) Create(ctx context.Context, message *models.Message) error {
	if err := r.DB.WithContext(ctx).Create(message).Error; err != nil {
		return errors.Wrap(err, "creating message")
	}
	return nil
}

// List returns matching messages newest first, capped at MaxListResults.
func (r *messageRepo) List(ctx context.Context, filter models.MessageFilter, limit int) ([]models.Message, error) {
	q := r.DB.WithContext(ctx).Model(&models.Message{})
	if filter.Search != "" {
		q = q.Where("message ILIKE ?", likePattern(filter.Search))
	}
	if filter.CreatedBy != "" {
		q = q.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.ConversationID != "" {
		q = q.Where("conversation_id = ?", filter.ConversationID)
	}

	var messages []models.Message
	if err := q.Order("created_at DESC").Limit(clampLimit(limit)).Find(&messages).Error; err != nil {
		return nil, errors.Wrap(err, "listing messages")
	}
	return messages, nil
}

func (r *messageRepo) FindByID(ctx context.Context, id string) (*models.Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var message models.Message
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&message).Error; err != nil {
		return nil, errors.Wrapf(err, "finding message %s", id)
	}
	return &message, nil
}

// Update merges the non-nil fields and returns the stored row.
func (r *messageRepo) Update(ctx context.Context, id string, update models.MessageUpdate) (*models.Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	fields := update.Fields()
	if len(fields) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, errors.Wrapf(res.Error, "updating message %s", id)
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// Delete reports zero rows affected when the message is already gone.
func (r *messageRepo) Delete(ctx context.Context, id string) (int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Message{})
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "deleting message %s", id)
	}
	return res.RowsAffected, nil
}
