package repository

import (
	"context"
	"time"

	"medbook/internal/domain/entity"
	domainRepo "medbook/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type outboxRepository struct{}

func NewOutboxRepository() domainRepo.OutboxRepository {
	return &outboxRepository{}
}

func (r *outboxRepository) Create(ctx context.Context, db *gorm.DB, event *entity.OutboxEvent) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *outboxRepository) FetchUnpublished(ctx context.Context, db *gorm.DB, limit int) ([]entity.OutboxEvent, error) {
	var events []entity.OutboxEvent
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("published_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, db *gorm.DB, ids []int64, publishedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).Model(&entity.OutboxEvent{}).
		Where("id IN ?", ids).
		Update("published_at", publishedAt).Error
}
