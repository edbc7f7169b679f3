package repository

import (
	"context"
	"time"

	"medbook/internal/domain/entity"

	"gorm.io/gorm"
)

type OutboxRepository interface {
	Create(ctx context.Context, db *gorm.DB, event *entity.OutboxEvent) error
	// FetchUnpublished locks up to limit pending events; concurrent publishers skip locked rows
	FetchUnpublished(ctx context.Context, db *gorm.DB, limit int) ([]entity.OutboxEvent, error)
	MarkPublished(ctx context.Context, db *gorm.DB, ids []int64, publishedAt time.Time) error
}
