package persistence

import (
	"context"
	"fmt"

	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormHistoryRepository implements the append-only HistoryRepository using GORM
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append writes entries in the caller's transaction
func (r *GormHistoryRepository) Append(ctx context.Context, entries ...*cashier.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.HistoryModel, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, models.HistoryModelFromDomain(e))
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// FindAll lists entries matching the filter, newest first, with the total count
func (r *GormHistoryRepository) FindAll(ctx context.Context, filter cashier.HistoryFilter) ([]*cashier.HistoryEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.HistoryModel{})

	if filter.ShiftID != nil {
		query = query.Where("shift_id = ?", *filter.ShiftID)
	}
	if filter.RecordID != nil {
		query = query.Where("record_id = ?", *filter.RecordID)
	}
	if filter.Table != "" {
		query = query.Where("table_affected = ?", filter.Table)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.From != nil {
		query = query.Where("changed_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("changed_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	f := filter.Filter.Normalize()
	var rows []models.HistoryModel
	if err := query.
		Order("changed_at " + f.OrderDir).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list history: %w", err)
	}

	entries := make([]*cashier.HistoryEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].ToDomain())
	}
	return entries, total, nil
}

var _ cashier.HistoryRepository = (*GormHistoryRepository)(nil)
