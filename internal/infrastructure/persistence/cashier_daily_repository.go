package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDailyRepository implements DailyRepository using GORM
type GormDailyRepository struct {
	db *gorm.DB
}

// NewGormDailyRepository creates a new GormDailyRepository
func NewGormDailyRepository(db *gorm.DB) *GormDailyRepository {
	return &GormDailyRepository{db: db}
}

// FindByID finds a day by ID
func (r *GormDailyRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashier.DailyAggregate, error) {
	var model models.DailyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("daily", id.String())
		}
		return nil, fmt.Errorf("find daily %s: %w", id, err)
	}
	return model.ToDomain(), nil
}

// FindByDate finds the day for a calendar date
func (r *GormDailyRepository) FindByDate(ctx context.Context, date time.Time) (*cashier.DailyAggregate, error) {
	date = cashier.NormalizeDate(date)
	var model models.DailyModel
	if err := r.db.WithContext(ctx).First(&model, "date = ?", date).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("daily", cashier.FormatDate(date))
		}
		return nil, fmt.Errorf("find daily %s: %w", cashier.FormatDate(date), err)
	}
	return model.ToDomain(), nil
}

// FindByDateRange returns the days in [from, to], ordered by date
func (r *GormDailyRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]*cashier.DailyAggregate, error) {
	var rows []models.DailyModel
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", cashier.NormalizeDate(from), cashier.NormalizeDate(to)).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list daily range: %w", err)
	}
	days := make([]*cashier.DailyAggregate, 0, len(rows))
	for i := range rows {
		days = append(days, rows[i].ToDomain())
	}
	return days, nil
}

// ExistsByDate checks whether a date has been initialized
func (r *GormDailyRepository) ExistsByDate(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DailyModel{}).
		Where("date = ?", cashier.NormalizeDate(date)).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count daily: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new day. The unique index on date turns a lost
// initialization race into DUPLICATE_DAY.
func (r *GormDailyRepository) Create(ctx context.Context, day *cashier.DailyAggregate) error {
	model := models.DailyModelFromDomain(day)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDuplicateDayError(day.DateKey())
		}
		return fmt.Errorf("create daily %s: %w", day.DateKey(), err)
	}
	day.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormDailyRepository) SaveWithLock(ctx context.Context, day *cashier.DailyAggregate) error {
	model := models.DailyModelFromDomain(day)
	result := r.db.WithContext(ctx).
		Model(&models.DailyModel{}).
		Where("id = ? AND version = ?", day.ID, day.PersistedVersion()).
		Updates(map[string]any{
			"status":                  model.Status,
			"total_cash":              model.TotalCash,
			"total_card":              model.TotalCard,
			"total_bank_direct_debit": model.TotalBankDirectDebit,
			"total_web_payment":       model.TotalWebPayment,
			"total_transfer":          model.TotalTransfer,
			"total_other":             model.TotalOther,
			"grand_total":             model.GrandTotal,
			"notes":                   model.Notes,
			"closed_by":               model.ClosedBy,
			"closed_at":               model.ClosedAt,
			"reopened_by":             model.ReopenedBy,
			"reopened_at":             model.ReopenedAt,
			"version":                 model.Version,
			"updated_at":              model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("save daily %s: %w", day.DateKey(), result.Error)
	}
	if result.RowsAffected == 0 {
		return r.lockFailure(ctx, day)
	}
	day.MarkPersisted()
	return nil
}

// lockFailure tells a missing row apart from a stale version
func (r *GormDailyRepository) lockFailure(ctx context.Context, day *cashier.DailyAggregate) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.DailyModel{}).Where("id = ?", day.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("check daily %s: %w", day.DateKey(), err)
	}
	if count == 0 {
		return shared.NewNotFoundError("daily", day.DateKey())
	}
	return shared.NewConcurrentModificationError("daily", day.DateKey())
}

var _ cashier.DailyRepository = (*GormDailyRepository)(nil)
