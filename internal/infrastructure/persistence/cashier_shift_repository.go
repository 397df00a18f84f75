package persistence

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShiftRepository implements ShiftRepository using GORM. A shift is
// stored as one row plus its user, denomination and payment rows.
type GormShiftRepository struct {
	db *gorm.DB
}

// NewGormShiftRepository creates a new GormShiftRepository
func NewGormShiftRepository(db *gorm.DB) *GormShiftRepository {
	return &GormShiftRepository{db: db}
}

func (r *GormShiftRepository) withChildren(ctx context.Context) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }
	return r.db.WithContext(ctx).
		Preload("Users", func(db *gorm.DB) *gorm.DB { return db.Order("is_primary DESC") }).
		Preload("Denominations", byPosition).
		Preload("Payments", byPosition)
}

// FindByID finds a shift by ID with its lines and users
func (r *GormShiftRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashier.Shift, error) {
	var model models.ShiftModel
	if err := r.withChildren(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("shift", id.String())
		}
		return nil, fmt.Errorf("find shift %s: %w", id, err)
	}
	return model.ToDomain(), nil
}

// FindByDailyID returns the shifts of a day in roster order
func (r *GormShiftRepository) FindByDailyID(ctx context.Context, dailyID uuid.UUID) ([]*cashier.Shift, error) {
	var rows []models.ShiftModel
	if err := r.withChildren(ctx).Where("daily_id = ?", dailyID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list shifts of daily %s: %w", dailyID, err)
	}
	return toShifts(rows), nil
}

// FindByDateRange returns the shifts dated in [from, to]
func (r *GormShiftRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]*cashier.Shift, error) {
	var rows []models.ShiftModel
	if err := r.withChildren(ctx).
		Where("shift_date >= ? AND shift_date <= ?", cashier.NormalizeDate(from), cashier.NormalizeDate(to)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list shifts in range: %w", err)
	}
	return toShifts(rows), nil
}

// Create inserts a new shift and its child rows
func (r *GormShiftRepository) Create(ctx context.Context, shift *cashier.Shift) error {
	model := models.ShiftModelFromDomain(shift)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	if err := insertShiftChildren(db, model); err != nil {
		return err
	}
	shift.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking and replaces the child rows.
// Lines are replaced as a whole set, never merged.
func (r *GormShiftRepository) SaveWithLock(ctx context.Context, shift *cashier.Shift) error {
	model := models.ShiftModelFromDomain(shift)
	db := r.db.WithContext(ctx)

	result := db.Model(&models.ShiftModel{}).
		Where("id = ? AND version = ?", shift.ID, shift.PersistedVersion()).
		Updates(map[string]any{
			"status":           model.Status,
			"income":           model.Income,
			"income_breakdown": model.IncomeBreakdown,
			"vouchers_drawn":   model.VouchersDrawn,
			"cash_counted":     model.CashCounted,
			"cash_expected":    model.CashExpected,
			"difference":       model.Difference,
			"payments_total":   model.PaymentsTotal,
			"grand_total":      model.GrandTotal,
			"has_discrepancy":  model.HasDiscrepancy,
			"tolerance":        model.Tolerance,
			"notes":            model.Notes,
			"closed_by":        model.ClosedBy,
			"closed_at":        model.ClosedAt,
			"audited_by":       model.AuditedBy,
			"audited_at":       model.AuditedAt,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("save shift %s: %w", shift.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.ShiftModel{}).Where("id = ?", shift.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("check shift %s: %w", shift.ID, err)
		}
		if count == 0 {
			return shared.NewNotFoundError("shift", shift.ID.String())
		}
		return shared.NewConcurrentModificationError("shift", shift.ID.String())
	}

	for _, child := range []any{&models.ShiftUserModel{}, &models.DenominationLineModel{}, &models.PaymentLineModel{}} {
		if err := db.Where("shift_id = ?", shift.ID).Delete(child).Error; err != nil {
			return fmt.Errorf("clear shift %s lines: %w", shift.ID, err)
		}
	}
	if err := insertShiftChildren(db, model); err != nil {
		return err
	}
	shift.MarkPersisted()
	return nil
}

func insertShiftChildren(db *gorm.DB, model *models.ShiftModel) error {
	if len(model.Users) > 0 {
		if err := db.Create(&model.Users).Error; err != nil {
			return fmt.Errorf("insert shift users: %w", err)
		}
	}
	if len(model.Denominations) > 0 {
		if err := db.Create(&model.Denominations).Error; err != nil {
			return fmt.Errorf("insert denomination lines: %w", err)
		}
	}
	if len(model.Payments) > 0 {
		if err := db.Create(&model.Payments).Error; err != nil {
			return fmt.Errorf("insert payment lines: %w", err)
		}
	}
	return nil
}

// toShifts converts rows and sorts them by date, then roster position
func toShifts(rows []models.ShiftModel) []*cashier.Shift {
	shifts := make([]*cashier.Shift, 0, len(rows))
	for i := range rows {
		shifts = append(shifts, rows[i].ToDomain())
	}
	sort.SliceStable(shifts, func(i, j int) bool {
		if !shifts[i].ShiftDate.Equal(shifts[j].ShiftDate) {
			return shifts[i].ShiftDate.Before(shifts[j].ShiftDate)
		}
		return slices.Index(cashier.DefaultRoster, shifts[i].ShiftType) < slices.Index(cashier.DefaultRoster, shifts[j].ShiftType)
	})
	return shifts
}

var _ cashier.ShiftRepository = (*GormShiftRepository)(nil)
