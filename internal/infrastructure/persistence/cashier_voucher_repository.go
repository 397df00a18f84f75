package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
	"github.com/hotelops/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormVoucherRepository implements VoucherRepository using GORM
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewGormVoucherRepository creates a new GormVoucherRepository
func NewGormVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// FindByID finds a voucher by ID
func (r *GormVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashier.Voucher, error) {
	var model models.VoucherModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("voucher", id.String())
		}
		return nil, fmt.Errorf("find voucher %s: %w", id, err)
	}
	return model.ToDomain(), nil
}

// FindAll lists vouchers matching the filter, newest first, with the total count
func (r *GormVoucherRepository) FindAll(ctx context.Context, filter cashier.VoucherFilter) ([]*cashier.Voucher, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.VoucherModel{})

	// Apply filters
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ShiftID != nil {
		query = query.Where("shift_id = ?", *filter.ShiftID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count vouchers: %w", err)
	}

	f := filter.Filter.Normalize()
	var rows []models.VoucherModel
	if err := query.
		Order("created_at " + f.OrderDir).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list vouchers: %w", err)
	}
	return toVouchers(rows), total, nil
}

// FindPending returns every pending voucher, oldest first
func (r *GormVoucherRepository) FindPending(ctx context.Context) ([]*cashier.Voucher, error) {
	var rows []models.VoucherModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", cashier.VoucherStatusPending).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list pending vouchers: %w", err)
	}
	return toVouchers(rows), nil
}

// FindPendingByShiftIDs returns pending vouchers drawn against any of the shifts
func (r *GormVoucherRepository) FindPendingByShiftIDs(ctx context.Context, shiftIDs []uuid.UUID) ([]*cashier.Voucher, error) {
	if len(shiftIDs) == 0 {
		return []*cashier.Voucher{}, nil
	}
	var rows []models.VoucherModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND shift_id IN ?", cashier.VoucherStatusPending, shiftIDs).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list pending vouchers of shifts: %w", err)
	}
	return toVouchers(rows), nil
}

type voucherAggregate struct {
	Count  int64
	Amount decimal.Decimal
}

// Summary computes active count/amount and the lifetime justified amount
func (r *GormVoucherRepository) Summary(ctx context.Context) (cashier.VoucherSummary, error) {
	sum := func(status cashier.VoucherStatus) (voucherAggregate, error) {
		var agg voucherAggregate
		err := r.db.WithContext(ctx).
			Model(&models.VoucherModel{}).
			Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
			Where("status = ?", status).
			Scan(&agg).Error
		return agg, err
	}

	active, err := sum(cashier.VoucherStatusPending)
	if err != nil {
		return cashier.VoucherSummary{}, fmt.Errorf("sum pending vouchers: %w", err)
	}
	repaid, err := sum(cashier.VoucherStatusJustified)
	if err != nil {
		return cashier.VoucherSummary{}, fmt.Errorf("sum justified vouchers: %w", err)
	}
	return cashier.VoucherSummary{
		ActiveCount:         active.Count,
		ActiveAmount:        valueobject.NewMoney(active.Amount),
		TotalRepaidLifetime: valueobject.NewMoney(repaid.Amount),
	}, nil
}

// Create inserts a new voucher
func (r *GormVoucherRepository) Create(ctx context.Context, voucher *cashier.Voucher) error {
	if err := r.db.WithContext(ctx).Create(models.VoucherModelFromDomain(voucher)).Error; err != nil {
		return fmt.Errorf("create voucher: %w", err)
	}
	voucher.MarkPersisted()
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormVoucherRepository) SaveWithLock(ctx context.Context, voucher *cashier.Voucher) error {
	model := models.VoucherModelFromDomain(voucher)
	db := r.db.WithContext(ctx)
	result := db.Model(&models.VoucherModel{}).
		Where("id = ? AND version = ?", voucher.ID, voucher.PersistedVersion()).
		Updates(map[string]any{
			"status":             model.Status,
			"notes":              model.Notes,
			"justified_shift_id": model.JustifiedShiftID,
			"justified_by":       model.JustifiedBy,
			"justified_at":       model.JustifiedAt,
			"cancelled_by":       model.CancelledBy,
			"cancelled_at":       model.CancelledAt,
			"cancel_reason":      model.CancelReason,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("save voucher %s: %w", voucher.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.VoucherModel{}).Where("id = ?", voucher.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("check voucher %s: %w", voucher.ID, err)
		}
		if count == 0 {
			return shared.NewNotFoundError("voucher", voucher.ID.String())
		}
		return shared.NewConcurrentModificationError("voucher", voucher.ID.String())
	}
	voucher.MarkPersisted()
	return nil
}

func toVouchers(rows []models.VoucherModel) []*cashier.Voucher {
	vouchers := make([]*cashier.Voucher, 0, len(rows))
	for i := range rows {
		vouchers = append(vouchers, rows[i].ToDomain())
	}
	return vouchers
}

var _ cashier.VoucherRepository = (*GormVoucherRepository)(nil)
