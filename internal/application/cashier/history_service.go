package cashier

import (
	"context"

	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared"
)

// HistoryService reads the audit log. There is no write path here; entries
// are only ever appended by the mutating services.
type HistoryService struct {
	scope TransactionScope
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(scope TransactionScope) *HistoryService {
	return &HistoryService{scope: scope}
}

// List returns history entries matching the filter, newest first
func (s *HistoryService) List(ctx context.Context, filter HistoryListFilter) (*shared.Paginated[HistoryEntryResponse], error) {
	f := cashier.HistoryFilter{
		Filter: shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(),
		Table:  filter.Table,
	}
	if filter.Action != "" {
		action := cashier.HistoryAction(filter.Action)
		if !action.IsValid() {
			return nil, shared.NewValidationError("invalid history action %q", filter.Action)
		}
		f.Action = &action
	}
	var err error
	if f.ShiftID, err = parseOptionalUUID("shift_id", filter.ShiftID); err != nil {
		return nil, err
	}
	if f.RecordID, err = parseOptionalUUID("record_id", filter.RecordID); err != nil {
		return nil, err
	}
	if f.From, err = parseOptionalDate(filter.FromDate); err != nil {
		return nil, err
	}
	if f.To, err = parseOptionalDate(filter.ToDate); err != nil {
		return nil, err
	}
	if f.To != nil {
		end := f.To.AddDate(0, 0, 1)
		f.To = &end
	}

	var (
		entries []*cashier.HistoryEntry
		total   int64
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		entries, total, err = repos.HistoryRepo().FindAll(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toHistoryEntryResponse(e))
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}
