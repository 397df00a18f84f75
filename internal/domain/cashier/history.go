package cashier

import (
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/shared"
)

// Tables named in history entries
const (
	TableDaily        = "daily"
	TableShift        = "shift"
	TableVoucher      = "voucher"
	TableDenomination = "denomination_line"
	TablePayment      = "payment_line"
	TableShiftUser    = "shift_user"
)

// HistoryEntry is one immutable audit record of a state-changing action.
// Entries are appended in the same transaction as the change they describe
// and are never updated or deleted.
type HistoryEntry struct {
	ID            uuid.UUID     `json:"id"`
	ShiftID       *uuid.UUID    `json:"shift_id,omitempty"`
	Action        HistoryAction `json:"action"`
	TableAffected string        `json:"table_affected"`
	RecordID      uuid.UUID     `json:"record_id"`
	FieldChanged  string        `json:"field_changed,omitempty"`
	OldValue      string        `json:"old_value,omitempty"`
	NewValue      string        `json:"new_value,omitempty"`
	ChangedBy     uuid.UUID     `json:"changed_by"`
	ChangedAt     time.Time     `json:"changed_at"`
	Notes         string        `json:"notes,omitempty"`
}

// NewHistoryEntry creates an entry for a change to recordID in table
func NewHistoryEntry(action HistoryAction, table string, recordID, changedBy uuid.UUID) *HistoryEntry {
	return &HistoryEntry{
		ID:            uuid.New(),
		Action:        action,
		TableAffected: table,
		RecordID:      recordID,
		ChangedBy:     changedBy,
		ChangedAt:     time.Now(),
	}
}

// ForShift attributes the entry to a shift
func (e *HistoryEntry) ForShift(shiftID uuid.UUID) *HistoryEntry {
	id := shiftID
	e.ShiftID = &id
	return e
}

// Change sets the field and its before/after values
func (e *HistoryEntry) Change(field, oldValue, newValue string) *HistoryEntry {
	e.FieldChanged = field
	e.OldValue = oldValue
	e.NewValue = newValue
	return e
}

// WithNotes attaches free text, typically the reason given by the user
func (e *HistoryEntry) WithNotes(notes string) *HistoryEntry {
	e.Notes = notes
	return e
}

// Validate checks the entry before it is written
func (e *HistoryEntry) Validate() error {
	if !e.Action.IsValid() {
		return shared.NewValidationError("invalid history action %q", e.Action)
	}
	if e.TableAffected == "" {
		return shared.NewValidationError("history entry must name the affected table")
	}
	if e.RecordID == uuid.Nil {
		return shared.NewValidationError("history entry must reference a record")
	}
	if e.ChangedBy == uuid.Nil {
		return shared.NewValidationError("history entry must name who made the change")
	}
	return nil
}

// journal collects history entries produced by aggregate methods until the
// application layer writes them alongside the aggregate.
type journal struct {
	pending []*HistoryEntry
}

func (j *journal) record(e *HistoryEntry) {
	j.pending = append(j.pending, e)
}

// PendingHistory returns entries produced since the last ClearHistory
func (j *journal) PendingHistory() []*HistoryEntry {
	return j.pending
}

// ClearHistory drops pending entries once they are persisted
func (j *journal) ClearHistory() {
	j.pending = nil
}

// HistoryRecorder is implemented by aggregates that produce history entries
type HistoryRecorder interface {
	PendingHistory() []*HistoryEntry
	ClearHistory()
}
