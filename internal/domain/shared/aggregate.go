package shared

import "time"

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots.
//
// Version drives optimistic locking. An aggregate read from storage remembers
// the version it was loaded at; the first change bumps Version once and
// repositories persist with "WHERE version = PersistedVersion()".
type BaseAggregateRoot struct {
	BaseEntity
	Version   int
	persisted int
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// PersistedVersion is the version currently stored, 0 for a new aggregate.
func (a *BaseAggregateRoot) PersistedVersion() int {
	return a.persisted
}

// IsNew reports whether the aggregate has never been stored.
func (a *BaseAggregateRoot) IsNew() bool {
	return a.persisted == 0
}

// IncrementVersion bumps the version at most once between two saves.
func (a *BaseAggregateRoot) IncrementVersion() {
	if a.persisted != 0 && a.Version == a.persisted {
		a.Version++
	}
}

// MarkModified stamps a change made at the given time and bumps the version.
func (a *BaseAggregateRoot) MarkModified(at time.Time) {
	a.Touch(at)
	a.IncrementVersion()
}

// RestoreVersion is used by repositories when rebuilding an aggregate from storage.
func (a *BaseAggregateRoot) RestoreVersion(v int) {
	a.Version = v
	a.persisted = v
}

// MarkPersisted records that the current version is now stored.
func (a *BaseAggregateRoot) MarkPersisted() {
	a.persisted = a.Version
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}
