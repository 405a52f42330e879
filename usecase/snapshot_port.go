package usecase

import (
	"context"
	"errors"

	"github.com/fastygo/orderdesk/domain"
)

// Mutation operations reported to observers and logs.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Mutation outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeInvalid   = "invalid"
	OutcomeNotFound  = "not_found"
	OutcomeConflict  = "conflict"
	OutcomeForbidden = "forbidden"
	OutcomeStorage   = "storage_failed"
	OutcomeError     = "error"
)

// SnapshotPort persists a table after a successful mutation. Implementations
// may write immediately or only mark the table for the next periodic flush.
type SnapshotPort interface {
	Flush(ctx context.Context, table string) error
}

// MutationObserver is told about every mutating call and how it ended.
type MutationObserver interface {
	ObserveMutation(kind, operation, outcome string)
}

type nopSnapshots struct{}

func (nopSnapshots) Flush(context.Context, string) error { return nil }

type nopObserver struct{}

func (nopObserver) ObserveMutation(string, string, string) {}

// NopSnapshots never persists anything; useful for tests and dry runs.
func NopSnapshots() SnapshotPort { return nopSnapshots{} }

// NopObserver discards mutation events.
func NopObserver() MutationObserver { return nopObserver{} }

// OutcomeOf classifies the error returned by a mutating use case call.
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeApplied
	}
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		return OutcomeError
	}
	switch domainErr.Code {
	case domain.ErrCodeInvalid:
		return OutcomeInvalid
	case domain.ErrCodeNotFound:
		return OutcomeNotFound
	case domain.ErrCodeConflict:
		return OutcomeConflict
	case domain.ErrCodeForbidden:
		return OutcomeForbidden
	case domain.ErrCodeStorage:
		return OutcomeStorage
	}
	return OutcomeError
}

// StorageError reports a mutation that was applied in memory but not flushed.
func StorageError(table string, err error) error {
	return domain.WrapError(domain.ErrCodeStorage, table+" changed in memory but the snapshot was not written", err)
}
