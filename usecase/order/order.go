package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/orderdesk/domain"
	"github.com/fastygo/orderdesk/internal/records"
	"github.com/fastygo/orderdesk/internal/rules"
	"github.com/fastygo/orderdesk/repository"
	"github.com/fastygo/orderdesk/usecase"
)

const kind = "order"

// deleteNoteLayout stamps the reason line appended before deletion.
const deleteNoteLayout = "2006-01-02 15:04:05"

type UseCase struct {
	store     *records.Store[*domain.Order]
	guard     *records.Guard[*domain.Order]
	snapshots usecase.SnapshotPort
	observer  usecase.MutationObserver
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*UseCase)

// WithClock overrides the clock used for delete notes.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

func New(store *records.Store[*domain.Order], snapshots usecase.SnapshotPort, observer usecase.MutationObserver, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if snapshots == nil {
		snapshots = usecase.NopSnapshots()
	}
	if observer == nil {
		observer = usecase.NopObserver()
	}
	uc := &UseCase{
		store:     store,
		guard:     records.NewGuard(store, (*domain.Order).IsCompleted, (*domain.Order).IsPaid),
		snapshots: snapshots,
		observer:  observer,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return uc.store.ListAll(), nil
}

// ListOrdersByCustomer returns an empty list for a blank customer name.
func (uc *UseCase) ListOrdersByCustomer(ctx context.Context, customer string) ([]*domain.Order, error) {
	return uc.store.ListByOwner(customer), nil
}

func (uc *UseCase) GetOrder(ctx context.Context, cid string) (*domain.Order, error) {
	o, ok := uc.store.Get(cid)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// CreateOrder validates pricing and inserts the order. On a storage failure the
// created order is returned together with a STORAGE error.
func (uc *UseCase) CreateOrder(ctx context.Context, o *domain.Order) (created *domain.Order, err error) {
	defer func() { uc.observe(usecase.OperationCreate, err) }()

	if o == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := rules.ValidateOrder(o, rules.ModeCreate); err != nil {
		return nil, err
	}

	rec := o.Clone()
	if !uc.store.Create(rec) {
		return nil, domain.ErrOrderExists
	}
	uc.logger.Info("order created", zap.String("cid", rec.CID), zap.String("customer", rec.CustomerName))
	return rec, uc.flush(ctx)
}

// UpdateOrder replaces the stored order. A completed order cannot be completed
// again.
func (uc *UseCase) UpdateOrder(ctx context.Context, o *domain.Order) (updated *domain.Order, err error) {
	defer func() { uc.observe(usecase.OperationUpdate, err) }()

	if o == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := rules.ValidateOrder(o, rules.ModeUpdate); err != nil {
		return nil, err
	}

	decision := uc.guard.Update(o.Clone())
	if err := decisionError(decision); err != nil {
		return nil, err
	}

	stored, ok := uc.store.Get(o.CID)
	if !ok {
		// deleted between the update and the read
		return nil, domain.ErrOrderNotFound
	}
	uc.logger.Info("order updated", zap.String("cid", stored.CID), zap.Stringer("status", stored.Status))
	return stored, uc.flush(ctx)
}

// DeleteOrder appends a timestamped reason line to the description and then
// removes the order. The two steps are not atomic. Paid orders are kept.
func (uc *UseCase) DeleteOrder(ctx context.Context, cid, reason string) (err error) {
	defer func() { uc.observe(usecase.OperationDelete, err) }()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Invalidf("reason is required")
	}

	current, ok := uc.store.Get(cid)
	if !ok {
		return domain.ErrOrderNotFound
	}

	annotated := current.Clone()
	annotated.Description = appendDeleteNote(annotated.Description, uc.now(), reason)

	found, applied := uc.store.UpdateIf(annotated, func(stored *domain.Order) bool {
		return !stored.IsPaid()
	})
	switch {
	case !found:
		return domain.ErrOrderNotFound
	case !applied:
		return domain.ErrOrderLocked
	}

	if err := decisionError(uc.guard.Delete(cid)); err != nil {
		return err
	}
	uc.logger.Info("order deleted", zap.String("cid", cid), zap.String("reason", reason))
	return uc.flush(ctx)
}

func appendDeleteNote(description string, at time.Time, reason string) string {
	note := fmt.Sprintf("[%s] order deleted: %s", at.Format(deleteNoteLayout), reason)
	if description == "" {
		return note
	}
	return description + "\n" + note
}

func (uc *UseCase) flush(ctx context.Context) error {
	if err := uc.snapshots.Flush(ctx, repository.TableOrders); err != nil {
		uc.logger.Warn("order snapshot deferred", zap.Error(err))
		return usecase.StorageError(repository.TableOrders, err)
	}
	return nil
}

func (uc *UseCase) observe(operation string, err error) {
	uc.observer.ObserveMutation(kind, operation, usecase.OutcomeOf(err))
}

func decisionError(d records.Decision) error {
	switch d.Reason {
	case records.ReasonNotFound:
		return domain.ErrOrderNotFound
	case records.ReasonLocked:
		return domain.ErrOrderLocked
	}
	return nil
}
