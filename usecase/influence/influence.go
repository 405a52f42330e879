package influence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/orderdesk/domain"
	"github.com/fastygo/orderdesk/internal/records"
	"github.com/fastygo/orderdesk/internal/rules"
	"github.com/fastygo/orderdesk/repository"
	"github.com/fastygo/orderdesk/usecase"
)

const kind = "influence"

type UseCase struct {
	store     *records.Store[*domain.InfluenceEvent]
	guard     *records.Guard[*domain.InfluenceEvent]
	snapshots usecase.SnapshotPort
	observer  usecase.MutationObserver
	logger    *zap.Logger
}

func New(store *records.Store[*domain.InfluenceEvent], snapshots usecase.SnapshotPort, observer usecase.MutationObserver, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if snapshots == nil {
		snapshots = usecase.NopSnapshots()
	}
	if observer == nil {
		observer = usecase.NopObserver()
	}
	return &UseCase{
		store: store,
		// events have no locked status; every existing event may be deleted
		guard:     records.NewGuard(store, (*domain.InfluenceEvent).IsCompleted, nil),
		snapshots: snapshots,
		observer:  observer,
		logger:    logger,
	}
}

func (uc *UseCase) ListInfluences(ctx context.Context) ([]*domain.InfluenceEvent, error) {
	return uc.store.ListAll(), nil
}

// ListInfluencesByType returns events of one type, latest event time first.
func (uc *UseCase) ListInfluencesByType(ctx context.Context, typ string) ([]*domain.InfluenceEvent, error) {
	if err := rules.ValidateInfluenceType(typ); err != nil {
		return nil, err
	}
	want := domain.InfluenceType(typ)
	return uc.store.ListBy(
		func(e *domain.InfluenceEvent) bool { return e.Type == want },
		records.TimeDesc(func(e *domain.InfluenceEvent) *time.Time { return e.EventTime }),
	), nil
}

func (uc *UseCase) GetInfluence(ctx context.Context, id string) (*domain.InfluenceEvent, error) {
	e, ok := uc.store.Get(id)
	if !ok {
		return nil, domain.ErrInfluenceNotFound
	}
	return e, nil
}

// CreateInfluence defaults a missing status to PLANNED before validating.
func (uc *UseCase) CreateInfluence(ctx context.Context, e *domain.InfluenceEvent) (created *domain.InfluenceEvent, err error) {
	defer func() { uc.observe(usecase.OperationCreate, err) }()

	if e == nil {
		return nil, domain.ErrInvalidPayload
	}
	rec := e.Clone()
	if rec.Status == "" {
		rec.Status = domain.InfluencePlanned
	}
	if err := rules.ValidateInfluence(rec); err != nil {
		return nil, err
	}
	if !uc.store.Create(rec) {
		return nil, domain.ErrInfluenceExists
	}
	uc.logger.Info("influence event created", zap.String("id", rec.ID), zap.String("type", string(rec.Type)))
	return rec, uc.flush(ctx)
}

func (uc *UseCase) UpdateInfluence(ctx context.Context, e *domain.InfluenceEvent) (updated *domain.InfluenceEvent, err error) {
	defer func() { uc.observe(usecase.OperationUpdate, err) }()

	if e == nil {
		return nil, domain.ErrInvalidPayload
	}
	rec := e.Clone()
	if rec.ImageURLs == nil {
		rec.ImageURLs = []string{}
	}
	if err := rules.ValidateInfluence(rec); err != nil {
		return nil, err
	}

	switch uc.guard.Update(rec).Reason {
	case records.ReasonNotFound:
		return nil, domain.ErrInfluenceNotFound
	case records.ReasonLocked:
		return nil, domain.ErrInfluenceLocked
	}

	stored, ok := uc.store.Get(rec.ID)
	if !ok {
		return nil, domain.ErrInfluenceNotFound
	}
	uc.logger.Info("influence event updated", zap.String("id", stored.ID), zap.String("status", string(stored.Status)))
	return stored, uc.flush(ctx)
}

func (uc *UseCase) DeleteInfluence(ctx context.Context, id string) (err error) {
	defer func() { uc.observe(usecase.OperationDelete, err) }()

	if !uc.guard.Delete(id).Applied {
		return domain.ErrInfluenceNotFound
	}
	uc.logger.Info("influence event deleted", zap.String("id", id))
	return uc.flush(ctx)
}

func (uc *UseCase) flush(ctx context.Context) error {
	if err := uc.snapshots.Flush(ctx, repository.TableInfluences); err != nil {
		uc.logger.Warn("influence snapshot deferred", zap.Error(err))
		return usecase.StorageError(repository.TableInfluences, err)
	}
	return nil
}

func (uc *UseCase) observe(operation string, err error) {
	uc.observer.ObserveMutation(kind, operation, usecase.OutcomeOf(err))
}
