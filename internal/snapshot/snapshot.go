package snapshot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/orderdesk/internal/records"
	"github.com/fastygo/orderdesk/repository"
)

// Snapshotter copies one in-memory store to and from one durable table.
type Snapshotter[R records.Record[R], Row any] struct {
	name   string
	store  *records.Store[R]
	table  repository.TableSink[Row]
	codec  Codec[R, Row]
	logger *zap.Logger
}

// New binds store to table under name (the table name used in logs and metrics).
func New[R records.Record[R], Row any](
	name string,
	store *records.Store[R],
	table repository.TableSink[Row],
	codec Codec[R, Row],
	logger *zap.Logger,
) *Snapshotter[R, Row] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Snapshotter[R, Row]{
		name:   name,
		store:  store,
		table:  table,
		codec:  codec,
		logger: logger.With(zap.String("table", name)),
	}
}

func (s *Snapshotter[R, Row]) Name() string { return s.name }

// Save replaces the durable table with the current store contents. Mutations
// racing with Save may or may not be included.
func (s *Snapshotter[R, Row]) Save(ctx context.Context) (int, error) {
	started := time.Now()
	recs := s.store.Snapshot()
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, s.codec.Encode(rec))
	}

	if err := s.table.Replace(ctx, rows); err != nil {
		s.logger.Error("snapshot save failed", zap.Int("rows", len(rows)), zap.Error(err))
		return 0, fmt.Errorf("save %s snapshot: %w", s.name, err)
	}

	s.logger.Debug("snapshot saved",
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return len(rows), nil
}

// Load replaces the store contents with the durable table. Bad timestamp or
// list columns are logged and left empty; rows that cannot be decoded at all
// are logged and skipped.
func (s *Snapshotter[R, Row]) Load(ctx context.Context) (int, error) {
	rows, err := s.table.ReadAll(ctx)
	if err != nil {
		s.logger.Error("snapshot load failed", zap.Error(err))
		return 0, fmt.Errorf("load %s snapshot: %w", s.name, err)
	}

	recs := make([]R, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, issues, err := s.codec.Decode(row)
		if err != nil {
			skipped++
			s.logger.Warn("skipping unreadable row", zap.String("id", s.codec.Key(row)), zap.Error(err))
			continue
		}
		for _, issue := range issues {
			s.logger.Warn("field left empty",
				zap.String("id", s.codec.Key(row)),
				zap.String("field", issue.Field),
				zap.String("value", issue.Value),
				zap.Error(issue.Err),
			)
		}
		recs = append(recs, rec)
	}

	s.store.Replace(recs)
	s.logger.Info("snapshot loaded", zap.Int("records", len(recs)), zap.Int("skipped", skipped))
	return len(recs), nil
}
