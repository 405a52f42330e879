package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/orderdesk/repository"
)

// Sink stores both record tables in Postgres. The schema is owned by the
// migrations under assets/migrations.
type Sink struct {
	pool      *pgxpool.Pool
	batchSize int
}

// NewSink returns a Postgres-backed snapshot sink. batchSize bounds the number
// of inserts queued per round trip.
func NewSink(pool *pgxpool.Pool, batchSize int) *Sink {
	return &Sink{pool: pool, batchSize: clampBatch(batchSize)}
}

func (s *Sink) Driver() string { return "postgres" }

func (s *Sink) Orders() repository.TableSink[repository.OrderRow] {
	return orderTable{sink: s}
}

func (s *Sink) Influences() repository.TableSink[repository.InfluenceRow] {
	return influenceTable{sink: s}
}

func (s *Sink) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Sink) Close() error {
	s.pool.Close()
	return nil
}

type orderTable struct {
	sink *Sink
}

func (t orderTable) Replace(ctx context.Context, rows []repository.OrderRow) error {
	const query = `
	INSERT INTO orders (cid, customer_name, product_version, dev_scale, purchased_lic_count,
		total_amount, status, description, create_time, pay_time, update_time)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	return t.sink.replace(ctx, repository.TableOrders, len(rows), func(b *pgx.Batch, i int) {
		r := rows[i]
		b.Queue(query,
			r.CID, r.CustomerName, r.ProductVersion, r.DevScale, r.PurchasedLicCount,
			r.TotalAmount, r.Status, r.Description, r.CreateTime, r.PayTime, r.UpdateTime,
		)
	})
}

func (t orderTable) ReadAll(ctx context.Context) ([]repository.OrderRow, error) {
	const query = `
	SELECT cid, customer_name, product_version, dev_scale, purchased_lic_count,
		total_amount, status, description, create_time, pay_time, update_time
	FROM orders
	ORDER BY seq
	`
	rows, err := t.sink.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.OrderRow
	for rows.Next() {
		var r repository.OrderRow
		if err := rows.Scan(
			&r.CID,
			&r.CustomerName,
			&r.ProductVersion,
			&r.DevScale,
			&r.PurchasedLicCount,
			&r.TotalAmount,
			&r.Status,
			&r.Description,
			&r.CreateTime,
			&r.PayTime,
			&r.UpdateTime,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type influenceTable struct {
	sink *Sink
}

func (t influenceTable) Replace(ctx context.Context, rows []repository.InfluenceRow) error {
	const query = `
	INSERT INTO influences (id, name, type, status, event_time, link, remark,
		image_urls, create_time, update_time)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	return t.sink.replace(ctx, repository.TableInfluences, len(rows), func(b *pgx.Batch, i int) {
		r := rows[i]
		b.Queue(query,
			r.ID, r.Name, r.Type, r.Status, r.EventTime, r.Link, r.Remark,
			r.ImageURLs, r.CreateTime, r.UpdateTime,
		)
	})
}

func (t influenceTable) ReadAll(ctx context.Context) ([]repository.InfluenceRow, error) {
	const query = `
	SELECT id, name, type, status, event_time, link, remark, image_urls, create_time, update_time
	FROM influences
	ORDER BY seq
	`
	rows, err := t.sink.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.InfluenceRow
	for rows.Next() {
		var r repository.InfluenceRow
		if err := rows.Scan(
			&r.ID,
			&r.Name,
			&r.Type,
			&r.Status,
			&r.EventTime,
			&r.Link,
			&r.Remark,
			&r.ImageURLs,
			&r.CreateTime,
			&r.UpdateTime,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// replace clears table and re-inserts n rows in one transaction, sending the
// inserts in batches.
func (s *Sink) replace(ctx context.Context, table string, n int, queue func(*pgx.Batch, int)) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{table}.Sanitize()); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	for start := 0; start < n; start += s.batchSize {
		end := min(start+s.batchSize, n)
		batch := &pgx.Batch{}
		for i := start; i < end; i++ {
			queue(batch, i)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

var _ repository.Sink = (*Sink)(nil)
