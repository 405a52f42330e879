package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/fastygo/orderdesk/repository"
)

var schema = []string{`CREATE TABLE IF NOT EXISTS orders (
	cid TEXT PRIMARY KEY,
	customer_name TEXT NOT NULL,
	product_version TEXT NOT NULL,
	dev_scale INTEGER NOT NULL,
	purchased_lic_count INTEGER NOT NULL,
	total_amount TEXT NOT NULL,
	status INTEGER NOT NULL,
	description TEXT,
	create_time TEXT,
	pay_time TEXT,
	update_time TEXT
)`, `CREATE TABLE IF NOT EXISTS influences (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	event_time TEXT,
	link TEXT,
	remark TEXT,
	image_urls TEXT,
	create_time TEXT,
	update_time TEXT
)`}

// Sink persists both record tables in a single SQLite file.
type Sink struct {
	db   *sql.DB
	path string
}

// Open creates the database file (and parent directories) when missing and
// ensures both tables exist.
func Open(path string) (*Sink, error) {
	if path == "" {
		path = "orderdesk.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; sqlite serialises anyway and this avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	for _, ddl := range schema {
		if _, err := db.Exec(ddl); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return &Sink{db: db, path: path}, nil
}

func (s *Sink) Driver() string { return "sqlite" }

func (s *Sink) Orders() repository.TableSink[repository.OrderRow] {
	return orderTable{db: s.db}
}

func (s *Sink) Influences() repository.TableSink[repository.InfluenceRow] {
	return influenceTable{db: s.db}
}

func (s *Sink) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Sink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the handle for tests and tooling.
func (s *Sink) DB() *sql.DB { return s.db }

type orderTable struct {
	db *sql.DB
}

func (t orderTable) Replace(ctx context.Context, rows []repository.OrderRow) error {
	const insert = `INSERT INTO orders (cid, customer_name, product_version, dev_scale, purchased_lic_count,
		total_amount, status, description, create_time, pay_time, update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return replaceAll(ctx, t.db, repository.TableOrders, insert, len(rows), func(stmt *sql.Stmt, i int) error {
		r := rows[i]
		_, err := stmt.ExecContext(ctx,
			r.CID, r.CustomerName, r.ProductVersion, r.DevScale, r.PurchasedLicCount,
			r.TotalAmount, r.Status, r.Description, r.CreateTime, r.PayTime, r.UpdateTime,
		)
		return err
	})
}

func (t orderTable) ReadAll(ctx context.Context) ([]repository.OrderRow, error) {
	const query = `SELECT cid, customer_name, product_version, dev_scale, purchased_lic_count,
		total_amount, status, description, create_time, pay_time, update_time
		FROM orders ORDER BY rowid`

	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []repository.OrderRow
	for rows.Next() {
		var (
			r                                         repository.OrderRow
			description, createTime, payTime, updTime sql.NullString
		)
		if err := rows.Scan(&r.CID, &r.CustomerName, &r.ProductVersion, &r.DevScale, &r.PurchasedLicCount,
			&r.TotalAmount, &r.Status, &description, &createTime, &payTime, &updTime); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		r.Description = nullable(description)
		r.CreateTime = nullable(createTime)
		r.PayTime = nullable(payTime)
		r.UpdateTime = nullable(updTime)
		out = append(out, r)
	}
	return out, rows.Err()
}

type influenceTable struct {
	db *sql.DB
}

func (t influenceTable) Replace(ctx context.Context, rows []repository.InfluenceRow) error {
	const insert = `INSERT INTO influences (id, name, type, status, event_time, link, remark,
		image_urls, create_time, update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return replaceAll(ctx, t.db, repository.TableInfluences, insert, len(rows), func(stmt *sql.Stmt, i int) error {
		r := rows[i]
		_, err := stmt.ExecContext(ctx,
			r.ID, r.Name, r.Type, r.Status, r.EventTime, r.Link, r.Remark,
			r.ImageURLs, r.CreateTime, r.UpdateTime,
		)
		return err
	})
}

func (t influenceTable) ReadAll(ctx context.Context) ([]repository.InfluenceRow, error) {
	const query = `SELECT id, name, type, status, event_time, link, remark, image_urls, create_time, update_time
		FROM influences ORDER BY rowid`

	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select influences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []repository.InfluenceRow
	for rows.Next() {
		var (
			r                                                  repository.InfluenceRow
			eventTime, link, remark, images, created, updated sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Type, &r.Status,
			&eventTime, &link, &remark, &images, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan influence: %w", err)
		}
		r.EventTime = nullable(eventTime)
		r.Link = nullable(link)
		r.Remark = nullable(remark)
		r.ImageURLs = nullable(images)
		r.CreateTime = nullable(created)
		r.UpdateTime = nullable(updated)
		out = append(out, r)
	}
	return out, rows.Err()
}

// replaceAll empties table and inserts n rows inside one transaction.
func replaceAll(ctx context.Context, db *sql.DB, table, insert string, n int, exec func(*sql.Stmt, int) error) (retErr error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

var _ repository.Sink = (*Sink)(nil)
