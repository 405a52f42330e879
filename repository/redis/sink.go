package redis

import (
	"context"
	"encoding/json"
	"fmt"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/orderdesk/repository"
)

// Sink keeps each table as a Redis list of JSON rows under prefix+table.
// A list keeps the snapshot order that a hash would lose.
type Sink struct {
	client *redislib.Client
	prefix string
}

// NewSink wraps an already connected client.
func NewSink(client *redislib.Client, prefix string) *Sink {
	return &Sink{client: client, prefix: prefix}
}

func (s *Sink) Driver() string { return "redis" }

func (s *Sink) Orders() repository.TableSink[repository.OrderRow] {
	return table[repository.OrderRow]{client: s.client, key: s.key(repository.TableOrders)}
}

func (s *Sink) Influences() repository.TableSink[repository.InfluenceRow] {
	return table[repository.InfluenceRow]{client: s.client, key: s.key(repository.TableInfluences)}
}

func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Sink) Close() error {
	return s.client.Close()
}

func (s *Sink) key(table string) string {
	return fmt.Sprintf("%s%s", s.prefix, table)
}

type table[Row any] struct {
	client *redislib.Client
	key    string
}

// Replace swaps the list contents inside MULTI/EXEC so readers see either the
// old or the new snapshot.
func (t table[Row]) Replace(ctx context.Context, rows []Row) error {
	values := make([]any, 0, len(rows))
	for _, row := range rows {
		payload, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
		values = append(values, payload)
	}

	_, err := t.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, t.key)
		if len(values) > 0 {
			pipe.RPush(ctx, t.key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace %s: %w", t.key, err)
	}
	return nil
}

func (t table[Row]) ReadAll(ctx context.Context) ([]Row, error) {
	raw, err := t.client.LRange(ctx, t.key, 0, -1).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", t.key, err)
	}

	rows := make([]Row, 0, len(raw))
	for _, item := range raw {
		var row Row
		if err := json.Unmarshal([]byte(item), &row); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", t.key, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var _ repository.Sink = (*Sink)(nil)
