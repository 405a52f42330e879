package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/fastygo/orderdesk/repository"
)

// objectAPI is the subset of *s3.Client the sink uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Config holds construction parameters. Empty credentials fall back to the
// default AWS chain.
type Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// Sink stores each table as a single JSON array object at prefix/table.json.
// A PUT replaces the object whole, which is exactly the snapshot contract.
type Sink struct {
	client objectAPI
	bucket string
	prefix string
}

// New creates an S3 (or S3-compatible) sink.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newSink(client, cfg.Bucket, cfg.Prefix), nil
}

func newSink(client objectAPI, bucket, prefix string) *Sink {
	return &Sink{client: client, bucket: bucket, prefix: prefix}
}

func (s *Sink) Driver() string { return "s3" }

func (s *Sink) Orders() repository.TableSink[repository.OrderRow] {
	return table[repository.OrderRow]{sink: s, key: s.key(repository.TableOrders)}
}

func (s *Sink) Influences() repository.TableSink[repository.InfluenceRow] {
	return table[repository.InfluenceRow]{sink: s, key: s.key(repository.TableInfluences)}
}

func (s *Sink) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

func (s *Sink) Close() error { return nil }

func (s *Sink) key(table string) string {
	return path.Join(s.prefix, table+".json")
}

type table[Row any] struct {
	sink *Sink
	key  string
}

func (t table[Row]) Replace(ctx context.Context, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.key, err)
	}
	_, err = t.sink.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(t.sink.bucket),
		Key:           aws.String(t.key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", t.key, err)
	}
	return nil
}

// ReadAll treats a missing object as an empty table.
func (t table[Row]) ReadAll(ctx context.Context) ([]Row, error) {
	out, err := t.sink.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.sink.bucket),
		Key:    aws.String(t.key),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", t.key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.key, err)
	}
	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t.key, err)
	}
	return rows, nil
}

var _ repository.Sink = (*Sink)(nil)
