// Package backup uploads snapshots of the household document to
// S3-compatible storage. Snapshots are taken on a schedule and on
// demand; the document itself is the unit of backup, so a restore is a
// single object fetch.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"

	"github.com/pcashin/hearthtab/internal/store"
)

// s3Client is the slice of the S3 API the manager uses.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds S3-compatible storage settings. An empty bucket or key
// pair leaves the manager disabled.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
	Interval  time.Duration
}

// Status is the manager's last-known state, surfaced over the API.
type Status struct {
	Enabled    bool       `json:"enabled"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}

type Manager struct {
	mu     sync.Mutex
	cfg    Config
	client s3Client
	docs   *store.DocumentStore
	logger *slog.Logger
	status Status
	now    func() time.Time

	retryBase time.Duration
}

func NewManager(cfg Config, docs *store.DocumentStore, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:       cfg,
		docs:      docs,
		logger:    logger,
		now:       time.Now,
		retryBase: time.Second,
	}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		m.client = newS3Client(cfg)
		m.status.Enabled = true
	}
	return m
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Run takes a snapshot every configured interval until ctx is done.
// Returns immediately when the manager is disabled.
func (m *Manager) Run(ctx context.Context) {
	if m.client == nil || m.cfg.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.BackupNow(ctx); err != nil {
				m.logger.Error("scheduled backup failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// BackupNow snapshots the current document to the bucket. Transient
// upload failures are retried with backoff before giving up.
func (m *Manager) BackupNow(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("backup not configured")
	}

	doc, version, err := m.docs.Load()
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	key := m.objectKey(version)
	backoff := retry.WithMaxRetries(3, retry.NewExponential(m.retryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(m.cfg.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.status.LastError = err.Error()
		return fmt.Errorf("upload backup: %w", err)
	}
	t := m.now()
	m.status.LastBackup = &t
	m.status.LastError = ""
	m.logger.Info("document backed up", "key", key, "bytes", len(data))
	return nil
}

// Status returns a copy of the manager's current status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) objectKey(version int64) string {
	prefix := m.cfg.Prefix
	if prefix == "" {
		prefix = "hearthtab"
	}
	return fmt.Sprintf("%s/%s-v%d.json", prefix, m.now().UTC().Format("20060102T150405Z"), version)
}
