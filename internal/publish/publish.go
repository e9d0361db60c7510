package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gravadigital/konkatsu-api/internal/config"
	"github.com/gravadigital/konkatsu-api/internal/domain/seating"
	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
	"github.com/gravadigital/konkatsu-api/internal/logger"
)

// Snapshot is the document venue screens poll for.
type Snapshot struct {
	Party       string          `json:"party"`
	Round       vote.RoundType  `json:"round"`
	GeneratedAt time.Time       `json:"generated_at"`
	Seating     *seating.Result `json:"seating"`
}

// Publisher pushes generated seating charts somewhere displays can read them.
type Publisher interface {
	Publish(ctx context.Context, snap Snapshot) error
}

// Noop is used when object storage is not configured.
type Noop struct{}

func (Noop) Publish(context.Context, Snapshot) error { return nil }

// ObjectKey returns <party-slug>/<round>/seating.json.
func ObjectKey(partySlug string, round vote.RoundType) string {
	return path.Join(partySlug, string(round), "seating.json")
}

type MinioPublisher struct {
	client *minio.Client
	bucket string
	log    *log.Logger
}

// New returns Noop unless an endpoint is configured.
func New(cfg *config.Config) (Publisher, error) {
	if cfg.MinIO.Endpoint == "" {
		return Noop{}, nil
	}
	return NewMinioPublisher(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
}

// NewMinioPublisher does not contact the server; the bucket is checked on first publish.
func NewMinioPublisher(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioPublisher, error) {
	if bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioPublisher{
		client: client,
		bucket: bucket,
		log:    logger.Service("publish"),
	}, nil
}

func (p *MinioPublisher) ensureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", p.bucket, err)
	}
	if exists {
		return nil
	}

	p.log.Info("Creating bucket", "bucket", p.bucket)
	if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", p.bucket, err)
	}
	return nil
}

func (p *MinioPublisher) Publish(ctx context.Context, snap Snapshot) error {
	if err := p.ensureBucket(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := ObjectKey(snap.Party, snap.Round)
	info, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:  "application/json",
		CacheControl: "no-cache",
	})
	if err != nil {
		p.log.Error("Failed to upload seating snapshot", "key", key, "error", err)
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	p.log.Info("Seating snapshot published", "bucket", p.bucket, "key", key, "size", info.Size)
	return nil
}

var (
	_ Publisher = Noop{}
	_ Publisher = (*MinioPublisher)(nil)
)
