package archive

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/ManuelReschke/HookFox/internal/pkg/env"
)

// Config holds the S3 archive target
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Prefix          string
	BatchSize       int
}

// LoadConfig loads the archive configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Prefix:          strings.Trim(env.GetEnv("S3_ARCHIVE_PREFIX", "webhook-archive"), "/"),
		BatchSize:       env.GetEnvInt("ARCHIVE_BATCH_SIZE", 500),
	}

	if config.AccessKeyID == "" {
		return nil, errors.New("S3_ACCESS_KEY_ID is required for archiving")
	}
	if config.SecretAccessKey == "" {
		return nil, errors.New("S3_SECRET_ACCESS_KEY is required for archiving")
	}
	if config.BucketName == "" {
		return nil, errors.New("S3_BUCKET_NAME is required for archiving")
	}
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("ARCHIVE_BATCH_SIZE must be positive, got %d", config.BatchSize)
	}

	return config, nil
}

// ObjectKey returns the key for an export started at t.
// Format: <prefix>/webhook_events-YYYYMMDDTHHMMSSZ.jsonl
func (c *Config) ObjectKey(t time.Time) string {
	name := fmt.Sprintf("webhook_events-%s.jsonl", t.UTC().Format("20060102T150405Z"))
	if c.Prefix == "" {
		return name
	}
	return path.Join(c.Prefix, name)
}
