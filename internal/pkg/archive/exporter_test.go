package archive

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/HookFox/app/models"
	"github.com/ManuelReschke/HookFox/app/repository"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func seededRepo(t *testing.T, payloads ...string) repository.WebhookEventRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "archive.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	repo := repository.NewWebhookEventRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Initialize(ctx))
	for _, p := range payloads {
		_, err := repo.InsertEvent(ctx, &models.WebhookEvent{EventType: "contact_add", Payload: p, ParseOK: json.Valid([]byte(p))})
		require.NoError(t, err)
	}
	return repo
}

func readLines(t *testing.T, data []byte) []Record {
	t.Helper()
	var out []Record
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var r Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r), "line: %s", sc.Text())
		out = append(out, r)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestWriteJSONL_OneLinePerEvent(t *testing.T) {
	repo := seededRepo(t, `{"type":"contact_add","n":1}`, `{"n":2}`, `legacy text`)

	var buf bytes.Buffer
	n, err := WriteJSONL(context.Background(), repo, &buf, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	records := readLines(t, buf.Bytes())
	require.Len(t, records, 3)
	assert.Less(t, records[0].ID, records[1].ID)
	assert.JSONEq(t, `{"type":"contact_add","n":1}`, string(records[0].Payload))
	assert.Equal(t, `"legacy text"`, string(records[2].Payload))
	assert.False(t, records[2].ParseOK)
}

func TestWriteJSONL_EmptyTable(t *testing.T) {
	repo := seededRepo(t)

	var buf bytes.Buffer
	n, err := WriteJSONL(context.Background(), repo, &buf, 10)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, buf.Len())
}

func TestExporter_UploadsJSONL(t *testing.T) {
	repo := seededRepo(t, `{"a":1}`, `{"b":2}`)
	putter := &fakePutter{}
	cfg := &Config{BucketName: "hooks", Prefix: "exports", BatchSize: 100}

	exp := NewExporter(repo, putter, cfg)
	exp.now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }

	res, err := exp.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Events)
	assert.Equal(t, "exports/webhook_events-20261019T083000Z.jsonl", res.ObjectKey)

	require.NotNil(t, putter.input)
	assert.Equal(t, "hooks", aws.ToString(putter.input.Bucket))
	assert.Equal(t, res.ObjectKey, aws.ToString(putter.input.Key))
	assert.Equal(t, res.Bytes, aws.ToInt64(putter.input.ContentLength))
	assert.Equal(t, int64(len(putter.body)), res.Bytes)
	assert.Len(t, readLines(t, putter.body), 2)
}

func TestExporter_UploadFailure(t *testing.T) {
	repo := seededRepo(t, `{"a":1}`)
	putter := &fakePutter{err: errors.New("access denied")}

	_, err := NewExporter(repo, putter, &Config{BucketName: "hooks", BatchSize: 10}).Export(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "webhook_events-20260102T020405Z.jsonl", (&Config{}).ObjectKey(at))
	assert.Equal(t, "a/b/webhook_events-20260102T020405Z.jsonl", (&Config{Prefix: "a/b"}).ObjectKey(at))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("S3_ACCESS_KEY_ID", "key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("S3_BUCKET_NAME", "hooks")
	t.Setenv("S3_ARCHIVE_PREFIX", "/exports/")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "exports", cfg.Prefix)
	assert.Equal(t, 500, cfg.BatchSize)

	t.Setenv("S3_BUCKET_NAME", "")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "S3_BUCKET_NAME")
}
