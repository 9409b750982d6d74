package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/HookFox/app/models"
)

// EventSource iterates over stored events in id order.
type EventSource interface {
	Each(ctx context.Context, batchSize int, fn func(models.WebhookEvent) error) error
}

// Record is one line of the export.
type Record struct {
	ID           uint            `json:"id"`
	EventType    string          `json:"event_type"`
	Payload      json.RawMessage `json:"payload"`
	ContactEmail string          `json:"contact_email,omitempty"`
	ContactID    string          `json:"contact_id,omitempty"`
	SourceIP     string          `json:"source_ip,omitempty"`
	ParseOK      bool            `json:"parse_ok"`
	TestMode     bool            `json:"test_mode"`
	ReceivedAt   time.Time       `json:"received_at"`
}

func newRecord(e models.WebhookEvent) Record {
	raw := json.RawMessage(e.Payload)
	if !json.Valid(raw) {
		raw, _ = json.Marshal(e.Payload)
	}
	return Record{
		ID:           e.ID,
		EventType:    e.EventType,
		Payload:      raw,
		ContactEmail: e.ContactEmail,
		ContactID:    e.ContactID,
		SourceIP:     e.SourceIP,
		ParseOK:      e.ParseOK,
		TestMode:     e.TestMode,
		ReceivedAt:   e.ReceivedAt.UTC(),
	}
}

// Result describes a finished export.
type Result struct {
	Bucket    string
	ObjectKey string
	Events    int
	Bytes     int64
}

// Exporter copies every stored event to one JSONL object. Rows are never
// deleted.
type Exporter struct {
	source EventSource
	putter ObjectPutter
	config *Config
	now    func() time.Time
}

func NewExporter(source EventSource, putter ObjectPutter, cfg *Config) *Exporter {
	return &Exporter{source: source, putter: putter, config: cfg, now: time.Now}
}

// Export spools the events to a temp file so the upload has a known length.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	spool, err := os.CreateTemp("", "hookfox-archive-*.jsonl")
	if err != nil {
		return nil, fmt.Errorf("creating spool file: %w", err)
	}
	defer func() {
		_ = spool.Close()
		_ = os.Remove(spool.Name())
	}()

	count, err := WriteJSONL(ctx, e.source, spool, e.config.BatchSize)
	if err != nil {
		return nil, err
	}

	size, err := spool.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("sizing spool file: %w", err)
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding spool file: %w", err)
	}

	key := e.config.ObjectKey(e.now())
	if err := upload(ctx, e.putter, e.config.BucketName, key, spool, size); err != nil {
		return nil, err
	}

	log.Infof("[Archive] Exported %d events to s3://%s/%s", count, e.config.BucketName, key)
	return &Result{Bucket: e.config.BucketName, ObjectKey: key, Events: count, Bytes: size}, nil
}

// WriteJSONL writes one Record per line and returns how many were written.
func WriteJSONL(ctx context.Context, source EventSource, w io.Writer, batchSize int) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	count := 0
	err := source.Each(ctx, batchSize, func(ev models.WebhookEvent) error {
		if err := enc.Encode(newRecord(ev)); err != nil {
			return fmt.Errorf("encoding event %d: %w", ev.ID, err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	if err := bw.Flush(); err != nil {
		return count, fmt.Errorf("flushing export: %w", err)
	}
	return count, nil
}
