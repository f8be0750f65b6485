package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/appendblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

const (
	// logs are grouped by day: YYYY/MM/DD/<host>.jsonl
	dateFolderFormat = "%d/%02d/%02d"
	defaultFlush     = 2 * time.Second
	sinkBuffer       = 1024
)

var errSinkClosed = errors.New("blob log sink is closed")

type appender interface {
	AppendBlock(ctx context.Context, body io.ReadSeekCloser, o *appendblob.AppendBlockOptions) (appendblob.AppendBlockResponse, error)
}

// BlobSinkConfig points a BlobSink at an append blob.
type BlobSinkConfig struct {
	AccountName string
	AccountKey  string
	Container   string
	BlobName    string        // defaults to YYYY/MM/DD/<hostname>.jsonl
	FlushEvery  time.Duration // default 2s
	Level       slog.Leveler
}

// BlobSink is a slog.Handler that batches JSON lines and appends them to a
// blob on a timer.
type BlobSink struct {
	level  slog.Leveler
	attrs  []slog.Attr
	shared *sinkState
}

type sinkState struct {
	out    appender
	ch     chan []byte
	stop   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	every  time.Duration
}

func blobName(now time.Time) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "greenearth"
	}
	return fmt.Sprintf(dateFolderFormat, now.Year(), int(now.Month()), now.Day()) + "/" + host + ".jsonl"
}

// NewBlobSink creates the log blob if needed and starts the background writer.
// Without an account key it authenticates with the default Azure credential
// chain, the same rule the blob snapshot cache follows.
func NewBlobSink(ctx context.Context, cfg BlobSinkConfig) (*BlobSink, error) {
	if cfg.BlobName == "" {
		cfg.BlobName = blobName(time.Now().UTC())
	}
	client, err := newAppendBlobClient(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := client.Create(ctx, nil); err != nil && !bloberror.HasCode(err, bloberror.BlobAlreadyExists) {
		return nil, fmt.Errorf("create log blob %s: %w", cfg.BlobName, err)
	}

	return newBlobSink(ctx, client, cfg.FlushEvery, cfg.Level), nil
}

func newAppendBlobClient(cfg BlobSinkConfig) (*appendblob.Client, error) {
	accountName := strings.TrimSpace(cfg.AccountName)
	if accountName == "" || strings.TrimSpace(cfg.Container) == "" {
		return nil, errors.New("account name and container are required for blob logging")
	}

	// BlobName may contain slashes; only the container is escaped.
	blobURL := "https://" + accountName + ".blob.core.windows.net/" + url.PathEscape(strings.TrimSpace(cfg.Container)) + "/" + cfg.BlobName

	var (
		client *appendblob.Client
		err    error
	)
	if key := strings.TrimSpace(cfg.AccountKey); key != "" {
		cred, credErr := azblob.NewSharedKeyCredential(accountName, key)
		if credErr != nil {
			return nil, fmt.Errorf("create shared key credential: %w", credErr)
		}
		client, err = appendblob.NewClientWithSharedKeyCredential(blobURL, cred, nil)
	} else {
		var cred azcore.TokenCredential
		cred, err = azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("create default azure credential: %w", err)
		}
		client, err = appendblob.NewClient(blobURL, cred, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("create append blob client: %w", err)
	}
	return client, nil
}

func newBlobSink(ctx context.Context, out appender, every time.Duration, level slog.Leveler) *BlobSink {
	if every <= 0 {
		every = defaultFlush
	}
	if level == nil {
		level = slog.LevelInfo
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	state := &sinkState{
		out:    out,
		ch:     make(chan []byte, sinkBuffer),
		stop:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		every:  every,
	}
	state.wg.Add(1)
	go state.loop()
	return &BlobSink{level: level, shared: state}
}

// Close flushes buffered lines and stops the background writer.
func (h *BlobSink) Close() error {
	h.shared.once.Do(func() {
		close(h.shared.stop)
		h.shared.wg.Wait()
		h.shared.cancel()
	})
	return nil
}

func (h *BlobSink) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *BlobSink) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	ev := make(map[string]any, r.NumAttrs()+len(h.attrs)+3)
	ev["ts"] = ts.UTC().Format(time.RFC3339Nano)
	ev["level"] = r.Level.String()
	ev["msg"] = r.Message

	add := func(a slog.Attr) bool {
		a.Value = a.Value.Resolve()
		if a.Value.Kind() == slog.KindGroup {
			// one level deep
			group := map[string]any{}
			for _, ga := range a.Value.Group() {
				group[ga.Key] = ga.Value.Resolve().Any()
			}
			ev[a.Key] = group
			return true
		}
		if err, ok := a.Value.Any().(error); ok {
			ev[a.Key] = err.Error()
			return true
		}
		ev[a.Key] = a.Value.Any()
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		return err
	}

	select {
	case <-h.shared.stop:
		return errSinkClosed
	default:
	}
	select {
	case h.shared.ch <- b.Bytes():
		return nil
	case <-h.shared.stop:
		return errSinkClosed
	}
}

func (h *BlobSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BlobSink{
		level:  h.level,
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
		shared: h.shared,
	}
}

func (h *BlobSink) WithGroup(string) slog.Handler { return h }

func (s *sinkState) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	var buf []byte
	flush := func() {
		if len(buf) == 0 {
			return
		}
		if _, err := s.out.AppendBlock(s.ctx, streaming.NopCloser(bytes.NewReader(buf)), nil); err != nil {
			// slog would recurse into this handler
			fmt.Fprintf(os.Stderr, "append logs to blob: %v\n", err)
		}
		buf = buf[:0]
	}

	for {
		select {
		case line := <-s.ch:
			buf = append(buf, line...)
		case <-s.stop:
			for {
				select {
				case line := <-s.ch:
					buf = append(buf, line...)
				default:
					flush()
					return
				}
			}
		case <-ticker.C:
			flush()
		}
	}
}
