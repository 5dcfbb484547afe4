// Package logsink persists WARN and ERROR log lines into the logs table.
//
// A Sink is a zerolog.LevelWriter meant to sit behind zerolog.MultiLevelWriter
// next to the regular output. Request goroutines only enqueue; a single
// background processor batches entries into LogRepository.InsertBatch.
package logsink

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/repository"
)

// Options tunes a Sink; zero values fall back to the defaults below
type Options struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	MinLevel      zerolog.Level // Zero (debug) means warn
}

const (
	defaultBufferSize    = 1024
	defaultBatchSize     = 100
	defaultFlushInterval = 2 * time.Second
	flushTimeout         = 5 * time.Second
)

// Sink buffers log entries and writes them in batches.
// When the buffer is full new entries are dropped and counted.
type Sink struct {
	repo     repository.LogRepository
	log      zerolog.Logger
	entries  chan models.LogEntry
	opts     Options
	dropped  atomic.Int64
	inserted atomic.Int64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a sink. log reports the sink's own failures and must not
// write back into the sink.
func New(repo repository.LogRepository, opts Options, log zerolog.Logger) *Sink {
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = defaultFlushInterval
	}
	if opts.MinLevel == zerolog.DebugLevel {
		opts.MinLevel = zerolog.WarnLevel
	}

	return &Sink{
		repo:    repo,
		log:     log.With().Str("component", "logsink").Logger(),
		entries: make(chan models.LogEntry, opts.BufferSize),
		opts:    opts,
	}
}

// Write drops lines without a level
func (s *Sink) Write(p []byte) (int, error) {
	return len(p), nil
}

// WriteLevel enqueues the line when level is at least MinLevel. It never blocks.
func (s *Sink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < s.opts.MinLevel || level >= zerolog.NoLevel {
		return len(p), nil
	}

	// zerolog reuses p once we return
	entry := models.LogEntry{
		Level:     level.String(),
		Message:   string(bytes.TrimSpace(p)),
		CreatedAt: time.Now(),
	}

	select {
	case s.entries <- entry:
	default:
		s.dropped.Add(1)
	}
	return len(p), nil
}

// Start launches the background processor
func (s *Sink) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)

	s.log.Info().
		Int("buffer", s.opts.BufferSize).
		Int("batch", s.opts.BatchSize).
		Dur("interval", s.opts.FlushInterval).
		Msg("Log sink started")
}

// Stop flushes pending entries and waits for the processor to exit
func (s *Sink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false

	s.log.Info().
		Int64("inserted", s.inserted.Load()).
		Int64("dropped", s.dropped.Load()).
		Msg("Log sink stopped")
}

// Dropped returns the number of entries lost to a full buffer
func (s *Sink) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Sink) run(ctx context.Context) {
	defer s.wg.Done()

	// Panic recovery - a failing sink must not take the server down
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Log sink panicked - recovered")
		}
	}()

	ticker := time.NewTicker(s.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([]models.LogEntry, 0, s.opts.BatchSize)
	for {
		select {
		case <-ctx.Done():
			s.drain(batch)
			return
		case entry := <-s.entries:
			batch = append(batch, entry)
			if len(batch) >= s.opts.BatchSize {
				batch = s.flush(batch)
			}
		case <-ticker.C:
			batch = s.flush(batch)
		}
	}
}

// drain flushes whatever is still buffered
func (s *Sink) drain(batch []models.LogEntry) {
	for {
		select {
		case entry := <-s.entries:
			batch = append(batch, entry)
			if len(batch) >= s.opts.BatchSize {
				batch = s.flush(batch)
			}
		default:
			s.flush(batch)
			return
		}
	}
}

func (s *Sink) flush(batch []models.LogEntry) []models.LogEntry {
	if len(batch) == 0 {
		return batch
	}

	// The processor context may already be canceled while draining
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	n, err := s.repo.InsertBatch(ctx, batch)
	if err != nil {
		s.log.Error().Err(err).Int("entries", len(batch)).Msg("Failed to persist log entries")
	} else {
		s.inserted.Add(int64(n))
	}
	return batch[:0]
}
