package monitor

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/loyalty/backend/internal/application/session"
	"github.com/loyalty/backend/internal/domain/receipt"
	"github.com/loyalty/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Correlator is the matching entry point valid receipt records are handed to
type Correlator interface {
	OfferReceipt(ctx context.Context, record receipt.Record) (*session.CorrelationResult, error)
}

// Config holds surface monitor settings
type Config struct {
	Enabled              bool
	Path                 string        // flat directory to watch (e.g. a print spool)
	Debounce             time.Duration // wait before reading a notified artifact
	HousekeepingInterval time.Duration // processed-set trim cadence
	ProcessedCapacity    int           // trim threshold for the processed-set
	ProcessedRetain      int           // entries kept after a trim
	QueueSize            int           // bounded work queue feeding the worker
}

// DefaultConfig returns the standard monitor settings
func DefaultConfig(path string) Config {
	return Config{
		Enabled:              true,
		Path:                 path,
		Debounce:             500 * time.Millisecond,
		HousekeepingInterval: 5 * time.Second,
		ProcessedCapacity:    1000,
		ProcessedRetain:      500,
		QueueSize:            64,
	}
}

// allowedSuffixes is the artifact filename allow-list. Other files are
// ignored without entering the processed-set.
var allowedSuffixes = []string{".txt", ".prn", ".spl", ".log"}

// Monitor watches a spool directory for new or modified artifacts, decodes
// them, runs the receipt extractor, and hands valid records to the
// correlator. Each artifact path is handled at most once while its
// processed-set entry is retained.
type Monitor struct {
	cfg        Config
	correlator Correlator
	log        *zap.Logger

	mu        sync.Mutex
	processed map[string]uint64 // path -> recency sequence
	seq       uint64
	started   bool

	watcher *fsnotify.Watcher
	queue   chan string
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a monitor. Start must be called before it watches anything.
func New(cfg Config, correlator Correlator, log *zap.Logger) *Monitor {
	return &Monitor{
		cfg:        cfg,
		correlator: correlator,
		log:        log,
		processed:  make(map[string]uint64),
	}
}

// Config returns the monitor's configuration
func (m *Monitor) Config() Config {
	return m.cfg
}

// Start attaches the directory watch and launches the event loop, the
// processing worker and the housekeeping ticker. Calling Start on a monitor
// that is already running is an error.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return shared.NewDomainError("ALREADY_STARTED", "Monitor is already running")
	}
	if !m.cfg.Enabled {
		m.log.Info("receipt monitoring disabled")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(m.cfg.Path); err != nil {
		_ = watcher.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	m.watcher = watcher
	m.cancel = cancel
	m.queue = make(chan string, m.cfg.QueueSize)
	m.started = true

	m.wg.Add(3)
	go m.eventLoop(ctx)
	go m.worker(ctx)
	go m.housekeeping(ctx)

	m.log.Info("receipt monitoring started", zap.String("path", m.cfg.Path))
	return nil
}

// Stop detaches the watch and cancels the worker and housekeeping loops.
// In-flight debounced reads are dropped.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	cancel := m.cancel
	watcher := m.watcher
	m.mu.Unlock()

	cancel()
	_ = watcher.Close()
	m.wg.Wait()
	m.log.Info("receipt monitoring stopped")
}

// Running reports whether the monitor is watching
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// ProcessedCount returns the current processed-set size
func (m *Monitor) ProcessedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.processed)
}

// Inject runs a receipt text through extraction and correlation directly,
// bypassing the filesystem. Used by the admin test surface.
func (m *Monitor) Inject(ctx context.Context, text string) (receipt.Record, *session.CorrelationResult, error) {
	record := receipt.Extract(text)
	if !record.IsValid() {
		return record, nil, nil
	}
	result, err := m.correlator.OfferReceipt(ctx, record)
	return record, result, err
}

// eventLoop turns filesystem notifications into debounced queue entries.
// The debounce lets a partially-written artifact finish before it is read;
// it never blocks handling of other events.
func (m *Monitor) eventLoop(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !allowedArtifact(event.Name) {
				continue
			}
			if m.alreadyProcessed(event.Name) {
				continue
			}
			m.scheduleRead(ctx, event.Name)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// scheduleRead enqueues the path after the debounce delay. A full queue
// drops the artifact rather than stalling the event loop.
func (m *Monitor) scheduleRead(ctx context.Context, path string) {
	time.AfterFunc(m.cfg.Debounce, func() {
		select {
		case <-ctx.Done():
		case m.queue <- path:
		default:
			m.log.Warn("work queue full, dropping artifact", zap.String("path", path))
		}
	})
}

// worker is the single goroutine that reads, extracts and correlates.
// Keeping it single ensures at-most-once handling per path.
func (m *Monitor) worker(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case path := <-m.queue:
			m.process(ctx, path)
		}
	}
}

func (m *Monitor) process(ctx context.Context, path string) {
	if m.alreadyProcessed(path) {
		return
	}

	text, err := readArtifact(path)
	if err != nil {
		m.log.Warn("failed to read artifact", zap.String("path", path), zap.Error(err))
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	// Mark processed before extraction so a downstream fault cannot cause
	// a reprocessing storm for this path.
	m.markProcessed(path)

	record := receipt.Extract(text)
	if !record.IsValid() {
		m.log.Debug("artifact is not a valid receipt", zap.String("path", path))
		return
	}

	if _, err := m.correlator.OfferReceipt(ctx, record); err != nil {
		m.log.Warn("correlation failed", zap.String("path", path), zap.Error(err))
	}
}

func (m *Monitor) alreadyProcessed(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.processed[path]
	return ok
}

func (m *Monitor) markProcessed(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.processed[path] = m.seq
}

// housekeeping trims the processed-set to the most recent entries once it
// exceeds capacity, independent of file events.
func (m *Monitor) housekeeping(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.HousekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.trimProcessed()
		}
	}
}

func (m *Monitor) trimProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.processed) <= m.cfg.ProcessedCapacity {
		return
	}

	// Keep the ProcessedRetain most recent sequence numbers.
	cutoff := m.seq - uint64(m.cfg.ProcessedRetain)
	for path, seq := range m.processed {
		if seq <= cutoff {
			delete(m.processed, path)
		}
	}
	m.log.Debug("trimmed processed-set", zap.Int("remaining", len(m.processed)))
}

func allowedArtifact(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range allowedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
