package session

import (
	"context"
	"sync"
	"time"

	"github.com/loyalty/backend/internal/domain/receipt"
	"github.com/loyalty/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Peer is one realtime connection. Send must be safe for concurrent use;
// a failed send means the connection is unusable.
type Peer interface {
	Send(msg Message) error
	Close() error
}

// PendingScan is the single outstanding customer-identification event.
// A new scan overwrites any prior unconsumed one (last-writer-wins).
type PendingScan struct {
	IdentifierToken string    `json:"barcode"`
	ObservedAt      time.Time `json:"scanned_at"`
}

// CorrelationResult links a pending scan with an extracted receipt. It is
// produced on a successful match and handed to the Recorder exactly once.
type CorrelationResult struct {
	Scan      PendingScan
	Receipt   receipt.Record
	MatchedAt time.Time
}

// Recorder is the persistence/scoring collaborator. OnCorrelated is invoked
// once per successful match from the coordinator's serialized context and
// returns the points awarded for the purchase. It must not block indefinitely.
type Recorder interface {
	OnCorrelated(ctx context.Context, result CorrelationResult) (int, error)
}

// Config holds the coordinator's timing knobs
type Config struct {
	MatchWindow         time.Duration // max scan-to-receipt elapsed time for a match
	FormTimeout         time.Duration // registration form input timeout shown to the display peer
	ConfirmationDisplay time.Duration // how long a confirmation shows before auto-reset
	CustomerInfoDisplay time.Duration // display-only auto-clear for the scan indicator
	ErrorDisplay        time.Duration // display-only auto-clear for error confirmations
}

// DefaultConfig returns the standard timings
func DefaultConfig() Config {
	return Config{
		MatchWindow:         30 * time.Second,
		FormTimeout:         120 * time.Second,
		ConfirmationDisplay: 5 * time.Second,
		CustomerInfoDisplay: 10 * time.Second,
		ErrorDisplay:        3 * time.Second,
	}
}

// Coordinator owns the session state machine and the pending-scan register.
// All mutation happens through its methods under a single mutex, so peer
// messages, file-system events and timers may call in concurrently.
type Coordinator struct {
	mu       sync.Mutex
	state    State
	pending  *PendingScan
	display  Peer // identity-facing peer (customer display / tablet)
	control  Peer // operator peer (register application)
	recorder Recorder
	cfg      Config
	log      *zap.Logger

	resetTimer *time.Timer
	now        func() time.Time
	stopped    bool
}

// NewCoordinator creates a coordinator in the idle state
func NewCoordinator(recorder Recorder, cfg Config, log *zap.Logger) *Coordinator {
	return &Coordinator{
		state:    StateIdle,
		recorder: recorder,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// AttachDisplay installs the identity-facing peer, replacing any previous
// one, and pushes the current state to it.
func (c *Coordinator) AttachDisplay(p Peer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.display != nil {
		_ = c.display.Close()
	}
	c.display = p
	c.log.Info("display peer connected")
	c.sendDisplayLocked(setStateMessage(c.state))
}

// AttachControl installs the operator peer, replacing any previous one
func (c *Coordinator) AttachControl(p Peer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.control != nil {
		_ = c.control.Close()
	}
	c.control = p
	c.log.Info("control peer connected")
	c.sendControlLocked(Message{"action": "connected", "timestamp": c.now().UTC().Format(time.RFC3339)})
}

// DetachDisplay clears the display slot if it still holds p. The session
// drops back to idle so a reconnecting display starts from a known state.
func (c *Coordinator) DetachDisplay(p Peer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.display != p {
		return
	}
	c.display = nil
	c.state = StateIdle
	c.log.Info("display peer disconnected")
}

// DetachControl clears the control slot if it still holds p
func (c *Coordinator) DetachControl(p Peer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.control != p {
		return
	}
	c.control = nil
	c.log.Info("control peer disconnected")
}

// HandleDisplayMessage dispatches an inbound message from the identity-facing
// peer. Unrecognized actions are ignored.
func (c *Coordinator) HandleDisplayMessage(msg Inbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return shared.ErrStopped
	}

	switch msg.Action {
	case ActionSubmitCustomerForm:
		c.submitFormLocked(msg.Data)
	case ActionResetToIdle:
		c.resetLocked()
	case ActionHeartbeat:
		c.sendDisplayLocked(heartbeatAckMessage())
	default:
		c.log.Debug("ignoring display action", zap.String("action", msg.Action))
	}
	return nil
}

// HandleControlMessage dispatches an inbound message from the operator peer.
// Unrecognized actions are ignored.
func (c *Coordinator) HandleControlMessage(msg Inbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return shared.ErrStopped
	}

	switch msg.Action {
	case ActionStartRegistration:
		c.startRegistrationLocked()
	case ActionCustomerScanned:
		c.recordScanLocked(msg.Barcode)
	case ActionReceiptProcessed:
		c.receiptProcessedLocked(msg.ReceiptData)
	case ActionResetToIdle:
		c.resetLocked()
	case ActionHeartbeat:
		c.sendControlLocked(heartbeatAckMessage())
	default:
		c.log.Debug("ignoring control action", zap.String("action", msg.Action))
	}
	return nil
}

// RecordScan records a customer identification token as the pending scan,
// overwriting any previous one. The session state is unchanged.
func (c *Coordinator) RecordScan(barcode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return shared.ErrStopped
	}
	c.recordScanLocked(barcode)
	return nil
}

// Reset forces the session back to idle, clearing the pending scan
func (c *Coordinator) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return shared.ErrStopped
	}
	c.resetLocked()
	return nil
}

// OfferReceipt attempts to correlate an extracted receipt with the pending
// scan. No pending scan, or a scan older than the match window, is a
// no-match: expected, logged, and dropped. The stale scan is not cleared by
// a failed match.
func (c *Coordinator) OfferReceipt(ctx context.Context, record receipt.Record) (*CorrelationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return nil, shared.ErrStopped
	}

	if c.pending == nil {
		c.log.Debug("no pending scan for receipt",
			zap.String("receipt_id", record.ReceiptID))
		return nil, nil
	}

	elapsed := c.now().Sub(c.pending.ObservedAt)
	if elapsed > c.cfg.MatchWindow {
		c.log.Debug("pending scan outside match window",
			zap.String("barcode", c.pending.IdentifierToken),
			zap.Duration("elapsed", elapsed))
		return nil, nil
	}

	result := &CorrelationResult{
		Scan:      *c.pending,
		Receipt:   record,
		MatchedAt: c.now(),
	}
	c.pending = nil

	points := 0
	if c.recorder != nil {
		awarded, err := c.recorder.OnCorrelated(ctx, *result)
		if err != nil {
			c.log.Error("purchase recorder failed",
				zap.String("barcode", result.Scan.IdentifierToken),
				zap.Error(err))
		} else {
			points = awarded
		}
	}

	complete := purchaseCompleteMessage(record, points, 8*time.Second)
	c.sendDisplayLocked(complete)
	c.sendControlLocked(complete)

	c.log.Info("purchase correlated",
		zap.String("barcode", result.Scan.IdentifierToken),
		zap.String("total", record.TotalAmount.String()),
		zap.Int("points", points))

	return result, nil
}

// BroadcastStatus pushes a system status snapshot to both peers
func (c *Coordinator) BroadcastStatus(status map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := systemStatusMessage(status)
	c.sendDisplayLocked(msg)
	c.sendControlLocked(msg)
}

// Status reports the coordinator's current registers for the admin surface
func (c *Coordinator) Status() (state State, pending *PendingScan, displayConnected, controlConnected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		copied := *c.pending
		pending = &copied
	}
	return c.state, pending, c.display != nil, c.control != nil
}

// Stop shuts the coordinator down. Further operations fail with ErrStopped.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
	if c.display != nil {
		_ = c.display.Close()
		c.display = nil
	}
	if c.control != nil {
		_ = c.control.Close()
		c.control = nil
	}
}

func (c *Coordinator) startRegistrationLocked() {
	c.state = StateRegistration
	c.sendDisplayLocked(registrationFormMessage(c.cfg.FormTimeout))
	c.sendControlLocked(Message{
		"action": "registration_started",
		"state":  string(c.state),
	})
}

func (c *Coordinator) submitFormLocked(data map[string]any) {
	name, _ := data["name"].(string)
	if name == "" {
		name = "Customer"
	}

	// An absent control peer is not a forwarding fault; only a broken send is.
	fault := false
	if c.control != nil {
		fault = !c.sendControlLocked(Message{
			"action":        "process_customer_registration",
			"customer_data": data,
			"timestamp":     c.now().UTC().Format(time.RFC3339),
		})
	}

	c.state = StateConfirmation
	if fault {
		c.sendDisplayLocked(errorMessage("Registration failed. Please try again.", c.cfg.ErrorDisplay))
	} else {
		c.sendDisplayLocked(confirmationMessage("Welcome, "+name+"!", c.cfg.ConfirmationDisplay))
	}

	c.scheduleResetLocked(c.cfg.ConfirmationDisplay)
}

func (c *Coordinator) recordScanLocked(barcode string) {
	if barcode == "" {
		c.log.Warn("ignoring empty barcode scan")
		return
	}

	c.pending = &PendingScan{
		IdentifierToken: barcode,
		ObservedAt:      c.now(),
	}
	c.sendDisplayLocked(customerInfoMessage(barcode, c.cfg.CustomerInfoDisplay))
	c.log.Info("customer scan recorded", zap.String("barcode", barcode))
}

func (c *Coordinator) receiptProcessedLocked(receiptData map[string]any) {
	points := 0
	if v, ok := receiptData["points_awarded"].(float64); ok {
		points = int(v)
	}
	c.sendDisplayLocked(Message{
		"action":         "show_purchase_complete",
		"receipt_data":   receiptData,
		"points_awarded": points,
		"auto_reset":     8,
	})
	c.pending = nil
}

func (c *Coordinator) resetLocked() {
	c.state = StateIdle
	c.pending = nil
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
	c.sendDisplayLocked(setStateMessage(StateIdle))
	c.sendControlLocked(Message{
		"action": "session_reset",
		"state":  string(StateIdle),
	})
}

// scheduleResetLocked arms the auto-reset timer without blocking other
// events. An existing timer is replaced.
func (c *Coordinator) scheduleResetLocked(after time.Duration) {
	if c.resetTimer != nil {
		c.resetTimer.Stop()
	}
	c.resetTimer = time.AfterFunc(after, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.stopped {
			return
		}
		c.resetLocked()
	})
}

// sendDisplayLocked sends to the display peer, failing soft: a broken
// connection is logged and the slot cleared. Returns whether the send
// succeeded.
func (c *Coordinator) sendDisplayLocked(msg Message) bool {
	if c.display == nil {
		return false
	}
	if err := c.display.Send(msg); err != nil {
		c.log.Warn("display peer send failed", zap.Error(err))
		c.display = nil
		return false
	}
	return true
}

func (c *Coordinator) sendControlLocked(msg Message) bool {
	if c.control == nil {
		return false
	}
	if err := c.control.Send(msg); err != nil {
		c.log.Warn("control peer send failed", zap.Error(err))
		c.control = nil
		return false
	}
	return true
}
