package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/restoflow/websrm-adapter/internal/domain/entity"
	"github.com/restoflow/websrm-adapter/internal/domain/enum"
	"github.com/restoflow/websrm-adapter/internal/domain/repository"
	"github.com/restoflow/websrm-adapter/internal/websrm"
)

// persistTimeout bounds outcome writes that outlive the loop context during
// shutdown.
const persistTimeout = 10 * time.Second

// SubmitClient is the slice of the protocol client the dispatcher needs.
type SubmitClient interface {
	Submit(ctx context.Context, tx *entity.FiscalTransaction, requestID string) (*websrm.Response, error)
}

// DispatchConfig tunes the retry scheduler.
type DispatchConfig struct {
	MaxAttempts    int
	BackoffBase    time.Duration
	BackoffCap     time.Duration
	RequestTimeout time.Duration
	PollInterval   time.Duration
	BatchSize      int
	// DeviceRate bounds submissions per second per device, honoring the
	// endpoint's throughput policy.
	DeviceRate float64
}

// DefaultDispatchConfig returns the protocol defaults.
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		MaxAttempts:    websrm.DefaultMaxAttempts,
		BackoffBase:    websrm.DefaultBackoffBase,
		BackoffCap:     websrm.DefaultBackoffCap,
		RequestTimeout: websrm.DefaultRequestTimeout,
		PollInterval:   5 * time.Second,
		BatchSize:      20,
		DeviceRate:     1,
	}
}

// Dispatcher is the retry scheduler: a single coordinating loop that claims
// due queue entries, submits them and applies the transient/permanent failure
// policy. Entries for different devices go out concurrently; entries sharing
// a device are serialized and rate limited.
type Dispatcher struct {
	queueRepo repository.QueueRepository
	client    SubmitClient
	cfg       DispatchConfig
	owner     string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewDispatcher creates a dispatcher with its own lease owner identity.
func NewDispatcher(queueRepo repository.QueueRepository, client SubmitClient, cfg DispatchConfig) *Dispatcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = websrm.DefaultMaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = websrm.DefaultBackoffBase
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = websrm.DefaultBackoffCap
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = websrm.DefaultRequestTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.DeviceRate <= 0 {
		cfg.DeviceRate = 1
	}
	return &Dispatcher{
		queueRepo: queueRepo,
		client:    client,
		cfg:       cfg,
		owner:     "dispatcher-" + uuid.New().String()[:8],
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Run polls for due entries until the context is cancelled. In-flight
// submissions are always given their full request timeout: once an entry is
// sending, the remote side may already have accepted it, so the loop never
// abandons a request midway.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Printf("%s: dispatch loop started (poll %v, batch %d)", d.owner, d.cfg.PollInterval, d.cfg.BatchSize)
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		d.DispatchDue(ctx)
		select {
		case <-ctx.Done():
			log.Printf("%s: dispatch loop stopped", d.owner)
			return
		case <-ticker.C:
		}
	}
}

// DispatchDue claims one batch of due entries and submits them, grouped by
// device. It returns once every claimed entry reached a new state.
func (d *Dispatcher) DispatchDue(ctx context.Context) {
	lease := d.cfg.RequestTimeout + 30*time.Second
	claimed, err := d.queueRepo.ClaimDue(ctx, d.owner, lease, d.cfg.BatchSize)
	if err != nil {
		log.Printf("%s: claim failed: %v", d.owner, err)
		return
	}
	if len(claimed) == 0 {
		return
	}

	byDevice := make(map[string][]entity.QueueEntry)
	for _, e := range claimed {
		byDevice[e.DeviceID] = append(byDevice[e.DeviceID], e)
	}

	var wg sync.WaitGroup
	for deviceID, entries := range byDevice {
		wg.Add(1)
		go func(deviceID string, entries []entity.QueueEntry) {
			defer wg.Done()
			limiter := d.deviceLimiter(deviceID)
			for i := range entries {
				if err := limiter.Wait(ctx); err != nil {
					// Shutdown while waiting for a rate slot. The entry was
					// never sent; release it back to its previous state.
					d.release(&entries[i])
					continue
				}
				d.dispatch(ctx, &entries[i])
			}
		}(deviceID, entries)
	}
	wg.Wait()
}

// dispatch submits one claimed entry and applies the state machine policy.
func (d *Dispatcher) dispatch(ctx context.Context, entry *entity.QueueEntry) {
	// The request gets its full timeout even if the loop context is being
	// cancelled: no retry-construction of a new idTrans, no half-abandoned
	// submissions.
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.RequestTimeout)
	defer cancel()

	resp, err := d.client.Submit(reqCtx, &entry.Transaction, uuid.New().String())

	// The outcome is persisted with its own shutdown-proof context: a
	// confirmation received but never written would leave the entry sending,
	// and the re-submission after lease expiry comes back as a duplicate.
	persistCtx, cancelPersist := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancelPersist()

	switch {
	case err != nil:
		code := enum.CodeGenericError
		if websrm.IsTimeout(err) {
			code = enum.CodeTimeout
		}
		d.recordTransient(persistCtx, entry, code, err.Error())
	case resp.CodeRetour.IsSuccess():
		d.recordSent(persistCtx, entry, resp)
	case resp.CodeRetour.IsRetryable():
		d.recordTransient(persistCtx, entry, resp.CodeRetour, resp.ErrorSummary())
	default:
		d.recordPermanent(persistCtx, entry, resp.CodeRetour, resp.ErrorSummary())
	}
}

func (d *Dispatcher) recordSent(ctx context.Context, entry *entity.QueueEntry, resp *websrm.Response) {
	from := entry.Status
	entry.Status = enum.QueueSent
	entry.NextAttemptAt = nil
	entry.LastErrorCode = ""
	entry.LastErrorMessage = ""
	entry.LeaseOwner = nil
	entry.LeaseExpiresAt = nil
	entry.IDTransSrm = resp.IDTransSrm
	entry.CodeQR = resp.CodeQR
	entry.DtConfirmation = resp.DtConfirmation

	if err := d.queueRepo.Transition(ctx, entry, from, &entity.QueueTransition{Note: "confirmed " + resp.IDTransSrm}); err != nil {
		log.Printf("%s: persist sent state for %s: %v", d.owner, entry.ID, err)
		return
	}
	log.Printf("%s: transaction %s sent (srm id %s, attempt %d)", d.owner, entry.Transaction.IDTrans, resp.IDTransSrm, entry.AttemptCount)
}

// recordTransient applies the retry policy: increment the attempt counter,
// schedule the next attempt with exponential backoff, or give up permanently
// once the budget is exhausted.
func (d *Dispatcher) recordTransient(ctx context.Context, entry *entity.QueueEntry, code enum.ResponseCode, message string) {
	from := entry.Status
	entry.AttemptCount++
	entry.LastErrorCode = string(code)
	entry.LastErrorMessage = message
	entry.LeaseOwner = nil
	entry.LeaseExpiresAt = nil

	if entry.AttemptCount >= d.cfg.MaxAttempts {
		entry.Status = enum.QueueFailedPermanent
		entry.NextAttemptAt = nil
		if err := d.queueRepo.Transition(ctx, entry, from, &entity.QueueTransition{
			ErrorCode:    string(code),
			ErrorMessage: message,
			Note:         "retry budget exhausted",
		}); err != nil {
			log.Printf("%s: persist exhausted state for %s: %v", d.owner, entry.ID, err)
			return
		}
		log.Printf("ALERT: transaction %s failed permanently after %d attempts (%s), operator intervention required",
			entry.Transaction.IDTrans, entry.AttemptCount, code)
		return
	}

	next := time.Now().UTC().Add(BackoffDelay(d.cfg.BackoffBase, d.cfg.BackoffCap, entry.AttemptCount))
	entry.Status = enum.QueueFailed
	entry.NextAttemptAt = &next
	if err := d.queueRepo.Transition(ctx, entry, from, &entity.QueueTransition{
		ErrorCode:    string(code),
		ErrorMessage: message,
		Note:         "retry scheduled",
	}); err != nil {
		log.Printf("%s: persist failed state for %s: %v", d.owner, entry.ID, err)
		return
	}
	log.Printf("%s: transaction %s attempt %d failed (%s), next attempt at %s",
		d.owner, entry.Transaction.IDTrans, entry.AttemptCount, code, next.Format(time.RFC3339))
}

// recordPermanent short-circuits the retry budget for errors that will fail
// identically on every attempt.
func (d *Dispatcher) recordPermanent(ctx context.Context, entry *entity.QueueEntry, code enum.ResponseCode, message string) {
	from := entry.Status
	entry.AttemptCount++
	entry.Status = enum.QueueFailedPermanent
	entry.NextAttemptAt = nil
	entry.LastErrorCode = string(code)
	entry.LastErrorMessage = message
	entry.LeaseOwner = nil
	entry.LeaseExpiresAt = nil

	if err := d.queueRepo.Transition(ctx, entry, from, &entity.QueueTransition{
		ErrorCode:    string(code),
		ErrorMessage: message,
		Note:         "non-retryable response",
	}); err != nil {
		log.Printf("%s: persist permanent failure for %s: %v", d.owner, entry.ID, err)
		return
	}
	log.Printf("ALERT: transaction %s rejected with non-retryable code %s, operator intervention required",
		entry.Transaction.IDTrans, code)
}

// release expires the lease on a claimed-but-never-sent entry so the next
// dispatcher can pick it up immediately.
func (d *Dispatcher) release(entry *entity.QueueEntry) {
	// Best effort with a fresh context: this runs during shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.queueRepo.ReleaseLease(ctx, entry.ID); err != nil {
		log.Printf("%s: release %s: %v (lease will expire on its own)", d.owner, entry.ID, err)
	}
}

func (d *Dispatcher) deviceLimiter(deviceID string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	limiter, ok := d.limiters[deviceID]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.cfg.DeviceRate), 1)
		d.limiters[deviceID] = limiter
	}
	return limiter
}

// BackoffDelay computes the retry delay after the given attempt count:
// base * 2^attempts, capped at max.
func BackoffDelay(base, max time.Duration, attempts int) time.Duration {
	delay := base
	for i := 0; i < attempts; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}
