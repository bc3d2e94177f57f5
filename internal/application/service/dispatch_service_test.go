package service

import (
	"context"
	"testing"
	"time"

	"github.com/restoflow/websrm-adapter/internal/domain/entity"
	"github.com/restoflow/websrm-adapter/internal/domain/enum"
	"github.com/restoflow/websrm-adapter/internal/websrm"
)

// timeoutError satisfies net.Error so the dispatcher classifies it as a
// client-observed timeout.
type timeoutError struct{}

func (timeoutError) Error() string   { return "request timed out" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func testDispatchConfig() DispatchConfig {
	return DispatchConfig{
		MaxAttempts:    3,
		BackoffBase:    time.Millisecond,
		BackoffCap:     50 * time.Millisecond,
		RequestTimeout: time.Second,
		PollInterval:   time.Second,
		BatchSize:      10,
		DeviceRate:     1000,
	}
}

func pendingEntry(repo *fakeQueueRepo, idTrans string) *entity.QueueEntry {
	entry := &entity.QueueEntry{
		DeviceID: "SRS-0001",
		Status:   enum.QueuePending,
		Transaction: entity.FiscalTransaction{
			IDTrans:   idTrans,
			MontST:    2000,
			MontTPS:   100,
			MontTVQ:   200,
			MontTot:   2300,
			DtTrans:   "20240315133045",
			RefTrans:  "ORD-1",
			Signature: "sig",
			Lines:     []entity.TransactionLine{{Descr: "Poutine", PrixUnit: 2000, Qte: 1, MontLigne: 2000}},
		},
	}
	repo.Create(context.Background(), entry)
	return entry
}

func TestDispatchSuccessFirstAttempt(t *testing.T) {
	repo := newFakeQueueRepo()
	entry := pendingEntry(repo, "id-1")
	client := &scriptedClient{script: []scriptedResult{
		{resp: &websrm.Response{CodeRetour: enum.CodeSuccess, IDTransSrm: "SRM-1", DtConfirmation: "20240315133050"}},
	}}

	d := NewDispatcher(repo, client, testDispatchConfig())
	d.DispatchDue(context.Background())

	got, _ := repo.GetByID(context.Background(), entry.ID)
	if got.Status != enum.QueueSent {
		t.Fatalf("status = %s, want sent", got.Status)
	}
	if got.AttemptCount != 0 {
		t.Errorf("attempt_count = %d, want 0", got.AttemptCount)
	}
	if got.IDTransSrm != "SRM-1" {
		t.Errorf("idTransSrm = %q", got.IDTransSrm)
	}
}

func TestDispatchTransientThenSuccess(t *testing.T) {
	repo := newFakeQueueRepo()
	entry := pendingEntry(repo, "id-2")
	client := &scriptedClient{script: []scriptedResult{
		{err: timeoutError{}},
		{resp: &websrm.Response{CodeRetour: enum.CodeSuccess, IDTransSrm: "SRM-2"}},
	}}

	d := NewDispatcher(repo, client, testDispatchConfig())
	d.DispatchDue(context.Background())

	got, _ := repo.GetByID(context.Background(), entry.ID)
	if got.Status != enum.QueueFailed {
		t.Fatalf("after timeout: status = %s, want failed", got.Status)
	}
	if got.AttemptCount != 1 {
		t.Errorf("attempt_count = %d, want 1", got.AttemptCount)
	}
	if got.LastErrorCode != string(enum.CodeTimeout) {
		t.Errorf("last_error_code = %q, want TIMEOUT", got.LastErrorCode)
	}
	if got.NextAttemptAt == nil {
		t.Fatal("next_attempt_at not scheduled")
	}

	time.Sleep(time.Until(*got.NextAttemptAt) + 5*time.Millisecond)
	d.DispatchDue(context.Background())

	got, _ = repo.GetByID(context.Background(), entry.ID)
	if got.Status != enum.QueueSent {
		t.Fatalf("after retry: status = %s, want sent", got.Status)
	}
	if got.AttemptCount != 1 {
		t.Errorf("attempt_count = %d, want 1", got.AttemptCount)
	}
	// The retry must reuse the same logical transaction id.
	if len(client.lastIDs) != 2 || client.lastIDs[0] != "id-2" || client.lastIDs[1] != "id-2" {
		t.Errorf("submitted ids = %v, want id-2 twice", client.lastIDs)
	}
}

func TestDispatchPermanentFailureShortCircuits(t *testing.T) {
	repo := newFakeQueueRepo()
	entry := pendingEntry(repo, "id-3")
	client := &scriptedClient{script: []scriptedResult{
		{resp: &websrm.Response{CodeRetour: enum.CodeInvalidCert, Errors: []websrm.ResponseError{{Code: "30", Message: "certification invalide"}}}},
	}}

	d := NewDispatcher(repo, client, testDispatchConfig())
	d.DispatchDue(context.Background())

	got, _ := repo.GetByID(context.Background(), entry.ID)
	if got.Status != enum.QueueFailedPermanent {
		t.Fatalf("status = %s, want failed_permanent", got.Status)
	}
	if got.AttemptCount != 1 {
		t.Errorf("attempt_count = %d, want 1 (not exhausted through the budget)", got.AttemptCount)
	}
	if got.LastErrorCode != "30" {
		t.Errorf("last_error_code = %q", got.LastErrorCode)
	}
}

func TestDispatchBudgetExhaustion(t *testing.T) {
	repo := newFakeQueueRepo()
	entry := pendingEntry(repo, "id-4")
	client := &scriptedClient{script: []scriptedResult{
		{err: timeoutError{}},
	}}

	cfg := testDispatchConfig()
	cfg.MaxAttempts = 2
	d := NewDispatcher(repo, client, cfg)

	for i := 0; i < cfg.MaxAttempts; i++ {
		d.DispatchDue(context.Background())
		got, _ := repo.GetByID(context.Background(), entry.ID)
		if got.NextAttemptAt != nil {
			time.Sleep(time.Until(*got.NextAttemptAt) + 5*time.Millisecond)
		}
	}

	got, _ := repo.GetByID(context.Background(), entry.ID)
	if got.Status != enum.QueueFailedPermanent {
		t.Fatalf("status = %s, want failed_permanent after budget exhaustion", got.Status)
	}
	if got.AttemptCount != cfg.MaxAttempts {
		t.Errorf("attempt_count = %d, want %d", got.AttemptCount, cfg.MaxAttempts)
	}
}

func TestDispatchSkipsCancelledEntries(t *testing.T) {
	repo := newFakeQueueRepo()
	entry := pendingEntry(repo, "id-5")
	repo.Cancel(context.Background(), entry.ID)

	client := &scriptedClient{script: []scriptedResult{
		{resp: &websrm.Response{CodeRetour: enum.CodeSuccess, IDTransSrm: "SRM-X"}},
	}}
	d := NewDispatcher(repo, client, testDispatchConfig())
	d.DispatchDue(context.Background())

	if client.calls != 0 {
		t.Errorf("cancelled entry was submitted %d times", client.calls)
	}
	got, _ := repo.GetByID(context.Background(), entry.ID)
	if got.Status != enum.QueuePending {
		t.Errorf("status = %s, cancelled entries keep their pending status", got.Status)
	}
}

func TestBackoffDelayMonotonicUpToCap(t *testing.T) {
	base := 30 * time.Second
	max := 30 * time.Minute

	prev := time.Duration(0)
	reachedCap := false
	for attempt := 1; attempt <= 12; attempt++ {
		delay := BackoffDelay(base, max, attempt)
		if delay > max {
			t.Fatalf("attempt %d: delay %v exceeds cap %v", attempt, delay, max)
		}
		if reachedCap {
			if delay != max {
				t.Fatalf("attempt %d: delay %v fell below the cap", attempt, delay)
			}
			continue
		}
		if delay <= prev {
			t.Fatalf("attempt %d: delay %v not strictly greater than %v", attempt, delay, prev)
		}
		prev = delay
		if delay == max {
			reachedCap = true
		}
	}
	if !reachedCap {
		t.Error("cap never reached within 12 attempts")
	}

	if got := BackoffDelay(base, max, 1); got != 60*time.Second {
		t.Errorf("attempt 1 delay = %v, want base*2", got)
	}
}

// ctxBoundRepo rejects writes arriving with a dead context, the way a real
// database session does.
type ctxBoundRepo struct {
	*fakeQueueRepo
}

func (r *ctxBoundRepo) Transition(ctx context.Context, entry *entity.QueueEntry, from enum.QueueStatus, tr *entity.QueueTransition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.fakeQueueRepo.Transition(ctx, entry, from, tr)
}

// shutdownClient cancels the dispatch loop context mid-request, then answers
// success: the confirmation arrives while the service is shutting down.
type shutdownClient struct {
	cancel context.CancelFunc
	resp   *websrm.Response
	calls  int
}

func (c *shutdownClient) Submit(ctx context.Context, tx *entity.FiscalTransaction, requestID string) (*websrm.Response, error) {
	c.calls++
	c.cancel()
	return c.resp, nil
}

func TestDispatchPersistsConfirmationDuringShutdown(t *testing.T) {
	fake := newFakeQueueRepo()
	repo := &ctxBoundRepo{fakeQueueRepo: fake}
	entry := pendingEntry(fake, "id-7")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := &shutdownClient{
		cancel: cancel,
		resp:   &websrm.Response{CodeRetour: enum.CodeSuccess, IDTransSrm: "SRM-7", DtConfirmation: "20240315133050"},
	}

	d := NewDispatcher(repo, client, testDispatchConfig())
	d.DispatchDue(ctx)

	got, _ := fake.GetByID(context.Background(), entry.ID)
	if got.Status != enum.QueueSent {
		t.Fatalf("status = %s, want sent (a received confirmation must be persisted)", got.Status)
	}
	if got.IDTransSrm != "SRM-7" {
		t.Errorf("idTransSrm = %q, want SRM-7", got.IDTransSrm)
	}
	if client.calls != 1 {
		t.Errorf("submit calls = %d, want 1", client.calls)
	}
}
