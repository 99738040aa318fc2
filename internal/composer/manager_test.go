package composer

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"reelsmaker/internal/domain"
)

func TestManagerRunsDetachedComposition(t *testing.T) {
	h := newHarness(t, testPlan(2600), 1)
	h.planner.entered = make(chan struct{}, 1)
	h.planner.release = make(chan struct{})
	m := NewManager(h.composer, ManagerOptions{MaxInFlight: 1}, zerolog.Nop())
	t.Cleanup(m.Close)

	req := Request{Plan: domain.PlanRequest{Script: "One sentence only."}}
	started, err := m.Start(req)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if started.ID == "" || started.Status != domain.StatusIdle {
		t.Fatalf("unexpected initial state %#v", started)
	}
	<-h.planner.entered

	if _, err := m.Start(req); !errors.Is(err, ErrCapacity) {
		t.Fatalf("second Start error = %v, want ErrCapacity", err)
	}

	current, updates, cancel, err := m.Subscribe(started.ID)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	defer cancel()
	if current.Status != domain.StatusPlanning {
		t.Fatalf("current status = %s, want planning", current.Status)
	}

	close(h.planner.release)
	var last JobState
	timeout := time.After(10 * time.Second)
	for done := false; !done; {
		select {
		case st, ok := <-updates:
			if !ok {
				done = true
				break
			}
			if st.Progress < last.Progress {
				t.Fatalf("progress went backwards: %v after %v", st.Progress, last.Progress)
			}
			last = st
		case <-timeout:
			t.Fatalf("composition did not finish")
		}
	}
	if last.Status != domain.StatusReady || last.Progress != 1 {
		t.Fatalf("last update = %#v, want ready at 1", last)
	}

	got, err := m.Get(started.ID)
	if err != nil || got.Status != domain.StatusReady {
		t.Fatalf("Get = %#v, %v", got, err)
	}
	if err := m.Delete(started.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := m.Get(started.ID); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("Get after delete error = %v, want ErrUnknownJob", err)
	}
}

func TestManagerPreflight(t *testing.T) {
	h := newHarness(t, testPlan(2600), 1)
	m := NewManager(h.composer, ManagerOptions{MaxInFlight: 2}, zerolog.Nop())
	t.Cleanup(m.Close)

	if _, err := m.Start(Request{Plan: domain.PlanRequest{Script: "   "}}); !errors.Is(err, domain.ErrEmptyScript) {
		t.Fatalf("Start error = %v, want ErrEmptyScript", err)
	}
	h.recorder.checkErr = domain.ErrCaptureUnsupported
	if _, err := m.Start(Request{Plan: domain.PlanRequest{Script: "Hello."}}); !errors.Is(err, domain.ErrCaptureUnsupported) {
		t.Fatalf("Start error = %v, want ErrCaptureUnsupported", err)
	}
	if h.planner.Calls() != 0 {
		t.Fatalf("planner should not be called, got %d calls", h.planner.Calls())
	}
}

func TestManagerSubscribeAfterFinish(t *testing.T) {
	h := newHarness(t, testPlan(2600), 1)
	m := NewManager(h.composer, ManagerOptions{MaxInFlight: 1}, zerolog.Nop())
	t.Cleanup(m.Close)

	started, err := m.Start(Request{Plan: domain.PlanRequest{Script: "Quick one."}})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	deadline := time.Now().Add(10 * time.Second)
	for {
		st, err := m.Get(started.ID)
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if st.Status.Terminal() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("composition did not finish, last state %s", st.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	// finish() may still be pending right after the session turns terminal.
	m.wg.Wait()

	current, updates, _, err := m.Subscribe(started.ID)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	if current.Status != domain.StatusReady {
		t.Fatalf("current = %s, want ready", current.Status)
	}
	if _, ok := <-updates; ok {
		t.Fatalf("updates should be closed for a finished job")
	}
	if _, _, _, err := m.Subscribe("nope"); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("Subscribe unknown error = %v", err)
	}
}

func TestManagerDeleteRightAfterStart(t *testing.T) {
	h := newHarness(t, testPlan(2600), 1)
	h.planner.release = make(chan struct{})
	m := NewManager(h.composer, ManagerOptions{MaxInFlight: 1}, zerolog.Nop())
	t.Cleanup(m.Close)

	started, err := m.Start(Request{Plan: domain.PlanRequest{Script: "Delete me early."}})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := m.Delete(started.ID); !errors.Is(err, ErrJobInFlight) {
		t.Fatalf("Delete right after Start error = %v, want ErrJobInFlight", err)
	}

	close(h.planner.release)
	m.wg.Wait()
	if _, err := m.Get(started.ID); err != nil {
		t.Fatalf("job should still be tracked: %v", err)
	}
	if err := m.Delete(started.ID); err != nil {
		t.Fatalf("Delete after finish returned error: %v", err)
	}
	if n := workDirEntries(t, h.workDir); n != 0 {
		t.Fatalf("work dir holds %d entries after delete, want 0", n)
	}
}

func TestManagerEvictsExpiredJobs(t *testing.T) {
	h := newHarness(t, testPlan(2600), 1)
	m := NewManager(h.composer, ManagerOptions{MaxInFlight: 1}, zerolog.Nop())
	t.Cleanup(m.Close)
	m.retention = time.Hour
	clock := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return clock }

	started, err := m.Start(Request{Plan: domain.PlanRequest{Script: "Short lived."}})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	m.wg.Wait()
	if n := workDirEntries(t, h.workDir); n == 0 {
		t.Fatalf("expected a result dir before eviction")
	}

	if n := m.evictExpired(); n != 0 {
		t.Fatalf("evicted %d fresh jobs", n)
	}
	clock = clock.Add(2 * time.Hour)
	if n := m.evictExpired(); n != 1 {
		t.Fatalf("evicted %d jobs, want 1", n)
	}
	if _, err := m.Get(started.ID); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("Get after eviction error = %v, want ErrUnknownJob", err)
	}
	if n := workDirEntries(t, h.workDir); n != 0 {
		t.Fatalf("work dir holds %d entries after eviction, want 0", n)
	}
}
