package composer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"reelsmaker/internal/domain"
	"reelsmaker/internal/infra"
)

var (
	// ErrCapacity is returned when every composition slot is taken.
	ErrCapacity = errors.New("composer: too many compositions in flight")
	// ErrUnknownJob is returned for ids the manager does not hold.
	ErrUnknownJob = errors.New("composer: unknown composition")
)

// Manager runs detached compositions, one Session per job, and fans state
// changes out to subscribers.
type Manager struct {
	composer  *Composer
	slots     *semaphore.Weighted
	retention time.Duration
	logger    infra.Logger
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	jobs map[string]*managedJob
}

type managedJob struct {
	session *Session

	mu       sync.Mutex
	subs     map[int]chan JobState
	nextID   int
	done     bool
	finished time.Time
}

// ManagerOptions bounds the work a Manager holds.
type ManagerOptions struct {
	// MaxInFlight caps concurrent compositions; values below 1 mean 1.
	MaxInFlight int
	// Retention is how long a finished job and its files are kept before
	// eviction. Zero keeps them until Delete or Close.
	Retention time.Duration
}

// NewManager starts a manager and, when opts.Retention is set, its eviction loop.
func NewManager(c *Composer, opts ManagerOptions, logger infra.Logger) *Manager {
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		composer:  c,
		slots:     semaphore.NewWeighted(int64(opts.MaxInFlight)),
		retention: opts.Retention,
		logger:    logger,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		jobs:      make(map[string]*managedJob),
	}
	if opts.Retention > 0 {
		m.wg.Add(1)
		go m.evictLoop(min(opts.Retention, time.Minute))
	}
	return m
}

// Start validates req and launches a composition in the background.
func (m *Manager) Start(req Request) (JobState, error) {
	if err := m.composer.Preflight(req); err != nil {
		return JobState{}, err
	}
	if m.ctx.Err() != nil {
		return JobState{}, context.Canceled
	}
	if !m.slots.TryAcquire(1) {
		return JobState{}, ErrCapacity
	}

	id := uuid.NewString()
	job := &managedJob{session: NewSession(m.composer), subs: make(map[int]chan JobState)}
	initial := JobState{ID: id, Status: domain.StatusIdle}
	job.session.state = initial
	// claimed before the job is visible so Delete cannot reset it early
	if err := job.session.claim(req); err != nil {
		m.slots.Release(1)
		return JobState{}, err
	}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.slots.Release(1)
		final, err := job.session.run(m.ctx, id, req, job.publish)
		if err != nil {
			m.logger.Warn().Err(err).Str("job_id", id).Msg("composition ended in error")
		}
		job.finish(final, m.now())
	}()
	return initial, nil
}

// Get returns the latest state of a composition.
func (m *Manager) Get(id string) (JobState, error) {
	job, err := m.job(id)
	if err != nil {
		return JobState{}, err
	}
	return job.session.State(), nil
}

// Subscribe returns the current state and a channel carrying every later
// change. The channel keeps only the newest undelivered state and is closed
// once the job is terminal. Call cancel to stop listening early.
func (m *Manager) Subscribe(id string) (JobState, <-chan JobState, func(), error) {
	job, err := m.job(id)
	if err != nil {
		return JobState{}, nil, nil, err
	}
	job.mu.Lock()
	defer job.mu.Unlock()
	ch := make(chan JobState, 1)
	current := job.session.State()
	if job.done {
		close(ch)
		return current, ch, func() {}, nil
	}
	subID := job.nextID
	job.nextID++
	job.subs[subID] = ch
	cancel := func() {
		job.mu.Lock()
		defer job.mu.Unlock()
		if c, ok := job.subs[subID]; ok {
			delete(job.subs, subID)
			close(c)
		}
	}
	return current, ch, cancel, nil
}

// Delete resets a finished composition and forgets it. A job that is still
// starting or running fails with ErrJobInFlight.
func (m *Manager) Delete(id string) error {
	job, err := m.job(id)
	if err != nil {
		return err
	}
	if err := job.session.Reset(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.jobs, id)
	m.mu.Unlock()
	return nil
}

// Close cancels running compositions, waits for them and releases every
// stored result.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, job := range m.jobs {
		if err := job.session.Reset(); err != nil {
			m.logger.Warn().Err(err).Str("job_id", id).Msg("release composition")
		}
		delete(m.jobs, id)
	}
}

func (m *Manager) evictLoop(every time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.evictExpired()
		}
	}
}

// evictExpired releases and forgets jobs finished longer than the retention ago.
func (m *Manager) evictExpired() int {
	if m.retention <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.retention)
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, job := range m.jobs {
		if !job.expired(cutoff) {
			continue
		}
		if err := job.session.Reset(); err != nil {
			m.logger.Warn().Err(err).Str("job_id", id).Msg("evict composition")
			continue
		}
		delete(m.jobs, id)
		evicted++
	}
	if evicted > 0 {
		m.logger.Info().Int("evicted", evicted).Msg("expired compositions released")
	}
	return evicted
}

func (m *Manager) job(id string) (*managedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrUnknownJob
	}
	return job, nil
}

func (j *managedJob) publish(st JobState) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, ch := range j.subs {
		offer(ch, st)
	}
}

func (j *managedJob) expired(cutoff time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.done && j.finished.Before(cutoff)
}

func (j *managedJob) finish(final JobState, at time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.done = true
	j.finished = at
	for id, ch := range j.subs {
		offer(ch, final)
		close(ch)
		delete(j.subs, id)
	}
}

// offer replaces any undelivered state with st.
func offer(ch chan JobState, st JobState) {
	for {
		select {
		case ch <- st:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
