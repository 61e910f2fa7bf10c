package dialogue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

// Locker is implemented by session stores shared between processes. The
// returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Manager serialises turns per patient: load, process and save happen
// under that patient's lock, while different patients run concurrently.
// The in-process lock is always taken; a store that is also a Locker adds
// its own lock on top so replicas sharing the store exclude each other.
type Manager struct {
	store      SessionStore
	shared     Locker
	controller *Controller
	locks      *keyedMutex
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewManager(store SessionStore, controller *Controller, m *metrics.Collector, log *zap.Logger) *Manager {
	mgr := &Manager{
		store:      store,
		controller: controller,
		locks:      newKeyedMutex(),
		metrics:    m,
		log:        log,
	}
	if l, ok := store.(Locker); ok {
		mgr.shared = l
	}
	return mgr
}

// lock takes the in-process lock for key and, when the store is shared,
// the store's lock as well.
func (m *Manager) lock(ctx context.Context, key string) (func(), error) {
	unlock := m.locks.Lock(key)
	if m.shared == nil {
		return unlock, nil
	}

	release, err := m.shared.Lock(ctx, key)
	if err != nil {
		unlock()
		m.metrics.ChatErrorsTotal.WithLabelValues("session_lock").Inc()
		return nil, fmt.Errorf("locking chat session: %w", err)
	}
	return func() {
		release()
		unlock()
	}, nil
}

// Turn processes one message. The error is non-nil only when the session
// could not be locked, loaded or saved; collaborator failures are already
// folded into the reply.
func (m *Manager) Turn(ctx context.Context, patientID uuid.UUID, message string) (Reply, error) {
	start := time.Now()
	key := patientID.String()

	unlock, err := m.lock(ctx, key)
	if err != nil {
		return Reply{}, err
	}
	defer unlock()

	sess, err := m.store.Load(ctx, key)
	if err != nil {
		m.metrics.ChatErrorsTotal.WithLabelValues("session_load").Inc()
		return Reply{}, fmt.Errorf("loading chat session: %w", err)
	}

	reply, err := m.controller.Process(ctx, patientID, sess, message)
	if err != nil {
		m.metrics.ChatErrorsTotal.WithLabelValues("turn").Inc()
		m.log.Error("chat turn failed",
			zap.String("patient_id", key),
			zap.String("stage", sess.Stage.String()),
			zap.Error(err),
		)
	}

	sess.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, key, sess); err != nil {
		m.metrics.ChatErrorsTotal.WithLabelValues("session_save").Inc()
		return Reply{}, fmt.Errorf("saving chat session: %w", err)
	}

	m.metrics.ChatTurnsTotal.WithLabelValues(sess.Stage.String()).Inc()
	m.metrics.ChatTurnDuration.Observe(time.Since(start).Seconds())
	return reply, nil
}

// Forget drops the patient's session entirely.
func (m *Manager) Forget(ctx context.Context, patientID uuid.UUID) error {
	key := patientID.String()

	unlock, err := m.lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	if err := m.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting chat session: %w", err)
	}
	return nil
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per key and frees it once nobody holds
// or waits on it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refLock)}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
