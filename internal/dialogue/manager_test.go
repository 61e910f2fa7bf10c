package dialogue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

func newTestManager(h *harness, store SessionStore) (*Manager, *metrics.Collector) {
	m := metrics.NewCollector("test", prometheus.NewRegistry())
	return NewManager(store, h.ctrl, m, zap.NewNop()), m
}

func TestManager_SessionsArePerPatient(t *testing.T) {
	h := newHarness(DefaultMaxHops)
	store := NewMemoryStore(time.Hour)
	mgr, m := newTestManager(h, store)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := mgr.Turn(ctx, alice, "I have chest pain")
	require.NoError(t, err)

	reply, err := mgr.Turn(ctx, bob, "john smith")
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "type 'reset' or 'start over'")

	aliceSess, _ := store.Load(ctx, alice.String())
	bobSess, _ := store.Load(ctx, bob.String())
	assert.Equal(t, StageAwaitingDoctorSelection, aliceSess.Stage)
	assert.Equal(t, StageGeneral, bobSess.Stage)
	assert.False(t, aliceSess.UpdatedAt.IsZero())

	reply, err = mgr.Turn(ctx, alice, "john smith")
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "Here are the available time slots")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatTurnsTotal.WithLabelValues("awaiting_slot_selection")))
}

func TestManager_TurnFailureStillAnswers(t *testing.T) {
	h := newHarness(DefaultMaxHops)
	h.ctrl.classifier = failingClassifier{}
	mgr, m := newTestManager(h, NewMemoryStore(time.Hour))

	reply, err := mgr.Turn(context.Background(), uuid.New(), "hello")

	require.NoError(t, err)
	assert.Equal(t, genericErrorReply, reply.Response)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatErrorsTotal.WithLabelValues("turn")))
}

type brokenStore struct {
	loadErr, saveErr error
}

func (b brokenStore) Load(context.Context, string) (*Session, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return NewSession(), nil
}

func (b brokenStore) Save(context.Context, string, *Session) error { return b.saveErr }
func (b brokenStore) Delete(context.Context, string) error         { return nil }

func TestManager_StoreFailuresSurface(t *testing.T) {
	h := newHarness(DefaultMaxHops)
	down := errors.New("redis down")

	mgr, m := newTestManager(h, brokenStore{loadErr: down})
	_, err := mgr.Turn(context.Background(), uuid.New(), "hello")
	require.ErrorIs(t, err, down)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatErrorsTotal.WithLabelValues("session_load")))

	mgr, m = newTestManager(h, brokenStore{saveErr: down})
	_, err = mgr.Turn(context.Background(), uuid.New(), "hello")
	require.ErrorIs(t, err, down)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatErrorsTotal.WithLabelValues("session_save")))
}

func TestManager_Forget(t *testing.T) {
	h := newHarness(DefaultMaxHops)
	store := NewMemoryStore(time.Hour)
	mgr, _ := newTestManager(h, store)
	patient := uuid.New()

	_, err := mgr.Turn(context.Background(), patient, "I have chest pain")
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	require.NoError(t, mgr.Forget(context.Background(), patient))
	assert.Zero(t, store.Len())
}

// countingStore records the peak number of concurrent Load→Save windows
// per key.
type countingStore struct {
	*MemoryStore
	mu      sync.Mutex
	inside  map[string]int
	maxSeen int32
}

func (c *countingStore) Load(ctx context.Context, key string) (*Session, error) {
	c.mu.Lock()
	c.inside[key]++
	if n := int32(c.inside[key]); n > atomic.LoadInt32(&c.maxSeen) {
		atomic.StoreInt32(&c.maxSeen, n)
	}
	c.mu.Unlock()
	time.Sleep(time.Millisecond)
	return c.MemoryStore.Load(ctx, key)
}

func (c *countingStore) Save(ctx context.Context, key string, sess *Session) error {
	c.mu.Lock()
	c.inside[key]--
	c.mu.Unlock()
	return c.MemoryStore.Save(ctx, key, sess)
}

func TestManager_SerialisesTurnsPerPatient(t *testing.T) {
	h := newHarness(DefaultMaxHops)
	store := &countingStore{MemoryStore: NewMemoryStore(time.Hour), inside: map[string]int{}}
	mgr, _ := newTestManager(h, store)
	patient := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Turn(context.Background(), patient, "hello")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&store.maxSeen))
	assert.Zero(t, mgr.locks.size())
}

// gatedStore parks the first Load until proceed is closed, so a second
// replica can try to run a turn in between.
type gatedStore struct {
	*RedisStore
	once    sync.Once
	loaded  chan struct{}
	proceed chan struct{}
}

func (g *gatedStore) Load(ctx context.Context, key string) (*Session, error) {
	sess, err := g.RedisStore.Load(ctx, key)
	g.once.Do(func() {
		close(g.loaded)
		<-g.proceed
	})
	return sess, err
}

func TestManager_SharedStoreSerialisesReplicas(t *testing.T) {
	h := newHarness(DefaultMaxHops)
	shared := NewRedisStore(newFakeRedis(), time.Hour, zap.NewNop())
	shared.lockRetry = time.Millisecond

	gated := &gatedStore{RedisStore: shared, loaded: make(chan struct{}), proceed: make(chan struct{})}
	replicaA, _ := newTestManager(h, gated)
	replicaB, _ := newTestManager(h, shared)
	patient := uuid.New()
	ctx := context.Background()

	doneA := make(chan error, 1)
	go func() {
		_, err := replicaA.Turn(ctx, patient, "hello")
		doneA <- err
	}()
	<-gated.loaded

	doneB := make(chan error, 1)
	go func() {
		_, err := replicaB.Turn(ctx, patient, "I have chest pain")
		doneB <- err
	}()

	select {
	case <-doneB:
		t.Fatal("second replica ran while the first held the conversation")
	case <-time.After(50 * time.Millisecond):
	}

	close(gated.proceed)
	require.NoError(t, <-doneA)
	require.NoError(t, <-doneB)

	sess, err := shared.Load(ctx, patient.String())
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingDoctorSelection, sess.Stage)
	assert.Len(t, sess.DoctorCandidates, 2)
}

func TestManager_BusyConversationSurfaces(t *testing.T) {
	h := newHarness(DefaultMaxHops)
	shared := NewRedisStore(newFakeRedis(), time.Hour, zap.NewNop())
	shared.lockWait = 20 * time.Millisecond
	shared.lockRetry = time.Millisecond
	mgr, m := newTestManager(h, shared)
	patient := uuid.New()

	release, err := shared.Lock(context.Background(), patient.String())
	require.NoError(t, err)

	_, err = mgr.Turn(context.Background(), patient, "hello")
	assert.ErrorIs(t, err, ErrSessionBusy)
	assert.ErrorIs(t, mgr.Forget(context.Background(), patient), ErrSessionBusy)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChatErrorsTotal.WithLabelValues("session_lock")))
	assert.Zero(t, mgr.locks.size())

	release()
	_, err = mgr.Turn(context.Background(), patient, "hello")
	assert.NoError(t, err)
}
