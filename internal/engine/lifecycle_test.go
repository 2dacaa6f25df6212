package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/clipsync/internal/events"
	"github.com/iudanet/clipsync/internal/models"
	"github.com/iudanet/clipsync/internal/outbox"
	"github.com/iudanet/clipsync/internal/provider"
	relaystore "github.com/iudanet/clipsync/internal/server/storage"
	"github.com/iudanet/clipsync/internal/storage/boltdb"
	"github.com/iudanet/clipsync/internal/syncerr"
	"github.com/iudanet/clipsync/pkg/api"
)

func withProvider(t *testing.T, kind provider.Kind, p provider.Provider) testOption {
	return func(o *Options) {
		require.NoError(t, o.Registry.Register(kind, func(env provider.Env) (provider.Provider, error) {
			return p, nil
		}))
	}
}

// fakeRelay хранит одну копию на ID по тем же правилам, что и сервер
type fakeRelay struct {
	items map[string]*api.SyncItem
	mu    sync.Mutex
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{items: make(map[string]*api.SyncItem)}
}

func (r *fakeRelay) put(item *api.SyncItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[item.ID]; ok && !relaystore.Supersedes(item, existing) {
		return
	}
	cp := *item
	r.items[item.ID] = &cp
}

func (r *fakeRelay) since(since int64) []*api.SyncItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*api.SyncItem
	for _, it := range r.items {
		if it.Timestamp > since {
			cp := *it
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (r *fakeRelay) provider() *provider.ProviderMock {
	p := newMockProvider()
	p.SyncItemFunc = func(ctx context.Context, item *api.SyncItem) error {
		r.put(item)
		return nil
	}
	p.PullChangesFunc = func(ctx context.Context, since int64) ([]*api.SyncItem, error) {
		return r.since(since), nil
	}
	return p
}

func payloadJSON(t *testing.T, env *testEnv, id string) string {
	t.Helper()
	got, err := env.store.GetItem(context.Background(), id)
	require.NoError(t, err)
	raw, err := models.EncodePayload(got.Payload)
	require.NoError(t, err)
	return string(raw)
}

// Два устройства со стратегией merge сходятся к одному результату через relay,
// который хранит только одну копию элемента.
func TestEngine_MergeConvergesThroughRelay(t *testing.T) {
	ctx := context.Background()
	relay := newFakeRelay()
	merge := func(s *Settings) { s.ConflictStrategy = models.StrategyMerge }

	a := newTestEngine(t, relay.provider(), withSettings(merge))
	b := newTestEngine(t, relay.provider(), withSettings(func(s *Settings) {
		merge(s)
		s.DeviceID = "device-b"
	}))

	_, err := a.engine.Enqueue(ctx, settingsItem(t, "x4", testDevice, map[string]any{"a": 1}, 1000))
	require.NoError(t, err)
	_, err = b.engine.Enqueue(ctx, settingsItem(t, "x4", "device-b", map[string]any{"b": 2}, 3000))
	require.NoError(t, err)

	startOnline(t, a)
	startOnline(t, b)

	for range 3 {
		require.NoError(t, a.engine.SyncNow(ctx))
		require.NoError(t, b.engine.SyncNow(ctx))
	}

	want := `{"values":{"a":1,"b":2}}`
	assert.JSONEq(t, want, payloadJSON(t, a, "x4"))
	assert.JSONEq(t, want, payloadJSON(t, b, "x4"))

	onA, err := a.store.GetItem(ctx, "x4")
	require.NoError(t, err)
	onB, err := b.store.GetItem(ctx, "x4")
	require.NoError(t, err)
	assert.Equal(t, onA.Checksum, onB.Checksum)

	stored := relay.since(0)
	require.Len(t, stored, 1)
	assert.Equal(t, onA.Checksum, stored[0].Checksum)

	assert.Empty(t, a.engine.Pending())
	assert.Empty(t, b.engine.Pending())
	assert.Len(t, a.events.ofKind(events.KindConflictResolved), 1)
}

// Stop во время запланированной отправки не тратит последнюю попытку элемента.
func TestEngine_StopDuringScheduledFlush(t *testing.T) {
	ctx := context.Background()
	store, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "state.db"), 0)
	require.NoError(t, err)
	defer store.Close()

	p := newMockProvider()
	started := make(chan struct{})
	var once sync.Once
	p.SyncItemFunc = func(ctx context.Context, item *api.SyncItem) error {
		once.Do(func() { close(started) })
		<-ctx.Done()
		return ctx.Err()
	}
	env := newTestEngineWithStore(t, store, p, withSettings(func(s *Settings) { s.AutoSync = true }))
	require.NoError(t, env.engine.Start(ctx))
	require.NoError(t, env.engine.SetOnline(ctx, true))

	// последняя попытка: следующая неудача удалит элемент
	lastAttempt := outbox.DefaultMaxRetries + 1
	item := clipboardItem(t, "last", testDevice, "payload", 1000)
	item.Version = lastAttempt
	_, err = env.engine.Enqueue(ctx, item)
	require.NoError(t, err)

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled flush did not start")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	require.NoError(t, env.engine.Stop(stopCtx))

	pending := env.engine.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, lastAttempt, pending[0].Version, "interrupted delivery is not a failed attempt")
	assert.Empty(t, env.events.errorsOf(syncerr.DeliveryFailure))

	restored := newTestEngineWithStore(t, store, nil)
	require.Len(t, restored.engine.Pending(), 1)
	assert.Equal(t, "last", restored.engine.Pending()[0].ID)
}

func TestEngine_StopWaitsForRunningCycle(t *testing.T) {
	ctx := context.Background()
	p := newMockProvider()
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	p.SyncItemFunc = func(ctx context.Context, item *api.SyncItem) error {
		once.Do(func() { close(started) })
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	env := newTestEngine(t, p, withSettings(func(s *Settings) { s.AutoSync = true }))
	require.NoError(t, env.engine.Start(ctx))
	require.NoError(t, env.engine.SetOnline(ctx, true))

	_, err := env.engine.Enqueue(ctx, clipboardItem(t, "x1", testDevice, "a", 100))
	require.NoError(t, err)
	<-started

	stopped := make(chan error, 1)
	go func() { stopped <- env.engine.Stop(ctx) }()

	assert.Never(t, func() bool { return len(stopped) > 0 }, 100*time.Millisecond, 10*time.Millisecond,
		"stop returned while delivery was in flight")

	close(release)
	require.NoError(t, <-stopped)
	assert.Empty(t, env.engine.Pending())
	assert.Len(t, env.events.ofKind(events.KindItemSynced), 1)
}

func TestEngine_SetOnlineReportsFailuresByEvents(t *testing.T) {
	ctx := context.Background()
	p := newMockProvider()
	p.SyncItemFunc = func(ctx context.Context, item *api.SyncItem) error {
		return errors.New("502 bad gateway")
	}
	env := newTestEngine(t, p)
	require.NoError(t, env.engine.Start(ctx))
	defer env.engine.Stop(ctx)

	_, err := env.engine.Enqueue(ctx, clipboardItem(t, "x1", testDevice, "a", 100))
	require.NoError(t, err)

	require.NoError(t, env.engine.SetOnline(ctx, true))
	assert.True(t, env.engine.Status().Online)
	assert.Len(t, p.SyncItemCalls(), 1)

	pending := env.engine.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)
}

func TestEngine_UpdateConfigSwapsProvider(t *testing.T) {
	ctx := context.Background()
	cloud := newMockProvider()
	cloud.KindFunc = func() provider.Kind { return provider.KindCloud }
	env := newTestEngine(t, nil, withProvider(t, provider.KindCloud, cloud))
	require.NoError(t, env.engine.Start(ctx))

	next := env.engine.Settings()
	next.Provider = provider.KindCloud
	require.NoError(t, env.engine.UpdateConfig(ctx, next))

	assert.Len(t, env.provider.CleanupCalls(), 1, "old provider released")
	assert.Len(t, cloud.InitializeCalls(), 1)
	st := env.engine.Status()
	assert.Equal(t, provider.KindCloud, st.Provider)
	assert.True(t, st.ProviderUsable)

	back := env.engine.Settings()
	back.Provider = provider.KindCustom
	require.NoError(t, env.engine.UpdateConfig(ctx, back))
	assert.Len(t, cloud.CleanupCalls(), 1)
	assert.Len(t, env.provider.InitializeCalls(), 2, "custom created again")

	require.NoError(t, env.engine.Stop(ctx))
	assert.Len(t, env.provider.CleanupCalls(), 2)
	assert.Len(t, cloud.CleanupCalls(), 1, "released provider is not cleaned up twice")
}

func TestEngine_FlushKeepsItemRequeuedDuringDelivery(t *testing.T) {
	ctx := context.Background()
	p := newMockProvider()
	var env *testEnv
	var once sync.Once
	edited := clipboardItem(t, "x1", testDevice, "edited", 2000)
	p.SyncItemFunc = func(ctx context.Context, item *api.SyncItem) error {
		once.Do(func() {
			_, err := env.engine.Enqueue(ctx, edited)
			require.NoError(t, err)
		})
		return nil
	}
	env = newTestEngine(t, p)
	require.NoError(t, env.engine.Start(ctx))
	defer env.engine.Stop(ctx)

	_, err := env.engine.Enqueue(ctx, clipboardItem(t, "x1", testDevice, "original", 1000))
	require.NoError(t, err)
	require.NoError(t, env.engine.SetOnline(ctx, true))

	pending := env.engine.Pending()
	require.Len(t, pending, 1, "newer copy stays queued")
	assert.Equal(t, models.ClipboardPayload{Text: "edited"}, pending[0].Payload)

	require.NoError(t, env.engine.Flush(ctx))
	calls := p.SyncItemCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, edited.Checksum, calls[1].Item.Checksum)
	assert.Empty(t, env.engine.Pending())
}

func TestEngine_UpdateConfigIntervalKeepsLatest(t *testing.T) {
	ctx := context.Background()
	env := newTestEngine(t, nil)

	for _, d := range []time.Duration{time.Minute, 2 * time.Minute, 3 * time.Minute} {
		next := env.engine.Settings()
		next.SyncInterval = d
		require.NoError(t, env.engine.UpdateConfig(ctx, next))
	}

	select {
	case d := <-env.engine.reconfig:
		assert.Equal(t, 3*time.Minute, d)
	default:
		t.Fatal("interval was not handed to the scheduler")
	}
}

func TestEngine_SetIntervalNeverBlocks(t *testing.T) {
	env := newTestEngine(t, nil)

	// конкурирующий читатель, как планировщик
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-env.engine.reconfig:
			case <-done:
				return
			}
		}
	}()

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 1; i <= 1000; i++ {
			env.engine.setInterval(time.Duration(i) * time.Second)
		}
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("setInterval blocked")
	}
}
