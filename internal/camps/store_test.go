package camps

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojf/campreg/internal/kv"
	"github.com/lojf/campreg/internal/models"
)

type fakeLister struct {
	mu    sync.Mutex
	camps []models.Camp
	err   error
	calls int
	hook  func(call int)
}

func (f *fakeLister) ListCamps(ctx context.Context) ([]models.Camp, error) {
	f.mu.Lock()
	f.calls++
	call, camps, err, hook := f.calls, append([]models.Camp(nil), f.camps...), f.err, f.hook
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	return camps, err
}

func (f *fakeLister) set(camps []models.Camp, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.camps, f.err = camps, err
}

type reachable bool

func (r reachable) Reachable(context.Context) bool { return bool(r) }

type switchReach struct {
	mu sync.Mutex
	on bool
}

func (s *switchReach) Reachable(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

func (s *switchReach) set(on bool) {
	s.mu.Lock()
	s.on = on
	s.mu.Unlock()
}

func newTestStore(l CampLister, r Reachability, store kv.KV) *Store {
	return NewStore(l, r, store, Options{KeyPrefix: "t:"})
}

func TestStore_SupervisorRejectsPersistedCampOutsideAssignment(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryKV()
	require.NoError(t, mem.Set(ctx, "t:user:7:selected_camp_id", "2", 0))

	st := newTestStore(&fakeLister{camps: allCamps}, reachable(true), mem)
	sup := &models.User{ID: 7, Role: models.RoleSupervisor, AssignedCamps: []uint{1, 3}}
	require.NoError(t, st.SetPrincipal(ctx, sup))

	snap := st.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, []uint{1, 3}, ids(snap.Camps))
	require.NotNil(t, snap.Selected)
	assert.Equal(t, uint(1), snap.Selected.ID)

	persisted, err := mem.Get(ctx, "t:user:7:selected_camp_id")
	require.NoError(t, err)
	assert.Equal(t, "1", persisted, "replacement selection is persisted")
}

func TestStore_FallsBackToCacheWhenFetchFails(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryKV()
	lister := &fakeLister{camps: allCamps}
	admin := &models.User{ID: 1, Role: models.RoleAdmin}

	st := newTestStore(lister, reachable(true), mem)
	require.NoError(t, st.SetPrincipal(ctx, admin))
	assert.Equal(t, SourceStore, st.Snapshot().Source)

	lister.set(nil, errors.New("connection refused"))
	require.NoError(t, st.Refresh(ctx), "a failed fetch is not fatal")
	snap := st.Snapshot()
	assert.Equal(t, SourceCache, snap.Source)
	assert.Equal(t, []uint{1, 2, 3, 4}, ids(snap.Camps))
}

func TestStore_UnreachableSkipsFetch(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryKV()
	cached, _ := json.Marshal(allCamps[:2])
	require.NoError(t, mem.Set(ctx, "t:user:1:camps", string(cached), 0))

	lister := &fakeLister{camps: allCamps}
	st := newTestStore(lister, reachable(false), mem)
	require.NoError(t, st.SetPrincipal(ctx, &models.User{ID: 1, Role: models.RoleAdmin}))

	assert.Equal(t, 0, lister.calls)
	snap := st.Snapshot()
	assert.Equal(t, SourceCache, snap.Source)
	assert.Equal(t, []uint{1, 2}, ids(snap.Camps))
	assert.Nil(t, snap.Selected, "two camps and no stored choice")
}

func TestStore_NoCacheDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(&fakeLister{err: errors.New("boom")}, reachable(true), kv.NewMemoryKV())
	require.NoError(t, st.SetPrincipal(ctx, &models.User{ID: 1, Role: models.RoleAdmin}))
	snap := st.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, SourceEmpty, snap.Source)
	assert.Empty(t, snap.Camps)
}

func TestStore_ReachabilityChangesBetweenLoads(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryKV()
	lister := &fakeLister{camps: allCamps[:3]}
	r := &switchReach{on: true}
	st := newTestStore(lister, r, mem)
	require.NoError(t, st.SetPrincipal(ctx, &models.User{ID: 5, Role: models.RoleAdmin}))

	r.set(false)
	lister.set(allCamps, nil)
	require.NoError(t, st.Refresh(ctx))
	assert.Equal(t, []uint{1, 2, 3}, ids(st.Snapshot().Camps), "offline refresh serves the last good list")

	r.set(true)
	require.NoError(t, st.Refresh(ctx))
	assert.Equal(t, []uint{1, 2, 3, 4}, ids(st.Snapshot().Camps))
}

func TestStore_ManagerSelectionIsLocked(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(&fakeLister{camps: allCamps}, reachable(true), kv.NewMemoryKV())
	require.NoError(t, st.SetPrincipal(ctx, &models.User{ID: 2, Role: models.RoleManager, CampID: uintp(2)}))

	snap := st.Snapshot()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, uint(2), snap.Selected.ID)
	assert.True(t, snap.Locked)

	assert.ErrorIs(t, st.ChangeCamp(ctx, nil), ErrSelectionLocked)
	assert.ErrorIs(t, st.ChangeCamp(ctx, &allCamps[0]), ErrSelectionLocked)
	assert.NoError(t, st.ChangeCamp(ctx, &allCamps[1]))
}

func TestStore_ChangeCampPersists(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryKV()
	st := newTestStore(&fakeLister{camps: allCamps}, reachable(true), mem)
	require.NoError(t, st.SetPrincipal(ctx, &models.User{ID: 3, Role: models.RoleAdmin}))
	assert.Nil(t, st.Snapshot().Selected)

	require.NoError(t, st.ChangeCamp(ctx, &models.Camp{ID: 4}))
	assert.Equal(t, "D", st.Snapshot().Selected.Name, "selection uses the visible camp, not the caller's copy")
	v, err := mem.Get(ctx, "t:user:3:selected_camp_id")
	require.NoError(t, err)
	assert.Equal(t, "4", v)

	// restored on the next load
	require.NoError(t, st.Refresh(ctx))
	assert.Equal(t, uint(4), st.Snapshot().Selected.ID)

	require.NoError(t, st.ChangeCamp(ctx, nil))
	_, err = mem.Get(ctx, "t:user:3:selected_camp_id")
	assert.ErrorIs(t, err, kv.ErrMiss)

	assert.ErrorIs(t, st.ChangeCamp(ctx, &models.Camp{ID: 99}), ErrCampNotVisible)
}

func TestStore_InvalidPersistedSelectionIsCleared(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryKV()
	require.NoError(t, mem.Set(ctx, "t:user:3:selected_camp_id", "99", 0))
	st := newTestStore(&fakeLister{camps: allCamps}, reachable(true), mem)
	require.NoError(t, st.SetPrincipal(ctx, &models.User{ID: 3, Role: models.RoleAdmin}))

	assert.Nil(t, st.Snapshot().Selected)
	_, err := mem.Get(ctx, "t:user:3:selected_camp_id")
	assert.ErrorIs(t, err, kv.ErrMiss)
}

func TestStore_LogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryKV()
	st := newTestStore(&fakeLister{camps: allCamps}, reachable(true), mem)
	require.NoError(t, st.SetPrincipal(ctx, &models.User{ID: 9, Role: models.RoleUser, CampID: uintp(1)}))
	require.NotNil(t, st.Snapshot().Selected)

	require.NoError(t, st.SetPrincipal(ctx, nil))
	snap := st.Snapshot()
	assert.Equal(t, StateUninitialized, snap.State)
	assert.Empty(t, snap.Camps)
	assert.Nil(t, snap.Selected)
	for _, key := range []string{"t:user:9:selected_camp_id", "t:user:9:camps"} {
		_, err := mem.Get(ctx, key)
		assert.ErrorIs(t, err, kv.ErrMiss, key)
	}
	assert.ErrorIs(t, st.Refresh(ctx), ErrNoPrincipal)
	assert.ErrorIs(t, st.ChangeCamp(ctx, nil), ErrNoPrincipal)
}

func TestStore_SupersededLoadIsDropped(t *testing.T) {
	ctx := context.Background()
	lister := &fakeLister{camps: allCamps[:1]}
	st := newTestStore(lister, reachable(true), kv.NewMemoryKV())
	require.NoError(t, st.SetPrincipal(ctx, &models.User{ID: 4, Role: models.RoleAdmin}))

	entered := make(chan struct{})
	release := make(chan struct{})
	lister.mu.Lock()
	lister.hook = func(call int) {
		if call == 2 {
			close(entered)
			<-release
		}
	}
	lister.mu.Unlock()

	slow := make(chan error, 1)
	go func() { slow <- st.Refresh(ctx) }()
	<-entered

	lister.set(allCamps, nil)
	require.NoError(t, st.Refresh(ctx))
	close(release)

	assert.ErrorIs(t, <-slow, ErrStale)
	assert.Equal(t, []uint{1, 2, 3, 4}, ids(st.Snapshot().Camps), "newest load wins")
}

func TestStore_UserSelectionIsLocked(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(&fakeLister{camps: allCamps}, reachable(true), kv.NewMemoryKV())
	require.NoError(t, st.SetPrincipal(ctx, &models.User{ID: 6, Role: models.RoleUser, CampID: uintp(2)}))

	snap := st.Snapshot()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, uint(2), snap.Selected.ID)
	assert.True(t, snap.Locked)
	assert.ErrorIs(t, st.ChangeCamp(ctx, nil), ErrSelectionLocked)
	assert.Equal(t, uint(2), st.Snapshot().Selected.ID)
}

func TestStore_LogoutDuringLoadLeavesNoKeys(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryKV()
	lister := &fakeLister{camps: allCamps}
	st := newTestStore(lister, reachable(true), mem)
	require.NoError(t, st.SetPrincipal(ctx, &models.User{ID: 5, Role: models.RoleAdmin}))
	require.NoError(t, st.ChangeCamp(ctx, &models.Camp{ID: 2}))

	lister.mu.Lock()
	lister.hook = func(call int) {
		if call == 2 {
			require.NoError(t, st.SetPrincipal(ctx, nil))
		}
	}
	lister.mu.Unlock()

	assert.ErrorIs(t, st.Refresh(ctx), ErrStale)
	assert.Equal(t, StateUninitialized, st.Snapshot().State)
	for _, key := range []string{"t:user:5:selected_camp_id", "t:user:5:camps"} {
		_, err := mem.Get(ctx, key)
		assert.ErrorIs(t, err, kv.ErrMiss, key)
	}
}

func TestStore_ChangeCampDuringLoadWins(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryKV()
	lister := &fakeLister{camps: allCamps}
	st := newTestStore(lister, reachable(true), mem)
	require.NoError(t, st.SetPrincipal(ctx, &models.User{ID: 8, Role: models.RoleAdmin}))
	require.NoError(t, st.ChangeCamp(ctx, &models.Camp{ID: 1}))

	lister.mu.Lock()
	lister.hook = func(call int) {
		if call == 2 {
			require.NoError(t, st.ChangeCamp(ctx, &models.Camp{ID: 3}))
		}
	}
	lister.mu.Unlock()

	require.NoError(t, st.Refresh(ctx))
	snap := st.Snapshot()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, uint(3), snap.Selected.ID)
	v, err := mem.Get(ctx, "t:user:8:selected_camp_id")
	require.NoError(t, err)
	assert.Equal(t, "3", v, "memory and persisted selection agree")
}
