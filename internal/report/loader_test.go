package report

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojf/campreg/internal/models"
)

type fakeSource struct {
	mu       sync.Mutex
	calls    int
	onCamps  func(call int)
	aidErr   error
	families map[uint][]models.Family
	members  map[uint][]models.Individual
}

func (f *fakeSource) ListCamps(context.Context) ([]models.Camp, error) {
	f.mu.Lock()
	f.calls++
	call, hook := f.calls, f.onCamps
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	return []models.Camp{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, nil
}

func (f *fakeSource) ListFamilies(_ context.Context, campID uint) ([]models.Family, error) {
	return f.families[campID], nil
}

func (f *fakeSource) ListIndividuals(_ context.Context, campID uint) ([]models.Individual, error) {
	return f.members[campID], nil
}

func (f *fakeSource) ListAidDeliveries(context.Context) ([]models.AidDelivery, error) {
	return []models.AidDelivery{{FamilyID: 1, Items: "rice"}}, f.aidErr
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		families: map[uint][]models.Family{
			1: {{ID: 1, CampID: 1}},
			2: {{ID: 2, CampID: 2}},
		},
		members: map[uint][]models.Individual{
			1: {{ID: 1, FamilyID: 1, Role: "head"}},
			2: {{ID: 2, FamilyID: 2, Role: "head"}, {ID: 3, FamilyID: 2, Role: "son"}},
		},
	}
}

func TestLoader_LoadsRequestedCamps(t *testing.T) {
	l := NewLoader(newFakeSource(), nil)
	ds, err := l.Load(context.Background(), []uint{2})
	require.NoError(t, err)
	assert.Len(t, ds.Camps, 1)
	assert.Len(t, ds.Families, 1)
	assert.Len(t, ds.Individuals, 2)
	assert.Equal(t, uint64(1), ds.Generation)

	ds, err = l.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, ds.Individuals, 3)
	assert.True(t, ds.Aid.HasAny(1, []string{"rice"}))
	assert.Equal(t, uint64(2), ds.Generation)
}

func TestLoader_FetchErrorSurfaces(t *testing.T) {
	src := newFakeSource()
	src.aidErr = errors.New("db locked")
	_, err := NewLoader(src, nil).Load(context.Background(), nil)
	assert.ErrorContains(t, err, "db locked")
}

func TestLoader_SupersededLoadIsStale(t *testing.T) {
	src := newFakeSource()
	entered := make(chan struct{})
	release := make(chan struct{})
	src.onCamps = func(call int) {
		if call == 1 {
			close(entered)
			<-release
		}
	}
	l := NewLoader(src, nil)

	slow := make(chan error, 1)
	go func() {
		_, err := l.Load(context.Background(), nil)
		slow <- err
	}()
	<-entered

	ds, err := l.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), ds.Generation)
	close(release)

	assert.ErrorIs(t, <-slow, ErrStale)
}
