package camps

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/lojf/campreg/internal/models"
)

// Sessions keeps one Store per signed-in user.
type Sessions struct {
	newStore func() *Store
	log      *zap.Logger

	mu     sync.Mutex
	stores map[uint]*Store
}

func NewSessions(newStore func() *Store, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{newStore: newStore, log: log, stores: map[uint]*Store{}}
}

// Login binds u to its store, creating it on first use, and loads camps.
func (s *Sessions) Login(ctx context.Context, u *models.User) (*Store, error) {
	s.mu.Lock()
	st, ok := s.stores[u.ID]
	if !ok {
		st = s.newStore()
		s.stores[u.ID] = st
	}
	s.mu.Unlock()

	if err := st.SetPrincipal(ctx, u); err != nil && !errors.Is(err, ErrStale) {
		return nil, err
	}
	return st, nil
}

func (s *Sessions) Get(userID uint) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[userID]
	return st, ok
}

// Logout tears the user's store down and clears its persisted keys.
func (s *Sessions) Logout(ctx context.Context, userID uint) error {
	s.mu.Lock()
	st, ok := s.stores[userID]
	delete(s.stores, userID)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return st.SetPrincipal(ctx, nil)
}

// RefreshAll reloads every live store.
func (s *Sessions) RefreshAll(ctx context.Context) {
	s.mu.Lock()
	stores := make(map[uint]*Store, len(s.stores))
	for id, st := range s.stores {
		stores[id] = st
	}
	s.mu.Unlock()

	for id, st := range stores {
		if err := st.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) && !errors.Is(err, ErrNoPrincipal) {
			s.log.Warn("refresh camps", zap.Uint("user_id", id), zap.Error(err))
		}
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}
