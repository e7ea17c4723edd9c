package camps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lojf/campreg/internal/kv"
	"github.com/lojf/campreg/internal/models"
)

var (
	ErrNoPrincipal     = errors.New("no authenticated principal")
	ErrCampNotVisible  = errors.New("camp is not visible to this user")
	ErrSelectionLocked = errors.New("camp selection is fixed for this user")
	ErrStale           = errors.New("camp load superseded by a newer load")
)

// State is the store lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "uninitialized":
		*s = StateUninitialized
	case "loading":
		*s = StateLoading
	case "ready":
		*s = StateReady
	default:
		return fmt.Errorf("unknown camp store state %q", b)
	}
	return nil
}

// Where a camp list came from.
const (
	SourceStore = "store"
	SourceCache = "cache"
	SourceEmpty = "empty"
)

type CampLister interface {
	ListCamps(ctx context.Context) ([]models.Camp, error)
}

// Reachability reports whether the camp source can be reached right now.
type Reachability interface {
	Reachable(ctx context.Context) bool
}

type Options struct {
	KeyPrefix string
	CacheTTL  time.Duration
	Logger    *zap.Logger
}

// Store owns one principal's camp list and selection. All writes go through
// SetPrincipal, Refresh and ChangeCamp.
type Store struct {
	source CampLister
	reach  Reachability
	kv     kv.KV
	opts   Options
	log    *zap.Logger

	mu         sync.Mutex
	user       *models.User
	state      State
	camps      []models.Camp
	selected   *models.Camp
	locked     bool
	generation uint64
	from       string
}

// Snapshot is a copy of the store's state.
type Snapshot struct {
	State      State         `json:"state"`
	Camps      []models.Camp `json:"camps"`
	Selected   *models.Camp  `json:"selected"`
	Locked     bool          `json:"locked"`
	Generation uint64        `json:"generation"`
	Source     string        `json:"source"`
}

func NewStore(source CampLister, reach Reachability, store kv.KV, opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "campreg:"
	}
	return &Store{source: source, reach: reach, kv: store, opts: opts, log: log}
}

func (s *Store) selectedKey(userID uint) string {
	return s.opts.KeyPrefix + "user:" + strconv.FormatUint(uint64(userID), 10) + ":selected_camp_id"
}

func (s *Store) campsKey(userID uint) string {
	return s.opts.KeyPrefix + "user:" + strconv.FormatUint(uint64(userID), 10) + ":camps"
}

// SetPrincipal handles an auth-state change. A nil user logs out: state,
// camp list, selection and both persisted keys are cleared. A non-nil user
// triggers a load.
func (s *Store) SetPrincipal(ctx context.Context, u *models.User) error {
	if u == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		prev := s.user
		s.user = nil
		s.generation++
		s.state = StateUninitialized
		s.camps = nil
		s.selected = nil
		s.locked = false
		s.from = ""

		if prev == nil {
			return nil
		}
		if err := s.kv.Delete(ctx, s.selectedKey(prev.ID), s.campsKey(prev.ID)); err != nil {
			return fmt.Errorf("clear persisted camp state: %w", err)
		}
		return nil
	}

	cp := *u
	cp.AssignedCamps = append([]uint(nil), u.AssignedCamps...)
	s.mu.Lock()
	s.user = &cp
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh re-runs the load sequence for the current principal. A load that
// finishes after a newer one started is dropped and reports ErrStale.
// Persisted keys are read for selection and written under mu, and only by
// the current generation.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNoPrincipal
	}
	s.generation++
	gen := s.generation
	s.state = StateLoading
	user := *s.user
	s.mu.Unlock()

	all, from := s.fetch(ctx, user.ID)
	visible := Visible(&user, all)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.log.Debug("dropping superseded camp load",
			zap.Uint("user_id", user.ID),
			zap.Uint64("generation", gen),
		)
		return ErrStale
	}
	if from == SourceStore {
		s.writeCache(ctx, user.ID, all)
	}
	persisted := s.readSelected(ctx, user.ID)
	selected, locked := Select(&user, visible, persisted)
	s.camps = visible
	s.selected = selected
	s.locked = locked
	s.state = StateReady
	s.from = from
	switch {
	case selected != nil && (persisted == nil || *persisted != selected.ID):
		s.writeSelected(ctx, user.ID, &selected.ID)
	case selected == nil && persisted != nil:
		s.writeSelected(ctx, user.ID, nil)
	}
	s.mu.Unlock()

	s.log.Info("camps loaded",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role),
		zap.String("source", from),
		zap.Int("visible", len(visible)),
		zap.Uint64("generation", gen),
	)
	return nil
}

// fetch resolves the unfiltered camp list: the store while reachable, else
// the last good list, else nothing.
func (s *Store) fetch(ctx context.Context, userID uint) ([]models.Camp, string) {
	if s.reach == nil || s.reach.Reachable(ctx) {
		list, err := s.source.ListCamps(ctx)
		if err == nil {
			return list, SourceStore
		}
		s.log.Warn("camp fetch failed, using cached list", zap.Uint("user_id", userID), zap.Error(err))
	} else {
		s.log.Warn("camp source unreachable, using cached list", zap.Uint("user_id", userID))
	}

	raw, err := s.kv.Get(ctx, s.campsKey(userID))
	if err != nil {
		if !errors.Is(err, kv.ErrMiss) {
			s.log.Warn("read cached camps", zap.Error(err))
		}
		return nil, SourceEmpty
	}
	var list []models.Camp
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.log.Warn("decode cached camps", zap.Error(err))
		return nil, SourceEmpty
	}
	return list, SourceCache
}

func (s *Store) writeCache(ctx context.Context, userID uint, list []models.Camp) {
	b, err := json.Marshal(list)
	if err != nil {
		s.log.Warn("encode camp cache", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, s.campsKey(userID), string(b), s.opts.CacheTTL); err != nil {
		s.log.Warn("write camp cache", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (s *Store) readSelected(ctx context.Context, userID uint) *uint {
	raw, err := s.kv.Get(ctx, s.selectedKey(userID))
	if err != nil {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	v := uint(id)
	return &v
}

func (s *Store) writeSelected(ctx context.Context, userID uint, id *uint) {
	var err error
	if id == nil {
		err = s.kv.Delete(ctx, s.selectedKey(userID))
	} else {
		err = s.kv.Set(ctx, s.selectedKey(userID), strconv.FormatUint(uint64(*id), 10), 0)
	}
	if err != nil {
		s.log.Warn("persist selected camp", zap.Uint("user_id", userID), zap.Error(err))
	}
}

// ChangeCamp selects camp (nil clears the selection) and persists the choice.
func (s *Store) ChangeCamp(ctx context.Context, camp *models.Camp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ErrNoPrincipal
	}
	if s.locked {
		if camp != nil && s.selected != nil && camp.ID == s.selected.ID {
			return nil
		}
		return ErrSelectionLocked
	}
	var next *models.Camp
	if camp != nil {
		c, ok := find(s.camps, camp.ID)
		if !ok {
			return ErrCampNotVisible
		}
		next = &c
	}
	s.selected = next
	if next == nil {
		s.writeSelected(ctx, s.user.ID, nil)
	} else {
		s.writeSelected(ctx, s.user.ID, &next.ID)
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Snapshot{
		State:      s.state,
		Camps:      append([]models.Camp(nil), s.camps...),
		Locked:     s.locked,
		Generation: s.generation,
		Source:     s.from,
	}
	if s.selected != nil {
		c := *s.selected
		out.Selected = &c
	}
	return out
}

// Principal returns a copy of the current user, if any.
func (s *Store) Principal() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}
