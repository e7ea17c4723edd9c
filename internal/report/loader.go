package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lojf/campreg/internal/models"
)

// ErrStale is returned by a load that finished after a newer one started.
var ErrStale = errors.New("report load superseded by a newer load")

// Source is the data-store collaborator the loader reads from.
type Source interface {
	ListCamps(ctx context.Context) ([]models.Camp, error)
	ListFamilies(ctx context.Context, campID uint) ([]models.Family, error)
	ListIndividuals(ctx context.Context, campID uint) ([]models.Individual, error)
	ListAidDeliveries(ctx context.Context) ([]models.AidDelivery, error)
}

// Loader fetches datasets. Each Load takes a new generation; only the latest
// generation's result is returned, older ones get ErrStale.
type Loader struct {
	src Source
	log *zap.Logger

	mu         sync.Mutex
	generation uint64
}

func NewLoader(src Source, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{src: src, log: log}
}

func (l *Loader) next() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	return l.generation
}

func (l *Loader) current() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generation
}

// Load reads the given camps (all camps when campIDs is empty) with their
// families, members and the aid index.
func (l *Loader) Load(ctx context.Context, campIDs []uint) (*Dataset, error) {
	gen := l.next()
	start := time.Now()

	all, err := l.src.ListCamps(ctx)
	if err != nil {
		l.log.Error("report load failed", zap.String("step", "camps"), zap.Error(err))
		return nil, fmt.Errorf("load camps: %w", err)
	}
	camps := all
	if len(campIDs) > 0 {
		want := make(map[uint]bool, len(campIDs))
		for _, id := range campIDs {
			want[id] = true
		}
		camps = make([]models.Camp, 0, len(campIDs))
		for _, c := range all {
			if want[c.ID] {
				camps = append(camps, c)
			}
		}
	}

	ds := &Dataset{Camps: camps, Generation: gen}
	for _, c := range camps {
		fams, err := l.src.ListFamilies(ctx, c.ID)
		if err != nil {
			l.log.Error("report load failed", zap.String("step", "families"), zap.Uint("camp_id", c.ID), zap.Error(err))
			return nil, fmt.Errorf("load families of camp %d: %w", c.ID, err)
		}
		members, err := l.src.ListIndividuals(ctx, c.ID)
		if err != nil {
			l.log.Error("report load failed", zap.String("step", "individuals"), zap.Uint("camp_id", c.ID), zap.Error(err))
			return nil, fmt.Errorf("load individuals of camp %d: %w", c.ID, err)
		}
		ds.Families = append(ds.Families, fams...)
		ds.Individuals = append(ds.Individuals, members...)
	}
	aid, err := l.src.ListAidDeliveries(ctx)
	if err != nil {
		l.log.Error("report load failed", zap.String("step", "aid"), zap.Error(err))
		return nil, fmt.Errorf("load aid deliveries: %w", err)
	}
	ds.Aid = NewAidIndex(aid)

	if gen != l.current() {
		l.log.Debug("dropping superseded report load", zap.Uint64("generation", gen))
		return nil, ErrStale
	}
	l.log.Info("report data loaded",
		zap.Int("camps", len(camps)),
		zap.Int("families", len(ds.Families)),
		zap.Int("records", len(ds.Individuals)),
		zap.Uint64("generation", gen),
		zap.Duration("took", time.Since(start)),
	)
	return ds, nil
}
