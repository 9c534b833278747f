package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/records"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnknownChart indicates that no chart definition has the requested name.
	ErrUnknownChart = errors.New("history: unknown chart")

	errMissingSource = errors.New("history: record source is required")
)

// Source lists the records the reconciler reads.
type Source interface {
	ListSymptoms(ctx context.Context) ([]records.Symptom, error)
	ListMedications(ctx context.Context) ([]records.Medication, error)
}

// Snapshot is an immutable copy of the records a chart is built from.
type Snapshot struct {
	Symptoms    []records.Symptom
	Medications []records.Medication
	LoadedAt    time.Time
}

// LoadSnapshot fetches symptoms and medications in parallel. If either fetch fails the whole
// snapshot is discarded.
func LoadSnapshot(ctx context.Context, source Source, clock func() time.Time) (Snapshot, error) {
	if source == nil {
		return Snapshot{}, errMissingSource
	}
	if clock == nil {
		clock = time.Now
	}

	var (
		symptoms    []records.Symptom
		medications []records.Medication
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		loaded, err := source.ListSymptoms(groupCtx)
		if err != nil {
			return fmt.Errorf("load symptoms: %w", err)
		}
		symptoms = loaded
		return nil
	})
	group.Go(func() error {
		loaded, err := source.ListMedications(groupCtx)
		if err != nil {
			return fmt.Errorf("load medications: %w", err)
		}
		medications = loaded
		return nil
	})
	if err := group.Wait(); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Symptoms:    symptoms,
		Medications: medications,
		LoadedAt:    clock().UTC(),
	}, nil
}

// ControllerConfig describes the dependencies of a Controller.
type ControllerConfig struct {
	Source  Source
	Catalog Catalog
	Clock   func() time.Time
	Logger  *zap.Logger
}

// Controller keeps the latest successfully loaded snapshot. Loads run one at a time and a
// failed load leaves the previous snapshot in place.
type Controller struct {
	source  Source
	catalog Catalog
	clock   func() time.Time
	logger  *zap.Logger

	loadMu   sync.Mutex
	mu       sync.RWMutex
	current  Snapshot
	hasValue bool
}

// NewController constructs a Controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Source == nil {
		return nil, errMissingSource
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := cfg.Catalog
	if len(catalog.charts) == 0 {
		catalog = DefaultCatalog()
	}
	return &Controller{
		source:  cfg.Source,
		catalog: catalog,
		clock:   clock,
		logger:  logger,
	}, nil
}

// Catalog returns the chart definitions served by the controller.
func (c *Controller) Catalog() Catalog {
	return c.catalog
}

// Refresh loads a new snapshot and makes it current.
func (c *Controller) Refresh(ctx context.Context) (Snapshot, error) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	snapshot, err := LoadSnapshot(ctx, c.source, c.clock)
	if err != nil {
		c.logger.Warn("history snapshot load failed", zap.Error(err))
		return Snapshot{}, err
	}

	c.mu.Lock()
	c.current = snapshot
	c.hasValue = true
	c.mu.Unlock()

	c.logger.Debug("history snapshot loaded",
		zap.Int("symptoms", len(snapshot.Symptoms)),
		zap.Int("medications", len(snapshot.Medications)))
	return snapshot, nil
}

// Current returns the last good snapshot and whether one has been loaded.
func (c *Controller) Current() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.hasValue
}

// ChartSet is the result of a chart request. Stale is set when the refresh failed and the
// charts come from the last good snapshot, loaded at LoadedAt.
type ChartSet struct {
	Charts   []Chart   `json:"charts"`
	LoadedAt time.Time `json:"loadedAt"`
	Stale    bool      `json:"stale"`
}

// Charts refreshes and reconciles either every chart or the one named. When the refresh fails
// and a previous snapshot exists, the charts are built from it and marked stale. Without one
// the load error is returned.
func (c *Controller) Charts(ctx context.Context, name string) (ChartSet, error) {
	var definitions []ChartDefinition
	if name == "" {
		definitions = c.catalog.Charts()
	} else {
		definition, ok := c.catalog.Chart(name)
		if !ok {
			return ChartSet{}, fmt.Errorf("%w: %s", ErrUnknownChart, name)
		}
		definitions = []ChartDefinition{definition}
	}

	stale := false
	snapshot, err := c.Refresh(ctx)
	if err != nil {
		previous, ok := c.Current()
		if !ok {
			return ChartSet{}, err
		}
		c.logger.Warn("serving charts from previous snapshot",
			zap.Time("loaded_at", previous.LoadedAt),
			zap.Error(err))
		snapshot = previous
		stale = true
	}

	charts := make([]Chart, 0, len(definitions))
	for _, definition := range definitions {
		charts = append(charts, Build(snapshot, definition))
	}
	return ChartSet{Charts: charts, LoadedAt: snapshot.LoadedAt, Stale: stale}, nil
}
