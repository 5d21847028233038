// Package observation manages the field log: it captures new sightings,
// keeps the cached list coherent with the store and serves sorted views.
package observation

import (
	"context"
	"sync"
	"time"

	"github.com/tphakala/birdwatcher/internal/datastore"
	"github.com/tphakala/birdwatcher/internal/errors"
	"github.com/tphakala/birdwatcher/internal/location"
	"github.com/tphakala/birdwatcher/internal/logger"
	"github.com/tphakala/birdwatcher/internal/observability/metrics"
)

// Location outcome labels
const (
	OutcomeCaptured    = "captured"
	OutcomeDenied      = "denied"
	OutcomeUnavailable = "unavailable"
)

// Store is the subset of datastore.Interface the service mutates through
type Store interface {
	Selector
	Insert(ctx context.Context, obs *datastore.Observation) error
	DeleteByID(ctx context.Context, id uint) error
}

// Receipt describes a saved observation. Location holds the non-fatal
// error that prevented capturing coordinates, if any.
type Receipt struct {
	Observation datastore.Observation
	Location    error
}

// Located reports whether coordinates were captured
func (r Receipt) Located() bool {
	return r.Location == nil && r.Observation.HasLocation()
}

// PermissionDenied reports whether the user refused location access
func (r Receipt) PermissionDenied() bool {
	return errors.Is(r.Location, location.ErrPermissionDenied)
}

// Service performs the add and remove flows. Each mutation is followed
// by a full refresh while holding mu, so the cache reflects mutations in
// the order they were applied.
type Service struct {
	mu       sync.Mutex
	store    Store
	list     *List
	locator  location.Provider
	clock    func() time.Time
	zone     *time.Location
	recorder metrics.Recorder
	metrics  *metrics.ObservationMetrics
	log      logger.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source used for timestamps
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithTimeZone sets the zone timestamps are rendered in (default time.Local)
func WithTimeZone(zone *time.Location) Option {
	return func(s *Service) {
		if zone != nil {
			s.zone = zone
		}
	}
}

// WithMetrics records operations, location outcomes and cache size
func WithMetrics(m *metrics.ObservationMetrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
			s.recorder = m
		}
	}
}

// WithLogger overrides the module logger
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// GetLogger returns the observation module logger
func GetLogger() logger.Logger {
	return logger.Global().Module("observation")
}

// NewService creates a service over store. A nil locator saves every
// observation without coordinates.
func NewService(store Store, locator location.Provider, opts ...Option) *Service {
	s := &Service{
		store:    store,
		list:     NewList(store),
		locator:  locator,
		clock:    time.Now,
		zone:     time.Local,
		recorder: metrics.NoOpRecorder{},
		log:      GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddObservation captures the current position and time, inserts a new
// observation and refreshes the list. A location failure is reported in
// the receipt and does not prevent saving. If the insert succeeds but the
// refresh fails, the receipt is returned together with the read error.
func (s *Service) AddObservation(ctx context.Context, species, notes string, rarity Rarity) (Receipt, error) {
	start := time.Now()

	obs := datastore.Observation{
		Species: species,
		Notes:   notes,
		Rarity:  rarity,
	}

	// The position wait can be long, the timestamp marks the save
	locErr := s.capturePosition(ctx, &obs)

	now := s.clock().In(s.zone)
	obs.Timestamp = FormatTimestamp(now)
	obs.ObservedAt = now.Unix()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Insert(ctx, &obs); err != nil {
		s.recordFailure(metrics.OpObservationAdd, err)
		s.log.WithContext(ctx).Error("Failed to save observation",
			logger.String("species", species),
			logger.Error(err))
		return Receipt{}, err
	}

	receipt := Receipt{Observation: obs, Location: locErr}

	s.log.WithContext(ctx).Info("Observation saved",
		logger.Uint64("id", uint64(obs.ID)),
		logger.String("species", obs.Species),
		logger.String("rarity", string(obs.Rarity)),
		logger.Bool("located", receipt.Located()))

	if err := s.refreshLocked(ctx); err != nil {
		s.recordFailure(metrics.OpObservationAdd, err)
		return receipt, err
	}

	s.recorder.RecordOperation(metrics.OpObservationAdd, metrics.StatusSuccess)
	s.recorder.RecordDuration(metrics.OpObservationAdd, time.Since(start).Seconds())
	return receipt, nil
}

// capturePosition fills obs coordinates and returns the location error, if any
func (s *Service) capturePosition(ctx context.Context, obs *datastore.Observation) error {
	if s.locator == nil {
		s.recordLocationOutcome(OutcomeUnavailable)
		return errors.New(location.ErrUnavailable).
			Component("observation").
			Category(errors.CategoryLocation).
			Priority(errors.PriorityLow).
			Build()
	}

	pos, err := s.locator.RequestCurrentPosition(ctx)
	switch {
	case err == nil:
		obs.Latitude = &pos.Latitude
		obs.Longitude = &pos.Longitude
		s.recordLocationOutcome(OutcomeCaptured)
	case errors.Is(err, location.ErrPermissionDenied):
		s.log.Warn("No permission to access location")
		s.recordLocationOutcome(OutcomeDenied)
	default:
		s.log.Warn("Location unavailable, saving without coordinates", logger.Error(err))
		s.recordLocationOutcome(OutcomeUnavailable)
	}
	return err
}

// RemoveObservation deletes the observation with id and refreshes the
// list. Removing an absent id is not an error.
func (s *Service) RemoveObservation(ctx context.Context, id uint) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteByID(ctx, id); err != nil {
		s.recordFailure(metrics.OpObservationRemove, err)
		s.log.WithContext(ctx).Error("Failed to delete observation",
			logger.Uint64("id", uint64(id)),
			logger.Error(err))
		return err
	}

	s.log.WithContext(ctx).Info("Observation removed", logger.Uint64("id", uint64(id)))

	if err := s.refreshLocked(ctx); err != nil {
		s.recordFailure(metrics.OpObservationRemove, err)
		return err
	}

	s.recorder.RecordOperation(metrics.OpObservationRemove, metrics.StatusSuccess)
	s.recorder.RecordDuration(metrics.OpObservationRemove, time.Since(start).Seconds())
	return nil
}

// Refresh reloads the list from the store
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Service) refreshLocked(ctx context.Context) error {
	start := time.Now()
	if err := s.list.Refresh(ctx); err != nil {
		s.recordFailure(metrics.OpObservationRefresh, err)
		s.log.Error("Failed to refresh observation list, keeping previous snapshot",
			logger.Int("cached", s.list.Len()),
			logger.Error(err))
		return err
	}

	size := s.list.Len()
	s.recorder.RecordOperation(metrics.OpObservationRefresh, metrics.StatusSuccess)
	s.recorder.RecordDuration(metrics.OpObservationRefresh, time.Since(start).Seconds())
	if s.metrics != nil {
		s.metrics.SetCacheSize(size)
	}
	s.log.Debug("Observation list refreshed", logger.Int("count", size))
	return nil
}

// GetView returns the cached observations sorted by key
func (s *Service) GetView(key SortKey) []datastore.Observation {
	return s.list.SortedBy(key)
}

// Len returns the number of cached observations
func (s *Service) Len() int {
	return s.list.Len()
}

func (s *Service) recordFailure(operation string, err error) {
	s.recorder.RecordOperation(operation, metrics.StatusError)
	s.recorder.RecordError(operation, errorType(err))
}

func (s *Service) recordLocationOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordLocationOutcome(outcome)
	}
}

// errorType maps store sentinels to metric labels
func errorType(err error) string {
	switch {
	case errors.Is(err, datastore.ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, datastore.ErrWriteFailed):
		return "write_failed"
	case errors.Is(err, datastore.ErrReadFailed):
		return "read_failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "unknown"
	}
}
