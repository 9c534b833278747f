package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

const (
	opServiceNew = "records.service.new"

	reasonMissingDatabase   = "missing_database"
	reasonMissingIDProvider = "missing_id_provider"
	reasonIDGeneration      = "id_generation_failed"
	reasonBreakerOpen       = "breaker_open"
	reasonQueryFailed       = "query_failed"
	reasonCanceled          = "canceled"
	reasonNotFound          = "not_found"
	reasonMissingID         = "missing_id"
	reasonMissingName       = "missing_name"
	reasonMissingTitle      = "missing_title"
	reasonMissingContent    = "missing_content"
	reasonInvalidDate       = "invalid_date"
	reasonInvalidCategory   = "invalid_category"
	reasonEmptyUpdate       = "empty_update"

	orderNewestFirst = "created_at DESC, id DESC"
	queryByID        = "id = ?"
)

// ServiceConfig describes the dependencies of the record store.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
	Guard      GuardConfig
}

// IDProvider issues identifiers for new records.
type IDProvider interface {
	NewID() (string, error)
}

// Service persists symptoms, medications and notes. It never deletes and never retries.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
	guard      *storeGuard
}

// NewService validates dependencies and constructs the record store.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, reasonMissingDatabase, ErrStoreUnavailable, errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, reasonMissingIDProvider, ErrStoreUnavailable, errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
		guard:      newStoreGuard(cfg.Guard, logger),
	}, nil
}

// newRecordStamp returns a fresh identifier and creation timestamp.
func (s *Service) newRecordStamp(operation string) (string, string, error) {
	if s.idProvider == nil {
		s.logError(operation, reasonMissingIDProvider, errMissingIDProvider)
		return "", "", newServiceError(operation, reasonMissingIDProvider, ErrStoreUnavailable, errMissingIDProvider)
	}
	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError(operation, reasonIDGeneration, err)
		return "", "", newServiceError(operation, reasonIDGeneration, ErrStoreUnavailable, err)
	}
	return id, s.clock().UTC().Format(CreatedAtLayout), nil
}

// resolveDate normalizes a submitted day, defaulting to today on the store clock.
func (s *Service) resolveDate(operation, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return s.clock().Format(DateLayout), nil
	}
	date, err := NormalizeDate(raw)
	if err != nil {
		return "", newServiceError(operation, reasonInvalidDate, ErrValidation, err)
	}
	return date, nil
}

func (s *Service) createRecord(ctx context.Context, operation string, record any, fields ...zap.Field) error {
	if s.db == nil {
		s.logError(operation, reasonMissingDatabase, errMissingDatabase)
		return newServiceError(operation, reasonMissingDatabase, ErrStoreUnavailable, errMissingDatabase)
	}
	err := s.guard.run(func() error {
		return s.db.WithContext(ctx).Create(record).Error
	})
	if err != nil {
		return s.storeError(operation, err, fields...)
	}
	return nil
}

func (s *Service) listRecords(ctx context.Context, operation string, destination any) error {
	if s.db == nil {
		s.logError(operation, reasonMissingDatabase, errMissingDatabase)
		return newServiceError(operation, reasonMissingDatabase, ErrStoreUnavailable, errMissingDatabase)
	}
	err := s.guard.run(func() error {
		return s.db.WithContext(ctx).Order(orderNewestFirst).Find(destination).Error
	})
	if err != nil {
		return s.storeError(operation, err)
	}
	return nil
}

func (s *Service) getRecord(ctx context.Context, operation, id string, destination any) error {
	if s.db == nil {
		s.logError(operation, reasonMissingDatabase, errMissingDatabase)
		return newServiceError(operation, reasonMissingDatabase, ErrStoreUnavailable, errMissingDatabase)
	}
	if id == "" {
		return newServiceError(operation, reasonMissingID, ErrNotFound, nil)
	}
	err := s.guard.run(func() error {
		return s.db.WithContext(ctx).Where(queryByID, id).Take(destination).Error
	})
	if err != nil {
		return s.storeError(operation, err, zap.String("record_id", id))
	}
	return nil
}

func (s *Service) updateRecord(ctx context.Context, operation string, model any, id string, updates map[string]any) error {
	if s.db == nil {
		s.logError(operation, reasonMissingDatabase, errMissingDatabase)
		return newServiceError(operation, reasonMissingDatabase, ErrStoreUnavailable, errMissingDatabase)
	}
	if id == "" {
		return newServiceError(operation, reasonMissingID, ErrNotFound, nil)
	}
	if len(updates) == 0 {
		return newServiceError(operation, reasonEmptyUpdate, ErrValidation, nil)
	}
	err := s.guard.run(func() error {
		result := s.db.WithContext(ctx).Model(model).Where(queryByID, id).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return s.storeError(operation, err, zap.String("record_id", id))
	}
	return nil
}

// storeError classifies a database failure. NotFound and caller cancellation are returned
// quietly; everything else is logged and surfaced as ErrStoreUnavailable.
func (s *Service) storeError(operation string, err error, fields ...zap.Field) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newServiceError(operation, reasonNotFound, ErrNotFound, err)
	}
	if canceled(err) {
		return newServiceError(operation, reasonCanceled, nil, err)
	}
	reason := reasonQueryFailed
	if breakerRejected(err) {
		reason = reasonBreakerOpen
	}
	s.logError(operation, reason, err, fields...)
	return newServiceError(operation, reason, ErrStoreUnavailable, err)
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil {
		return noOpLogger
	}
	if s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("records service error", attrs...)
}
