package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	offeringDomain "github.com/LankaTrails/service-booking/internal/domain/offering"
	reservationDomain "github.com/LankaTrails/service-booking/internal/domain/reservation"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
	"github.com/LankaTrails/service-booking/internal/platform/metrics"
)

// Postgres SQLSTATEs worth retrying the whole transaction for.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
)

// GormUnitOfWork runs booking work inside a GORM transaction.
type GormUnitOfWork struct {
	db         *gorm.DB
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// NewGormUnitOfWork creates a unit of work that retries transient conflicts up to
// maxRetries times before giving up with a ConflictError.
func NewGormUnitOfWork(db *gorm.DB, maxRetries int, logger *zap.Logger) *GormUnitOfWork {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &GormUnitOfWork{db: db, maxRetries: maxRetries, backoff: 20 * time.Millisecond, logger: logger}
}

type gormTx struct {
	offerings    *GormOfferingRepository
	reservations *GormReservationRepository
}

func (t *gormTx) Offerings() offeringDomain.Repository       { return t.offerings }
func (t *gormTx) Reservations() reservationDomain.Repository { return t.reservations }

// Do runs fn in a transaction. Rollback happens on any error or panic inside fn.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx reservationDomain.Tx) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = u.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
			return fn(ctx, &gormTx{
				offerings:    NewGormOfferingRepository(db),
				reservations: NewGormReservationRepository(db),
			})
		})

		reason, retryable := retryReason(err)
		if !retryable {
			return err
		}
		metrics.TxRetries.WithLabelValues(reason).Inc()
		if attempt >= u.maxRetries {
			u.logger.Warn("transaction retries exhausted",
				zap.String("reason", reason),
				zap.Int("attempts", attempt+1),
				zap.Error(err),
			)
			return domain.NewConflictError("booking is busy, please retry")
		}

		u.logger.Debug("retrying transaction", zap.String("reason", reason), zap.Int("attempt", attempt+1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(u.backoff * time.Duration(attempt+1)):
		}
	}
}

func retryReason(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure:
			return "serialization_failure", true
		case sqlStateDeadlockDetected:
			return "deadlock", true
		case sqlStateLockNotAvailable:
			return "lock_timeout", true
		}
	}
	return "", false
}
