package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/energy-vault/pkg/cache"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
	"github.com/chris/energy-vault/pkg/websockets"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/chris/energy-vault/pkg/ledger"

// Service is the energy credit ledger. It is the only component that mutates vaults.
type Service struct {
	store     storage.CreditStore
	cache     cache.BalanceCache
	publisher websockets.Publisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	locks     *keyedMutex
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the balance cache.
func WithCache(c cache.BalanceCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithPublisher sets where vault updates are pushed.
func WithPublisher(p websockets.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides uuid generation for credits and transactions.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New creates a ledger Service over store.
func New(store storage.CreditStore, opts ...Option) *Service {
	s := &Service{
		store:     store,
		cache:     cache.NoOp{},
		publisher: &websockets.NoOpPublisher{},
		logger:    slog.Default(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
		locks:     newKeyedMutex(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// observe opens a span and returns a func that records metrics and closes it.
func (s *Service) observe(ctx context.Context, operation, customerID string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "ledger."+operation,
		trace.WithAttributes(attribute.String("customer.id", customerID)))

	return ctx, func(err error) {
		result := "ok"
		if err != nil {
			result = "error"
			var verr *ValidationError
			if errors.As(err, &verr) {
				result = "invalid"
			} else if errors.Is(err, storage.ErrConcurrencyConflict) {
				result = "conflict"
			} else if errors.Is(err, ErrDuplicateIssue) {
				result = "duplicate"
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		operationsTotal.WithLabelValues(operation, result).Inc()
		operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		span.End()
	}
}

// planFunc inspects a ledger snapshot and returns the mutation to commit, or nil for no change.
type planFunc func(l *models.Ledger, now time.Time) (*models.Mutation, error)

// mutate runs load, plan and commit while holding the customer's lock. The cache
// refresh and vault update pushes happen after the lock is released.
func (s *Service) mutate(ctx context.Context, customerID string, plan planFunc) (*models.Mutation, error) {
	m, err := s.commitLocked(ctx, customerID, plan)
	if err != nil || m == nil {
		return nil, err
	}

	s.afterCommit(ctx, m)
	return m, nil
}

func (s *Service) commitLocked(ctx context.Context, customerID string, plan planFunc) (*models.Mutation, error) {
	unlock, err := s.locks.Lock(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock for customer %s: %w", customerID, err)
	}
	defer unlock()

	l, err := s.store.LoadLedger(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	m, err := plan(l, s.now().UTC())
	if err != nil || m == nil {
		return nil, err
	}

	if err := s.store.CommitMutation(ctx, m); err != nil {
		if errors.Is(err, storage.ErrConcurrencyConflict) {
			conflictsTotal.Inc()
		}
		return nil, fmt.Errorf("failed to commit ledger mutation: %w", err)
	}
	return m, nil
}

// nextVault prepares the successor of the snapshot's vault.
func nextVault(l *models.Ledger, customerID string, now time.Time) models.EnergyVault {
	v := l.Vault
	v.CustomerID = customerID
	v.Version = l.Vault.Version + 1
	v.LastUpdated = now
	v.Transactions = nil
	return v
}

// afterCommit refreshes the cache and pushes updates. Failures are logged, never returned.
// Both are keyed by vault version, so commits finishing out of order cannot leave an
// older balance cached; subscribers order updates by the version in the payload.
func (s *Service) afterCommit(ctx context.Context, m *models.Mutation) {
	if err := s.cache.SetBalance(ctx, m.CustomerID, m.Vault.AvailableCredits, m.Vault.Version); err != nil {
		s.logger.Warn("failed to refresh cached balance", "customerId", m.CustomerID, "error", err)
		if err := s.cache.InvalidateBalance(ctx, m.CustomerID, m.Vault.Version); err != nil {
			s.logger.Error("failed to invalidate cached balance", "customerId", m.CustomerID, "error", err)
		}
	}

	for _, tx := range m.Append {
		msg := websockets.Message{
			Type: websockets.MessageTypeVaultUpdate,
			Payload: websockets.VaultUpdatePayload{
				CustomerID:       m.CustomerID,
				TransactionID:    tx.ID,
				Reason:           string(tx.Reason),
				Change:           tx.Signed().String(),
				AvailableCredits: m.Vault.AvailableCredits.String(),
				Version:          m.Vault.Version,
			},
		}
		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.logger.Error("failed to publish vault update", "customerId", m.CustomerID, "error", err)
		}
	}
}
