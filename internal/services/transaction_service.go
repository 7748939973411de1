package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

const listCacheKey = "transactions:all"

type (
	// TransactionRepository is the persistence the service needs.
	TransactionRepository interface {
		ListAll(ctx context.Context) ([]core.Transaction, error)
		Create(ctx context.Context, d core.Draft) (core.Transaction, error)
	}

	// EventPublisher announces stored transactions to other processes.
	EventPublisher interface {
		PublishTransactionCreated(ctx context.Context, t core.Transaction) error
	}

	// Options tune validation and caching. The zero value is loose
	// validation with no cache.
	Options struct {
		StrictValidation bool
		ListCache        cache.Cache[[]core.Transaction]
		Publisher        EventPublisher
		Logger           *applog.Logger
	}
)

// TransactionService validates create requests, persists them, keeps the
// list cache coherent and publishes created events.
type TransactionService struct {
	repo      TransactionRepository
	strict    bool
	listCache cache.Cache[[]core.Transaction]
	publisher EventPublisher
	log       *applog.StructuredLogger
	logger    *applog.Logger
	now       func() time.Time

	// cacheMu orders list cache fills against invalidation. generation is
	// bumped on every write so a list that raced a create is not cached.
	cacheMu    sync.Mutex
	generation atomic.Uint64
	created    atomic.Int64
}

func NewTransactionService(repo TransactionRepository, opts Options) *TransactionService {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentService)
	return &TransactionService{
		repo:      repo,
		strict:    opts.StrictValidation,
		listCache: opts.ListCache,
		publisher: opts.Publisher,
		log:       applog.NewStructuredLogger(logger),
		logger:    logger,
		now:       time.Now,
	}
}

// List returns every transaction, newest first.
func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	if s.listCache != nil {
		if txs, ok := s.listCache.Get(listCacheKey); ok {
			s.logger.DebugContext(ctx, "List served from cache",
				applog.FieldOperation, applog.OpList,
				applog.FieldCount, len(txs),
				applog.FieldCacheHit, true)
			return cloneTransactions(txs), nil
		}
	}

	gen := s.generation.Load()
	txs, err := s.repo.ListAll(ctx)
	if err != nil {
		s.log.LogError(ctx, "Failed to list transactions", err, applog.OpList,
			applog.NewFields().WithErrorType(applog.ErrorTypeDatabase))
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	if s.listCache != nil {
		s.cacheMu.Lock()
		if s.generation.Load() == gen {
			s.listCache.Set(listCacheKey, cloneTransactions(txs))
		}
		s.cacheMu.Unlock()
	}
	return txs, nil
}

// Create validates c and stores it. Validation failures are returned as
// *core.ValidationError.
func (s *TransactionService) Create(ctx context.Context, c core.Candidate) (core.Transaction, error) {
	draft, err := c.Normalize(s.now(), s.strict)
	if err != nil {
		s.logger.DebugContext(ctx, "Rejected transaction",
			applog.FieldOperation, applog.OpValidate,
			applog.FieldErrorType, applog.ErrorTypeValidation,
			applog.FieldError, err)
		return core.Transaction{}, err
	}

	t, err := s.repo.Create(ctx, draft)
	if err != nil {
		s.log.LogError(ctx, "Failed to create transaction", err, applog.OpCreate,
			applog.NewFields().WithErrorType(applog.ErrorTypeDatabase))
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.cacheMu.Lock()
	s.generation.Add(1)
	if s.listCache != nil {
		s.listCache.Delete(listCacheKey)
	}
	s.cacheMu.Unlock()
	s.created.Add(1)
	s.log.LogTransactionCreated(ctx, t.ID, t.Amount, string(t.Type), t.Category)

	s.publish(ctx, t)
	return t, nil
}

// publish never fails the request; the transaction is already stored.
func (s *TransactionService) publish(ctx context.Context, t core.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionCreated(ctx, t); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish transaction event",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldTransactionID, t.ID,
			applog.FieldError, err)
	}
}

// Created returns how many transactions this process has stored.
func (s *TransactionService) Created() int64 {
	return s.created.Load()
}

// CacheStats reports list cache lookups; zero when caching is off.
func (s *TransactionService) CacheStats() cache.Stats {
	if s.listCache == nil {
		return cache.Stats{}
	}
	return s.listCache.Stats()
}

// Close releases the publisher when it holds a connection.
func (s *TransactionService) Close() error {
	var errs []error
	if closer, ok := s.publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}

func cloneTransactions(in []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(in))
	copy(out, in)
	return out
}
