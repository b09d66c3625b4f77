package application

import (
	"context"
	"fmt"

	"github.com/pos-platform/inventory-service/internal/domain"
	"github.com/pos-platform/inventory-service/pkg/errors"
	"github.com/pos-platform/inventory-service/pkg/logging"
	"github.com/pos-platform/inventory-service/pkg/metrics"
)

// maxAllocateAttempts bounds the probe loop under concurrent allocation.
const maxAllocateAttempts = 50

// HoldCodeStore is the slice of the held-order repository the allocator needs.
type HoldCodeStore interface {
	MaxCode(ctx context.Context) (string, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

// CodeAllocator issues sequential hold codes (HLD001, HLD002, ...). It scans
// for the current maximum, then probes forward; claim races surface as
// domain.ErrCodeTaken from the insert and advance the probe. After
// maxAllocateAttempts collisions the allocation gives up with a 503.
type CodeAllocator struct {
	store   HoldCodeStore
	metrics *metrics.Metrics
	logger  *logging.Logger
}

func NewCodeAllocator(store HoldCodeStore, m *metrics.Metrics, logger *logging.Logger) *CodeAllocator {
	return &CodeAllocator{
		store:   store,
		metrics: m,
		logger:  logger.WithComponent("code-allocator"),
	}
}

// Allocate finds the next free hold code and hands each candidate to claim,
// which must persist it or return domain.ErrCodeTaken to signal a race.
// It returns the claimed code.
func (a *CodeAllocator) Allocate(ctx context.Context, claim func(code string) error) (string, error) {
	maxCode, err := a.store.MaxCode(ctx)
	if err != nil {
		return "", fmt.Errorf("scanning hold codes: %w", err)
	}

	next := 1
	if n, ok := domain.ParseHoldCode(maxCode); ok {
		next = n + 1
	}

	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		candidate := domain.FormatHoldCode(next)

		exists, err := a.store.CodeExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probing hold code %s: %w", candidate, err)
		}
		if exists {
			a.metrics.CodeAllocRetries.Inc()
			next++
			continue
		}

		err = claim(candidate)
		if err == nil {
			return candidate, nil
		}
		if domain.IsCodeTaken(err) {
			// someone claimed it between probe and insert
			a.metrics.CodeAllocRetries.Inc()
			next++
			continue
		}
		return "", err
	}

	a.logger.WarnContext(ctx, "hold code allocation exhausted retries",
		"attempts", maxAllocateAttempts)
	return "", errors.ErrConcurrencyExhausted("hold code allocation")
}
