package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kitzone/api/internal/repositories"
)

const orderNumberPrefix = "KZ"

// ErrCounterUnavailable indicates a sequence number could not be handed out.
var ErrCounterUnavailable = errors.New("counter: sequence unavailable")

// CounterServiceDeps bundles collaborators required to construct the counter service.
type CounterServiceDeps struct {
	Counters repositories.CounterRepository
	Clock    func() time.Time
}

type counterService struct {
	counters repositories.CounterRepository
	clock    func() time.Time
}

var _ CounterService = (*counterService)(nil)

// NewCounterService wires dependencies into a concrete CounterService implementation.
func NewCounterService(deps CounterServiceDeps) (CounterService, error) {
	if deps.Counters == nil {
		return nil, errors.New("counter service: counter repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &counterService{
		counters: deps.Counters,
		clock: func() time.Time {
			return clock().UTC()
		},
	}, nil
}

// NextOrderNumber hands out the next human-readable order reference, for
// example "KZ-2026-000042". Sequences are scoped per calendar year so the
// counter restarts each January.
func (s *counterService) NextOrderNumber(ctx context.Context) (string, error) {
	year := s.clock().Year()
	counterID := fmt.Sprintf("orders-%04d", year)

	value, err := s.counters.Next(ctx, counterID, 1)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCounterUnavailable, err)
	}
	return fmt.Sprintf("%s-%04d-%06d", orderNumberPrefix, year, value), nil
}
