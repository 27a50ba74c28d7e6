package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pfirestore "github.com/kitzone/api/internal/platform/firestore"
	"github.com/kitzone/api/internal/repositories"
)

type counterDocument struct {
	Value     int64     `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// CounterRepository hands out monotonic sequence numbers. Each Next call runs
// a read-modify-write transaction on the counter document, creating it on
// first use.
type CounterRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[counterDocument]
}

var _ repositories.CounterRepository = (*CounterRepository)(nil)

// NewCounterRepository constructs a Firestore-backed counter repository.
func NewCounterRepository(provider *pfirestore.Provider) (*CounterRepository, error) {
	if provider == nil {
		return nil, errors.New("counter repository requires firestore provider")
	}
	return &CounterRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[counterDocument](provider, countersCollection, nil, nil),
	}, nil
}

// Next advances the counter by step and returns the resulting value.
func (r *CounterRepository) Next(ctx context.Context, counterID string, step int64) (int64, error) {
	counterID = strings.TrimSpace(counterID)
	if counterID == "" {
		return 0, &repositories.CounterError{Message: "counter id is required"}
	}
	if step <= 0 {
		return 0, &repositories.CounterError{CounterID: counterID, Message: "step must be positive"}
	}

	ref, err := r.base.DocumentRef(ctx, counterID)
	if err != nil {
		return 0, &repositories.CounterError{CounterID: counterID, Message: "resolve counter document", Err: err}
	}

	var next int64
	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current := int64(0)
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			doc, err := r.base.Decode(ctx, snap)
			if err != nil {
				return err
			}
			current = doc.Value
		case status.Code(err) == codes.NotFound:
			// First use of this counter; start from zero.
		default:
			return err
		}

		next = current + step
		return tx.Set(ref, counterDocument{Value: next, UpdatedAt: time.Now().UTC()})
	})
	if err != nil {
		return 0, &repositories.CounterError{CounterID: counterID, Message: "advance counter", Err: err}
	}
	return next, nil
}
