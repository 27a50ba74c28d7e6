package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/kitzone/api/internal/domain"
	pfirestore "github.com/kitzone/api/internal/platform/firestore"
	"github.com/kitzone/api/internal/repositories"
)

type discountDocument struct {
	Code        string     `firestore:"code"`
	Percent     int        `firestore:"percent"`
	MaxUses     *int       `firestore:"maxUses,omitempty"`
	CurrentUses int        `firestore:"currentUses"`
	ValidUntil  *time.Time `firestore:"validUntil,omitempty"`
	Active      bool       `firestore:"active"`
	CreatedAt   time.Time  `firestore:"createdAt"`
	UpdatedAt   time.Time  `firestore:"updatedAt"`
}

// DiscountRepository stores discount codes. Codes are persisted uppercase so
// lookups normalise before querying.
type DiscountRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[discountDocument]
}

var _ repositories.DiscountRepository = (*DiscountRepository)(nil)

// NewDiscountRepository constructs a Firestore-backed discount repository.
func NewDiscountRepository(provider *pfirestore.Provider) (*DiscountRepository, error) {
	if provider == nil {
		return nil, errors.New("discount repository requires firestore provider")
	}
	return &DiscountRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[discountDocument](provider, discountsCollection, nil, nil),
	}, nil
}

// Insert creates a new discount code. The code string is stored uppercase.
func (r *DiscountRepository) Insert(ctx context.Context, code domain.DiscountCode) error {
	if strings.TrimSpace(code.ID) == "" {
		return errors.New("discount repository: code id is required")
	}
	return r.base.Create(ctx, code.ID, discountToDocument(code))
}

// Update overwrites an existing discount code.
func (r *DiscountRepository) Update(ctx context.Context, code domain.DiscountCode) error {
	if strings.TrimSpace(code.ID) == "" {
		return errors.New("discount repository: code id is required")
	}
	return r.base.Set(ctx, code.ID, discountToDocument(code))
}

// Delete removes a discount code.
func (r *DiscountRepository) Delete(ctx context.Context, codeID string) error {
	return r.base.Delete(ctx, codeID)
}

// FindByID fetches a discount code by document ID.
func (r *DiscountRepository) FindByID(ctx context.Context, codeID string) (domain.DiscountCode, error) {
	doc, err := r.base.Get(ctx, codeID)
	if err != nil {
		return domain.DiscountCode{}, err
	}
	return discountFromDocument(doc.ID, doc.Data), nil
}

// FindByCode looks up a code by its customer-facing string, normalised to
// uppercase before the query.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (domain.DiscountCode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return domain.DiscountCode{}, pfirestore.NotFoundError("discount_codes.find_by_code", errors.New("code is empty"))
	}
	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("code", "==", normalized).Limit(1)
	})
	if err != nil {
		return domain.DiscountCode{}, err
	}
	if len(docs) == 0 {
		return domain.DiscountCode{}, pfirestore.NotFoundError("discount_codes.find_by_code", errors.New("code not found"))
	}
	return discountFromDocument(docs[0].ID, docs[0].Data), nil
}

// List returns a page of discount codes, newest first.
func (r *DiscountRepository) List(ctx context.Context, filter repositories.DiscountListFilter) (domain.CursorPage[domain.DiscountCode], error) {
	pageSize := filter.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		if filter.Active != nil {
			query = query.Where("active", "==", *filter.Active)
		}
		query = query.OrderBy("createdAt", firestore.Desc)
		withCursor, cursorErr := pageCursor(query, filter.Pagination.PageToken)
		if cursorErr == nil {
			query = withCursor
		}
		return query.Limit(pageSize + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.DiscountCode]{}, err
	}

	page := domain.CursorPage[domain.DiscountCode]{}
	for i, doc := range docs {
		if i == pageSize {
			page.NextPageToken = nextPageToken(docs[i-1].Data.CreatedAt)
			break
		}
		page.Items = append(page.Items, discountFromDocument(doc.ID, doc.Data))
	}
	return page, nil
}

// ConsumeUse increments the usage counter inside a transaction, re-checking
// activity, expiry and the usage limit against the current stored state so
// concurrent checkouts cannot push the counter past MaxUses.
func (r *DiscountRepository) ConsumeUse(ctx context.Context, codeID string, now time.Time) (domain.DiscountCode, error) {
	ref, err := r.base.DocumentRef(ctx, codeID)
	if err != nil {
		return domain.DiscountCode{}, err
	}

	var consumed domain.DiscountCode
	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		doc, err := r.base.Decode(ctx, snap)
		if err != nil {
			return err
		}

		code := discountFromDocument(snap.Ref.ID, doc)
		if !code.Active || (code.ValidUntil != nil && now.After(*code.ValidUntil)) {
			return repositories.ErrDiscountInactive
		}
		if code.MaxUses != nil && code.CurrentUses >= *code.MaxUses {
			return repositories.ErrDiscountExhausted
		}

		code.CurrentUses++
		code.UpdatedAt = now.UTC()
		consumed = code
		return tx.Update(ref, []firestore.Update{
			{Path: "currentUses", Value: code.CurrentUses},
			{Path: "updatedAt", Value: code.UpdatedAt},
		})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDiscountInactive) || errors.Is(err, repositories.ErrDiscountExhausted) {
			return domain.DiscountCode{}, err
		}
		return domain.DiscountCode{}, pfirestore.WrapError("discount_codes.consume_use", err)
	}
	return consumed, nil
}

func discountToDocument(code domain.DiscountCode) discountDocument {
	return discountDocument{
		Code:        strings.ToUpper(strings.TrimSpace(code.Code)),
		Percent:     code.Percent,
		MaxUses:     code.MaxUses,
		CurrentUses: code.CurrentUses,
		ValidUntil:  optionalTime(code.ValidUntil),
		Active:      code.Active,
		CreatedAt:   code.CreatedAt.UTC(),
		UpdatedAt:   code.UpdatedAt.UTC(),
	}
}

func discountFromDocument(id string, doc discountDocument) domain.DiscountCode {
	return domain.DiscountCode{
		ID:          id,
		Code:        doc.Code,
		Percent:     doc.Percent,
		MaxUses:     doc.MaxUses,
		CurrentUses: doc.CurrentUses,
		ValidUntil:  doc.ValidUntil,
		Active:      doc.Active,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
