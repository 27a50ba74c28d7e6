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

type productDocument struct {
	Slug        string    `firestore:"slug"`
	Name        string    `firestore:"name"`
	Description string    `firestore:"description,omitempty"`
	Price       int64     `firestore:"price"`
	Category    string    `firestore:"category,omitempty"`
	Sizes       []string  `firestore:"sizes,omitempty"`
	Stock       int       `firestore:"stock"`
	ImageURL    string    `firestore:"imageUrl,omitempty"`
	Featured    bool      `firestore:"featured"`
	SearchTerms []string  `firestore:"searchTerms,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

// ProductRepository persists catalog entries in Firestore.
type ProductRepository struct {
	base *pfirestore.BaseRepository[productDocument]
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	return &ProductRepository{
		base: pfirestore.NewBaseRepository[productDocument](provider, productsCollection, nil, nil),
	}, nil
}

// Insert creates a new product document, conflicting when the ID exists.
func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) error {
	if strings.TrimSpace(product.ID) == "" {
		return errors.New("product repository: product id is required")
	}
	return r.base.Create(ctx, product.ID, productToDocument(product))
}

// Update replaces the full product document.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	if strings.TrimSpace(product.ID) == "" {
		return errors.New("product repository: product id is required")
	}
	return r.base.Set(ctx, product.ID, productToDocument(product))
}

// Delete removes the product document.
func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	return r.base.Delete(ctx, productID)
}

// FindByID loads a single product.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	doc, err := r.base.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return productFromDocument(doc.ID, doc.Data), nil
}

// FindBySlug resolves a product by its URL slug.
func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (domain.Product, error) {
	normalized := strings.ToLower(strings.TrimSpace(slug))
	if normalized == "" {
		return domain.Product{}, pfirestore.NotFoundError("products.find_by_slug", errors.New("slug is required"))
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("slug", "==", normalized).Limit(1)
	})
	if err != nil {
		return domain.Product{}, err
	}
	if len(docs) == 0 {
		return domain.Product{}, pfirestore.NotFoundError("products.find_by_slug", errors.New("product not found"))
	}
	return productFromDocument(docs[0].ID, docs[0].Data), nil
}

// List returns a page of products matching the filter.
func (r *ProductRepository) List(ctx context.Context, filter repositories.ProductListFilter) (domain.CursorPage[domain.Product], error) {
	pageSize := filter.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		if category := strings.TrimSpace(filter.Category); category != "" {
			query = query.Where("category", "==", category)
		}
		if filter.Featured != nil {
			query = query.Where("featured", "==", *filter.Featured)
		}
		if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
			query = query.Where("searchTerms", "array-contains", search)
		}
		switch filter.Sort {
		case repositories.ProductSortPriceAsc:
			query = query.OrderBy("price", firestore.Asc)
		case repositories.ProductSortPriceDesc:
			query = query.OrderBy("price", firestore.Desc)
		default:
			query = query.OrderBy("createdAt", firestore.Desc)
		}
		withCursor, cursorErr := pageCursor(query, filter.Pagination.PageToken)
		if cursorErr == nil {
			query = withCursor
		}
		return query.Limit(pageSize + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Product]{}, err
	}

	page := domain.CursorPage[domain.Product]{}
	for i, doc := range docs {
		if i == pageSize {
			if filter.Sort == "" || filter.Sort == repositories.ProductSortNewest {
				page.NextPageToken = nextPageToken(docs[i-1].Data.CreatedAt)
			}
			break
		}
		page.Items = append(page.Items, productFromDocument(doc.ID, doc.Data))
	}
	return page, nil
}

func productToDocument(product domain.Product) productDocument {
	return productDocument{
		Slug:        strings.ToLower(strings.TrimSpace(product.Slug)),
		Name:        strings.TrimSpace(product.Name),
		Description: strings.TrimSpace(product.Description),
		Price:       product.Price,
		Category:    strings.TrimSpace(product.Category),
		Sizes:       append([]string(nil), product.Sizes...),
		Stock:       product.Stock,
		ImageURL:    strings.TrimSpace(product.ImageURL),
		Featured:    product.Featured,
		SearchTerms: searchTerms(product.Name, product.Category),
		CreatedAt:   product.CreatedAt.UTC(),
		UpdatedAt:   product.UpdatedAt.UTC(),
	}
}

func productFromDocument(id string, doc productDocument) domain.Product {
	return domain.Product{
		ID:          id,
		Slug:        doc.Slug,
		Name:        doc.Name,
		Description: doc.Description,
		Price:       doc.Price,
		Category:    doc.Category,
		Sizes:       append([]string(nil), doc.Sizes...),
		Stock:       doc.Stock,
		ImageURL:    doc.ImageURL,
		Featured:    doc.Featured,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

// searchTerms lowers and splits the indexable fields into the tokens used
// by the array-contains search filter.
func searchTerms(values ...string) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, value := range values {
		for _, word := range strings.Fields(strings.ToLower(value)) {
			word = strings.Trim(word, ".,!?\"'")
			if word == "" {
				continue
			}
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			terms = append(terms, word)
		}
	}
	return terms
}
