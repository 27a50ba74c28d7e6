package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	domain "github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/repositories"
)

type stubRepoError struct {
	notFound bool
	conflict bool
}

func (e *stubRepoError) Error() string {
	switch {
	case e.notFound:
		return "not found"
	case e.conflict:
		return "conflict"
	default:
		return "unavailable"
	}
}

func (e *stubRepoError) IsNotFound() bool    { return e.notFound }
func (e *stubRepoError) IsConflict() bool    { return e.conflict }
func (e *stubRepoError) IsUnavailable() bool { return !e.notFound && !e.conflict }

var (
	errStubNotFound = &stubRepoError{notFound: true}
	errStubConflict = &stubRepoError{conflict: true}
)

type stubProductRepo struct {
	mu       sync.Mutex
	products map[string]domain.Product
	err      error
}

func newStubProductRepo(products ...domain.Product) *stubProductRepo {
	repo := &stubProductRepo{products: make(map[string]domain.Product)}
	for _, product := range products {
		repo.products[product.ID] = product
	}
	return repo
}

func (r *stubProductRepo) Insert(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, exists := r.products[product.ID]; exists {
		return errStubConflict
	}
	r.products[product.ID] = product
	return nil
}

func (r *stubProductRepo) Update(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, productID)
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, productID string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Product{}, r.err
	}
	product, ok := r.products[productID]
	if !ok {
		return domain.Product{}, errStubNotFound
	}
	return product, nil
}

func (r *stubProductRepo) FindBySlug(_ context.Context, slug string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, product := range r.products {
		if product.Slug == slug {
			return product, nil
		}
	}
	return domain.Product{}, errStubNotFound
}

func (r *stubProductRepo) List(_ context.Context, filter repositories.ProductListFilter) (domain.CursorPage[domain.Product], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if filter.Featured != nil && product.Featured != *filter.Featured {
			continue
		}
		items = append(items, product)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return domain.CursorPage[domain.Product]{Items: items}, nil
}

type stubCartRepo struct {
	mu    sync.Mutex
	items map[string]domain.CartItem
	err   error
}

func newStubCartRepo(items ...domain.CartItem) *stubCartRepo {
	repo := &stubCartRepo{items: make(map[string]domain.CartItem)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (r *stubCartRepo) ListByUser(_ context.Context, userID string) ([]domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.CartItem
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (r *stubCartRepo) Upsert(_ context.Context, item domain.CartItem) (domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.CartItem{}, r.err
	}
	r.items[item.ID] = item
	return item, nil
}

func (r *stubCartRepo) UpdateQuantity(_ context.Context, userID, itemID string, quantity int) (domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok || item.UserID != userID {
		return domain.CartItem{}, errStubNotFound
	}
	item.Quantity = quantity
	r.items[itemID] = item
	return item, nil
}

func (r *stubCartRepo) Remove(_ context.Context, userID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok || item.UserID != userID {
		return errStubNotFound
	}
	delete(r.items, itemID)
	return nil
}

func (r *stubCartRepo) Clear(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	deleted := 0
	for id, item := range r.items {
		if item.UserID == userID {
			delete(r.items, id)
			deleted++
		}
	}
	return deleted, nil
}

type stubWishlistRepo struct {
	mu    sync.Mutex
	items map[string]domain.WishlistItem
}

func newStubWishlistRepo() *stubWishlistRepo {
	return &stubWishlistRepo{items: make(map[string]domain.WishlistItem)}
}

func (r *stubWishlistRepo) ListByUser(_ context.Context, userID string) ([]domain.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WishlistItem
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (r *stubWishlistRepo) Add(_ context.Context, item domain.WishlistItem) (domain.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.UserID+":"+item.ProductID] = item
	return item, nil
}

func (r *stubWishlistRepo) Remove(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, userID+":"+productID)
	return nil
}

type stubReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]domain.Review
}

func newStubReviewRepo(reviews ...domain.Review) *stubReviewRepo {
	repo := &stubReviewRepo{reviews: make(map[string]domain.Review)}
	for _, review := range reviews {
		repo.reviews[review.ID] = review
	}
	return repo
}

func (r *stubReviewRepo) Insert(_ context.Context, review domain.Review) (domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews[review.ID] = review
	return review, nil
}

func (r *stubReviewRepo) FindByID(_ context.Context, reviewID string) (domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[reviewID]
	if !ok {
		return domain.Review{}, errStubNotFound
	}
	return review, nil
}

func (r *stubReviewRepo) ListByProduct(_ context.Context, productID string, filter repositories.ReviewListFilter) (domain.CursorPage[domain.Review], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, review := range r.reviews {
		if review.ProductID != productID {
			continue
		}
		if !reviewStatusMatches(review.Status, filter.Status) {
			continue
		}
		out = append(out, review)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return domain.CursorPage[domain.Review]{Items: out}, nil
}

func (r *stubReviewRepo) List(_ context.Context, filter repositories.ReviewListFilter) (domain.CursorPage[domain.Review], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, review := range r.reviews {
		if !reviewStatusMatches(review.Status, filter.Status) {
			continue
		}
		out = append(out, review)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return domain.CursorPage[domain.Review]{Items: out}, nil
}

func (r *stubReviewRepo) UpdateStatus(_ context.Context, reviewID string, status domain.ReviewStatus, _ repositories.ReviewModerationUpdate) (domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[reviewID]
	if !ok {
		return domain.Review{}, errStubNotFound
	}
	review.Status = status
	r.reviews[reviewID] = review
	return review, nil
}

func (r *stubReviewRepo) Delete(_ context.Context, reviewID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reviews, reviewID)
	return nil
}

func reviewStatusMatches(status domain.ReviewStatus, allowed []domain.ReviewStatus) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if candidate == status {
			return true
		}
	}
	return false
}

type stubOrderRepo struct {
	mu           sync.Mutex
	orders       map[string]domain.Order
	items        map[string][]domain.OrderItem
	insertErr    error
	itemsErr     error
	statusWrites []string
}

func newStubOrderRepo(orders ...domain.Order) *stubOrderRepo {
	repo := &stubOrderRepo{
		orders: make(map[string]domain.Order),
		items:  make(map[string][]domain.OrderItem),
	}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (r *stubOrderRepo) Insert(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, exists := r.orders[order.ID]; exists {
		return errStubConflict
	}
	r.orders[order.ID] = order
	return nil
}

func (r *stubOrderRepo) InsertItems(_ context.Context, orderID string, items []domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.itemsErr != nil {
		return r.itemsErr
	}
	r.items[orderID] = append(r.items[orderID], items...)
	return nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, orderID string, status domain.OrderStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return errStubNotFound
	}
	order.Status = status
	order.UpdatedAt = updatedAt
	r.orders[orderID] = order
	r.statusWrites = append(r.statusWrites, orderID+":"+string(status))
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, errStubNotFound
	}
	order.Items = r.items[orderID]
	return order, nil
}

func (r *stubOrderRepo) ListItems(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[orderID], nil
}

func (r *stubOrderRepo) List(_ context.Context, filter repositories.OrderListFilter) (domain.CursorPage[domain.Order], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, order := range r.orders {
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if len(filter.Status) > 0 {
			matched := false
			for _, status := range filter.Status {
				if order.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return domain.CursorPage[domain.Order]{Items: out}, nil
}

func (r *stubOrderRepo) Delete(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[orderID]; !ok {
		return errStubNotFound
	}
	delete(r.orders, orderID)
	delete(r.items, orderID)
	return nil
}

type stubDiscountRepo struct {
	mu         sync.Mutex
	codes      map[string]domain.DiscountCode
	consumeErr error
	consumed   []string
}

func newStubDiscountRepo(codes ...domain.DiscountCode) *stubDiscountRepo {
	repo := &stubDiscountRepo{codes: make(map[string]domain.DiscountCode)}
	for _, code := range codes {
		repo.codes[code.ID] = code
	}
	return repo
}

func (r *stubDiscountRepo) Insert(_ context.Context, code domain.DiscountCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.codes[code.ID]; exists {
		return errStubConflict
	}
	r.codes[code.ID] = code
	return nil
}

func (r *stubDiscountRepo) Update(_ context.Context, code domain.DiscountCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[code.ID] = code
	return nil
}

func (r *stubDiscountRepo) Delete(_ context.Context, codeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, codeID)
	return nil
}

func (r *stubDiscountRepo) FindByID(_ context.Context, codeID string) (domain.DiscountCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.codes[codeID]
	if !ok {
		return domain.DiscountCode{}, errStubNotFound
	}
	return code, nil
}

func (r *stubDiscountRepo) FindByCode(_ context.Context, raw string) (domain.DiscountCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	for _, code := range r.codes {
		if code.Code == normalized {
			return code, nil
		}
	}
	return domain.DiscountCode{}, errStubNotFound
}

func (r *stubDiscountRepo) List(_ context.Context, filter repositories.DiscountListFilter) (domain.CursorPage[domain.DiscountCode], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DiscountCode
	for _, code := range r.codes {
		if filter.Active != nil && code.Active != *filter.Active {
			continue
		}
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return domain.CursorPage[domain.DiscountCode]{Items: out}, nil
}

func (r *stubDiscountRepo) ConsumeUse(_ context.Context, codeID string, now time.Time) (domain.DiscountCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consumeErr != nil {
		return domain.DiscountCode{}, r.consumeErr
	}
	code, ok := r.codes[codeID]
	if !ok {
		return domain.DiscountCode{}, errStubNotFound
	}
	if !code.Active || (code.ValidUntil != nil && now.After(*code.ValidUntil)) {
		return domain.DiscountCode{}, repositories.ErrDiscountInactive
	}
	if code.MaxUses != nil && code.CurrentUses >= *code.MaxUses {
		return domain.DiscountCode{}, repositories.ErrDiscountExhausted
	}
	code.CurrentUses++
	code.UpdatedAt = now
	r.codes[codeID] = code
	r.consumed = append(r.consumed, codeID)
	return code, nil
}

type stubProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
}

func newStubProfileRepo(profiles ...domain.Profile) *stubProfileRepo {
	repo := &stubProfileRepo{profiles: make(map[string]domain.Profile)}
	for _, profile := range profiles {
		repo.profiles[profile.UID] = profile
	}
	return repo
}

func (r *stubProfileRepo) FindByUID(_ context.Context, uid string) (domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[uid]
	if !ok {
		return domain.Profile{}, errStubNotFound
	}
	return profile, nil
}

func (r *stubProfileRepo) Upsert(_ context.Context, profile domain.Profile) (domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UID] = profile
	return profile, nil
}

type stubCounterRepo struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func newStubCounterRepo() *stubCounterRepo {
	return &stubCounterRepo{values: make(map[string]int64)}
}

func (r *stubCounterRepo) Next(_ context.Context, counterID string, step int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.values[counterID] += step
	return r.values[counterID], nil
}

type stubMailer struct {
	mu    sync.Mutex
	sent  []sentMail
	err   error
	block chan struct{}
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *stubMailer) Send(_ context.Context, to, subject, body string) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *stubMailer) sentMails() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

type stubEventPublisher struct {
	mu     sync.Mutex
	events []OrderEventMessage
	err    error
}

func (p *stubEventPublisher) PublishOrderEvent(_ context.Context, message OrderEventMessage) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, message)
	return "msg-1", nil
}

func (p *stubEventPublisher) published() []OrderEventMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]OrderEventMessage, len(p.events))
	copy(out, p.events)
	return out
}

var errStubUnavailable = errors.New("stub: unavailable")
