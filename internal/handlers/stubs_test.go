package handlers

import (
	"context"

	"github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/services"
)

type stubCatalogService struct {
	listResp   domain.CursorPage[services.Product]
	listFilter services.ProductListFilter
	listErr    error

	getResp services.Product
	getErr  error

	upsertResp services.Product
	upsertCmd  services.UpsertProductCommand
	upsertErr  error

	deletedID string
	deleteErr error
}

var _ services.CatalogService = (*stubCatalogService)(nil)

func (s *stubCatalogService) ListProducts(_ context.Context, filter services.ProductListFilter) (domain.CursorPage[services.Product], error) {
	s.listFilter = filter
	return s.listResp, s.listErr
}

func (s *stubCatalogService) GetProduct(_ context.Context, _ string) (services.Product, error) {
	return s.getResp, s.getErr
}

func (s *stubCatalogService) GetProductBySlug(_ context.Context, _ string) (services.Product, error) {
	return s.getResp, s.getErr
}

func (s *stubCatalogService) CreateProduct(_ context.Context, cmd services.UpsertProductCommand) (services.Product, error) {
	s.upsertCmd = cmd
	return s.upsertResp, s.upsertErr
}

func (s *stubCatalogService) UpdateProduct(_ context.Context, _ string, cmd services.UpsertProductCommand) (services.Product, error) {
	s.upsertCmd = cmd
	return s.upsertResp, s.upsertErr
}

func (s *stubCatalogService) DeleteProduct(_ context.Context, productID string) error {
	s.deletedID = productID
	return s.deleteErr
}

type stubCartService struct {
	items    []services.CartItem
	itemsErr error

	addResp services.CartItem
	addCmd  services.AddCartItemCommand
	addErr  error

	updateResp services.CartItem
	updateCmd  services.UpdateCartQuantityCommand
	updateErr  error

	removedItemID string
	removeErr     error

	cleared  int
	clearErr error

	estimateResp services.CartEstimate
	estimateCmd  services.EstimateCartCommand
	estimateErr  error
}

var _ services.CartService = (*stubCartService)(nil)

func (s *stubCartService) ListItems(_ context.Context, _ string) ([]services.CartItem, error) {
	return s.items, s.itemsErr
}

func (s *stubCartService) AddItem(_ context.Context, cmd services.AddCartItemCommand) (services.CartItem, error) {
	s.addCmd = cmd
	return s.addResp, s.addErr
}

func (s *stubCartService) UpdateQuantity(_ context.Context, cmd services.UpdateCartQuantityCommand) (services.CartItem, error) {
	s.updateCmd = cmd
	return s.updateResp, s.updateErr
}

func (s *stubCartService) RemoveItem(_ context.Context, _, itemID string) error {
	s.removedItemID = itemID
	return s.removeErr
}

func (s *stubCartService) Clear(_ context.Context, _ string) (int, error) {
	return s.cleared, s.clearErr
}

func (s *stubCartService) Estimate(_ context.Context, cmd services.EstimateCartCommand) (services.CartEstimate, error) {
	s.estimateCmd = cmd
	return s.estimateResp, s.estimateErr
}

type stubWishlistService struct {
	listResp []services.WishlistItem
	listErr  error

	addResp      services.WishlistItem
	addProductID string
	addErr       error

	removedProductID string
	removeErr        error
}

var _ services.WishlistService = (*stubWishlistService)(nil)

func (s *stubWishlistService) List(_ context.Context, _ string) ([]services.WishlistItem, error) {
	return s.listResp, s.listErr
}

func (s *stubWishlistService) Add(_ context.Context, _, productID string) (services.WishlistItem, error) {
	s.addProductID = productID
	return s.addResp, s.addErr
}

func (s *stubWishlistService) Remove(_ context.Context, _, productID string) error {
	s.removedProductID = productID
	return s.removeErr
}

type stubReviewService struct {
	submitResp services.Review
	submitCmd  services.SubmitReviewCommand
	submitErr  error

	approvedResp domain.CursorPage[services.Review]
	approvedErr  error

	moderationResp   domain.CursorPage[services.Review]
	moderationFilter services.ReviewModerationFilter
	moderationErr    error

	moderateResp services.Review
	moderateCmd  services.ModerateReviewCommand
	moderateErr  error

	deletedID string
	deleteErr error
}

var _ services.ReviewService = (*stubReviewService)(nil)

func (s *stubReviewService) Submit(_ context.Context, cmd services.SubmitReviewCommand) (services.Review, error) {
	s.submitCmd = cmd
	return s.submitResp, s.submitErr
}

func (s *stubReviewService) ListApproved(_ context.Context, _ string, _ services.Pagination) (domain.CursorPage[services.Review], error) {
	return s.approvedResp, s.approvedErr
}

func (s *stubReviewService) ListForModeration(_ context.Context, filter services.ReviewModerationFilter) (domain.CursorPage[services.Review], error) {
	s.moderationFilter = filter
	return s.moderationResp, s.moderationErr
}

func (s *stubReviewService) Moderate(_ context.Context, cmd services.ModerateReviewCommand) (services.Review, error) {
	s.moderateCmd = cmd
	return s.moderateResp, s.moderateErr
}

func (s *stubReviewService) Delete(_ context.Context, reviewID string) error {
	s.deletedID = reviewID
	return s.deleteErr
}

type stubDiscountService struct {
	applyResp services.AppliedDiscount
	applyCode string
	applyErr  error

	upsertResp services.DiscountCode
	upsertCmd  services.UpsertDiscountCommand
	upsertErr  error

	deletedID string
	deleteErr error

	listResp domain.CursorPage[services.DiscountCode]
	listErr  error
}

var _ services.DiscountService = (*stubDiscountService)(nil)

func (s *stubDiscountService) Apply(_ context.Context, code string) (services.AppliedDiscount, error) {
	s.applyCode = code
	return s.applyResp, s.applyErr
}

func (s *stubDiscountService) Create(_ context.Context, cmd services.UpsertDiscountCommand) (services.DiscountCode, error) {
	s.upsertCmd = cmd
	return s.upsertResp, s.upsertErr
}

func (s *stubDiscountService) Update(_ context.Context, _ string, cmd services.UpsertDiscountCommand) (services.DiscountCode, error) {
	s.upsertCmd = cmd
	return s.upsertResp, s.upsertErr
}

func (s *stubDiscountService) Delete(_ context.Context, codeID string) error {
	s.deletedID = codeID
	return s.deleteErr
}

func (s *stubDiscountService) List(_ context.Context, _ services.DiscountListFilter) (domain.CursorPage[services.DiscountCode], error) {
	return s.listResp, s.listErr
}

type stubOrderService struct {
	getResp services.Order
	getErr  error

	mineResp domain.CursorPage[services.Order]
	mineUser string
	mineErr  error

	listResp   domain.CursorPage[services.Order]
	listFilter services.OrderListFilter
	listCtx    context.Context
	listErr    error

	actionResp services.Order
	actionCmd  services.CustomerOrderActionCommand
	actionErr  error

	transitionResp services.AdminTransitionResult
	transitionCmd  services.AdminTransitionCommand
	transitionErr  error

	deletedID string
	deleteErr error
}

var _ services.OrderService = (*stubOrderService)(nil)

func (s *stubOrderService) GetOrder(_ context.Context, _ string) (services.Order, error) {
	return s.getResp, s.getErr
}

func (s *stubOrderService) ListMine(_ context.Context, userID string, _ services.Pagination) (domain.CursorPage[services.Order], error) {
	s.mineUser = userID
	return s.mineResp, s.mineErr
}

func (s *stubOrderService) ListOrders(ctx context.Context, filter services.OrderListFilter) (domain.CursorPage[services.Order], error) {
	s.listFilter = filter
	s.listCtx = ctx
	return s.listResp, s.listErr
}

func (s *stubOrderService) CustomerAction(_ context.Context, cmd services.CustomerOrderActionCommand) (services.Order, error) {
	s.actionCmd = cmd
	return s.actionResp, s.actionErr
}

func (s *stubOrderService) AdminTransition(_ context.Context, cmd services.AdminTransitionCommand) (services.AdminTransitionResult, error) {
	s.transitionCmd = cmd
	return s.transitionResp, s.transitionErr
}

func (s *stubOrderService) DeleteOrder(_ context.Context, orderID string) error {
	s.deletedID = orderID
	return s.deleteErr
}

type stubCheckoutService struct {
	resp services.Order
	cmd  services.CheckoutCommand
	err  error
}

var _ services.CheckoutService = (*stubCheckoutService)(nil)

func (s *stubCheckoutService) Submit(_ context.Context, cmd services.CheckoutCommand) (services.Order, error) {
	s.cmd = cmd
	return s.resp, s.err
}

type stubContactService struct {
	cmd services.ContactCommand
	err error
}

var _ services.ContactService = (*stubContactService)(nil)

func (s *stubContactService) Submit(_ context.Context, cmd services.ContactCommand) error {
	s.cmd = cmd
	return s.err
}

type stubSystemService struct {
	report services.SystemHealthReport
	err    error
}

var _ services.SystemService = (*stubSystemService)(nil)

func (s *stubSystemService) HealthReport(_ context.Context) (services.SystemHealthReport, error) {
	return s.report, s.err
}

type stubMediaService struct {
	resp services.SignedUpload
	cmd  services.ProductImageUploadCommand
	err  error
}

var _ services.MediaService = (*stubMediaService)(nil)

func (s *stubMediaService) IssueProductImageUpload(_ context.Context, cmd services.ProductImageUploadCommand) (services.SignedUpload, error) {
	s.cmd = cmd
	return s.resp, s.err
}
