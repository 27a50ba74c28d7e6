package handlers

import (
	domain "github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/services"
)

type productPayload struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       int64    `json:"price"`
	Currency    string   `json:"currency"`
	Category    string   `json:"category,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
	Stock       int      `json:"stock"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Featured    bool     `json:"featured"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func buildProductPayload(product services.Product) productPayload {
	return productPayload{
		ID:          product.ID,
		Slug:        product.Slug,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Currency:    "EUR",
		Category:    product.Category,
		Sizes:       product.Sizes,
		Stock:       product.Stock,
		ImageURL:    product.ImageURL,
		Featured:    product.Featured,
		CreatedAt:   formatTime(product.CreatedAt),
		UpdatedAt:   formatTime(product.UpdatedAt),
	}
}

type addressPayload struct {
	FullName   string `json:"fullName,omitempty"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`
}

func buildAddressPayload(addr domain.Address) addressPayload {
	return addressPayload{
		FullName:   addr.FullName,
		Street:     addr.Street,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

func parseAddressPayload(payload addressPayload) domain.Address {
	return domain.Address{
		FullName:   payload.FullName,
		Street:     payload.Street,
		City:       payload.City,
		State:      payload.State,
		PostalCode: payload.PostalCode,
		Country:    payload.Country,
	}
}

type orderItemPayload struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	Size        string `json:"size,omitempty"`
}

type orderPayload struct {
	ID              string             `json:"id"`
	Number          string             `json:"number,omitempty"`
	UserID          string             `json:"userId"`
	Status          string             `json:"status"`
	Subtotal        int64              `json:"subtotal"`
	Discount        int64              `json:"discount"`
	Shipping        int64              `json:"shipping"`
	Total           int64              `json:"total"`
	Currency        string             `json:"currency"`
	DiscountCode    *string            `json:"discountCode,omitempty"`
	PaymentMethod   string             `json:"paymentMethod"`
	ShippingAddress addressPayload     `json:"shippingAddress"`
	Items           []orderItemPayload `json:"items,omitempty"`
	CreatedAt       string             `json:"createdAt"`
	UpdatedAt       string             `json:"updatedAt"`
}

func buildOrderPayload(order services.Order) orderPayload {
	payload := orderPayload{
		ID:              order.ID,
		Number:          order.Number,
		UserID:          order.UserID,
		Status:          string(order.Status),
		Subtotal:        order.Totals.Subtotal,
		Discount:        order.Totals.Discount,
		Shipping:        order.Totals.Shipping,
		Total:           order.Totals.Total,
		Currency:        order.Currency,
		DiscountCode:    order.DiscountCode,
		PaymentMethod:   string(order.PaymentMethod),
		ShippingAddress: buildAddressPayload(order.ShippingAddress),
		CreatedAt:       formatTime(order.CreatedAt),
		UpdatedAt:       formatTime(order.UpdatedAt),
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, orderItemPayload{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Size:        item.Size,
		})
	}
	return payload
}

type cartItemPayload struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	AddedAt   string `json:"addedAt"`
}

func buildCartItemPayload(item services.CartItem) cartItemPayload {
	return cartItemPayload{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Size:      item.Size,
		AddedAt:   formatTime(item.AddedAt),
	}
}

type reviewPayload struct {
	ID         string `json:"id"`
	ProductID  string `json:"productId"`
	AuthorName string `json:"authorName,omitempty"`
	Rating     int    `json:"rating"`
	Title      string `json:"title,omitempty"`
	Comment    string `json:"comment"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func buildReviewPayload(review services.Review) reviewPayload {
	return reviewPayload{
		ID:         review.ID,
		ProductID:  review.ProductID,
		AuthorName: review.AuthorName,
		Rating:     review.Rating,
		Title:      review.Title,
		Comment:    review.Comment,
		Status:     string(review.Status),
		CreatedAt:  formatTime(review.CreatedAt),
		UpdatedAt:  formatTime(review.UpdatedAt),
	}
}

type discountPayload struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Percent     int    `json:"percent"`
	MaxUses     *int   `json:"maxUses,omitempty"`
	CurrentUses int    `json:"currentUses"`
	ValidUntil  string `json:"validUntil,omitempty"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func buildDiscountPayload(code services.DiscountCode) discountPayload {
	payload := discountPayload{
		ID:          code.ID,
		Code:        code.Code,
		Percent:     code.Percent,
		MaxUses:     code.MaxUses,
		CurrentUses: code.CurrentUses,
		Active:      code.Active,
		CreatedAt:   formatTime(code.CreatedAt),
		UpdatedAt:   formatTime(code.UpdatedAt),
	}
	if code.ValidUntil != nil {
		payload.ValidUntil = formatTime(*code.ValidUntil)
	}
	return payload
}
