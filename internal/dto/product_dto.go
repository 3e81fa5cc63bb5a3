// Package dto holds the request shapes accepted by the catalog API and their validation rules.
package dto

import "catalog/internal/models"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// TranslationRequest is one language entry of a create or update request.
type TranslationRequest struct {
	LanguageCode string `json:"languageCode" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description" validate:"required"`
}

// CreateProductRequest is the body of POST /products and PATCH /products/:id.
type CreateProductRequest struct {
	Translations []TranslationRequest `json:"translations" validate:"required,min=1,dive"`
}

// ToModels converts the requested translations into unsaved rows, keeping their order.
func (r CreateProductRequest) ToModels() []models.ProductTranslation {
	out := make([]models.ProductTranslation, 0, len(r.Translations))
	for i, t := range r.Translations {
		out = append(out, models.ProductTranslation{
			Position:     i,
			LanguageCode: t.LanguageCode,
			Name:         t.Name,
			Description:  t.Description,
		})
	}
	return out
}

// SearchProductQuery is the query string of GET /products/search.
// Page and Limit are pointers so an explicit 0 can be told apart from an absent value.
type SearchProductQuery struct {
	SearchTerm   string `query:"searchTerm" validate:"required"`
	LanguageCode string `query:"languageCode"`
	Page         *int   `query:"page" validate:"omitempty,min=1"`
	Limit        *int   `query:"limit" validate:"omitempty,min=1,max=100"`
}

// PageOrDefault returns the requested page, or DefaultPage when unset.
func (q SearchProductQuery) PageOrDefault() int {
	if q.Page == nil || *q.Page < 1 {
		return DefaultPage
	}
	return *q.Page
}

// LimitOrDefault returns the requested page size, or DefaultLimit when unset.
func (q SearchProductQuery) LimitOrDefault() int {
	if q.Limit == nil || *q.Limit < 1 {
		return DefaultLimit
	}
	if *q.Limit > MaxLimit {
		return MaxLimit
	}
	return *q.Limit
}
