package repositories

import (
	"context"

	"catalog/internal/models"
)

// SearchCriteria selects products that own at least one translation whose name contains
// Term (case-insensitive) and, when LanguageCode is set, whose language matches it exactly.
type SearchCriteria struct {
	Term         string
	LanguageCode string
	Offset       int
	Limit        int
}

// ProductRepository defines the interface for product data access.
// Products are always loaded and stored together with their translations.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	DeleteTranslations(ctx context.Context, productID string) error
	// Search returns one page of distinct matching products and the number of matches overall.
	Search(ctx context.Context, criteria SearchCriteria) ([]models.Product, int64, error)
	// WithinTransaction runs fn against a repository bound to a single transaction.
	// The transaction is rolled back when fn returns an error.
	WithinTransaction(ctx context.Context, fn func(repo ProductRepository) error) error
}
