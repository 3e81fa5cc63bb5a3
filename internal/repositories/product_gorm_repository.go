package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog/internal/apperror"
	"catalog/internal/models"

	"gorm.io/gorm"
)

const productOrder = "products.created_at ASC, products.id ASC"

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// withTranslations starts a query that eagerly loads translations in request order.
func (r *GORMProductRepository) withTranslations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Translations", func(db *gorm.DB) *gorm.DB {
		return db.Order("product_translations.position ASC, product_translations.id ASC")
	})
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.withTranslations(ctx).Order(productOrder).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product and its translations by ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.withTranslations(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("Product", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts a product together with its translations.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Save updates the product row and inserts any translations it carries that are not stored yet.
func (r *GORMProductRepository) Save(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return fmt.Errorf("failed to save product %s: %w", product.ID, err)
	}
	return nil
}

// Delete removes a product and every translation it owns.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.DeleteTranslations(ctx, id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFound("Product", id)
	}
	return nil
}

// DeleteTranslations removes all translations owned by productID.
func (r *GORMProductRepository) DeleteTranslations(ctx context.Context, productID string) error {
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductTranslation{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete translations of product %s: %w", productID, err)
	}
	return nil
}

// Search counts distinct matching products and loads the requested page of them.
// Both filters apply to the same translation row.
func (r *GORMProductRepository) Search(ctx context.Context, criteria SearchCriteria) ([]models.Product, int64, error) {
	matchingIDs := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.ProductTranslation{}).
			Select("product_id").
			Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(criteria.Term))
		if criteria.LanguageCode != "" {
			q = q.Where("language_code = ?", criteria.LanguageCode)
		}
		return q
	}

	var total int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id IN (?)", matchingIDs()).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products matching %q: %w", criteria.Term, err)
	}

	products := []models.Product{}
	if total == 0 {
		return products, 0, nil
	}
	err = r.withTranslations(ctx).
		Where("id IN (?)", matchingIDs()).
		Order(productOrder).
		Offset(criteria.Offset).
		Limit(criteria.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products matching %q: %w", criteria.Term, err)
	}
	return products, total, nil
}

// WithinTransaction runs fn with a repository bound to one database transaction.
func (r *GORMProductRepository) WithinTransaction(ctx context.Context, fn func(repo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMProductRepository(tx))
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a search term into a lower-cased LIKE pattern matching it as a literal substring.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
