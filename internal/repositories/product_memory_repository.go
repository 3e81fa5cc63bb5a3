package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"catalog/internal/apperror"
	"catalog/internal/models"

	"github.com/google/uuid"
)

// InMemoryProductRepository is a map-backed implementation of ProductRepository.
// It stores copies, so callers never share translation slices with the store.
type InMemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
	// txMu serialises writers; transactions hold it until they commit.
	txMu sync.Mutex
	now  func() time.Time
}

// NewInMemoryProductRepository creates a new, empty InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: make(map[string]models.Product),
		now:      time.Now,
	}
}

// GetAll returns all products ordered by creation time, then ID.
func (r *InMemoryProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, cloneProduct(p))
	}
	sortProducts(productList)
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *InMemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperror.NewNotFound("Product", id)
	}
	product = cloneProduct(product)
	return &product, nil
}

// Create adds a new product, assigning IDs and timestamps.
func (r *InMemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := r.now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.stampTranslations(product, now)
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

// Save stores the product as given, bumping UpdatedAt.
func (r *InMemoryProductRepository) Save(_ context.Context, product *models.Product) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if _, ok := r.products[product.ID]; !ok && product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.stampTranslations(product, now)
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

// Delete removes a product, and with it its translations, by ID.
func (r *InMemoryProductRepository) Delete(_ context.Context, id string) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperror.NewNotFound("Product", id)
	}
	delete(r.products, id)
	return nil
}

// DeleteTranslations drops every translation owned by productID.
func (r *InMemoryProductRepository) DeleteTranslations(_ context.Context, productID string) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.products[productID]; ok {
		p.Translations = nil
		r.products[productID] = p
	}
	return nil
}

// Search applies the same matching, ordering and paging rules as the GORM repository.
func (r *InMemoryProductRepository) Search(ctx context.Context, criteria SearchCriteria) ([]models.Product, int64, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	term := strings.ToLower(criteria.Term)
	matches := make([]models.Product, 0)
	for _, p := range all {
		for _, t := range p.Translations {
			if criteria.LanguageCode != "" && t.LanguageCode != criteria.LanguageCode {
				continue
			}
			if strings.Contains(strings.ToLower(t.Name), term) {
				matches = append(matches, p)
				break
			}
		}
	}

	total := int64(len(matches))
	start := min(max(criteria.Offset, 0), len(matches))
	end := len(matches)
	if criteria.Limit > 0 {
		end = min(start+criteria.Limit, len(matches))
	}
	return matches[start:end], total, nil
}

// WithinTransaction runs fn against a private copy of the store and publishes the copy
// only when fn succeeds. Readers keep seeing the last committed state until then.
func (r *InMemoryProductRepository) WithinTransaction(_ context.Context, fn func(repo ProductRepository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.RLock()
	tx := &InMemoryProductRepository{
		products: make(map[string]models.Product, len(r.products)),
		now:      r.now,
	}
	for id, p := range r.products {
		tx.products[id] = cloneProduct(p)
	}
	r.mu.RUnlock()

	if err := fn(tx); err != nil {
		return err
	}

	r.mu.Lock()
	r.products = tx.products
	r.mu.Unlock()
	return nil
}

func (r *InMemoryProductRepository) stampTranslations(product *models.Product, now time.Time) {
	for i := range product.Translations {
		t := &product.Translations[i]
		if t.ID == "" {
			t.ID = uuid.New().String()
			t.CreatedAt = now
		}
		t.ProductID = product.ID
		t.UpdatedAt = now
	}
	sort.SliceStable(product.Translations, func(i, j int) bool {
		return product.Translations[i].Position < product.Translations[j].Position
	})
}

func cloneProduct(p models.Product) models.Product {
	if p.Translations != nil {
		p.Translations = append([]models.ProductTranslation(nil), p.Translations...)
	}
	return p
}

func sortProducts(products []models.Product) {
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.Before(products[j].CreatedAt)
		}
		return products[i].ID < products[j].ID
	})
}
