package services

import (
	"context"
	"log/slog"
	"time"

	"catalog/internal/dto"
	"catalog/internal/models"
	"catalog/internal/repositories"
)

// EventPublisher delivers catalog events to a message broker.
type EventPublisher interface {
	PublishJSON(eventType string, payload any) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	now       func() time.Time
}

// NewProductService creates a new ProductService. publisher may be nil, in which case no
// events are emitted.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create stores a new product together with its initial translations.
func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*models.Product, error) {
	product := &models.Product{Translations: req.ToModels()}
	err := s.repo.WithinTransaction(ctx, func(repo repositories.ProductRepository) error {
		return repo.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	s.publish(models.EventProductCreated, product)
	return product, nil
}

// FindAll returns every product with its translations, oldest first.
func (s *ProductService) FindAll(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// FindOne returns the product with the given ID or an apperror.NotFoundError.
func (s *ProductService) FindOne(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Search returns one page of the distinct products owning a translation that matches q.
func (s *ProductService) Search(ctx context.Context, q dto.SearchProductQuery) (*models.SearchResult, error) {
	page, limit := q.PageOrDefault(), q.LimitOrDefault()

	items, total, err := s.repo.Search(ctx, repositories.SearchCriteria{
		Term:         q.SearchTerm,
		LanguageCode: q.LanguageCode,
		Offset:       (page - 1) * limit,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}
	return &models.SearchResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Update replaces the whole translation set of an existing product. Old translations are
// deleted and the new ones inserted in the same transaction.
func (s *ProductService) Update(ctx context.Context, id string, req dto.CreateProductRequest) (*models.Product, error) {
	var updated *models.Product
	err := s.repo.WithinTransaction(ctx, func(repo repositories.ProductRepository) error {
		product, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.DeleteTranslations(ctx, id); err != nil {
			return err
		}

		product.Translations = req.ToModels()
		for i := range product.Translations {
			product.Translations[i].ProductID = product.ID
		}
		if err := repo.Save(ctx, product); err != nil {
			return err
		}

		updated, err = repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(models.EventProductUpdated, updated)
	return updated, nil
}

// Remove deletes an existing product and its translations.
func (s *ProductService) Remove(ctx context.Context, id string) error {
	var removed *models.Product
	err := s.repo.WithinTransaction(ctx, func(repo repositories.ProductRepository) error {
		product, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		removed = product
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.publish(models.EventProductDeleted, removed)
	return nil
}

// publish emits a catalog event. Failures are logged and never fail the write.
func (s *ProductService) publish(eventType string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := models.ProductEvent{
		Type:       eventType,
		ProductID:  product.ID,
		Languages:  product.Languages(),
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishJSON(eventType, event); err != nil {
		slog.Warn("catalog_event_publish_failed", "type", eventType, "product_id", product.ID, "error", err)
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

