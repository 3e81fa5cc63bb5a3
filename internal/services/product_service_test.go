package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"catalog/internal/apperror"
	"catalog/internal/dto"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Save(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteTranslations(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockProductRepository) Search(ctx context.Context, criteria repositories.SearchCriteria) ([]models.Product, int64, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

// WithinTransaction runs fn against the mock itself.
func (m *MockProductRepository) WithinTransaction(ctx context.Context, fn func(repositories.ProductRepository) error) error {
	m.Called(ctx)
	return fn(m)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(eventType string, payload any) error {
	args := m.Called(eventType, payload)
	return args.Error(0)
}

func intPtr(v int) *int { return &v }

func createRequest(names ...string) dto.CreateProductRequest {
	req := dto.CreateProductRequest{}
	for i, name := range names {
		req.Translations = append(req.Translations, dto.TranslationRequest{
			LanguageCode: fmt.Sprintf("l%d", i),
			Name:         name,
			Description:  name + " description",
		})
	}
	return req
}

var ctx = context.Background()

func TestProductService_CreatePublishesEvent(t *testing.T) {
	mockRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(mockRepo, publisher)

	mockRepo.On("WithinTransaction", ctx).Return().Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Product).ID = "p-1"
	}).Return(nil).Once()
	publisher.On("PublishJSON", models.EventProductCreated, mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.ProductID == "p-1" && assert.ObjectsAreEqual([]string{"l0"}, e.Languages)
	})).Return(nil).Once()

	product, err := service.Create(ctx, createRequest("Test Product"))
	assert.NoError(t, err)
	assert.Equal(t, "p-1", product.ID)
	assert.Len(t, product.Translations, 1)
	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProductService_CreateStoreFailure(t *testing.T) {
	mockRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(mockRepo, publisher)

	mockRepo.On("WithinTransaction", ctx).Return().Once()
	mockRepo.On("Create", ctx, mock.Anything).Return(fmt.Errorf("database error")).Once()

	product, err := service.Create(ctx, createRequest("Test Product"))
	assert.Nil(t, product)
	assert.Contains(t, err.Error(), "database error")
	publisher.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestProductService_PublishFailureDoesNotFailWrite(t *testing.T) {
	mockRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(mockRepo, publisher)

	mockRepo.On("WithinTransaction", ctx).Return()
	mockRepo.On("Create", ctx, mock.Anything).Return(nil)
	publisher.On("PublishJSON", models.EventProductCreated, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := service.Create(ctx, createRequest("Test Product"))
	assert.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestProductService_UpdateNotFoundDoesNotMutate(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("WithinTransaction", ctx).Return().Once()
	mockRepo.On("GetByID", ctx, "999").Return(nil, apperror.NewNotFound("Product", "999")).Once()

	product, err := service.Update(ctx, "999", createRequest("Test"))
	assert.Nil(t, product)
	assert.True(t, apperror.IsNotFound(err))
	mockRepo.AssertNotCalled(t, "DeleteTranslations", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateReplacesTranslations(t *testing.T) {
	mockRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(mockRepo, publisher)

	existing := &models.Product{ID: "1", Translations: []models.ProductTranslation{
		{ID: "t-old", ProductID: "1", LanguageCode: "en", Name: "Test Product", Description: "Test Description"},
	}}
	reloaded := &models.Product{ID: "1", Translations: []models.ProductTranslation{
		{ID: "t-new", ProductID: "1", LanguageCode: "l0", Name: "Updated Product", Description: "Updated Product description"},
	}}

	mockRepo.On("WithinTransaction", ctx).Return().Once()
	mockRepo.On("GetByID", ctx, "1").Return(existing, nil).Once()
	mockRepo.On("DeleteTranslations", ctx, "1").Return(nil).Once()
	mockRepo.On("Save", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return len(p.Translations) == 1 &&
			p.Translations[0].ID == "" &&
			p.Translations[0].ProductID == "1" &&
			p.Translations[0].Name == "Updated Product"
	})).Return(nil).Once()
	mockRepo.On("GetByID", ctx, "1").Return(reloaded, nil).Once()
	publisher.On("PublishJSON", models.EventProductUpdated, mock.Anything).Return(nil).Once()

	product, err := service.Update(ctx, "1", createRequest("Updated Product"))
	assert.NoError(t, err)
	assert.Equal(t, reloaded, product)
	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProductService_RemoveNotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("WithinTransaction", ctx).Return().Once()
	mockRepo.On("GetByID", ctx, "999").Return(nil, apperror.NewNotFound("Product", "999")).Once()

	err := service.Remove(ctx, "999")
	assert.True(t, apperror.IsNotFound(err))
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProductService_SearchPaginationArithmetic(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	criteria := repositories.SearchCriteria{Term: "Test", LanguageCode: "en", Offset: 20, Limit: 10}
	mockRepo.On("Search", ctx, criteria).Return([]models.Product{{ID: "1"}}, int64(21), nil).Once()

	result, err := service.Search(ctx, dto.SearchProductQuery{SearchTerm: "Test", LanguageCode: "en", Page: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(21), result.Total)
	assert.Equal(t, 3, result.Page)
	assert.Equal(t, 10, result.Limit)
	assert.Equal(t, 3, result.TotalPages)
	mockRepo.AssertExpectations(t)
}

func TestProductService_SearchNoMatches(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Search", ctx, mock.Anything).Return([]models.Product{}, int64(0), nil).Once()

	result, err := service.Search(ctx, dto.SearchProductQuery{SearchTerm: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.TotalPages)
}
