package vector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/weaviate/weaviate/entities/models"

	"merchflow/backend/internal/vector"
)

type MockSchemaClient struct{ mock.Mock }

func (m *MockSchemaClient) ClassExists(ctx context.Context, className string) (bool, error) {
	args := m.Called(ctx, className)
	return args.Bool(0), args.Error(1)
}

func (m *MockSchemaClient) CreateClass(ctx context.Context, class *models.Class) error {
	args := m.Called(ctx, class)
	return args.Error(0)
}

func (m *MockSchemaClient) GetClass(ctx context.Context, className string) (*models.Class, error) {
	args := m.Called(ctx, className)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Class), args.Error(1)
}

func (m *MockSchemaClient) AddProperty(ctx context.Context, className string, property *models.Property) error {
	args := m.Called(ctx, className, property)
	return args.Error(0)
}

func TestEnsureSchema_CreatesMissingClasses(t *testing.T) {
	client := new(MockSchemaClient)
	for _, c := range vector.Classes {
		client.On("ClassExists", mock.Anything, c.Name).Return(false, nil)
		client.On("CreateClass", mock.Anything, mock.MatchedBy(func(class *models.Class) bool {
			return class.Class == c.Name && class.Vectorizer == "none"
		})).Return(nil)
	}

	err := vector.EnsureSchema(context.Background(), client)
	assert.NoError(t, err)
	client.AssertNumberOfCalls(t, "CreateClass", 3)
}

func TestEnsureSchema_AddsMissingProperties(t *testing.T) {
	client := new(MockSchemaClient)
	for _, c := range vector.Classes {
		client.On("ClassExists", mock.Anything, c.Name).Return(true, nil)
		// Existing class only knows about content; everything else is added.
		client.On("GetClass", mock.Anything, c.Name).Return(&models.Class{
			Class:      c.Name,
			Properties: []*models.Property{{Name: "content"}},
		}, nil)
		client.On("AddProperty", mock.Anything, c.Name, mock.Anything).Return(nil)
	}

	err := vector.EnsureSchema(context.Background(), client)
	assert.NoError(t, err)
	client.AssertNotCalled(t, "CreateClass")
	client.AssertNumberOfCalls(t, "AddProperty", 3*8)
}

func TestEnsureSchema_PropagatesError(t *testing.T) {
	client := new(MockSchemaClient)
	client.On("ClassExists", mock.Anything, "QuoteEmbedding").Return(false, errors.New("schema api down"))

	err := vector.EnsureSchema(context.Background(), client)
	assert.Error(t, err)
}
