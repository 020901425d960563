package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// Classes holds the three embedding collections: quote-scoped, form-scoped
// and the shared knowledge base. They share one property layout so the
// search path can read them uniformly.
var Classes = []struct {
	Name        string
	Description string
}{
	{"QuoteEmbedding", "Embedded quote and line item content, owned by an account"},
	{"FormEmbedding", "Embedded form content, assigned to a customer"},
	{"KnowledgeArticle", "Shared knowledge base reference material"},
}

func classProperties() []*models.Property {
	return []*models.Property{
		{
			Name:     "content",
			DataType: []string{"text"},
		},
		{
			Name:     "contentType",
			DataType: []string{"string"},
		},
		{
			Name:     "documentId",
			DataType: []string{"string"}, // UUID as string (exact match)
		},
		{
			Name:     "recordId",
			DataType: []string{"string"}, // source quote/form id
		},
		{
			Name:     "ownerId",
			DataType: []string{"string"}, // account or customer, empty for knowledge
		},
		{
			Name:     "title",
			DataType: []string{"text"},
		},
		{
			Name:     "chunkIndex",
			DataType: []string{"int"},
		},
		{
			Name:     "totalChunks",
			DataType: []string{"int"},
		},
		{
			Name:     "attributes",
			DataType: []string{"text"}, // JSON-encoded rendering metadata
		},
	}
}

// EnsureSchema checks if the required classes exist and creates them if not,
// adding any missing properties to classes that already exist.
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	for _, c := range Classes {
		if err := ensureClass(ctx, client, c.Name, c.Description); err != nil {
			return err
		}
	}
	return nil
}

func ensureClass(ctx context.Context, client SchemaClient, name, description string) error {
	exists, err := client.ClassExists(ctx, name)
	if err != nil {
		return err
	}

	properties := classProperties()

	if !exists {
		class := &models.Class{
			Class:       name,
			Description: description,
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	class, err := client.GetClass(ctx, name)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, name, p); err != nil {
				return err
			}
		}
	}

	return nil
}
