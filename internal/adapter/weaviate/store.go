package weaviate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"merchflow/backend/internal/retrieval"
	"merchflow/backend/internal/worker"
)

// Store persists embedded chunks and serves vector search over the three
// embedding classes. All classes carry the same property set, so one store
// handles quotes, forms and knowledge articles alike.
type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

func (s *Store) StoreChunk(ctx context.Context, chunk worker.Chunk) error {
	attrs := "{}"
	if len(chunk.Attributes) > 0 {
		b, err := json.Marshal(chunk.Attributes)
		if err != nil {
			return fmt.Errorf("encode chunk attributes: %w", err)
		}
		attrs = string(b)
	}

	_, err := s.client.Data().Creator().
		WithClassName(chunk.Class).
		WithProperties(map[string]interface{}{
			"content":     chunk.Content,
			"contentType": chunk.ContentType,
			"documentId":  chunk.DocumentID,
			"recordId":    chunk.RecordID,
			"ownerId":     chunk.OwnerID,
			"title":       chunk.Title,
			"chunkIndex":  chunk.ChunkIndex,
			"totalChunks": chunk.TotalChunks,
			"attributes":  attrs,
		}).
		WithVector(chunk.Vector).
		Do(ctx)
	return err
}

// DeleteByDocument removes every chunk that was ingested from the given
// document, used when a document is re-ingested or deleted.
func (s *Store) DeleteByDocument(ctx context.Context, class, documentID string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(class).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"documentId"}).
			WithOperator(filters.Equal).
			WithValueString(documentID)).
		Do(ctx)
	return err
}

// SearchNearVector runs a pure vector search against one class. The filter
// map is And-composed string equality on property names; a nil or empty map
// searches the whole class.
func (s *Store) SearchNearVector(ctx context.Context, class string, vector []float32, limit int, filter map[string]string) ([]retrieval.Record, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "contentType"},
		{Name: "documentId"},
		{Name: "recordId"},
		{Name: "ownerId"},
		{Name: "title"},
		{Name: "chunkIndex"},
		{Name: "totalChunks"},
		{Name: "attributes"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	query := s.client.GraphQL().Get().
		WithClassName(class).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(fields...)

	if where := buildWhere(filter); where != nil {
		query = query.WithWhere(where)
	}

	res, err := query.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var records []retrieval.Record
	if data, ok := res.Data["Get"].(map[string]interface{}); ok {
		if hits, ok := data[class].([]interface{}); ok {
			for _, h := range hits {
				props, ok := h.(map[string]interface{})
				if !ok {
					continue
				}
				records = append(records, decodeRecord(props))
			}
		}
	}
	return records, nil
}

// Count returns the number of stored chunks in one class.
func (s *Store) Count(ctx context.Context, class string) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(class).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	if data, ok := res.Data["Aggregate"].(map[string]interface{}); ok {
		if rows, ok := data[class].([]interface{}); ok && len(rows) > 0 {
			if row, ok := rows[0].(map[string]interface{}); ok {
				if meta, ok := row["meta"].(map[string]interface{}); ok {
					if count, ok := meta["count"].(float64); ok {
						return int(count), nil
					}
				}
			}
		}
	}
	return 0, nil
}

func buildWhere(filter map[string]string) *filters.WhereBuilder {
	if len(filter) == 0 {
		return nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	operands := make([]*filters.WhereBuilder, 0, len(keys))
	for _, k := range keys {
		operands = append(operands, filters.Where().
			WithPath([]string{k}).
			WithOperator(filters.Equal).
			WithValueString(filter[k]))
	}

	if len(operands) == 1 {
		return operands[0]
	}
	return filters.Where().
		WithOperator(filters.And).
		WithOperands(operands)
}

func decodeRecord(props map[string]interface{}) retrieval.Record {
	record := retrieval.Record{
		Metadata: make(map[string]interface{}),
	}

	if content, ok := props["content"].(string); ok {
		record.Content = content
	}
	if contentType, ok := props["contentType"].(string); ok {
		record.ContentType = contentType
	}
	if recordID, ok := props["recordId"].(string); ok {
		record.ID = recordID
	}
	if documentID, ok := props["documentId"].(string); ok {
		record.Metadata["documentId"] = documentID
	}
	if ownerID, ok := props["ownerId"].(string); ok && ownerID != "" {
		record.Metadata["ownerId"] = ownerID
	}
	if title, ok := props["title"].(string); ok && title != "" {
		record.Metadata["title"] = title
	}
	if idx, ok := props["chunkIndex"].(float64); ok {
		record.Metadata["chunkIndex"] = int(idx)
	}
	if total, ok := props["totalChunks"].(float64); ok {
		record.Metadata["totalChunks"] = int(total)
	}

	// attributes carries the rendering metadata (total, price, quantity, ...)
	// as a JSON object; merge it in without clobbering the core keys.
	if attrs, ok := props["attributes"].(string); ok && attrs != "" && attrs != "{}" {
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(attrs), &decoded); err == nil {
			for k, v := range decoded {
				if _, exists := record.Metadata[k]; !exists {
					record.Metadata[k] = v
				}
			}
		}
	}

	if additional, ok := props["_additional"].(map[string]interface{}); ok {
		if distance, ok := additional["distance"].(float64); ok {
			record.Similarity = 1 - distance
		}
	}

	return record
}
