package retrieval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"merchflow/backend/internal/retrieval"
)

func TestFormatContext_Empty(t *testing.T) {
	assert.Equal(t, "", retrieval.FormatContext(nil))
	assert.Equal(t, "", retrieval.FormatContext([]retrieval.Record{}))
}

func TestFormatContext_Templates(t *testing.T) {
	tests := []struct {
		name   string
		record retrieval.Record
		want   string
	}{
		{
			name: "quote",
			record: retrieval.Record{
				ID:          "q-77",
				ContentType: "quote",
				Content:     "50 embroidered caps",
				Metadata:    map[string]interface{}{"title": "Spring Caps", "total": 1249.5},
			},
			want: "Quote: Spring Caps (ID: q-77) - Total: $1249.5\n50 embroidered caps",
		},
		{
			name: "line item",
			record: retrieval.Record{
				ID:          "li-3",
				ContentType: "line_item",
				Content:     "Classic snapback, navy",
				Metadata:    map[string]interface{}{"description": "Snapback cap", "price": 24.99, "quantity": float64(50)},
			},
			want: "Product: Snapback cap - Price: $24.99 each, Quantity: 50\nClassic snapback, navy",
		},
		{
			name: "form",
			record: retrieval.Record{
				ID:          "f-12",
				ContentType: "form",
				Content:     "Logo placement and thread colors",
				Metadata:    map[string]interface{}{"name": "Artwork Intake"},
			},
			want: "Form: Artwork Intake (ID: f-12)\nLogo placement and thread colors",
		},
		{
			name: "fallback with title",
			record: retrieval.Record{
				ID:          "kb-1",
				ContentType: "knowledge",
				Content:     "Production takes 10 business days.",
				Metadata:    map[string]interface{}{"title": "Turnaround Times"},
			},
			want: "Turnaround Times:\nProduction takes 10 business days.",
		},
		{
			name: "fallback without title",
			record: retrieval.Record{
				ID:          "kb-2",
				ContentType: "knowledge",
				Content:     "Rush orders ship in 5 days.",
			},
			want: "Rush orders ship in 5 days.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retrieval.FormatContext([]retrieval.Record{tt.record}))
		})
	}
}

func TestFormatContext_PreservesOrderAndJoinsWithBlankLine(t *testing.T) {
	records := []retrieval.Record{
		{ContentType: "knowledge", Content: "first"},
		{ContentType: "knowledge", Content: "second"},
		{ContentType: "knowledge", Content: "third"},
	}
	assert.Equal(t, "first\n\nsecond\n\nthird", retrieval.FormatContext(records))
}
