package retrieval

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatContext renders search results into a single grounding text block
// for the chat model. Pure and total: empty input yields an empty string,
// and input order (already similarity-sorted by the caller) is preserved.
func FormatContext(results []Record) string {
	if len(results) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, formatRecord(r))
	}
	return strings.Join(blocks, "\n\n")
}

func formatRecord(r Record) string {
	switch r.ContentType {
	case "quote":
		return fmt.Sprintf("Quote: %s (ID: %s) - Total: $%s\n%s",
			metaString(r.Metadata, "title"), r.ID, metaNumber(r.Metadata, "total"), r.Content)
	case "line_item":
		return fmt.Sprintf("Product: %s - Price: $%s each, Quantity: %s\n%s",
			metaString(r.Metadata, "description"), metaNumber(r.Metadata, "price"), metaNumber(r.Metadata, "quantity"), r.Content)
	case "form":
		return fmt.Sprintf("Form: %s (ID: %s)\n%s",
			metaString(r.Metadata, "name"), r.ID, r.Content)
	default:
		if title := metaString(r.Metadata, "title"); title != "" {
			return fmt.Sprintf("%s:\n%s", title, r.Content)
		}
		return r.Content
	}
}

func metaString(md map[string]interface{}, key string) string {
	if md == nil {
		return ""
	}
	if v, ok := md[key].(string); ok {
		return v
	}
	return ""
}

// metaNumber renders a numeric metadata value without a trailing ".000000"
// tail; JSON decoding hands numbers over as float64.
func metaNumber(md map[string]interface{}, key string) string {
	if md == nil {
		return "0"
	}
	switch v := md[key].(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case string:
		if v != "" {
			return v
		}
	}
	return "0"
}
