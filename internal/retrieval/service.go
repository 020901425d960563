package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"merchflow/backend/internal/adapter/gemini"
	"merchflow/backend/internal/settings"
)

// Scope selects which embedding collection a search runs against. Each scope
// has its own ownership-filtering policy.
type Scope string

const (
	ScopeQuote     Scope = "quote"
	ScopeForm      Scope = "form"
	ScopeKnowledge Scope = "knowledge"
)

// ClassFor maps a scope to its vector store class.
func ClassFor(scope Scope) string {
	switch scope {
	case ScopeQuote:
		return "QuoteEmbedding"
	case ScopeForm:
		return "FormEmbedding"
	case ScopeKnowledge:
		return "KnowledgeArticle"
	}
	return ""
}

// Record is one stored embedding as seen at query time. Similarity is
// 1 - cosine distance, populated only on search results.
type Record struct {
	ID          string                 `json:"id"`
	ContentType string                 `json:"content_type"`
	Content     string                 `json:"content"`
	Similarity  float64                `json:"similarity"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher runs a nearVector query against one class, optionally
// restricted by property equality filters, ordered by descending similarity.
type VectorSearcher interface {
	SearchNearVector(ctx context.Context, class string, vector []float32, limit int, filter map[string]string) ([]Record, error)
}

// AccountLookup resolves the account that owns a customer's quotes. A failed
// lookup degrades the quote-scoped search to empty, it never fails a request.
type AccountLookup interface {
	GetAccountID(ctx context.Context, customerID string) (string, error)
}

type Service struct {
	embedder Embedder
	searcher VectorSearcher
	accounts AccountLookup
	settings *settings.Service
	logger   *QueryLogger
}

func NewService(e Embedder, vs VectorSearcher, a AccountLookup, set *settings.Service, l *QueryLogger) *Service {
	return &Service{embedder: e, searcher: vs, accounts: a, settings: set, logger: l}
}

// Search queries one scope. Grounding is best-effort: an empty or
// wrong-dimension vector, a failed account lookup, or any store error all
// degrade to an empty result rather than surfacing an error.
func (s *Service) Search(ctx context.Context, scope Scope, vector []float32, k int, customerID string) []Record {
	if len(vector) != gemini.EmbeddingDim {
		slog.WarnContext(ctx, "skipping search, bad query vector", "scope", string(scope), "dims", len(vector))
		return nil
	}
	if k <= 0 {
		return nil
	}

	filter, ok := s.scopeFilter(ctx, scope, customerID)
	if !ok {
		return nil
	}

	results, err := s.searcher.SearchNearVector(ctx, ClassFor(scope), vector, k, filter)
	if err != nil {
		slog.ErrorContext(ctx, "vector search failed", "scope", string(scope), "error", err)
		return nil
	}
	return results
}

// scopeFilter applies the per-scope ownership policy. The knowledge base is
// shared reference material and is never filtered; quote and form scopes are
// restricted only when a customer identity is given.
func (s *Service) scopeFilter(ctx context.Context, scope Scope, customerID string) (map[string]string, bool) {
	if customerID == "" || scope == ScopeKnowledge {
		return nil, true
	}

	switch scope {
	case ScopeQuote:
		accountID, err := s.accounts.GetAccountID(ctx, customerID)
		if err != nil {
			slog.WarnContext(ctx, "account lookup failed, degrading quote search", "customer_id", customerID, "error", err)
			return nil, false
		}
		return map[string]string{"ownerId": accountID}, true
	case ScopeForm:
		return map[string]string{"ownerId": customerID}, true
	}
	return nil, true
}

// GroundingContext assembles the grounding text for one chat turn: embed the
// message, search all three scopes, merge by descending similarity, render.
// Every failure degrades to less (or no) context, never to an error.
func (s *Service) GroundingContext(ctx context.Context, customerID, message string) (string, []Record) {
	start := time.Now()

	vector, err := s.embedder.Embed(ctx, message)
	if err != nil {
		slog.WarnContext(ctx, "query embedding failed, proceeding ungrounded", "error", err)
		return "", nil
	}
	if len(vector) == 0 {
		return "", nil
	}

	k := s.topK(ctx)
	var merged []Record
	for _, scope := range []Scope{ScopeQuote, ScopeForm, ScopeKnowledge} {
		merged = append(merged, s.Search(ctx, scope, vector, k, customerID)...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Query:      message,
			NumResults: len(merged),
			Duration:   time.Since(start),
		})
	}

	return FormatContext(merged), merged
}

func (s *Service) topK(ctx context.Context) int {
	cfg, err := s.settings.Get(ctx)
	if err != nil || cfg.SearchTopK <= 0 {
		return 5
	}
	return cfg.SearchTopK
}
