package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/illmade-knight/go-syncloader/pkg/pagination"
	"github.com/illmade-knight/go-syncloader/pkg/source"
)

// FirestoreConfig holds the settings for a single-document Firestore source.
type FirestoreConfig struct {
	CollectionName string
	DocID          string
}

// FirestoreSource is a remote-capability backend reading one Firestore
// document. The client's lifecycle is managed by the caller.
type FirestoreSource[T any] struct {
	source.RemoteOnly[T]

	client *firestore.Client
	cfg    FirestoreConfig
	empty  T
	logger zerolog.Logger
}

// NewFirestoreSource creates a FirestoreSource.
func NewFirestoreSource[T any](cfg FirestoreConfig, client *firestore.Client, empty T, logger zerolog.Logger) (*FirestoreSource[T], error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client cannot be nil")
	}
	return &FirestoreSource[T]{
		client: client,
		cfg:    cfg,
		empty:  empty,
		logger: logger.With().Str("component", "FirestoreSource").Logger(),
	}, nil
}

// EmptyValue returns the configured empty value.
func (s *FirestoreSource[T]) EmptyValue() T {
	return s.empty
}

// ReadRemote fetches and decodes the configured document.
func (s *FirestoreSource[T]) ReadRemote(ctx context.Context) (T, error) {
	docRef := s.client.Collection(s.cfg.CollectionName).Doc(s.cfg.DocID)
	docSnap, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			s.logger.Warn().Str("doc_id", s.cfg.DocID).Msg("Document not found in Firestore.")
			return s.empty, fmt.Errorf("document not found: %w", err)
		}
		s.logger.Error().Err(err).Str("doc_id", s.cfg.DocID).Msg("Failed to get document from Firestore.")
		return s.empty, fmt.Errorf("firestore get for %s: %w", s.cfg.DocID, err)
	}

	var value T
	if err := docSnap.DataTo(&value); err != nil {
		s.logger.Error().Err(err).Str("doc_id", s.cfg.DocID).Msg("Failed to map Firestore document data.")
		return s.empty, fmt.Errorf("firestore DataTo for %s: %w", s.cfg.DocID, err)
	}
	return value, nil
}

// FirestoreCollectionConfig holds the settings for a paginated collection
// source. OrderBy must be a deterministic ordering field; cursor-style
// pagination passes cursor values as StartAfter positions on it.
type FirestoreCollectionConfig struct {
	CollectionName string
	OrderBy        string
	// ZeroBasedPages must match the page strategy's numbering when the
	// page/pageSize parameters are used.
	ZeroBasedPages bool
}

// FirestoreCollectionSource is a remote-capability backend reading an ordered
// Firestore collection, page by page. It understands the query parameters
// produced by the built-in pagination strategies: offset/limit, page/pageSize
// and cursor/limit.
type FirestoreCollectionSource[T any] struct {
	source.RemoteOnly[[]T]

	client *firestore.Client
	cfg    FirestoreCollectionConfig
	logger zerolog.Logger
}

// NewFirestoreCollectionSource creates a FirestoreCollectionSource.
func NewFirestoreCollectionSource[T any](cfg FirestoreCollectionConfig, client *firestore.Client, logger zerolog.Logger) (*FirestoreCollectionSource[T], error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client cannot be nil")
	}
	if cfg.OrderBy == "" {
		return nil, fmt.Errorf("order-by field cannot be empty")
	}
	return &FirestoreCollectionSource[T]{
		client: client,
		cfg:    cfg,
		logger: logger.With().Str("component", "FirestoreCollectionSource").Logger(),
	}, nil
}

// EmptyValue returns an empty collection.
func (s *FirestoreCollectionSource[T]) EmptyValue() []T {
	return nil
}

// ReadRemote fetches the whole ordered collection in one query.
func (s *FirestoreCollectionSource[T]) ReadRemote(ctx context.Context) ([]T, error) {
	query := s.client.Collection(s.cfg.CollectionName).OrderBy(s.cfg.OrderBy, firestore.Asc)
	return s.runQuery(ctx, query)
}

// ReadRemotePage fetches one page according to the pagination parameters.
func (s *FirestoreCollectionSource[T]) ReadRemotePage(ctx context.Context, params map[string]any) ([]T, error) {
	query := s.client.Collection(s.cfg.CollectionName).OrderBy(s.cfg.OrderBy, firestore.Asc)

	if cursor, ok := params[pagination.ParamCursor]; ok && cursor != nil {
		query = query.StartAfter(cursor)
	}
	if offset, ok := intParam(params, pagination.ParamOffset); ok {
		query = query.Offset(offset)
	}
	if page, ok := intParam(params, pagination.ParamPage); ok {
		if size, ok := intParam(params, pagination.ParamPageSize); ok {
			first := page
			if !s.cfg.ZeroBasedPages {
				first--
			}
			query = query.Offset(first * size).Limit(size)
		}
	}
	if limit, ok := intParam(params, pagination.ParamLimit); ok {
		query = query.Limit(limit)
	}

	return s.runQuery(ctx, query)
}

func (s *FirestoreCollectionSource[T]) runQuery(ctx context.Context, query firestore.Query) ([]T, error) {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		s.logger.Error().Err(err).Str("collection", s.cfg.CollectionName).Msg("Firestore query failed.")
		return nil, fmt.Errorf("firestore query for %s: %w", s.cfg.CollectionName, err)
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := doc.DataTo(&item); err != nil {
			s.logger.Error().Err(err).Str("doc_id", doc.Ref.ID).Msg("Failed to map Firestore document data.")
			return nil, fmt.Errorf("firestore DataTo for %s: %w", doc.Ref.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// intParam reads an integer query parameter regardless of how the strategy
// typed it.
func intParam(params map[string]any, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
