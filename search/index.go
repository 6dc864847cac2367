// Package search keeps a full-text index over published blog posts.
package search

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"portfolio/api/models"
)

// DefaultLimit is used when a caller asks for no limit or a negative one.
const DefaultLimit = 10

// MaxLimit caps the number of hits a single query returns.
const MaxLimit = 50

var ErrBadQuery = errors.New("malformed search query")

// Index wraps a Bleve index keyed by post ID.
type Index struct {
	index bleve.Index
}

// indexedPost is the document stored for each published post.
type indexedPost struct {
	Slug    string
	Title   string
	Excerpt string
	Content string
	Tags    []string
}

type Result struct {
	Slug      string              `json:"slug"`
	Title     string              `json:"title"`
	Excerpt   string              `json:"excerpt"`
	Score     float64             `json:"score"`
	Fragments map[string][]string `json:"fragments,omitempty"`
}

// Open opens the index at path, creating it if missing. An empty path keeps
// the index in memory; it is then rebuilt from the store on every start.
func Open(path string) (*Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return &Index{index: idx}, nil
	}

	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = "en"

	keywordFieldMapping := bleve.NewKeywordFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("Slug", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("Title", titleFieldMapping)
	docMapping.AddFieldMappingsAt("Excerpt", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Content", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Tags", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

func (i *Index) Close() error {
	return i.index.Close()
}

func toDocument(post *models.BlogPost) *indexedPost {
	return &indexedPost{
		Slug:    post.Slug,
		Title:   post.Title,
		Excerpt: post.Excerpt,
		Content: post.Content,
		Tags:    []string(post.Tags),
	}
}

// IndexPost adds or refreshes post. Drafts are removed so they never show up
// in public results.
func (i *Index) IndexPost(post *models.BlogPost) error {
	if !post.Published {
		return i.DeletePost(post.ID)
	}
	if err := i.index.Index(post.ID, toDocument(post)); err != nil {
		return fmt.Errorf("index post %s: %w", post.ID, err)
	}
	return nil
}

func (i *Index) DeletePost(id string) error {
	if err := i.index.Delete(id); err != nil {
		return fmt.Errorf("delete post %s from index: %w", id, err)
	}
	return nil
}

// Rebuild makes the index match posts: published posts are (re)indexed and
// every other document is dropped.
func (i *Index) Rebuild(posts []models.BlogPost) error {
	keep := make(map[string]struct{}, len(posts))
	batch := i.index.NewBatch()
	for idx := range posts {
		post := &posts[idx]
		if !post.Published {
			continue
		}
		keep[post.ID] = struct{}{}
		if err := batch.Index(post.ID, toDocument(post)); err != nil {
			return fmt.Errorf("batch index %s: %w", post.ID, err)
		}
	}

	stale, err := i.documentIDs()
	if err != nil {
		return err
	}
	for _, id := range stale {
		if _, ok := keep[id]; !ok {
			batch.Delete(id)
		}
	}

	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	slog.Info("search index rebuilt", "documents", len(keep))
	return nil
}

func (i *Index) documentIDs() ([]string, error) {
	count, err := i.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Search runs a query-string query (quotes, +/-, field:term and fuzzy ~ are
// supported) and returns hits best first.
func (i *Index) Search(queryStr string, limit int) ([]Result, error) {
	queryStr = strings.TrimSpace(queryStr)
	if queryStr == "" {
		return nil, ErrBadQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	query := bleve.NewQueryStringQuery(queryStr)
	if _, err := query.Parse(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}

	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Fields = []string{"Slug", "Title", "Excerpt"}

	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := Result{Score: hit.Score, Fragments: hit.Fragments}
		if slug, ok := hit.Fields["Slug"].(string); ok {
			r.Slug = slug
		}
		if title, ok := hit.Fields["Title"].(string); ok {
			r.Title = title
		}
		if excerpt, ok := hit.Fields["Excerpt"].(string); ok {
			r.Excerpt = excerpt
		}
		results = append(results, r)
	}
	return results, nil
}

func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}
