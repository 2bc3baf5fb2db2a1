// Package search keeps catalog products in an Elasticsearch index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/book_club/internal/models"
	"github.com/Skotchmaster/book_club/internal/transport"
)

type ProductDocument struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Price       string `json:"price"`
}

func DocumentFromProduct(p *models.Product) ProductDocument {
	return ProductDocument{
		ID:          p.ID,
		Title:       p.Book.Title,
		Description: p.Book.Description,
		Author:      p.Author.Name,
		Genre:       string(p.Book.Genre),
		Price:       p.Book.Price.StringFixed(2),
	}
}

var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":          map[string]any{"type": "long"},
			"title":       map[string]any{"type": "text"},
			"description": map[string]any{"type": "text"},
			"author":      map[string]any{"type": "text"},
			"genre":       map[string]any{"type": "keyword"},
			"price":       map[string]any{"type": "keyword", "index": false},
		},
	},
}

type ProductIndex struct {
	Client *elasticsearch.Client
	Index  string
}

func NewProductIndex(client *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{Client: client, Index: index}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (p *ProductIndex) EnsureIndex(ctx context.Context) error {
	res, err := p.Client.Indices.Exists([]string{p.Index}, p.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	body, err := json.Marshal(indexMapping)
	if err != nil {
		return err
	}
	res, err = p.Client.Indices.Create(
		p.Index,
		p.Client.Indices.Create.WithContext(ctx),
		p.Client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("search: create index: %w", err)
	}
	return responseError("create index", res)
}

func (p *ProductIndex) IndexProduct(ctx context.Context, doc ProductDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := p.Client.Index(
		p.Index,
		bytes.NewReader(body),
		p.Client.Index.WithContext(ctx),
		p.Client.Index.WithDocumentID(strconv.FormatUint(uint64(doc.ID), 10)),
		p.Client.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("search: index product: %w", err)
	}
	return responseError("index product", res)
}

// Search returns the total number of hits and the product ids of the requested page.
func (p *ProductIndex) Search(ctx context.Context, q transport.ProductSearchDTO, from, size int) (int64, []uint, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(BuildQuery(q, from, size)); err != nil {
		return 0, nil, err
	}

	res, err := p.Client.Search(
		p.Client.Search.WithContext(ctx),
		p.Client.Search.WithIndex(p.Index),
		p.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search: %s: %s", res.Status(), msg)
	}
	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) (int64, []uint, error) {
	var out struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source ProductDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return 0, nil, fmt.Errorf("search: decode: %w", err)
	}

	ids := make([]uint, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return out.Hits.Total.Value, ids, nil
}

// BuildQuery turns the optional filters into a bool query. No filters match everything.
func BuildQuery(q transport.ProductSearchDTO, from, size int) map[string]any {
	var must, filter []any

	if q.Title != nil && strings.TrimSpace(*q.Title) != "" {
		must = append(must, map[string]any{
			"match": map[string]any{
				"title": map[string]any{"query": strings.TrimSpace(*q.Title), "fuzziness": "AUTO"},
			},
		})
	}
	if q.AuthorName != nil && strings.TrimSpace(*q.AuthorName) != "" {
		must = append(must, map[string]any{
			"match": map[string]any{
				"author": map[string]any{"query": strings.TrimSpace(*q.AuthorName), "fuzziness": "AUTO"},
			},
		})
	}
	if q.Genre != nil {
		filter = append(filter, map[string]any{
			"term": map[string]any{"genre": string(*q.Genre)},
		})
	}

	var query map[string]any
	if len(must) == 0 && len(filter) == 0 {
		query = map[string]any{"match_all": map[string]any{}}
	} else {
		b := map[string]any{}
		if len(must) > 0 {
			b["must"] = must
		}
		if len(filter) > 0 {
			b["filter"] = filter
		}
		query = map[string]any{"bool": b}
	}

	return map[string]any{
		"query": query,
		"from":  from,
		"size":  size,
	}
}

func responseError(op string, res *esapi.Response) error {
	defer res.Body.Close()
	if !res.IsError() {
		return nil
	}
	msg, _ := io.ReadAll(res.Body)
	return fmt.Errorf("search: %s: %s: %s", op, res.Status(), msg)
}
