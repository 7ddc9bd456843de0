package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/models"
)

type Document struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	CategoryName string    `json:"category_name"`
	CategorySlug string    `json:"category_slug"`
	Price        int64     `json:"price"`
	Watts        int       `json:"watts"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"created_at"`
}

func DocumentFor(p models.Product) Document {
	d := Document{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Watts:       p.Watts,
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt,
	}
	if p.Category != nil {
		d.CategoryName = p.Category.Name
		d.CategorySlug = p.Category.Slug
	}
	return d
}

type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewIndex(es *elasticsearch.Client, name string) *Index {
	return &Index{ES: es, Name: name}
}

func docID(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func (i *Index) IndexProduct(ctx context.Context, p models.Product) error {
	body, err := json.Marshal(DocumentFor(p))
	if err != nil {
		return err
	}
	res, err := i.ES.Index(i.Name, bytes.NewReader(body),
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithDocumentID(docID(p.ID)),
	)
	if err != nil {
		return fmt.Errorf("es: index %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res.StatusCode, res.Body)
	}
	return nil
}

func (i *Index) DeleteProduct(ctx context.Context, id uint) error {
	res, err := i.ES.Delete(i.Name, docID(id), i.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res.StatusCode, res.Body)
	}
	return nil
}

// Search returns matching product ids in relevance order.
func (i *Index) Search(ctx context.Context, query, categorySlug string, from, size int) (int64, []uint, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildQuery(query, categorySlug, from, size)); err != nil {
		return 0, nil, err
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.StatusCode, res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode: %w", err)
	}

	ids := make([]uint, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		ids[n] = hit.Source.ID
	}
	return r.Hits.Total.Value, ids, nil
}

func buildQuery(query, categorySlug string, from, size int) map[string]any {
	must := []any{}
	if q := strings.TrimSpace(query); q != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "description", "category_name"},
				"fuzziness": "AUTO",
			},
		})
	} else {
		must = append(must, map[string]any{"match_all": map[string]any{}})
	}

	boolQ := map[string]any{"must": must}
	if categorySlug != "" {
		boolQ["filter"] = []any{map[string]any{"term": map[string]any{"category_slug": categorySlug}}}
	}

	return map[string]any{
		"query": map[string]any{"bool": boolQ},
		"from":  from,
		"size":  size,
	}
}

func responseError(op string, status int, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 4096))
	return fmt.Errorf("es: %s: status %d: %s", op, status, b)
}
