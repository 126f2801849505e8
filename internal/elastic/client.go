// Package elastic speaks to the external Elasticsearch index: schema setup,
// bulk ingestion and the boosted search queries the service layer issues.
package elastic

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"lawsearch/internal/domain"
)

// Config holds the connection parameters for the index service.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	UseSSL      bool
	VerifyCerts bool
	Index       string
}

// Address renders the single-node endpoint URL.
func (c Config) Address() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// Client implements domain.SearchIndex over one Elasticsearch index.
type Client struct {
	es      *elasticsearch.Client
	index   string
	builder *QueryBuilder
	log     *slog.Logger
}

var _ domain.SearchIndex = (*Client)(nil)

// NewClient connects and pings the index service. An unreachable service is
// domain.ErrConnectionFailed; there are no retries.
func NewClient(cfg Config, builder *QueryBuilder, log *slog.Logger) (*Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.Address()},
		Username:  cfg.Username,
		Password:  cfg.Password,
	}
	if cfg.UseSSL && !cfg.VerifyCerts {
		esCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	c := &Client{es: es, index: cfg.Index, builder: builder, log: log}
	res, err := es.Ping(es.Ping.WithContext(context.Background()))
	if err != nil {
		return nil, fmt.Errorf("ping %s: %v: %w", cfg.Address(), err, domain.ErrConnectionFailed)
	}
	res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("ping %s: %s: %w", cfg.Address(), res.Status(), domain.ErrConnectionFailed)
	}
	log.Info("connected to index service", "address", cfg.Address(), "index", cfg.Index)
	return c, nil
}

// IndexName reports which index this client operates on.
func (c *Client) IndexName() string { return c.index }

// CreateIndex creates the index with the schema variant its name selects.
// A pre-existing index is success: it is assumed schema-compatible.
func (c *Client) CreateIndex(ctx context.Context, recreate bool) error {
	exists, err := c.IndexExists(ctx)
	if err != nil {
		return err
	}
	if exists && recreate {
		if err := c.DeleteIndex(ctx); err != nil {
			return err
		}
		exists = false
	}
	if exists {
		c.log.Info("index already exists", "index", c.index)
		return nil
	}

	body, err := json.Marshal(SchemaFor(c.index))
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	res, err := c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", c.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		if strings.Contains(string(raw), "resource_already_exists_exception") {
			c.log.Info("index created concurrently", "index", c.index)
			return nil
		}
		return fmt.Errorf("create index %s: %s", c.index, res.Status())
	}
	c.log.Info("index created", "index", c.index)
	return nil
}

// DeleteIndex drops the index; a missing index is success.
func (c *Client) DeleteIndex(ctx context.Context) error {
	res, err := c.es.Indices.Delete(
		[]string{c.index},
		c.es.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete index %s: %w", c.index, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete index %s: %s", c.index, res.Status())
	}
	c.log.Info("index deleted", "index", c.index)
	return nil
}

// IndexExists reports whether the index is present.
func (c *Client) IndexExists(ctx context.Context) (bool, error) {
	res, err := c.es.Indices.Exists(
		[]string{c.index},
		c.es.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", c.index, err)
	}
	defer res.Body.Close()
	return res.StatusCode == http.StatusOK, nil
}

// BulkIndex submits every record in one bulk call with refresh enabled, so
// documents are searchable as soon as the call returns. Item-level rejections
// are logged and reported as one ErrBulkPartialFailure.
func (c *Client) BulkIndex(ctx context.Context, records []domain.PageRecord) error {
	if len(records) == 0 {
		c.log.Warn("nothing to index")
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, rec := range records {
		meta := map[string]any{"index": map[string]any{"_index": c.index}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode bulk record: %w", err)
		}
	}

	res, err := c.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithIndex(c.index),
		c.es.Bulk.WithRefresh("true"),
		c.es.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk index: %s", res.Status())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int             `json:"status"`
			Error  json.RawMessage `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if bulkResp.Errors {
		for _, item := range bulkResp.Items {
			for op, detail := range item {
				if len(detail.Error) > 0 {
					c.log.Error("bulk item rejected", "op", op, "status", detail.Status, "error", string(detail.Error))
				}
			}
		}
		return domain.ErrBulkPartialFailure
	}
	c.log.Info("bulk indexed", "index", c.index, "documents", len(records))
	return nil
}

// Search runs a boosted keyword query, or a category browse when query is
// empty and a category filter is set.
func (c *Client) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	resp, err := c.runSearch(ctx, c.builder.Build(query, opts))
	if err != nil {
		return nil, err
	}
	results := decodeResults(resp)
	c.log.Info("search done", "query", query, "category", opts.Category, "results", len(results))
	return results, nil
}

// GetByPage looks up the single record keyed by (page_number, file_path).
func (c *Client) GetByPage(ctx context.Context, pageNumber int, filePath string) (*domain.PageRecord, error) {
	resp, err := c.runSearch(ctx, c.builder.BuildPageLookup(pageNumber, filePath))
	if err != nil {
		return nil, err
	}
	if len(resp.Hits.Hits) == 0 {
		return nil, fmt.Errorf("page %d of %s: %w", pageNumber, filePath, domain.ErrNotFound)
	}
	rec := resp.Hits.Hits[0].Source
	return &rec, nil
}

// Count reports how many documents the index holds.
func (c *Client) Count(ctx context.Context) (int, error) {
	res, err := c.es.Count(
		c.es.Count.WithContext(ctx),
		c.es.Count.WithIndex(c.index),
	)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("count: %s", res.Status())
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	return out.Count, nil
}

// CategoryCounts aggregates document counts per category label.
func (c *Client) CategoryCounts(ctx context.Context) (domain.CategoryCounts, error) {
	resp, err := c.runSearch(ctx, c.builder.BuildCategoryCounts())
	if err != nil {
		return nil, err
	}
	counts := make(domain.CategoryCounts, len(resp.Aggregations.Categories.Buckets))
	for _, bucket := range resp.Aggregations.Categories.Buckets {
		counts[bucket.Key] = bucket.DocCount
	}
	return counts, nil
}

// Analyze returns the token stream the index's content analyzer produces
// for the given text.
func (c *Client) Analyze(ctx context.Context, text string) ([]string, error) {
	body, err := json.Marshal(map[string]any{"field": "content", "text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal analyze request: %w", err)
	}
	res, err := c.es.Indices.Analyze(
		c.es.Indices.Analyze.WithIndex(c.index),
		c.es.Indices.Analyze.WithBody(bytes.NewReader(body)),
		c.es.Indices.Analyze.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("analyze: %s", res.Status())
	}
	var out struct {
		Tokens []struct {
			Token string `json:"token"`
		} `json:"tokens"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode analyze response: %w", err)
	}
	tokens := make([]string, 0, len(out.Tokens))
	for _, t := range out.Tokens {
		tokens = append(tokens, t.Token)
	}
	return tokens, nil
}

// Health snapshots cluster status, index existence and document count.
// It never returns an error; failures degrade to a disconnected snapshot.
func (c *Client) Health(ctx context.Context) domain.IndexHealth {
	health := domain.IndexHealth{IndexName: c.index}

	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		c.log.Warn("cluster health check failed", "error", err)
		return health
	}
	defer res.Body.Close()
	if res.IsError() {
		return health
	}
	var cluster struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&cluster); err != nil {
		return health
	}
	health.Connected = true
	health.ClusterStatus = cluster.Status

	if exists, err := c.IndexExists(ctx); err == nil {
		health.IndexExists = exists
		if exists {
			if count, err := c.Count(ctx); err == nil {
				health.DocumentCount = count
			}
		}
	}
	return health
}

// runSearch executes one search body against the index and decodes the hits.
func (c *Client) runSearch(ctx context.Context, body map[string]any) (searchResponse, error) {
	var resp searchResponse
	raw, err := json.Marshal(body)
	if err != nil {
		return resp, fmt.Errorf("marshal search body: %w", err)
	}
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(raw)),
	)
	if err != nil {
		return resp, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if err := readError(res); err != nil {
		return resp, err
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return resp, fmt.Errorf("decode search response: %w", err)
	}
	return resp, nil
}

// readError turns an error response into a Go error with the engine's reason.
func readError(res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	var detail struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&detail); err == nil && detail.Error.Reason != "" {
		return fmt.Errorf("search: %s: %s", detail.Error.Type, detail.Error.Reason)
	}
	return fmt.Errorf("search: %s", res.Status())
}
