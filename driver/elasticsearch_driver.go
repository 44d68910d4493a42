package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"book-search/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

// ErrQueryRejected is returned when the engine refuses a search request as malformed.
var ErrQueryRejected = errors.New("search request rejected by elasticsearch")

// ElasticsearchDriver performs index and search operations against one index.
type ElasticsearchDriver struct {
	handle *ElasticsearchClient
	index  string
}

func NewElasticsearchDriver(handle *ElasticsearchClient) *ElasticsearchDriver {
	return &ElasticsearchDriver{handle: handle, index: handle.Config().Index}
}

func (d *ElasticsearchDriver) Index() string {
	return d.index
}

func (d *ElasticsearchDriver) client(ctx context.Context) (*elasticsearch.Client, context.Context, context.CancelFunc, error) {
	client, err := d.handle.Get()
	if err != nil {
		return nil, ctx, func() {}, err
	}
	if timeout := d.handle.Config().RequestTimeout; timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		return client, ctx, cancel, nil
	}
	return client, ctx, func() {}, nil
}

func (d *ElasticsearchDriver) IndexExists(ctx context.Context) (bool, error) {
	client, ctx, cancel, err := d.client(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()

	res, err := client.Indices.Exists([]string{d.index}, client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, &DriverError{Op: "IndexExists", Err: err.Error()}
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &DriverError{Op: "IndexExists", Err: res.Status()}
	}
}

// CreateIndex creates the index with body. A concurrent creation by another process counts as success.
func (d *ElasticsearchDriver) CreateIndex(ctx context.Context, body map[string]any) error {
	client, ctx, cancel, err := d.client(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	res, err := client.Indices.Create(d.index,
		client.Indices.Create.WithContext(ctx),
		client.Indices.Create.WithBody(esutil.NewJSONReader(body)),
	)
	if err != nil {
		return &DriverError{Op: "CreateIndex", Err: err.Error()}
	}
	defer res.Body.Close()

	if res.IsError() {
		msg := responseError(res)
		if strings.Contains(msg, "resource_already_exists_exception") {
			return nil
		}
		return &DriverError{Op: "CreateIndex", Err: msg}
	}
	logger.Logger.Info("created elasticsearch index", "index", d.index)
	return nil
}

func (d *ElasticsearchDriver) DeleteIndex(ctx context.Context) error {
	client, ctx, cancel, err := d.client(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	res, err := client.Indices.Delete([]string{d.index}, client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return &DriverError{Op: "DeleteIndex", Err: err.Error()}
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return &DriverError{Op: "DeleteIndex", Err: responseError(res)}
	}
	return nil
}

func (d *ElasticsearchDriver) Count(ctx context.Context) (int64, error) {
	client, ctx, cancel, err := d.client(ctx)
	if err != nil {
		return 0, err
	}
	defer cancel()

	res, err := client.Count(client.Count.WithContext(ctx), client.Count.WithIndex(d.index))
	if err != nil {
		return 0, &DriverError{Op: "Count", Err: err.Error()}
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, &DriverError{Op: "Count", Err: responseError(res)}
	}

	var body struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, &DriverError{Op: "Count", Err: "decoding response: " + err.Error()}
	}
	return body.Count, nil
}

// BulkIndex indexes docs using their book id as the document id.
func (d *ElasticsearchDriver) BulkIndex(ctx context.Context, docs []SearchDocumentDriver) error {
	if len(docs) == 0 {
		return nil
	}
	client, ctx, cancel, err := d.client(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	var flushErr atomic.Value
	indexer, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     client,
		Index:      d.index,
		NumWorkers: 1,
		OnError: func(_ context.Context, err error) {
			flushErr.Store(err)
		},
	})
	if err != nil {
		return &DriverError{Op: "BulkIndex", Err: err.Error()}
	}

	for _, doc := range docs {
		body, err := json.Marshal(doc)
		if err != nil {
			return &DriverError{Op: "BulkIndex", Err: "encoding document: " + err.Error()}
		}
		err = indexer.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: strconv.FormatInt(doc.ID, 10),
			Body:       bytes.NewReader(body),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					logger.Logger.Error("bulk index item failed", "doc_id", item.DocumentID, "err", err)
					return
				}
				logger.Logger.Error("bulk index item failed", "doc_id", item.DocumentID,
					"type", res.Error.Type, "reason", res.Error.Reason)
			},
		})
		if err != nil {
			return &DriverError{Op: "BulkIndex", Err: err.Error()}
		}
	}

	if err := indexer.Close(ctx); err != nil {
		return &DriverError{Op: "BulkIndex", Err: err.Error()}
	}
	if v := flushErr.Load(); v != nil {
		return &DriverError{Op: "BulkIndex", Err: v.(error).Error()}
	}
	if failed := indexer.Stats().NumFailed; failed > 0 {
		return &DriverError{Op: "BulkIndex", Err: fmt.Sprintf("%d documents failed", failed)}
	}
	return nil
}

func (d *ElasticsearchDriver) Refresh(ctx context.Context) error {
	client, ctx, cancel, err := d.client(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	res, err := client.Indices.Refresh(
		client.Indices.Refresh.WithContext(ctx),
		client.Indices.Refresh.WithIndex(d.index),
	)
	if err != nil {
		return &DriverError{Op: "Refresh", Err: err.Error()}
	}
	defer res.Body.Close()
	if res.IsError() {
		return &DriverError{Op: "Refresh", Err: responseError(res)}
	}
	return nil
}

func (d *ElasticsearchDriver) IndexDocument(ctx context.Context, doc SearchDocumentDriver) error {
	client, ctx, cancel, err := d.client(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	res, err := client.Index(d.index, esutil.NewJSONReader(doc),
		client.Index.WithContext(ctx),
		client.Index.WithDocumentID(strconv.FormatInt(doc.ID, 10)),
	)
	if err != nil {
		return &DriverError{Op: "IndexDocument", Err: err.Error()}
	}
	defer res.Body.Close()
	if res.IsError() {
		return &DriverError{Op: "IndexDocument", Err: responseError(res)}
	}
	return nil
}

// DeleteDocument removes a document. A missing document is not an error.
func (d *ElasticsearchDriver) DeleteDocument(ctx context.Context, id int64) error {
	client, ctx, cancel, err := d.client(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	res, err := client.Delete(d.index, strconv.FormatInt(id, 10), client.Delete.WithContext(ctx))
	if err != nil {
		return &DriverError{Op: "DeleteDocument", Err: err.Error()}
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return &DriverError{Op: "DeleteDocument", Err: responseError(res)}
	}
	return nil
}

// SearchIDs runs query and returns the hit ids in relevance order.
func (d *ElasticsearchDriver) SearchIDs(ctx context.Context, query map[string]any, size int) ([]int64, error) {
	client, ctx, cancel, err := d.client(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	body := map[string]any{
		"query":   query,
		"size":    size,
		"_source": false,
	}

	res, err := client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(d.index),
		client.Search.WithBody(esutil.NewJSONReader(body)),
	)
	if err != nil {
		return nil, &DriverError{Op: "SearchIDs", Err: err.Error()}
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", ErrQueryRejected, responseError(res))
		}
		return nil, &DriverError{Op: "SearchIDs", Err: responseError(res)}
	}

	var result struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, &DriverError{Op: "SearchIDs", Err: "decoding response: " + err.Error()}
	}

	ids := make([]int64, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			logger.Logger.Warn("skipping hit with non-numeric id", "id", hit.ID)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func responseError(res *esapi.Response) string {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	if len(body) == 0 {
		return res.Status()
	}
	return res.Status() + ": " + string(body)
}
