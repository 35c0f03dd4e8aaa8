// Package http provides a ports.Transport implementation that ships batches
// to the remote storage cluster over HTTP.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bft-labs/bulkship/internal/domain"
	"github.com/bft-labs/bulkship/internal/ports"
)

const bulkEndpoint = "/v1/bulk"

// Client abstracts HTTP operations for dependency injection.
// The standard *http.Client satisfies this interface.
type Client interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// Transport implements ports.Transport by POSTing newline-delimited bulk
// bodies to {baseURL}/v1/bulk.
type Transport struct {
	client  Client
	baseURL string
	authKey string
	logger  ports.Logger
}

// NewTransport creates a new HTTP transport. baseURL must not have a
// trailing slash. authKey may be empty, in which case no Authorization
// header is sent.
func NewTransport(client Client, baseURL, authKey string, logger ports.Logger) *Transport {
	return &Transport{
		client:  client,
		baseURL: baseURL,
		authKey: authKey,
		logger:  logger,
	}
}

// bulkReply is the cluster's JSON response to a bulk request.
type bulkReply struct {
	TookMs int64 `json:"took_ms"`
	Items  int   `json:"items"`
	Errors bool  `json:"errors"`
}

// Execute sends one batch request and parses the cluster's reply.
func (t *Transport) Execute(ctx context.Context, req *ports.BatchRequest) (*ports.BatchResponse, error) {
	body, err := encodeBulk(req.Operations)
	if err != nil {
		return nil, fmt.Errorf("encode bulk body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+bulkEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/x-ndjson")
	if t.authKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.authKey)
	}
	setDeliveryHeaders(httpReq, req.Delivery)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	var reply bulkReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &ports.BatchResponse{
		Took:   time.Duration(reply.TookMs) * time.Millisecond,
		Items:  reply.Items,
		Errors: reply.Errors,
	}, nil
}

// setDeliveryHeaders forwards delivery options unmodified as headers.
// The transport never interprets them.
func setDeliveryHeaders(req *http.Request, d domain.DeliveryOptions) {
	if d.Replication != "" {
		req.Header.Set("X-Bulk-Replication", d.Replication)
	}
	if d.Consistency != "" {
		req.Header.Set("X-Bulk-Consistency", d.Consistency)
	}
	if d.Threaded {
		req.Header.Set("X-Bulk-Listener-Threaded", strconv.FormatBool(d.Threaded))
	}
}

// encodeBulk serializes operations into the newline-delimited wire format:
// one action line per operation, followed by the source line for index
// operations.
func encodeBulk(ops []domain.Operation) ([]byte, error) {
	var buf bytes.Buffer

	for _, op := range ops {
		meta := map[string]actionMeta{
			string(op.Action): {
				Index:   op.Index,
				ID:      op.ID,
				Routing: op.Routing,
			},
		}
		line, err := json.Marshal(meta)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')

		if op.Action == domain.ActionIndex {
			buf.Write(op.Source)
			buf.WriteByte('\n')
		}
	}

	return buf.Bytes(), nil
}

// actionMeta is the body of an encoded action line.
type actionMeta struct {
	Index   string `json:"_index"`
	ID      string `json:"_id,omitempty"`
	Routing string `json:"routing,omitempty"`
}
