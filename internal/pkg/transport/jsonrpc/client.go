// Package jsonrpc is a JSON-RPC 2.0 client over the shared HTTP transport,
// used by adapters whose source is a node RPC endpoint rather than an
// indexer REST API.
package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	transporthttp "github.com/gabapcia/walletscope/internal/pkg/transport/http"
)

// ErrProviderReturnedError indicates that the node answered with a JSON-RPC
// error object.
var ErrProviderReturnedError = errors.New("provider error")

// ErrDecodeResult indicates that the result did not fit the target value.
var ErrDecodeResult = errors.New("decode result")

type request struct {
	JsonRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	JsonRPC string `json:"jsonrpc"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Result json.RawMessage `json:"result"`
}

// Err returns the JSON-RPC error, if any, wrapped in ErrProviderReturnedError.
func (r response) Err() error {
	if r.Error == nil {
		return nil
	}

	return fmt.Errorf("%w: [%d] - %s", ErrProviderReturnedError, r.Error.Code, r.Error.Message)
}

// Client sends JSON-RPC calls.
type Client interface {
	// Fetch calls method with params and returns the raw result.
	Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error)

	// Call calls method with params and decodes the result into out.
	Call(ctx context.Context, out any, method string, params ...any) error
}

type client struct {
	endpoint   string
	httpClient *transporthttp.Client
}

var _ Client = (*client)(nil)

// NewClient returns a Client that posts to endpoint using httpClient.
func NewClient(httpClient *transporthttp.Client, endpoint string) *client {
	return &client{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

func (c *client) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	req := request{
		JsonRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}

	var res response
	if err := c.httpClient.PostJSON(ctx, c.endpoint, req, &res); err != nil {
		return nil, err
	}

	if err := res.Err(); err != nil {
		return nil, err
	}

	return res.Result, nil
}

func (c *client) Call(ctx context.Context, out any, method string, params ...any) error {
	raw, err := c.Fetch(ctx, method, params...)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecodeResult, method, err)
	}

	return nil
}
