// Package apollo holds the thin collaborators for the sales-intelligence API:
// each one shapes parameters, calls the retrying transport and decodes JSON.
package apollo

import (
	"context"
	"encoding/json"

	errs "lead-pipeline/internal/common/errors"
	"lead-pipeline/internal/common/logger"
)

// MaxBulkSize is the per-request cap of the bulk endpoints.
const MaxBulkSize = 10

// MaxPerPage is the largest page size the search endpoints accept.
const MaxPerPage = 100

// Executor issues one logical API operation. *transport.Transport satisfies it.
type Executor interface {
	Execute(ctx context.Context, method, endpoint string, payload map[string]interface{}) (json.RawMessage, error)
}

type Client struct {
	exec   Executor
	logger logger.Logger
}

func NewClient(exec Executor, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{exec: exec, logger: log}
}

func (c *Client) call(ctx context.Context, method, endpoint string, payload map[string]interface{}, out interface{}) error {
	raw, err := c.exec.Execute(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errs.NewDecodeError(endpoint, err)
	}
	return nil
}

func clampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}
