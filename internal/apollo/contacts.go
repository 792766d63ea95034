package apollo

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	errs "lead-pipeline/internal/common/errors"
)

func (c *Client) CreateContact(ctx context.Context, in ContactInput) (*Contact, error) {
	var out struct {
		Contact *Contact `json:"contact"`
	}
	if err := c.call(ctx, http.MethodPost, "/contacts", in.params(), &out); err != nil {
		return nil, err
	}
	if out.Contact == nil || out.Contact.ID == "" {
		return nil, errs.NewInternalError("contact creation returned no id", nil)
	}
	return out.Contact, nil
}

func (c *Client) UpdateContact(ctx context.Context, id string, in ContactInput) (*Contact, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errs.NewValidationError(errs.ErrCodeInvalidInput, "contact id is required", "")
	}
	var out struct {
		Contact *Contact `json:"contact"`
	}
	if err := c.call(ctx, http.MethodPut, "/contacts/"+url.PathEscape(id), in.params(), &out); err != nil {
		return nil, err
	}
	return out.Contact, nil
}

func (c *Client) SearchContacts(ctx context.Context, q ContactSearch) (*ContactSearchResult, error) {
	var out ContactSearchResult
	if err := c.call(ctx, http.MethodPost, "/contacts/search", q.params(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAccount(ctx context.Context, in AccountInput) (*Account, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errs.NewValidationError(errs.ErrCodeInvalidInput, "account name is required", "")
	}
	var out struct {
		Account *Account `json:"account"`
	}
	if err := c.call(ctx, http.MethodPost, "/accounts", in.params(), &out); err != nil {
		return nil, err
	}
	return out.Account, nil
}

func (c *Client) SearchAccounts(ctx context.Context, q AccountSearch) (*AccountSearchResult, error) {
	var out AccountSearchResult
	if err := c.call(ctx, http.MethodPost, "/accounts/search", q.params(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
