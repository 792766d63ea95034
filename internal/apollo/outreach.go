package apollo

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	errs "lead-pipeline/internal/common/errors"
)

// SearchSequences lists outreach sequences whose name matches query. An empty
// query lists every sequence visible to the credential.
func (c *Client) SearchSequences(ctx context.Context, query string, page, perPage int) (*SequenceSearchResult, error) {
	page, perPage = clampPage(page, perPage)
	payload := compact(map[string]interface{}{
		"q_name":   strings.TrimSpace(query),
		"page":     page,
		"per_page": perPage,
	})

	var out SequenceSearchResult
	if err := c.call(ctx, http.MethodGet, "/emailer_campaigns/search", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddContactsToSequence enrolls contacts into a sequence, sending from the
// given email account.
func (c *Client) AddContactsToSequence(ctx context.Context, sequenceID string, contactIDs []string, emailAccountID string) (*SequenceEnrollment, error) {
	switch {
	case strings.TrimSpace(sequenceID) == "":
		return nil, errs.NewValidationError(errs.ErrCodeInvalidInput, "sequence id is required", "")
	case strings.TrimSpace(emailAccountID) == "":
		return nil, errs.NewValidationError(errs.ErrCodeInvalidInput, "email account id is required", "")
	case len(contactIDs) == 0:
		return nil, errs.NewValidationError(errs.ErrCodeInvalidInput, "at least one contact id is required", "")
	}

	payload := map[string]interface{}{
		"emailer_campaign_id":              sequenceID,
		"contact_ids":                      contactIDs,
		"send_email_from_email_account_id": emailAccountID,
	}
	endpoint := "/emailer_campaigns/" + url.PathEscape(sequenceID) + "/add_contact_ids"

	var out SequenceEnrollment
	if err := c.call(ctx, http.MethodPost, endpoint, payload, &out); err != nil {
		return nil, err
	}
	c.logger.Info("Contacts added to sequence", map[string]interface{}{
		"sequenceId": sequenceID,
		"contacts":   len(contactIDs),
	})
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, in TaskInput) ([]Task, error) {
	if len(in.ContactIDs) == 0 {
		return nil, errs.NewValidationError(errs.ErrCodeInvalidInput, "at least one contact id is required", "")
	}
	var out struct {
		Task  *Task  `json:"task"`
		Tasks []Task `json:"tasks"`
	}
	if err := c.call(ctx, http.MethodPost, "/tasks", in.params(), &out); err != nil {
		return nil, err
	}
	if out.Task != nil {
		return append([]Task{*out.Task}, out.Tasks...), nil
	}
	return out.Tasks, nil
}

func (c *Client) SearchTasks(ctx context.Context, q TaskSearch) (*TaskSearchResult, error) {
	var out TaskSearchResult
	if err := c.call(ctx, http.MethodPost, "/tasks/search", q.params(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
