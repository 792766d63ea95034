package apollo

import (
	"context"
	"net/http"
	"strings"

	errs "lead-pipeline/internal/common/errors"
)

// MatchPerson enriches one person. A nil person with a nil error means no match.
func (c *Client) MatchPerson(ctx context.Context, details MatchDetails, opts BulkMatchOptions) (*Person, error) {
	payload := details.params()
	if len(payload) == 0 {
		return nil, errs.NewValidationError(errs.ErrCodeInvalidInput, "match details are empty", "")
	}
	if opts.RevealPersonalEmails {
		payload["reveal_personal_emails"] = true
	}
	if opts.RevealPhoneNumber {
		payload["reveal_phone_number"] = true
	}

	var out struct {
		Person *Person `json:"person"`
	}
	if err := c.call(ctx, http.MethodGet, "/people/match", payload, &out); err != nil {
		return nil, err
	}
	return out.Person, nil
}

// BulkMatchPeople enriches up to MaxBulkSize people in one call. Larger
// batches are rejected before any network call.
func (c *Client) BulkMatchPeople(ctx context.Context, details []MatchDetails, opts BulkMatchOptions) (*BulkMatchResult, error) {
	const endpoint = "/people/bulk_match"
	if len(details) > MaxBulkSize {
		return nil, errs.NewBatchTooLargeError(endpoint, len(details), MaxBulkSize)
	}
	if len(details) == 0 {
		return &BulkMatchResult{}, nil
	}

	items := make([]map[string]interface{}, len(details))
	for i, d := range details {
		items[i] = d.params()
	}
	payload := map[string]interface{}{"details": items}
	if opts.RevealPersonalEmails {
		payload["reveal_personal_emails"] = true
	}
	if opts.RevealPhoneNumber {
		payload["reveal_phone_number"] = true
	}

	var out BulkMatchResult
	if err := c.call(ctx, http.MethodPost, endpoint, payload, &out); err != nil {
		return nil, err
	}
	c.logger.Debug("Bulk match completed", map[string]interface{}{
		"requested": len(details),
		"matched":   len(out.Matched()),
	})
	return &out, nil
}

func (c *Client) EnrichOrganization(ctx context.Context, domain string) (*Organization, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, errs.NewValidationError(errs.ErrCodeInvalidInput, "domain is required", "")
	}

	var out struct {
		Organization *Organization `json:"organization"`
	}
	if err := c.call(ctx, http.MethodGet, "/organizations/enrich", map[string]interface{}{"domain": domain}, &out); err != nil {
		return nil, err
	}
	return out.Organization, nil
}

// BulkEnrichOrganizations enriches up to MaxBulkSize domains in one call.
func (c *Client) BulkEnrichOrganizations(ctx context.Context, domains []string) ([]Organization, error) {
	const endpoint = "/organizations/bulk_enrich"
	if len(domains) > MaxBulkSize {
		return nil, errs.NewBatchTooLargeError(endpoint, len(domains), MaxBulkSize)
	}
	if len(domains) == 0 {
		return nil, nil
	}

	var out struct {
		Organizations []Organization `json:"organizations"`
	}
	if err := c.call(ctx, http.MethodPost, endpoint, map[string]interface{}{"domains": domains}, &out); err != nil {
		return nil, err
	}
	return out.Organizations, nil
}
