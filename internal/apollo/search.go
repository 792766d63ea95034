package apollo

import (
	"context"
	"net/http"
)

// SearchPeople runs one page of the people search. perPage is clamped to [1, 100].
func (c *Client) SearchPeople(ctx context.Context, filters PeopleSearchFilters, page, perPage int) (*PeopleSearchResult, error) {
	page, perPage = clampPage(page, perPage)
	payload := filters.params()
	payload["page"] = page
	payload["per_page"] = perPage

	var out PeopleSearchResult
	if err := c.call(ctx, http.MethodPost, "/mixed_people/search", payload, &out); err != nil {
		return nil, err
	}
	c.logger.Debug("People search completed", map[string]interface{}{
		"page":         page,
		"perPage":      perPage,
		"returned":     len(out.People),
		"totalEntries": out.Pagination.TotalEntries,
	})
	return &out, nil
}

func (c *Client) SearchCompanies(ctx context.Context, filters CompanySearchFilters, page, perPage int) (*CompanySearchResult, error) {
	page, perPage = clampPage(page, perPage)
	payload := filters.params()
	payload["page"] = page
	payload["per_page"] = perPage

	var out CompanySearchResult
	if err := c.call(ctx, http.MethodPost, "/mixed_companies/search", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
