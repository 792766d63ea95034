package apollo

import "strings"

// Organization is the company record embedded in people results and returned
// by the organization endpoints.
type Organization struct {
	ID                 string   `json:"id,omitempty"`
	Name               string   `json:"name,omitempty"`
	WebsiteURL         string   `json:"website_url,omitempty"`
	PrimaryDomain      string   `json:"primary_domain,omitempty"`
	LinkedInURL        string   `json:"linkedin_url,omitempty"`
	Industry           string   `json:"industry,omitempty"`
	EstimatedEmployees int      `json:"estimated_num_employees,omitempty"`
	City               string   `json:"city,omitempty"`
	State              string   `json:"state,omitempty"`
	Country            string   `json:"country,omitempty"`
	Keywords           []string `json:"keywords,omitempty"`
}

// Person is a candidate as returned by search, and an enriched record when it
// comes back from a match call.
type Person struct {
	ID             string        `json:"id,omitempty"`
	FirstName      string        `json:"first_name,omitempty"`
	LastName       string        `json:"last_name,omitempty"`
	Name           string        `json:"name,omitempty"`
	Title          string        `json:"title,omitempty"`
	Headline       string        `json:"headline,omitempty"`
	Email          string        `json:"email,omitempty"`
	EmailStatus    string        `json:"email_status,omitempty"`
	PersonalEmails []string      `json:"personal_emails,omitempty"`
	LinkedInURL    string        `json:"linkedin_url,omitempty"`
	Seniority      string        `json:"seniority,omitempty"`
	City           string        `json:"city,omitempty"`
	State          string        `json:"state,omitempty"`
	Country        string        `json:"country,omitempty"`
	OrganizationID string        `json:"organization_id,omitempty"`
	Organization   *Organization `json:"organization,omitempty"`
}

// DisplayName is the label used when reporting a per-item failure.
func (p Person) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	if name := strings.TrimSpace(p.FirstName + " " + p.LastName); name != "" {
		return name
	}
	if p.Email != "" {
		return p.Email
	}
	if p.ID != "" {
		return p.ID
	}
	return "unknown"
}

// OrganizationName returns the embedded organization's name, if any.
func (p Person) OrganizationName() string {
	if p.Organization == nil {
		return ""
	}
	return p.Organization.Name
}

// Domain returns the embedded organization's primary domain, if any.
func (p Person) Domain() string {
	if p.Organization == nil {
		return ""
	}
	return p.Organization.PrimaryDomain
}

type Pagination struct {
	Page         int `json:"page"`
	PerPage      int `json:"per_page"`
	TotalEntries int `json:"total_entries"`
	TotalPages   int `json:"total_pages"`
}

type Breadcrumb struct {
	Label           string      `json:"label"`
	SignalFieldName string      `json:"signal_field_name"`
	Value           interface{} `json:"value"`
	DisplayName     string      `json:"display_name"`
}

type PeopleSearchResult struct {
	People      []Person     `json:"people"`
	Pagination  Pagination   `json:"pagination"`
	Breadcrumbs []Breadcrumb `json:"breadcrumbs"`
}

type CompanySearchResult struct {
	Organizations []Organization `json:"organizations"`
	Pagination    Pagination     `json:"pagination"`
	Breadcrumbs   []Breadcrumb   `json:"breadcrumbs"`
}

// MatchDetails identifies one person to enrich. At least one identifying
// field should be set; empty fields are not sent.
type MatchDetails struct {
	ID               string `json:"id,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Name             string `json:"name,omitempty"`
	Email            string `json:"email,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	Domain           string `json:"domain,omitempty"`
	LinkedInURL      string `json:"linkedin_url,omitempty"`
}

// MatchDetailsFor derives the lookup keys for a search candidate.
func MatchDetailsFor(p Person) MatchDetails {
	return MatchDetails{
		ID:               p.ID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Name:             p.Name,
		Email:            p.Email,
		OrganizationName: p.OrganizationName(),
		Domain:           p.Domain(),
		LinkedInURL:      p.LinkedInURL,
	}
}

func (d MatchDetails) params() map[string]interface{} {
	return compact(map[string]interface{}{
		"id":                d.ID,
		"first_name":        d.FirstName,
		"last_name":         d.LastName,
		"name":              d.Name,
		"email":             d.Email,
		"organization_name": d.OrganizationName,
		"domain":            d.Domain,
		"linkedin_url":      d.LinkedInURL,
	})
}

type BulkMatchOptions struct {
	RevealPersonalEmails bool
	RevealPhoneNumber    bool
}

// BulkMatchResult keeps the response's positional matches; an entry is nil
// when the corresponding detail was not matched.
type BulkMatchResult struct {
	Status                string    `json:"status"`
	Matches               []*Person `json:"matches"`
	UniqueEnrichedRecords int       `json:"unique_enriched_records"`
	MissingRecords        int       `json:"missing_records"`
}

// Matched returns the successful matches in request order.
func (r *BulkMatchResult) Matched() []Person {
	if r == nil {
		return nil
	}
	out := make([]Person, 0, len(r.Matches))
	for _, m := range r.Matches {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out
}

type Contact struct {
	ID               string   `json:"id"`
	FirstName        string   `json:"first_name,omitempty"`
	LastName         string   `json:"last_name,omitempty"`
	Name             string   `json:"name,omitempty"`
	Title            string   `json:"title,omitempty"`
	Email            string   `json:"email,omitempty"`
	OrganizationName string   `json:"organization_name,omitempty"`
	AccountID        string   `json:"account_id,omitempty"`
	LabelIDs         []string `json:"label_ids,omitempty"`
}

type ContactSearchResult struct {
	Contacts   []Contact  `json:"contacts"`
	Pagination Pagination `json:"pagination"`
}

type Account struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Domain      string `json:"domain,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	RawAddress  string `json:"raw_address,omitempty"`
}

type AccountSearchResult struct {
	Accounts   []Account  `json:"accounts"`
	Pagination Pagination `json:"pagination"`
}

type Sequence struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
	Archived    bool   `json:"archived"`
	NumSteps    int    `json:"num_steps"`
	CreatedAt   string `json:"created_at,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Permissions string `json:"permissions,omitempty"`
}

type SequenceSearchResult struct {
	Sequences  []Sequence `json:"emailer_campaigns"`
	Pagination Pagination `json:"pagination"`
}

type SequenceEnrollment struct {
	Contacts []Contact `json:"contacts"`
	Sequence Sequence  `json:"emailer_campaign"`
}

type Task struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id,omitempty"`
	ContactID  string   `json:"contact_id,omitempty"`
	Type       string   `json:"type,omitempty"`
	Priority   string   `json:"priority,omitempty"`
	Status     string   `json:"status,omitempty"`
	DueAt      string   `json:"due_at,omitempty"`
	Note       string   `json:"note,omitempty"`
	ContactIDs []string `json:"contact_ids,omitempty"`
}

type TaskSearchResult struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}
