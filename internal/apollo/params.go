package apollo

// Every request shape below lists all optional fields explicitly. A zero
// value means "omit from the payload", never "send empty".

type PeopleSearchFilters struct {
	PersonTitles          []string `json:"person_titles,omitempty" mapstructure:"person_titles"`
	IncludeSimilarTitles  *bool    `json:"include_similar_titles,omitempty" mapstructure:"include_similar_titles"`
	PersonLocations       []string `json:"person_locations,omitempty" mapstructure:"person_locations"`
	PersonSeniorities     []string `json:"person_seniorities,omitempty" mapstructure:"person_seniorities"`
	OrganizationLocations []string `json:"organization_locations,omitempty" mapstructure:"organization_locations"`
	OrganizationDomains   []string `json:"q_organization_domains_list,omitempty" mapstructure:"organization_domains"`
	EmployeeRanges        []string `json:"organization_num_employees_ranges,omitempty" mapstructure:"employee_ranges"`
	ContactEmailStatus    []string `json:"contact_email_status,omitempty" mapstructure:"contact_email_status"`
	Keywords              string   `json:"q_keywords,omitempty" mapstructure:"keywords"`
}

func (f PeopleSearchFilters) params() map[string]interface{} {
	p := compact(map[string]interface{}{
		"person_titles":                     f.PersonTitles,
		"person_locations":                  f.PersonLocations,
		"person_seniorities":                f.PersonSeniorities,
		"organization_locations":            f.OrganizationLocations,
		"q_organization_domains_list":       f.OrganizationDomains,
		"organization_num_employees_ranges": f.EmployeeRanges,
		"contact_email_status":              f.ContactEmailStatus,
		"q_keywords":                        f.Keywords,
	})
	if f.IncludeSimilarTitles != nil {
		p["include_similar_titles"] = *f.IncludeSimilarTitles
	}
	return p
}

type CompanySearchFilters struct {
	Name           string   `json:"q_organization_name,omitempty" mapstructure:"name"`
	Locations      []string `json:"organization_locations,omitempty" mapstructure:"locations"`
	Domains        []string `json:"q_organization_domains_list,omitempty" mapstructure:"domains"`
	KeywordTags    []string `json:"q_organization_keyword_tags,omitempty" mapstructure:"keyword_tags"`
	EmployeeRanges []string `json:"organization_num_employees_ranges,omitempty" mapstructure:"employee_ranges"`
}

func (f CompanySearchFilters) params() map[string]interface{} {
	return compact(map[string]interface{}{
		"q_organization_name":               f.Name,
		"organization_locations":            f.Locations,
		"q_organization_domains_list":       f.Domains,
		"q_organization_keyword_tags":       f.KeywordTags,
		"organization_num_employees_ranges": f.EmployeeRanges,
	})
}

// ContactInput creates or updates a contact. LabelNames is only sent when
// non-empty.
type ContactInput struct {
	FirstName        string
	LastName         string
	Title            string
	Email            string
	OrganizationName string
	AccountID        string
	WebsiteURL       string
	LinkedInURL      string
	Phone            string
	LabelNames       []string
}

// ContactInputFor maps a candidate to a contact record.
func ContactInputFor(p Person, labels []string) ContactInput {
	in := ContactInput{
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Title:            p.Title,
		Email:            p.Email,
		OrganizationName: p.OrganizationName(),
		LinkedInURL:      p.LinkedInURL,
		LabelNames:       labels,
	}
	if p.Organization != nil {
		in.WebsiteURL = p.Organization.WebsiteURL
	}
	return in
}

func (c ContactInput) params() map[string]interface{} {
	return compact(map[string]interface{}{
		"first_name":        c.FirstName,
		"last_name":         c.LastName,
		"title":             c.Title,
		"email":             c.Email,
		"organization_name": c.OrganizationName,
		"account_id":        c.AccountID,
		"website_url":       c.WebsiteURL,
		"linkedin_url":      c.LinkedInURL,
		"direct_phone":      c.Phone,
		"label_names":       c.LabelNames,
	})
}

type ContactSearch struct {
	Keywords  string
	LabelIDs  []string
	SortField string
	Page      int
	PerPage   int
}

func (s ContactSearch) params() map[string]interface{} {
	return compact(map[string]interface{}{
		"q_keywords":        s.Keywords,
		"contact_label_ids": s.LabelIDs,
		"sort_by_field":     s.SortField,
		"page":              s.Page,
		"per_page":          s.PerPage,
	})
}

type AccountInput struct {
	Name        string
	Domain      string
	PhoneNumber string
	RawAddress  string
}

func (a AccountInput) params() map[string]interface{} {
	return compact(map[string]interface{}{
		"name":         a.Name,
		"domain":       a.Domain,
		"phone_number": a.PhoneNumber,
		"raw_address":  a.RawAddress,
	})
}

type AccountSearch struct {
	OrganizationName string
	Page             int
	PerPage          int
}

func (s AccountSearch) params() map[string]interface{} {
	return compact(map[string]interface{}{
		"q_organization_name": s.OrganizationName,
		"page":                s.Page,
		"per_page":            s.PerPage,
	})
}

type TaskInput struct {
	UserID     string
	ContactIDs []string
	Type       string
	Priority   string
	Status     string
	DueAt      string
	Note       string
}

func (t TaskInput) params() map[string]interface{} {
	return compact(map[string]interface{}{
		"user_id":     t.UserID,
		"contact_ids": t.ContactIDs,
		"type":        t.Type,
		"priority":    t.Priority,
		"status":      t.Status,
		"due_at":      t.DueAt,
		"note":        t.Note,
	})
}

type TaskSearch struct {
	SortField       string
	OpenFactorNames []string
	Page            int
	PerPage         int
}

func (s TaskSearch) params() map[string]interface{} {
	return compact(map[string]interface{}{
		"sort_by_field":     s.SortField,
		"open_factor_names": s.OpenFactorNames,
		"page":              s.Page,
		"per_page":          s.PerPage,
	})
}

// compact drops zero-valued entries so optional fields are omitted.
func compact(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		switch x := v.(type) {
		case nil:
			continue
		case string:
			if x == "" {
				continue
			}
		case []string:
			if len(x) == 0 {
				continue
			}
		case int:
			if x == 0 {
				continue
			}
		}
		out[k] = v
	}
	return out
}
