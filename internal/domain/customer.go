package domain

import "time"

// Customer is one agency client. Active customers get draft reports seeded
// for each new period; inactive customers are skipped.
type Customer struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	OrgNumber    string     `json:"org_number,omitempty"`
	ContactName  string     `json:"contact_name,omitempty"`
	ContactEmail string     `json:"contact_email,omitempty"`
	Website      string     `json:"website,omitempty"`
	Active       bool       `json:"active"`
	Services     []string   `json:"services"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// UpdateCustomerRequest carries partial customer updates. Nil fields are left
// untouched.
type UpdateCustomerRequest struct {
	ID           string    `json:"id"`
	Name         *string   `json:"name,omitempty"`
	OrgNumber    *string   `json:"org_number,omitempty"`
	ContactName  *string   `json:"contact_name,omitempty"`
	ContactEmail *string   `json:"contact_email,omitempty"`
	Website      *string   `json:"website,omitempty"`
	Active       *bool     `json:"active,omitempty"`
	Services     *[]string `json:"services,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
}
