package domain

import "time"

// Company statuses.
const (
	CompanyActive   = "ativa"
	CompanyInactive = "inativa"
)

// Company is one legal entity. Belongs to at most one Group.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	GroupID   string    `json:"group_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Group owns zero or more companies.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanyRequest is the create/update payload for a company.
type CompanyRequest struct {
	Name    string `json:"name"`
	Status  string `json:"status,omitempty"`
	GroupID string `json:"group_id,omitempty"`
}

// GroupRequest is the create/update payload for a group.
type GroupRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
