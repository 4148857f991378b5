package domain

import "time"

// Supplier is a vendor transactions can be attributed to.
type Supplier struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Document  string    `json:"document,omitempty"` // CNPJ/CPF
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CostCenter is an organizational unit transactions can be attributed to.
type CostCenter struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Collaborator is a person inside a company (not necessarily a system user).
type Collaborator struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Cargo     string    `json:"cargo,omitempty"` // job title
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
