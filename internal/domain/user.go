package domain

import "time"

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Profile is an application user. PermissionPaths holds analytic-account
// path strings of the exact form "L1 > L2 > A"; CompanyAccessIDs holds the
// companies the user may see.
type Profile struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	Cargo            string    `json:"cargo,omitempty"`
	Aprovador        bool      `json:"aprovador"`
	Pacoteiro        bool      `json:"pacoteiro"`
	PermissionPaths  []string  `json:"permissoes_conta_ids"`
	CompanyAccessIDs []string  `json:"company_access_ids"`
	CreatedAt        time.Time `json:"created_at"`
}

// ProfileUpdateRequest carries the mutable profile fields. Pointer fields
// distinguish "unset" from zero values so partial updates work.
type ProfileUpdateRequest struct {
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	Role      *string   `json:"role,omitempty"`
	Cargo     *string   `json:"cargo,omitempty"`
	Aprovador *bool     `json:"aprovador,omitempty"`
	Pacoteiro *bool     `json:"pacoteiro,omitempty"`
	Companies *[]string `json:"company_access_ids,omitempty"`
}
