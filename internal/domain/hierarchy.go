package domain

// AccountHierarchyRow is one denormalized leaf of the 3-level chart of
// accounts: one row per (level_1, level_2, analytical_account) triple,
// scoped either to a company or to a group.
type AccountHierarchyRow struct {
	Level1            string `json:"level_1"`
	Level2            string `json:"level_2"`
	AnalyticalAccount string `json:"analytical_account"`
	CompanyID         string `json:"company_id,omitempty"`
	GroupID           string `json:"group_id,omitempty"`
	Status            string `json:"status,omitempty"`
	Type              string `json:"type,omitempty"`
	Code              string `json:"code,omitempty"`
}

// AccountTree is the in-memory lookup built from hierarchy rows:
// level_1 → level_2 → ordered list of analytical accounts.
// Level1Order/Level2Order preserve the backend's ascending ordering,
// which Go maps would otherwise lose.
type AccountTree struct {
	Levels      map[string]map[string][]string `json:"levels"`
	Level1Order []string                       `json:"level_1_order"`
	Level2Order map[string][]string            `json:"level_2_order"`
}

// AccountPathSelection is one staged pick in the permission picker.
// Level2 and Analytical narrow the grant; empty means "everything under".
type AccountPathSelection struct {
	CompanyID  string `json:"company_id"`
	Level1     string `json:"level_1"`
	Level2     string `json:"level_2,omitempty"`
	Analytical string `json:"analytical,omitempty"`
}
