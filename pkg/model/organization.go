package model

// OrganizationPlan は組織の契約プラン。
type OrganizationPlan string

const (
	PlanFree       OrganizationPlan = "Free"
	PlanStartup    OrganizationPlan = "Startup"
	PlanEnterprise OrganizationPlan = "Enterprise"
)

// Organization は組織。
type Organization struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Logo        string           `json:"logo,omitempty"`
	Plan        OrganizationPlan `json:"plan"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
	MemberCount int              `json:"memberCount,omitempty"`
}

// CreateOrganizationRequest は組織作成リクエスト。
type CreateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
}

// UpdateOrganizationRequest は組織更新リクエスト。
type UpdateOrganizationRequest struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Logo        *string           `json:"logo,omitempty"`
	Plan        *OrganizationPlan `json:"plan,omitempty"`
}

// OrganizationListResponse は組織一覧。
type OrganizationListResponse struct {
	Organizations []Organization `json:"organizations"`
	Total         int            `json:"total"`
}
