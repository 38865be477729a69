package dto

type CreateCompanyRequest struct {
	Name     string  `json:"name" validate:"required,min=2"`
	Code     string  `json:"code" validate:"required,min=2"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

type CompanyResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	ParentID *string `json:"parent_id,omitempty"`
}
