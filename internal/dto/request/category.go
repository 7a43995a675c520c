package request

type CategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Image       string  `json:"image" validate:"required,url"`
	Appropriate *bool   `json:"appropriate,omitempty"`
}

// CategoryUpdateRequest only touches the fields that are present
type CategoryUpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Image       *string `json:"image,omitempty" validate:"omitempty,url"`
	Appropriate *bool   `json:"appropriate,omitempty"`
}
