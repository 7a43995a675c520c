package request

type BookRequest struct {
	Title          string   `json:"title" validate:"required,max=255"`
	Description    string   `json:"description" validate:"required"`
	Images         []string `json:"images" validate:"required,min=1,dive,required,url"`
	Price          *float64 `json:"price" validate:"required,gte=0"`
	Discount       *float64 `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	PublishingDate string   `json:"publishing_date" validate:"required,datetime=2006-01-02"`
	AuthorID       string   `json:"author_id" validate:"required,uuid"`
	PublisherID    string   `json:"publisher_id" validate:"required,uuid"`
	CategoryID     string   `json:"category_id" validate:"required,uuid"`
	Status         string   `json:"status,omitempty" validate:"omitempty,oneof=available 'out of stock' unpublished"`
}

type BookUpdateRequest struct {
	Title          *string  `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description    *string  `json:"description,omitempty" validate:"omitempty,min=1"`
	Images         []string `json:"images,omitempty" validate:"omitempty,min=1,dive,required,url"`
	Price          *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Discount       *float64 `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	PublishingDate *string  `json:"publishing_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AuthorID       *string  `json:"author_id,omitempty" validate:"omitempty,uuid"`
	PublisherID    *string  `json:"publisher_id,omitempty" validate:"omitempty,uuid"`
	CategoryID     *string  `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Status         *string  `json:"status,omitempty" validate:"omitempty,oneof=available 'out of stock' unpublished"`
}

// BookListRequest holds the query string of GET /api/books
type BookListRequest struct {
	PaginatedRequest
	Status      string `json:"status" validate:"omitempty,oneof=available 'out of stock' unpublished"`
	CategoryID  string `json:"category_id" validate:"omitempty,uuid"`
	AuthorID    string `json:"author_id" validate:"omitempty,uuid"`
	PublisherID string `json:"publisher_id" validate:"omitempty,uuid"`
	Title       string `json:"title" validate:"omitempty,max=255"`
}
