package response

import (
	"time"

	"reader-hub/internal/data/entity"
)

type RefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type BookResponse struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Images          []string    `json:"images"`
	Price           float64     `json:"price"`
	Discount        float64     `json:"discount"`
	DiscountedPrice float64     `json:"discounted_price"`
	PublishingDate  string      `json:"publishing_date"`
	Author          RefResponse `json:"author"`
	Publisher       RefResponse `json:"publisher"`
	Category        RefResponse `json:"category"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// BookListResponse is the GET /api/books payload
type BookListResponse struct {
	Books      []BookResponse `json:"books"`
	Pagination PaginationMeta `json:"pagination"`
}

const DateLayout = "2006-01-02"

func BookToResponse(b *entity.BookDetail) BookResponse {
	return BookResponse{
		ID:              b.ID.String(),
		Title:           b.Title,
		Description:     b.Description,
		Images:          b.Images,
		Price:           b.Price,
		Discount:        b.Discount,
		DiscountedPrice: b.DiscountedPrice(),
		PublishingDate:  b.PublishingDate.Format(DateLayout),
		Author:          RefResponse{ID: b.AuthorID.String(), Name: b.AuthorName},
		Publisher:       RefResponse{ID: b.PublisherID.String(), Name: b.PublisherName},
		Category:        RefResponse{ID: b.CategoryID.String(), Name: b.CategoryName},
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func BooksToResponse(books []*entity.BookDetail) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, BookToResponse(b))
	}
	return out
}
