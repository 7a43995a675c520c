package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type BookStatus string

const (
	BookAvailable   BookStatus = "available"
	BookOutOfStock  BookStatus = "out of stock"
	BookUnpublished BookStatus = "unpublished"
)

func (s BookStatus) Valid() bool {
	switch s {
	case BookAvailable, BookOutOfStock, BookUnpublished:
		return true
	}
	return false
}

type Book struct {
	Base
	Title          string     `db:"title"`
	Description    string     `db:"description"`
	Images         []string   `db:"images"`
	Price          float64    `db:"price"`
	Discount       float64    `db:"discount"`
	PublishingDate time.Time  `db:"publishing_date"`
	AuthorID       uuid.UUID  `db:"author_id"`
	PublisherID    uuid.UUID  `db:"publisher_id"`
	CategoryID     uuid.UUID  `db:"category_id"`
	Status         BookStatus `db:"status"`
}

// DiscountedPrice applies the percentage discount, rounded to cents.
func (b *Book) DiscountedPrice() float64 {
	price := b.Price * (1 - b.Discount/100)
	return math.Round(price*100) / 100
}

// BookDetail is a book with its references resolved to names.
type BookDetail struct {
	Book
	AuthorName    string `db:"author_name"`
	PublisherName string `db:"publisher_name"`
	CategoryName  string `db:"category_name"`
}
