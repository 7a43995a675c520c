package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reader-hub/internal/data/entity"
	"reader-hub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookRepository interface {
	Create(ctx context.Context, book *entity.Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.BookDetail, error)
	FindAll(ctx context.Context, filter BookFilter, limit, offset int) ([]*entity.BookDetail, error)
	CountAll(ctx context.Context, filter BookFilter) (int64, error)
	Update(ctx context.Context, book *entity.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BookFilter holds the optional listing filters. Title is a
// case-insensitive substring match.
type BookFilter struct {
	Status      *entity.BookStatus
	CategoryID  *uuid.UUID
	AuthorID    *uuid.UUID
	PublisherID *uuid.UUID
	Title       string
}

type bookRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookRepository(db database.PgxIface, log *zap.Logger) BookRepository {
	return &bookRepository{
		db:  db,
		log: log.With(zap.String("repository", "book")),
	}
}

const bookDetailSelect = `
		SELECT b.id, b.title, b.description, b.images, b.price, b.discount,
		       b.publishing_date, b.author_id, b.publisher_id, b.category_id,
		       b.status, b.created_at, b.updated_at,
		       a.username, p.username, c.name
		FROM books b
		JOIN users a ON a.id = b.author_id
		JOIN users p ON p.id = b.publisher_id
		JOIN categories c ON c.id = b.category_id`

func (r *bookRepository) Create(ctx context.Context, book *entity.Book) error {
	query := `
		INSERT INTO books (id, title, description, images, price, discount,
		                   publishing_date, author_id, publisher_id, category_id,
		                   status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Description,
		book.Images,
		book.Price,
		book.Discount,
		book.PublishingDate,
		book.AuthorID,
		book.PublisherID,
		book.CategoryID,
		string(book.Status),
		book.CreatedAt,
		book.UpdatedAt,
	)

	if isForeignKeyViolation(err) {
		return ErrInvalidReference
	}
	if err != nil {
		r.log.Error("Failed to create book",
			zap.Error(err),
			zap.String("title", book.Title),
		)
		return fmt.Errorf("create book %s: %w", book.Title, err)
	}

	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.BookDetail, error) {
	query := bookDetailSelect + ` WHERE b.id = $1`

	book, err := scanBookDetail(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find book by ID",
			zap.Error(err),
			zap.String("book_id", id.String()),
		)
		return nil, fmt.Errorf("find book %s: %w", id.String(), err)
	}

	return book, nil
}

func (r *bookRepository) FindAll(ctx context.Context, filter BookFilter, limit, offset int) ([]*entity.BookDetail, error) {
	where, args := bookWhere(filter)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(bookDetailSelect)
	queryBuilder.WriteString(where)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to find all books",
			zap.Error(err),
			zap.Int("offset", offset),
			zap.Int("limit", limit),
		)
		return nil, fmt.Errorf("find books: %w", err)
	}
	defer rows.Close()

	books := []*entity.BookDetail{}
	for rows.Next() {
		book, err := scanBookDetail(rows)
		if err != nil {
			r.log.Error("Failed to scan book row", zap.Error(err))
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate books rows: %w", err)
	}

	r.log.Debug("Books found",
		zap.Int("count", len(books)),
		zap.Int("offset", offset),
		zap.Int("limit", limit),
	)

	return books, nil
}

func (r *bookRepository) CountAll(ctx context.Context, filter BookFilter) (int64, error) {
	where, args := bookWhere(filter)
	query := `SELECT COUNT(*) FROM books b` + where

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count books", zap.Error(err))
		return 0, fmt.Errorf("count books: %w", err)
	}

	return total, nil
}

func (r *bookRepository) Update(ctx context.Context, book *entity.Book) error {
	query := `
		UPDATE books
		SET title = $2, description = $3, images = $4, price = $5, discount = $6,
		    publishing_date = $7, author_id = $8, publisher_id = $9,
		    category_id = $10, status = $11, updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Description,
		book.Images,
		book.Price,
		book.Discount,
		book.PublishingDate,
		book.AuthorID,
		book.PublisherID,
		book.CategoryID,
		string(book.Status),
		book.UpdatedAt,
	)

	if isForeignKeyViolation(err) {
		return ErrInvalidReference
	}
	if err != nil {
		r.log.Error("Failed to update book",
			zap.Error(err),
			zap.String("book_id", book.ID.String()),
		)
		return fmt.Errorf("update book %s: %w", book.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM books WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete book",
			zap.Error(err),
			zap.String("book_id", id.String()),
		)
		return fmt.Errorf("delete book %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.log.Info("Book deleted", zap.String("book_id", id.String()))
	return nil
}

// bookWhere builds the WHERE clause shared by FindAll and CountAll
func bookWhere(filter BookFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("b.status = $%d", string(*filter.Status))
	}
	if filter.CategoryID != nil {
		add("b.category_id = $%d", *filter.CategoryID)
	}
	if filter.AuthorID != nil {
		add("b.author_id = $%d", *filter.AuthorID)
	}
	if filter.PublisherID != nil {
		add("b.publisher_id = $%d", *filter.PublisherID)
	}
	if title := strings.TrimSpace(filter.Title); title != "" {
		add("b.title ILIKE $%d", "%"+escapeLike(title)+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanBookDetail(row pgx.Row) (*entity.BookDetail, error) {
	var (
		book   entity.BookDetail
		status string
	)

	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Description,
		&book.Images,
		&book.Price,
		&book.Discount,
		&book.PublishingDate,
		&book.AuthorID,
		&book.PublisherID,
		&book.CategoryID,
		&status,
		&book.CreatedAt,
		&book.UpdatedAt,
		&book.AuthorName,
		&book.PublisherName,
		&book.CategoryName,
	)
	if err != nil {
		return nil, err
	}

	book.Status = entity.BookStatus(status)
	return &book, nil
}
