package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"reader-hub/internal/data/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var bookCols = []string{
	"id", "title", "description", "images", "price", "discount",
	"publishing_date", "author_id", "publisher_id", "category_id",
	"status", "created_at", "updated_at",
	"author_name", "publisher_name", "category_name",
}

func TestBookWhere(t *testing.T) {
	status := entity.BookAvailable
	category := uuid.New()

	where, args := bookWhere(BookFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = bookWhere(BookFilter{Status: &status, CategoryID: &category, Title: " 50%_off "})
	assert.Equal(t, " WHERE b.status = $1 AND b.category_id = $2 AND b.title ILIKE $3", where)
	assert.Equal(t, []any{"available", category, `%50\%\_off%`}, args)
}

func TestBookRepositoryFindAll(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookRepository(mock, zap.NewNop())

	author := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.author_id = $1 ORDER BY b.created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs(author, 10, 0).
		WillReturnRows(pgxmock.NewRows(bookCols).AddRow(
			uuid.New(), "Go in Action", "A book", []string{"https://img/1.png"}, 40.0, 25.0,
			now, author, uuid.New(), uuid.New(),
			"available", now, now,
			"Ann Author", "Pub House", "Programming",
		))

	books, err := repo.FindAll(context.Background(), BookFilter{AuthorID: &author}, 10, 0)
	require.NoError(t, err)
	require.Len(t, books, 1)

	assert.Equal(t, "Go in Action", books[0].Title)
	assert.Equal(t, entity.BookAvailable, books[0].Status)
	assert.Equal(t, "Ann Author", books[0].AuthorName)
	assert.Equal(t, "Programming", books[0].CategoryName)
	assert.Equal(t, 30.0, books[0].DiscountedPrice())
}

func TestBookRepositoryFindByIDNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookRepository(mock, zap.NewNop())

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.id = $1")).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(bookCols))

	book, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, book)
}

func TestBookRepositoryCreateInvalidReference(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookRepository(mock, zap.NewNop())

	mock.ExpectExec("INSERT INTO books").
		WithArgs(anyArgs(13)...).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Create(context.Background(), &entity.Book{Base: entity.NewBase(time.Now()), Status: entity.BookUnpublished})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestBookRepositoryDelete(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookRepository(mock, zap.NewNop())

	id := uuid.New()
	mock.ExpectExec("DELETE FROM books").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM books").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrNotFound)
}

func TestCategoryRepositoryCreateDuplicate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewCategoryRepository(mock, zap.NewNop())

	mock.ExpectExec("INSERT INTO categories").
		WithArgs(anyArgs(7)...).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &entity.Category{Base: entity.NewBase(time.Now()), Name: "Fiction"})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestCategoryRepositoryFindAll(t *testing.T) {
	mock := newMockPool(t)
	repo := NewCategoryRepository(mock, zap.NewNop())

	now := time.Now()
	desc := "Made up stories"
	mock.ExpectQuery("FROM categories ORDER BY name").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "image", "appropriate", "created_at", "updated_at"}).
			AddRow(uuid.New(), "Fiction", &desc, "https://img/f.png", true, now, now).
			AddRow(uuid.New(), "Horror", (*string)(nil), "https://img/h.png", false, now, now))

	categories, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.NotNil(t, categories[0].Description)
	assert.Equal(t, desc, *categories[0].Description)
	assert.Nil(t, categories[1].Description)
	assert.False(t, categories[1].Appropriate)
}

func TestCategoryRepositoryDeleteReferenced(t *testing.T) {
	mock := newMockPool(t)
	repo := NewCategoryRepository(mock, zap.NewNop())

	id := uuid.New()
	mock.ExpectExec("DELETE FROM categories").
		WithArgs(id).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrStillReferenced)
}
