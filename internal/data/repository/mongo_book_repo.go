package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"reader-hub/internal/data/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const booksCollection = "books"

type bookDocument struct {
	ID             string    `bson:"_id"`
	Title          string    `bson:"title"`
	Description    string    `bson:"description"`
	Images         []string  `bson:"images"`
	Price          float64   `bson:"price"`
	Discount       float64   `bson:"discount"`
	PublishingDate time.Time `bson:"publishing_date"`
	AuthorID       string    `bson:"author_id"`
	PublisherID    string    `bson:"publisher_id"`
	CategoryID     string    `bson:"category_id"`
	Status         string    `bson:"status"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func newBookDocument(b *entity.Book) *bookDocument {
	return &bookDocument{
		ID:             b.ID.String(),
		Title:          b.Title,
		Description:    b.Description,
		Images:         b.Images,
		Price:          b.Price,
		Discount:       b.Discount,
		PublishingDate: b.PublishingDate,
		AuthorID:       b.AuthorID.String(),
		PublisherID:    b.PublisherID.String(),
		CategoryID:     b.CategoryID.String(),
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func (d *bookDocument) entity() (*entity.BookDetail, error) {
	ids := make([]uuid.UUID, 4)
	for i, raw := range []string{d.ID, d.AuthorID, d.PublisherID, d.CategoryID} {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse book reference %q: %w", raw, err)
		}
		ids[i] = id
	}

	return &entity.BookDetail{
		Book: entity.Book{
			Base:           entity.Base{ID: ids[0], CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
			Title:          d.Title,
			Description:    d.Description,
			Images:         d.Images,
			Price:          d.Price,
			Discount:       d.Discount,
			PublishingDate: d.PublishingDate,
			AuthorID:       ids[1],
			PublisherID:    ids[2],
			CategoryID:     ids[3],
			Status:         entity.BookStatus(d.Status),
		},
	}, nil
}

type mongoBookRepository struct {
	coll       *mongo.Collection
	users      *mongo.Collection
	categories *mongo.Collection
	log        *zap.Logger
}

func NewMongoBookRepository(db *mongo.Database, log *zap.Logger) BookRepository {
	return &mongoBookRepository{
		coll:       db.Collection(booksCollection),
		users:      db.Collection(usersCollection),
		categories: db.Collection(categoriesCollection),
		log:        log.With(zap.String("repository", "mongo_book")),
	}
}

func (r *mongoBookRepository) Create(ctx context.Context, book *entity.Book) error {
	if _, err := r.coll.InsertOne(ctx, newBookDocument(book)); err != nil {
		r.log.Error("Failed to create book", zap.Error(err), zap.String("title", book.Title))
		return fmt.Errorf("create book %s: %w", book.Title, err)
	}
	return nil
}

func (r *mongoBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.BookDetail, error) {
	var doc bookDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find book", zap.Error(err), zap.String("book_id", id.String()))
		return nil, fmt.Errorf("find book %s: %w", id.String(), err)
	}

	book, err := doc.entity()
	if err != nil {
		return nil, err
	}
	if err := r.resolveNames(ctx, []*entity.BookDetail{book}); err != nil {
		return nil, err
	}
	return book, nil
}

func (r *mongoBookRepository) FindAll(ctx context.Context, filter BookFilter, limit, offset int) ([]*entity.BookDetail, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, mongoBookFilter(filter), opts)
	if err != nil {
		r.log.Error("Failed to find all books", zap.Error(err))
		return nil, fmt.Errorf("find books: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bookDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}

	books := make([]*entity.BookDetail, 0, len(docs))
	for i := range docs {
		book, err := docs[i].entity()
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	if err := r.resolveNames(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *mongoBookRepository) CountAll(ctx context.Context, filter BookFilter) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, mongoBookFilter(filter))
	if err != nil {
		r.log.Error("Failed to count books", zap.Error(err))
		return 0, fmt.Errorf("count books: %w", err)
	}
	return total, nil
}

func (r *mongoBookRepository) Update(ctx context.Context, book *entity.Book) error {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": book.ID.String()}, newBookDocument(book))
	if err != nil {
		r.log.Error("Failed to update book", zap.Error(err), zap.String("book_id", book.ID.String()))
		return fmt.Errorf("update book %s: %w", book.ID.String(), err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		r.log.Error("Failed to delete book", zap.Error(err), zap.String("book_id", id.String()))
		return fmt.Errorf("delete book %s: %w", id.String(), err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	r.log.Info("Book deleted", zap.String("book_id", id.String()))
	return nil
}

// resolveNames fills author, publisher and category names with one
// lookup per collection
func (r *mongoBookRepository) resolveNames(ctx context.Context, books []*entity.BookDetail) error {
	if len(books) == 0 {
		return nil
	}

	userIDs := map[string]struct{}{}
	categoryIDs := map[string]struct{}{}
	for _, b := range books {
		userIDs[b.AuthorID.String()] = struct{}{}
		userIDs[b.PublisherID.String()] = struct{}{}
		categoryIDs[b.CategoryID.String()] = struct{}{}
	}

	usernames, err := r.namesByID(ctx, r.users, keys(userIDs), "username")
	if err != nil {
		return fmt.Errorf("resolve book users: %w", err)
	}
	categoryNames, err := r.namesByID(ctx, r.categories, keys(categoryIDs), "name")
	if err != nil {
		return fmt.Errorf("resolve book categories: %w", err)
	}

	for _, b := range books {
		b.AuthorName = usernames[b.AuthorID.String()]
		b.PublisherName = usernames[b.PublisherID.String()]
		b.CategoryName = categoryNames[b.CategoryID.String()]
	}
	return nil
}

func (r *mongoBookRepository) namesByID(ctx context.Context, coll *mongo.Collection, ids []string, field string) (map[string]string, error) {
	opts := options.Find().SetProjection(bson.M{field: 1})
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	names := make(map[string]string, len(ids))
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		id, _ := doc["_id"].(string)
		name, _ := doc[field].(string)
		names[id] = name
	}
	return names, cursor.Err()
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func mongoBookFilter(filter BookFilter) bson.M {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	if filter.CategoryID != nil {
		query["category_id"] = filter.CategoryID.String()
	}
	if filter.AuthorID != nil {
		query["author_id"] = filter.AuthorID.String()
	}
	if filter.PublisherID != nil {
		query["publisher_id"] = filter.PublisherID.String()
	}
	if title := strings.TrimSpace(filter.Title); title != "" {
		query["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(title), Options: "i"}
	}
	return query
}
