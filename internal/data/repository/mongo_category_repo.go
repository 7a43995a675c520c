package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reader-hub/internal/data/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const categoriesCollection = "categories"

type categoryDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description *string   `bson:"description,omitempty"`
	Image       string    `bson:"image"`
	Appropriate bool      `bson:"appropriate"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func newCategoryDocument(c *entity.Category) *categoryDocument {
	return &categoryDocument{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
		Appropriate: c.Appropriate,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (d *categoryDocument) entity() (*entity.Category, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse category id %q: %w", d.ID, err)
	}
	return &entity.Category{
		Base:        entity.Base{ID: id, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Name:        d.Name,
		Description: d.Description,
		Image:       d.Image,
		Appropriate: d.Appropriate,
	}, nil
}

type mongoCategoryRepository struct {
	coll  *mongo.Collection
	books *mongo.Collection
	log   *zap.Logger
}

func NewMongoCategoryRepository(db *mongo.Database, log *zap.Logger) CategoryRepository {
	return &mongoCategoryRepository{
		coll:  db.Collection(categoriesCollection),
		books: db.Collection(booksCollection),
		log:   log.With(zap.String("repository", "mongo_category")),
	}
}

func (r *mongoCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	_, err := r.coll.InsertOne(ctx, newCategoryDocument(category))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateName
	}
	if err != nil {
		r.log.Error("Failed to create category", zap.Error(err), zap.String("name", category.Name))
		return fmt.Errorf("create category %s: %w", category.Name, err)
	}
	return nil
}

func (r *mongoCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var doc categoryDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find category", zap.Error(err), zap.String("category_id", id.String()))
		return nil, fmt.Errorf("find category %s: %w", id.String(), err)
	}
	return doc.entity()
}

func (r *mongoCategoryRepository) FindAll(ctx context.Context) ([]*entity.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.log.Error("Failed to find all categories", zap.Error(err))
		return nil, fmt.Errorf("find categories: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	categories := make([]*entity.Category, 0, len(docs))
	for i := range docs {
		category, err := docs[i].entity()
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (r *mongoCategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": category.ID.String()}, newCategoryDocument(category))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateName
	}
	if err != nil {
		r.log.Error("Failed to update category", zap.Error(err), zap.String("category_id", category.ID.String()))
		return fmt.Errorf("update category %s: %w", category.ID.String(), err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete refuses while books reference the category, matching the
// Postgres foreign key.
func (r *mongoCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	inUse, err := r.books.CountDocuments(ctx, bson.M{"category_id": id.String()}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count books of category %s: %w", id.String(), err)
	}
	if inUse > 0 {
		return ErrStillReferenced
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		r.log.Error("Failed to delete category", zap.Error(err), zap.String("category_id", id.String()))
		return fmt.Errorf("delete category %s: %w", id.String(), err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	r.log.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}
