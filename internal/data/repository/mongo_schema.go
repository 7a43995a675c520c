package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// namespaceExists is the server code returned by create for an existing collection
const namespaceExists = 48

// usersValidator mirrors the users collection migration. Ids are UUID strings.
func usersValidator() bson.M {
	nullable := func(t string) bson.A { return bson.A{t, "null"} }

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "email", "password", "role"},
			"properties": bson.M{
				"_id":      bson.M{"bsonType": "string"},
				"username": bson.M{"bsonType": "string"},
				"email": bson.M{
					"bsonType": "string",
					"pattern":  `^\S+@\S+\.\S+$`,
				},
				"password": bson.M{"bsonType": "string"},
				"role": bson.M{
					"bsonType": "string",
					"enum":     bson.A{"client", "author", "publisher", "admin"},
				},
				"phone_number": bson.M{"bsonType": nullable("string")},
				"status": bson.M{
					"bsonType": "string",
					"enum":     bson.A{"pending", "active", "inactive"},
				},
				"isVerified": bson.M{"bsonType": "bool"},
				"created_at": bson.M{"bsonType": "date"},
				"otp": bson.M{
					"bsonType": nullable("object"),
					"properties": bson.M{
						"code":              bson.M{"bsonType": nullable("string")},
						"expires_at":        bson.M{"bsonType": nullable("date")},
						"attempts_today":    bson.M{"bsonType": "int", "minimum": 0},
						"last_attempt_date": bson.M{"bsonType": nullable("date")},
					},
				},
			},
		},
	}
}

func usersIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_email_index"),
		},
		{
			Keys:    bson.D{{Key: "phone_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("unique_phone_index"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "phone_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("unique_email_phone_index"),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
			Options: options.Index().
				SetName("publisher_status_index").
				SetPartialFilterExpression(bson.M{"role": "publisher"}),
		},
	}
}

// EnsureMongoSchema creates the users validator and the indexes of all
// collections. It is safe to run on every start.
func EnsureMongoSchema(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	validator := usersValidator()

	err := db.CreateCollection(ctx, usersCollection, options.CreateCollection().SetValidator(validator))
	var cmdErr mongo.CommandError
	switch {
	case err == nil:
		log.Info("Created users collection")
	case errors.As(err, &cmdErr) && cmdErr.Code == namespaceExists:
		cmd := bson.D{{Key: "collMod", Value: usersCollection}, {Key: "validator", Value: validator}}
		if err := db.RunCommand(ctx, cmd).Err(); err != nil {
			return fmt.Errorf("update users validator: %w", err)
		}
	default:
		return fmt.Errorf("create users collection: %w", err)
	}

	indexes := map[string][]mongo.IndexModel{
		usersCollection: usersIndexes(),

		categoriesCollection: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("unique_category_name_index"),
			},
		},

		booksCollection: {
			{Keys: bson.D{{Key: "category_id", Value: 1}}, Options: options.Index().SetName("books_category_index")},
			{Keys: bson.D{{Key: "author_id", Value: 1}}, Options: options.Index().SetName("books_author_index")},
			{Keys: bson.D{{Key: "publisher_id", Value: 1}}, Options: options.Index().SetName("books_publisher_index")},
			{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("books_status_index")},
		},
	}

	for coll, models := range indexes {
		names, err := db.Collection(coll).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
		log.Debug("Indexes ensured", zap.String("collection", coll), zap.Strings("indexes", names))
	}

	return nil
}
