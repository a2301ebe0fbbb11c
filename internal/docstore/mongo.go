package docstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mahotsav/backend/internal/xid"
)

// Mongo stores each collection's documents in a MongoDB collection of the
// same name, with the document id mirrored into _id.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(6 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Mongo{client: client, db: client.Database(database)}, nil
}

func (g *Mongo) Close(ctx context.Context) error {
	return g.client.Disconnect(ctx)
}

func (g *Mongo) Insert(ctx context.Context, collection string, doc any) (string, error) {
	fields, err := encodeDoc(doc)
	if err != nil {
		return "", err
	}
	id := xid.New(collection)
	fields["id"] = id
	fields["_id"] = id

	if _, err := g.db.Collection(collection).InsertOne(ctx, bson.M(fields)); err != nil {
		return "", err
	}
	return id, nil
}

func (g *Mongo) Get(ctx context.Context, collection, id string, out any) error {
	var fields bson.M
	err := g.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&fields)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	delete(fields, "_id")
	return decodeDoc(fields, out)
}

func (g *Mongo) List(ctx context.Context, collection string, out any) error {
	return g.find(ctx, collection, bson.M{}, out)
}

func (g *Mongo) Query(ctx context.Context, collection, field string, value any, out any) error {
	return g.find(ctx, collection, bson.M{field: value}, out)
}

func (g *Mongo) find(ctx context.Context, collection string, filter bson.M, out any) error {
	cursor, err := g.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return err
	}
	docs := make([]map[string]any, 0, len(raw))
	for _, fields := range raw {
		delete(fields, "_id")
		docs = append(docs, map[string]any(fields))
	}
	return decodeDocs(docs, out)
}

func (g *Mongo) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	set, err := encodeDoc(fields)
	if err != nil {
		return err
	}
	delete(set, "id")
	delete(set, "_id")

	res, err := g.db.Collection(collection).UpdateByID(ctx, id, bson.M{"$set": bson.M(set)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Mongo) Set(ctx context.Context, collection, id string, doc any) error {
	fields, err := encodeDoc(doc)
	if err != nil {
		return err
	}
	fields["id"] = id
	fields["_id"] = id

	_, err = g.db.Collection(collection).ReplaceOne(
		ctx,
		bson.M{"_id": id},
		bson.M(fields),
		options.Replace().SetUpsert(true),
	)
	return err
}

func (g *Mongo) Delete(ctx context.Context, collection, id string) error {
	res, err := g.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
