package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection       = "users"
	ChatHistoryCollection = "chat_history"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d userDocument) toUser() *User {
	return &User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	chats  *mongo.Collection
}

// ConnectMongo dials uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second).
		SetConnectTimeout(20 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// NewMongoStore uses dbName on an already connected client and makes sure
// usernames are unique.
func NewMongoStore(ctx context.Context, client *mongo.Client, dbName string) (*MongoStore, error) {
	db := client.Database(dbName)
	s := &MongoStore{
		client: client,
		users:  db.Collection(UsersCollection),
		chats:  db.Collection(ChatHistoryCollection),
	}

	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.chats, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return nil, fmt.Errorf("failed to create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return s, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return doc.toUser(), nil
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toUser(), nil
}

// AppendExchange pushes ex onto the user's messages array in a single
// upsert so concurrent appends are applied by the server one at a time.
// The upsert seeds user_id from the filter.
func (s *MongoStore) AppendExchange(ctx context.Context, userID string, ex Exchange) error {
	if ex.Timestamp.IsZero() {
		ex.Timestamp = time.Now().UTC()
	}

	filter := bson.M{"user_id": userID}
	update := bson.M{"$push": bson.M{"messages": ex}}

	_, err := s.chats.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to append exchange: %w", err)
	}
	return nil
}

func (s *MongoStore) GetTranscript(ctx context.Context, userID string) (*Transcript, error) {
	var transcript Transcript
	err := s.chats.FindOne(ctx, bson.M{"user_id": userID}).Decode(&transcript)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find chat history: %w", err)
	}
	if transcript.Messages == nil {
		transcript.Messages = []Exchange{}
	}
	return &transcript, nil
}
