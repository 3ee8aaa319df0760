package mongo

import (
	"context"
	"errors"
	"time"

	"coachapp/internal/domain"
	"coachapp/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageCollectionName = "chat_messages"

// mongoMessageRepository implements repository.MessageRepository
type mongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new Message repository backed by MongoDB.
func NewMongoMessageRepository(db *mongo.Database) repository.MessageRepository {
	return &mongoMessageRepository{
		collection: db.Collection(messageCollectionName),
	}
}

// Create appends a new message. Messages always start unread.
func (r *mongoMessageRepository) Create(ctx context.Context, message *domain.Message) (primitive.ObjectID, error) {
	if message.SenderID == primitive.NilObjectID || message.ReceiverID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("message requires senderId and receiverId")
	}
	if message.Content == "" {
		return primitive.NilObjectID, errors.New("message content cannot be empty")
	}

	message.ID = primitive.NewObjectID()
	message.Read = false
	message.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, message)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted message ID")
	}
	return insertedID, nil
}

// GetByUserID returns all messages the user sent or received, oldest first.
func (r *mongoMessageRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Message, error) {
	var messages []domain.Message
	filter := bson.M{
		"$or": []bson.M{
			{"senderId": userID},
			{"receiverId": userID},
		},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkAllRead flips read=true on every message from senderID to viewerID in
// one UpdateMany. Running it twice is a no-op.
func (r *mongoMessageRepository) MarkAllRead(ctx context.Context, viewerID, senderID primitive.ObjectID) error {
	filter := bson.M{
		"senderId":   senderID,
		"receiverId": viewerID,
		"read":       false,
	}
	_, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	return err
}

// CountUnread counts messages addressed to userID that are still unread.
func (r *mongoMessageRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"receiverId": userID, "read": false})
}

// EnsureMessageIndexes creates necessary indexes. Call during startup.
func EnsureMessageIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "senderId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
		{
			// Serves both the unread count and the mark-as-read filter.
			Keys:    bson.D{{Key: "receiverId", Value: 1}, {Key: "read", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
