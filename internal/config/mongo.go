package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditCollection holds request audit events
const AuditCollection = "chat_audit"

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	err = prepare(ctx, client,
		func(ctx context.Context) error {
			if err := client.Ping(ctx, nil); err != nil {
				return fmt.Errorf("failed to ping MongoDB: %v", err)
			}
			return nil
		},
		func(ctx context.Context) error {
			if err := createIndexes(ctx, client, cfg.DBName); err != nil {
				return fmt.Errorf("failed to create indexes: %v", err)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return client, nil
}

type disconnecter interface {
	Disconnect(ctx context.Context) error
}

// prepare runs steps in order and disconnects client at the first failure
func prepare(ctx context.Context, client disconnecter, steps ...func(context.Context) error) error {
	for _, step := range steps {
		if err := step(ctx); err != nil {
			client.Disconnect(ctx)
			return err
		}
	}
	return nil
}

func createIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	auditCollection := client.Database(dbName).Collection(AuditCollection)
	auditIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "seq", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "request_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
	}
	_, err := auditCollection.Indexes().CreateMany(ctx, auditIndexes)
	return err
}
