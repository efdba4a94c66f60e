package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
)

func GetMongoDB() *mongo.Database {
	return mongoDB
}

// ConnectMongoWithRetry connects to the POS database and sets the global handle.
// Unlike the report database the audit cannot start without it, so attempts are bounded
// by MONGO_CONNECT_ATTEMPTS (default 5) and the last error is returned.
func ConnectMongoWithRetry(ctx context.Context, s *Settings) (*mongo.Database, error) {
	if s == nil {
		return nil, errors.New("settings are nil")
	}
	if s.MongoURI == "" {
		return nil, errors.New("MONGO_URI is required")
	}

	clientOpts := options.Client().
		ApplyURI(s.MongoURI).
		SetMaxPoolSize(s.MongoMaxPool).
		SetServerSelectionTimeout(time.Duration(s.MongoSelectMs) * time.Millisecond).
		SetReadPreference(readpref.PrimaryPreferred())

	maxAttempts := intFromEnv("MONGO_CONNECT_ATTEMPTS", 5)
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := mongo.Connect(ctx, clientOpts)
		if err == nil {
			err = client.Ping(ctx, readpref.PrimaryPreferred())
			if err == nil {
				mongoClient = client
				mongoDB = client.Database(s.MongoDBName)
				log.Printf("connected to mongodb (attempt=%d db=%s)", attempt, s.MongoDBName)
				return mongoDB, nil
			}
			_ = client.Disconnect(ctx)
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect mongodb (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil, fmt.Errorf("connect mongodb after %d attempts: %w", maxAttempts, lastErr)
}

func DisconnectMongo(ctx context.Context) error {
	if mongoClient == nil {
		return nil
	}
	err := mongoClient.Disconnect(ctx)
	mongoClient = nil
	mongoDB = nil
	return err
}
