package datastore

import (
	"context"
	"fmt"
	"time"

	"facevote.io/infrastructure/config"
	"facevote.io/infrastructure/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

var (
	client *mongo.Client

	IdentityModel         *mongo.Collection
	RecognitionAuditModel *mongo.Collection
)

func ConnectToDatabase(cfg config.DatabaseConfig) error {
	if cfg.URL == "" {
		logger.Error("mongo url missing")
		return fmt.Errorf("mongo url missing")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.URL)
	clientOpts.SetMinPoolSize(5)
	clientOpts.SetMaxPoolSize(10)
	// Enrollment must be durable before it is reported as stored.
	journal := true
	clientOpts.SetWriteConcern(&writeconcern.WriteConcern{W: "majority", Journal: &journal})

	c, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Warning("an error occured while starting the database", logger.LoggerOptions{Key: "error", Data: err})
		return err
	}
	if err := c.Ping(ctx, nil); err != nil {
		logger.Warning("mongodb did not respond to ping", logger.LoggerOptions{Key: "error", Data: err})
		return err
	}
	client = c

	setUpIndexes(ctx, c.Database(cfg.Name))
	logger.Info("connected to mongodb successfully")
	return nil
}

// Set up the indexes for the database
func setUpIndexes(ctx context.Context, db *mongo.Database) {
	IdentityModel = db.Collection("Identities")
	IdentityModel.Indexes().CreateMany(ctx, []mongo.IndexModel{{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index(),
	}})

	RecognitionAuditModel = db.Collection("RecognitionAudits")
	RecognitionAuditModel.Indexes().CreateMany(ctx, []mongo.IndexModel{{
		Keys:    bson.D{{Key: "requestID", Value: 1}},
		Options: options.Index(),
	}, {
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index(),
	}})

	logger.Info("mongodb indexes set up successfully")
}

// UseDatabase points the collections at db. Used by integration tests that
// bring their own client.
func UseDatabase(ctx context.Context, db *mongo.Database) {
	setUpIndexes(ctx, db)
}

func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
