package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/certdesk/certdesk/internal/config"
)

// Collection names.
const (
	Templates      = "templates"
	FieldMappings  = "field_mappings"
	FieldValues    = "field_values"
	Holders        = "certificate_holders"
	AgencySettings = "agency_settings"
	GeneratedCerts = "generated_certificates"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Open connects to the configured database. The returned func disconnects.
func Open(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Database, func(), error) {
	if cfg.URI == "" {
		return nil, nil, fmt.Errorf("mongo uri not configured")
	}
	client, err := ConnectMongo(ctx, cfg.URI, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
	return client.Database(cfg.Database), closeFn, nil
}
