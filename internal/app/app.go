// Package app wires repositories, caches and services from configuration.
// Every backing store is optional: without MongoDB the memory repositories
// are used, without Redis named-insured lookups are not cached, and without
// MinIO template binaries live inline or on disk.
package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/certdesk/certdesk/internal/agency"
	"github.com/certdesk/certdesk/internal/certificate"
	"github.com/certdesk/certdesk/internal/config"
	"github.com/certdesk/certdesk/internal/database"
	"github.com/certdesk/certdesk/internal/fieldvalues"
	"github.com/certdesk/certdesk/internal/holders"
	"github.com/certdesk/certdesk/internal/mapping"
	"github.com/certdesk/certdesk/internal/namedinsured"
	"github.com/certdesk/certdesk/internal/storage"
	"github.com/certdesk/certdesk/internal/templates"
	"github.com/certdesk/certdesk/pkg/logger"
)

// App holds the wired services.
type App struct {
	Templates    *templates.Service
	Mappings     *mapping.Service
	Values       *fieldvalues.Service
	Holders      *holders.Service
	Agency       *agency.Service
	Certificates *certificate.Service

	Redis   *redis.Client
	Objects *storage.MinIOStorage
	Mongo   bool

	closers []func()
}

// Close releases connections opened by New.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type repos struct {
	templates templates.Repository
	mappings  mapping.Repository
	values    fieldvalues.Repository
	holders   holders.Repository
	agency    agency.Repository
	records   certificate.RecordRepository
}

func memoryRepos() repos {
	return repos{
		templates: templates.NewMemoryRepo(),
		mappings:  mapping.NewMemoryRepo(),
		values:    fieldvalues.NewMemoryRepo(),
		holders:   holders.NewMemoryRepo(),
		agency:    agency.NewMemoryRepo(),
		records:   certificate.NewMemoryRecords(),
	}
}

func mongoRepos(db *mongo.Database) repos {
	return repos{
		templates: templates.NewMongoRepo(db.Collection(database.Templates)),
		mappings:  mapping.NewMongoRepo(db.Collection(database.FieldMappings)),
		values:    fieldvalues.NewMongoRepo(db.Collection(database.FieldValues)),
		holders:   holders.NewMongoRepo(db.Collection(database.Holders)),
		agency:    agency.NewMongoRepo(db.Collection(database.AgencySettings)),
		records:   certificate.NewMongoRecords(db.Collection(database.GeneratedCerts)),
	}
}

// New connects the configured backends and builds the services.
func New(ctx context.Context, cfg *config.Config) *App {
	a := &App{}

	rp := memoryRepos()
	if cfg.MongoDB.URI != "" {
		if db, closeFn, err := connectMongo(ctx, cfg.MongoDB); err != nil {
			logger.Warnf("could not connect to MongoDB, using memory repositories: %v", err)
		} else {
			a.closers = append(a.closers, closeFn)
			a.Mongo = true
			rp = mongoRepos(db)
		}
	}

	if addr := cfg.Redis.Addr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			_ = client.Close()
		} else {
			logger.Infof("connected to Redis at %s", addr)
			a.Redis = client
			a.closers = append(a.closers, func() { _ = client.Close() })
		}
	}

	var objects templates.ObjectStore
	if cfg.MinIO.Endpoint != "" {
		s, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("object storage unavailable: %v", err)
		} else {
			a.Objects = s
			objects = s
		}
	}

	caps := templates.StorageCapabilities{InlineBlob: cfg.Templates.InlineBlob, ObjectStore: objects != nil}
	logger.Infof("template storage: inline=%v object_store=%v dir=%s", caps.InlineBlob, caps.ObjectStore, cfg.Templates.Dir)

	a.Templates = templates.NewService(rp.templates, objects, caps, cfg.Templates.Dir)
	a.Mappings = mapping.NewService(rp.mappings)
	a.Values = fieldvalues.NewService(rp.values)
	a.Holders = holders.NewService(rp.holders)
	a.Agency = agency.NewService(rp.agency)
	a.Certificates = certificate.NewService(certificate.Deps{
		Templates:    a.Templates,
		Mappings:     a.Mappings,
		Values:       a.Values,
		Holders:      a.Holders,
		Agency:       a.Agency,
		NamedInsured: namedInsuredSource(cfg.NamedInsured, a.Redis),
		Records:      rp.records,
		Objects:      objects,
	})
	return a
}

func namedInsuredSource(cfg config.NamedInsuredConfig, rdb *redis.Client) namedinsured.Source {
	if cfg.BaseURL == "" {
		logger.Infof("named insured lookups disabled (no NAMED_INSURED_BASE_URL)")
		return namedinsured.None{}
	}
	var src namedinsured.Source = namedinsured.NewClient(cfg.BaseURL, cfg.Token, cfg.Timeout)
	if rdb != nil {
		src = namedinsured.NewCached(src, rdb, "", cfg.CacheTTL)
	}
	return src
}

// connectMongo retries with backoff to tolerate startup races.
func connectMongo(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Database, func(), error) {
	const maxAttempts = 5
	backoff := time.Second
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var db *mongo.Database
		var closeFn func()
		db, closeFn, err = database.Open(ctx, cfg)
		if err == nil {
			return db, closeFn, nil
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, nil, err
}
