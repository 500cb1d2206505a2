package db

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/altegra/catalog-backend/internal/domain"
	"github.com/altegra/catalog-backend/internal/platform/envutil"
	"github.com/altegra/catalog-backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewPostgresService connects using the POSTGRES_* environment variables and
// returns a ready service. Connection failures are returned, not fatal, so the
// caller can retry until the database accepts connections.
func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := envutil.String("POSTGRES_HOST", "localhost")
	port := envutil.String("POSTGRES_PORT", "5432")
	user := envutil.String("POSTGRES_USER", "postgres")
	password := envutil.String("POSTGRES_PASSWORD", "")
	name := envutil.String("POSTGRES_NAME", "catalog")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	serviceLog.Info("connected to postgres", "host", host, "database", name)
	return &PostgresService{db: db, log: serviceLog}, nil
}

// AutoMigrateAll creates or updates the catalog tables.
func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("migrating catalog tables")
	if err := s.db.AutoMigrate(
		&domain.Category{},
		&domain.Sku{},
	); err != nil {
		s.log.Error("migration failed", "error", err)
		return fmt.Errorf("migrate catalog tables: %w", err)
	}
	return nil
}

// Ping verifies the underlying connection is alive.
func (s *PostgresService) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

// Close releases the connection pool.
func (s *PostgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
