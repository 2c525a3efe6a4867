// Package storage persists reports, their update logs, upvotes and profiles in PostgreSQL,
// and keeps short-lived view markers in Redis.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/config"
	"citizenpulse/backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ReportFilter narrows report listings. Zero values mean "no filter".
type ReportFilter struct {
	Status models.ReportStatus
	Search string
	Limit  int
	Offset int
}

// ProfileFilter narrows profile listings.
type ProfileFilter struct {
	Role   models.UserRole
	Search string
	Limit  int
	Offset int
}

// Storage is the persistence contract consumed by the domain services.
type Storage interface {
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	GetReportByNumber(ctx context.Context, number string) (*models.Report, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error)
	CountReports(ctx context.Context, statuses ...models.ReportStatus) (int64, error)

	AppendUpdate(ctx context.Context, update *models.ReportUpdate) error
	ApplyStatusChange(ctx context.Context, update *models.ReportUpdate) error
	SetPriority(ctx context.Context, reportID string, priority models.ReportPriority) error
	ListUpdates(ctx context.Context, reportID string) ([]models.ReportUpdate, error)

	ToggleUpvote(ctx context.Context, reportID, userID string) (upvoted bool, count int, err error)
	HasUpvoted(ctx context.Context, reportID, userID string) (bool, error)
	UpvotedReportIDs(ctx context.Context, userID string, reportIDs []string) (map[string]bool, error)

	MarkViewed(ctx context.Context, sessionID, reportID string, ttl time.Duration) (bool, error)
	IncrementViews(ctx context.Context, reportID string) error

	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	UpdateProfileRole(ctx context.Context, id string, role models.UserRole) error
	ListProfiles(ctx context.Context, filter ProfileFilter) ([]models.Profile, int64, error)
}

// Service implements Storage on top of GORM and Redis. Redis may be nil, in which case
// view de-duplication is skipped.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

var _ Storage = (*Service)(nil)

// Open connects to PostgreSQL and applies the pool settings.
// Driver errors are translated so unique violations surface as gorm.ErrDuplicatedKey.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// OpenRedis connects to Redis and checks the connection.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return rdb, nil
}

// Migrate creates the tables and the report number sequence.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.Exec("CREATE SEQUENCE IF NOT EXISTS " + config.ReportNumberSequence).Error; err != nil {
		return fmt.Errorf("failed to create report number sequence: %w", err)
	}
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Report{},
		&models.ReportUpdate{},
		&models.ReportUpvote{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// translate maps driver errors onto the apperr taxonomy and wraps the rest.
func translate(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.ErrConflict
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrConflict):
		return err
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}

// validID reports whether id can be compared against a uuid column. Anything else
// cannot match a row and is treated as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps a user search term for ILIKE, escaping its wildcards.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}
