// =============================================================================
// Missouri Lobbying Ledger - Store
// =============================================================================
//
// The Store is an explicit handle on the relational database. A run opens
// it, resets it (every table is dropped and recreated), loads into it and
// closes it; nothing in the module holds a global connection.
//
// DRIVERS:
//   sqlite   - a local file, the default
//   postgres - a server DSN
//
// =============================================================================

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ginjaninja78/missouri-lobbying/internal/config"
	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

// ErrNotFound is returned by strict lookups that miss.
var ErrNotFound = errors.New("not found")

// Store wraps the gorm handle.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects to the configured database.
func Open(cfg config.DatabaseConfig, log zerolog.Logger) (*Store, error) {
	gormLogger := gormlogger.Default
	if !cfg.LogSQL {
		gormLogger = gormLogger.LogMode(gormlogger.Silent)
	}
	gormCfg := &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.DSN); cfg.DSN != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// One writer; the pragmas below are per connection.
		sqlDB.SetMaxOpenConns(1)
		_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
		_, _ = sqlDB.Exec("PRAGMA synchronous = NORMAL;")
		_, _ = sqlDB.Exec("PRAGMA foreign_keys = ON;")
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Debug().Str("driver", cfg.Driver).Msg("database opened")
	return &Store{db: db, log: log}, nil
}

// DB exposes the gorm handle for read-only consumers such as the reporter.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates any missing tables without touching existing data.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Reset drops every table and recreates the schema from empty.
func (s *Store) Reset(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.Migrator().DropTable(models()...); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	s.log.Info().Msg("store reset")
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}

// Counts returns the number of rows per entity kind.
func (s *Store) Counts(ctx context.Context) (map[types.EntityKind]int64, error) {
	out := make(map[types.EntityKind]int64, len(types.EntityKinds))
	db := s.db.WithContext(ctx)
	for _, kind := range types.EntityKinds {
		var n int64
		if err := db.Model(modelFor(kind)).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", kind, err)
		}
		out[kind] = n
	}
	return out, nil
}

func modelFor(kind types.EntityKind) any {
	switch kind {
	case types.EntityLobbyist:
		return &Lobbyist{}
	case types.EntityLegislator:
		return &Legislator{}
	case types.EntityOrganization:
		return &Organization{}
	case types.EntityGroup:
		return &Group{}
	default:
		return &Expenditure{}
	}
}
