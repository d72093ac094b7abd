package feed

import (
	"database/sql"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cyclemap/stationmap/internal/config"
)

// DBManager handles the station database connection. Postgres is preferred;
// when it cannot be reached the manager falls back to SQLite so the feed
// keeps working offline.
type DBManager struct {
	DB              *gorm.DB
	SqlDB           *sql.DB
	IsValid         bool
	ShouldSaveLocal bool
	Logger          zerolog.Logger
	cfg             config.FeedConfig
}

// NewDBManager creates a database manager for the given feed configuration.
func NewDBManager(log zerolog.Logger, cfg config.FeedConfig) *DBManager {
	return &DBManager{
		IsValid:         false,
		ShouldSaveLocal: false,
		Logger:          log,
		cfg:             cfg,
	}
}

// Connect establishes a database connection, falling back to SQLite if
// Postgres fails.
func (m *DBManager) Connect() error {
	var err error

	m.DB, err = m.openPostgres()
	if err != nil {
		m.Logger.Error().Err(err).Msg("Failed to connect to Postgres DB, trying SQLite")
		m.ShouldSaveLocal = true
		m.DB, err = m.openSqlite(m.cfg.SQLitePath)
		if err != nil || m.DB == nil {
			m.IsValid = false
			return fmt.Errorf("failed to get local SQLite DB: %s", err)
		}
	}

	m.SqlDB, err = m.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %s", err)
	}

	err = m.SqlDB.Ping()
	if err != nil {
		m.Logger.Error().Err(err).Msg("Failed to validate connection, trying SQLite")
		m.ShouldSaveLocal = true
		m.DB, err = m.openSqlite(m.cfg.SQLitePath)
		if err != nil || m.DB == nil {
			m.IsValid = false
			return fmt.Errorf("failed to get local SQLite DB: %s", err)
		}
		m.IsValid = true
	} else {
		m.Logger.Info().Msg("Connected to station database")
		m.IsValid = true
	}

	if !m.ShouldSaveLocal {
		m.SqlDB.SetMaxOpenConns(10)
	}

	return nil
}

// ConnectLocal opens the SQLite database directly, bypassing Postgres.
func (m *DBManager) ConnectLocal() error {
	var err error
	m.ShouldSaveLocal = true
	m.DB, err = m.openSqlite(m.cfg.SQLitePath)
	if err != nil || m.DB == nil {
		m.IsValid = false
		return fmt.Errorf("failed to get local SQLite DB: %s", err)
	}

	m.SqlDB, err = m.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %s", err)
	}
	m.IsValid = true
	return nil
}

func (m *DBManager) openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		m.cfg.DB.Host,
		m.cfg.DB.Port,
		m.cfg.DB.Username,
		m.cfg.DB.Password,
		m.cfg.DB.Database,
	)

	m.Logger.Debug().Msgf("Connecting to Postgres DB at '%s:%s'", m.cfg.DB.Host, m.cfg.DB.Port)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// openSqlite opens a SQLite database. An empty path means in-memory, used by
// tests and the demo daemon.
func (m *DBManager) openSqlite(path string) (*gorm.DB, error) {
	target := path
	if target == "" {
		target = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(target), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		m.IsValid = false
		return nil, err
	}

	if path != "" {
		m.Logger.Info().Str("path", path).Msg("Using local SQLite DB")
	} else {
		m.Logger.Info().Msg("Using in-memory SQLite DB")
	}

	pragmas := []string{
		"PRAGMA user_version = 1;",
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %s", err)
		}
	}

	return db, nil
}

// Setup migrates the station schema.
func (m *DBManager) Setup() error {
	m.Logger.Info().Msg("Migrating station schema")
	if err := m.DB.AutoMigrate(&StationRecord{}); err != nil {
		m.IsValid = false
		return fmt.Errorf("failed to migrate schema: %s", err)
	}
	return nil
}

// Close closes the underlying sql connection.
func (m *DBManager) Close() error {
	if m.SqlDB != nil {
		return m.SqlDB.Close()
	}
	return nil
}
