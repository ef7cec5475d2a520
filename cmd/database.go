package cmd

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/tandengan-portal/internal"
	sessionDatamodel "github.com/frahmantamala/tandengan-portal/internal/core/datamodel/session"
	"github.com/frahmantamala/tandengan-portal/internal/transport/rest"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// Database holds the session store connection. Postgres deployments also
// keep a sqlx handle on the pgx driver for health checks.
type Database struct {
	Gorm *gorm.DB
	SQL  *sqlx.DB
}

func (d *Database) Pinger() rest.Pinger {
	if d.SQL != nil {
		return d.SQL
	}
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return nil
	}
	return sqlDB
}

func (d *Database) Close() error {
	if d.SQL != nil {
		// gorm shares this pool
		return d.SQL.Close()
	}
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func openDatabase(cfg internal.DatabaseConfig, lg *slog.Logger) (*Database, error) {
	gormCfg := &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)}

	switch cfg.Driver {
	case driverSQLite:
		gdb, err := gorm.Open(sqlite.Open(cfg.Source), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// sqlite has no migration files; the schema comes from the models
		if err := gdb.AutoMigrate(&sessionDatamodel.Session{}, &sessionDatamodel.Notice{}); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		lg.Info("session store ready", "driver", driverSQLite)
		return &Database{Gorm: gdb}, nil

	case driverPostgres:
		sqlDB, err := initDB(cfg)
		if err != nil {
			return nil, err
		}
		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), gormCfg)
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to open gorm on postgres: %w", err)
		}
		lg.Info("session store ready", "driver", driverPostgres)
		return &Database{Gorm: gdb, SQL: sqlDB}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
