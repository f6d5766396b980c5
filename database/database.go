package database

import (
	"coursehub/config"
	"coursehub/logger"
	"coursehub/models"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the configured database, migrates it and stores the handle globally.
func ConnectDb() {
	db, err := Open(config.AppConfig)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("driver", config.AppConfig.DBDriver), zap.Error(err))
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get database instance", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	logger.Info("Running Migrations...")
	if err := Migrate(db); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	logger.Info("Migrations completed successfully.")

	Database = DbInstance{Db: db}
}

// Open builds a gorm handle for cfg.DBDriver (postgres, mysql or sqlite).
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(dialector, gormConfig(cfg.IsProduction(), translatesErrors(cfg.DBDriver)))
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres", "postgresql", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
		)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBName), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// translatesErrors is false for Postgres so that unique violations keep the
// *pgconn.PgError and its constraint name. Translation would reduce them to
// gorm.ErrDuplicatedKey.
func translatesErrors(driver string) bool {
	switch driver {
	case "postgres", "postgresql", "":
		return false
	}
	return true
}

// Registrations reference courses loosely: a deleted course leaves its
// registrations in place, so no foreign keys are created.
func gormConfig(quiet, translate bool) *gorm.Config {
	level := gormlogger.Warn
	if quiet {
		level = gormlogger.Error
	}
	return &gorm.Config{
		TranslateError:                           translate,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(level),
		NowFunc:                                  utcNow,
	}
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Admin{},
		&models.Participant{},
		&models.ParticipantCourse{},
		&models.Course{},
		&models.Registration{},
	)
}

func utcNow() time.Time { return time.Now().UTC() }
