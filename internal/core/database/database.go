package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/client"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/document"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/leave"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/messaging"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/project"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/report"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/task"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/team"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/training"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/user"
	"github.com/frahmantamala/projecthub/internal/core/datamodel/worklog"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const DriverName = "pgx"

// Connect opens the pgx stdlib pool through sqlx and verifies it.
func Connect(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect(DriverName, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// NewGorm shares the sqlx pool with gorm so both run on the same connections.
func NewGorm(db *sqlx.DB, debug bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gdb, nil
}

// Models lists every table row struct, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&user.Permission{},
		&user.UserPermission{},
		&client.Client{},
		&project.Project{},
		&task.Task{},
		&team.Team{},
		&team.TeamMember{},
		&leave.Leave{},
		&worklog.WorkLog{},
		&training.Training{},
		&training.TrainingParticipant{},
		&report.Report{},
		&document.Document{},
		&messaging.Conversation{},
		&messaging.Participant{},
		&messaging.Message{},
	}
}

// IsUniqueViolation recognises duplicate-key errors from postgres and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
