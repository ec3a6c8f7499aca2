package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to dsn and checks the connection before returning.
func Open(ctx context.Context, dsn string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// NewRepositories wires every repository over one pool. now decides which
// rows are still live.
func NewRepositories(db *sql.DB, now ports.Clock) ports.Repositories {
	sessions := NewSessionRepository(db, now)
	adminSessions := NewAdminSessionRepository(db, now)
	registerRequests := NewRegisterRequestRepository(db, now)
	authCodes := NewAuthCodeRepository(db)
	accessTokens := NewAccessTokenRepository(db)

	return ports.Repositories{
		Users:            NewUserRepository(db),
		RegisterRequests: registerRequests,
		Sessions:         sessions,
		AuthCodes:        authCodes,
		AccessTokens:     accessTokens,
		Applications:     NewApplicationRepository(db),
		AdminUsers:       NewAdminUserRepository(db),
		AdminSessions:    adminSessions,
		Purgers: map[string]ports.ExpiredPurger{
			"session_tokens":        sessions,
			"admin_session_tokens":  adminSessions,
			"registration_requests": registerRequests,
			"authorization_codes":   authCodes,
			"access_tokens":         accessTokens,
		},
	}
}
