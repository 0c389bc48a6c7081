package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATE/DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// schema holds the DDL executed at startup.  The reservations table
// carries a generated occupancy column: 1 while the row occupies its
// slot, NULL once cancelled.  The unique key over
// (seat_id, slot_date, slot_hour, occupancy) is what makes double
// booking impossible at the storage layer — cancelled rows fall out of
// the index because NULL never collides, so a freed slot can be
// reclaimed while the cancelled history stays queryable for reports.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	    id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	    name          VARCHAR(255)  NOT NULL,
	    email         VARCHAR(255)  NOT NULL,
	    password_hash VARCHAR(255)  NOT NULL,
	    role          ENUM('INTERN','ADMIN') NOT NULL DEFAULT 'INTERN',
	    is_active     TINYINT(1)    NOT NULL DEFAULT 1,
	    created_at    DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
	    updated_at    DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	    UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS seats (
	    id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	    seat_number VARCHAR(32)  NOT NULL,
	    location    VARCHAR(255) NOT NULL DEFAULT '',
	    status      ENUM('available','unavailable') NOT NULL DEFAULT 'available',
	    created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
	    updated_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	    UNIQUE KEY uq_seats_number (seat_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
	    id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	    user_id    BIGINT UNSIGNED NOT NULL,
	    seat_id    BIGINT UNSIGNED NOT NULL,
	    slot_date  DATE            NOT NULL,
	    slot_hour  TINYINT UNSIGNED NOT NULL,
	    status     ENUM('active','assigned','cancelled') NOT NULL,
	    occupancy  TINYINT AS (IF(status = 'cancelled', NULL, 1)) STORED,
	    created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
	    updated_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	    UNIQUE KEY uq_seat_slot_occupancy (seat_id, slot_date, slot_hour, occupancy),
	    KEY ix_reservations_user_date (user_id, slot_date),
	    CONSTRAINT fk_reservations_user FOREIGN KEY (user_id) REFERENCES users (id),
	    CONSTRAINT fk_reservations_seat FOREIGN KEY (seat_id) REFERENCES seats (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
	    id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	    user_id    BIGINT UNSIGNED NOT NULL,
	    token_hash CHAR(64)        NOT NULL,
	    expires_at DATETIME        NOT NULL,
	    revoked_at DATETIME        NULL,
	    created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
	    UNIQUE KEY uq_refresh_tokens_hash (token_hash),
	    KEY ix_refresh_tokens_user (user_id),
	    CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables the application needs if they do not
// exist yet.  Statements are idempotent so repeated startups are safe.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
