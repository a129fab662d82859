package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    CHAR(36)        NOT NULL,
		token_hash CHAR(64)        NOT NULL UNIQUE,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id         CHAR(36)     NOT NULL PRIMARY KEY,
		name       VARCHAR(100) NOT NULL,
		email      VARCHAR(255) NOT NULL,
		phone      VARCHAR(32)  NULL,
		avatar_url VARCHAR(512) NULL,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_profile_user FOREIGN KEY (id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id CHAR(36)                    NOT NULL PRIMARY KEY,
		role    ENUM('customer','admin')    NOT NULL DEFAULT 'customer',
		CONSTRAINT fk_role_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id          CHAR(36)        NOT NULL PRIMARY KEY,
		name        VARCHAR(100)    NOT NULL,
		type        VARCHAR(32)     NOT NULL,
		capacity    INT             NOT NULL,
		price_cents BIGINT          NOT NULL,
		status      ENUM('available','occupied','maintenance') NOT NULL DEFAULT 'available',
		features    JSON            NOT NULL,
		description TEXT            NULL,
		image_url   VARCHAR(512)    NULL,
		created_by  CHAR(36)        NOT NULL,
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_rooms_status (status),
		CONSTRAINT chk_rooms_capacity CHECK (capacity >= 1),
		CONSTRAINT chk_rooms_price CHECK (price_cents >= 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id                CHAR(36)  NOT NULL PRIMARY KEY,
		user_id           CHAR(36)  NOT NULL,
		room_ids          JSON      NOT NULL,
		check_in          DATE      NOT NULL,
		check_out         DATE      NOT NULL,
		guests            INT       NOT NULL,
		total_price_cents BIGINT    NOT NULL,
		status            ENUM('pending','confirmed','cancelled','completed') NOT NULL DEFAULT 'pending',
		guest_data        JSON      NOT NULL,
		created_at        DATETIME  NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at        DATETIME  NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_reservations_user (user_id),
		KEY idx_reservations_status (status),
		CONSTRAINT fk_reservation_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT chk_reservation_dates CHECK (check_out > check_in),
		CONSTRAINT chk_reservation_guests CHECK (guests >= 1)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing table.  It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
