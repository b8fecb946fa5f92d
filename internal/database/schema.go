// Package database opens the MySQL connection and owns the schema:
// table creation is idempotent and runs at every startup, and an
// empty parking_bays table is seeded with the initial set of bays so
// a fresh deployment is immediately usable.
package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements are executed in order at startup.  Every statement
// is IF NOT EXISTS so reruns are no-ops on an existing database.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email          VARCHAR(255)    NOT NULL,
		password_hash  VARCHAR(255)    NOT NULL,
		full_name      VARCHAR(255)    NOT NULL,
		phone_number   VARCHAR(32)     NOT NULL,
		car_plate      VARCHAR(16)     NOT NULL DEFAULT '',
		loyalty_points BIGINT          NOT NULL DEFAULT 0,
		role           VARCHAR(16)     NOT NULL DEFAULT 'CUSTOMER',
		created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS parking_bays (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title       VARCHAR(255)    NOT NULL,
		latitude    DOUBLE          NOT NULL,
		longitude   DOUBLE          NOT NULL,
		price_cents BIGINT          NOT NULL,
		available   TINYINT(1)      NOT NULL DEFAULT 1,
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id        BIGINT UNSIGNED NOT NULL,
		parking_bay_id BIGINT UNSIGNED NOT NULL,
		start_time     DATETIME        NOT NULL,
		end_time       DATETIME        NOT NULL,
		status         VARCHAR(16)     NOT NULL DEFAULT 'active',
		car_plate      VARCHAR(16)     NOT NULL,
		created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_res_bay_time (parking_bay_id, start_time, end_time),
		KEY idx_res_user (user_id),
		KEY idx_res_plate (car_plate),
		CONSTRAINT fk_res_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_res_bay FOREIGN KEY (parking_bay_id) REFERENCES parking_bays (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id        BIGINT UNSIGNED NOT NULL,
		reservation_id BIGINT UNSIGNED NOT NULL,
		amount_cents   BIGINT          NOT NULL,
		payment_method VARCHAR(32)     NOT NULL,
		status         VARCHAR(16)     NOT NULL DEFAULT 'completed',
		created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_tx_reservation (reservation_id),
		CONSTRAINT fk_tx_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_tx_res FOREIGN KEY (reservation_id) REFERENCES reservations (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS admin_actions (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		admin_id       BIGINT UNSIGNED NOT NULL,
		action         VARCHAR(16)     NOT NULL,
		reservation_id BIGINT UNSIGNED NOT NULL,
		created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_action_reservation (reservation_id),
		CONSTRAINT fk_action_admin FOREIGN KEY (admin_id) REFERENCES users (id),
		CONSTRAINT fk_action_res FOREIGN KEY (reservation_id) REFERENCES reservations (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS slot_locks (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		parking_bay_id  BIGINT UNSIGNED NOT NULL,
		start_time      DATETIME        NOT NULL,
		end_time        DATETIME        NOT NULL,
		lock_expiration DATETIME        NOT NULL,
		created_at      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_lock_bay_time (parking_bay_id, start_time, end_time),
		CONSTRAINT fk_lock_bay FOREIGN KEY (parking_bay_id) REFERENCES parking_bays (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// seedBay is one row of the initial parking bay fixture.
type seedBay struct {
	title      string
	lat, lng   float64
	priceCents int64
}

// seedBays covers the central Harare parking locations the service
// launched with.  Prices are hourly, in cents.
var seedBays = []seedBay{
	{"Harare Gardens Parking", -17.8252, 31.0335, 200},
	{"Sam Nujoma Street Parking", -17.8187, 31.0442, 300},
	{"Eastgate Mall Parking", -17.8308, 31.0587, 400},
	{"Avondale Shopping Centre Parking", -17.7972, 31.0511, 200},
	{"Fife Avenue Shopping Centre Parking", -17.8134, 31.0394, 300},
	{"Joina City Parking", -17.8302, 31.0479, 500},
	{"Westgate Shopping Centre Parking", -17.7889, 31.0011, 200},
	{"Borrowdale Village Parking", -17.7232, 31.1075, 400},
	{"Arundel Village Parking", -17.7814, 31.0778, 300},
	{"Chisipite Shopping Centre Parking", -17.7667, 31.1167, 200},
	{"Belgravia Shopping Centre Parking", -17.8069, 31.0444, 300},
	{"Newlands Shopping Centre Parking", -17.7833, 31.0667, 200},
	{"Longcheng Plaza Parking", -17.8461, 31.0264, 400},
	{"Mbare Musika Parking", -17.8636, 31.0344, 100},
	{"Machipisa Shopping Centre Parking", -17.8833, 31.0167, 200},
	{"Highfield Shopping Centre Parking", -17.8667, 31.0333, 200},
	{"Mabelreign Shopping Centre Parking", -17.7833, 31.0000, 200},
	{"Marlborough Shopping Centre Parking", -17.7500, 31.0167, 300},
	{"Kamfinsa Shopping Centre Parking", -17.7833, 31.1000, 300},
	{"Greendale Shopping Centre Parking", -17.8000, 31.1167, 300},
}

// EnsureSchema creates all tables and seeds the parking bays when the
// table is empty.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return seedParkingBays(ctx, db)
}

func seedParkingBays(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_bays`).Scan(&count); err != nil {
		return fmt.Errorf("count parking bays: %w", err)
	}
	if count > 0 {
		return nil
	}
	const ins = `INSERT INTO parking_bays (title, latitude, longitude, price_cents, available) VALUES (?, ?, ?, ?, 1)`
	for _, b := range seedBays {
		if _, err := db.ExecContext(ctx, ins, b.title, b.lat, b.lng, b.priceCents); err != nil {
			return fmt.Errorf("seed parking bays: %w", err)
		}
	}
	return nil
}
