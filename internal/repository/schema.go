package repository

import (
    "context"
    "database/sql"
    "fmt"
)

// schema creates the tables used by the repositories.  Statements are
// idempotent so Migrate can run on every start.
var schema = []string{
    `CREATE TABLE IF NOT EXISTS users (
        id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        name          VARCHAR(120)  NOT NULL,
        email         VARCHAR(255)  NOT NULL UNIQUE,
        password_hash VARCHAR(255)  NOT NULL,
        role          ENUM('admin','staff','customer') NOT NULL DEFAULT 'customer',
        wealth        DECIMAL(14,2) NOT NULL DEFAULT 0,
        is_vip        TINYINT(1)    NOT NULL DEFAULT 0,
        created_at    DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
    `CREATE TABLE IF NOT EXISTS rooms (
        id                    BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        room_number           VARCHAR(32)   NOT NULL UNIQUE,
        type                  VARCHAR(64)   NOT NULL,
        description           TEXT          NOT NULL,
        image                 VARCHAR(512)  NOT NULL DEFAULT '',
        status                ENUM('available','partially_booked','fully_booked','maintenance','occupied') NOT NULL DEFAULT 'available',
        price                 DECIMAL(10,2) NULL,
        base_price_per_person DECIMAL(10,2) NULL,
        is_shared             TINYINT(1)    NOT NULL DEFAULT 0,
        max_occupancy         INT           NOT NULL DEFAULT 1,
        current_occupancy     INT           NOT NULL DEFAULT 0,
        created_at            DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
        CHECK (current_occupancy >= 0 AND current_occupancy <= max_occupancy)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
    `CREATE TABLE IF NOT EXISTS facilities (
        id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        name       VARCHAR(120)  NOT NULL UNIQUE,
        kind       ENUM('conference_room','hall') NOT NULL,
        capacity   INT           NOT NULL,
        price      DECIMAL(10,2) NOT NULL,
        status     ENUM('available','maintenance') NOT NULL DEFAULT 'available',
        is_vip     TINYINT(1)    NOT NULL DEFAULT 0,
        amenities  TEXT          NULL,
        created_at DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
    `CREATE TABLE IF NOT EXISTS bookings (
        id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        user_id           BIGINT UNSIGNED NOT NULL,
        room_id           BIGINT UNSIGNED NULL,
        type              ENUM('room','facility') NOT NULL,
        total_amount      DECIMAL(12,2) NOT NULL,
        status            ENUM('pending','pending_approval','confirmed','checked_in','checked_out','cancelled','rejected') NOT NULL,
        customers         TEXT          NOT NULL,
        rejection_reason  VARCHAR(512)  NULL,
        check_in_date     DATETIME      NULL,
        check_out_date    DATETIME      NULL,
        guest_count       INT           NULL,
        is_shared_booking TINYINT(1)    NULL,
        facility_ids      TEXT          NULL,
        facility_name     VARCHAR(512)  NULL,
        title             VARCHAR(255)  NULL,
        occasion          VARCHAR(255)  NULL,
        number_of_people  INT           NULL,
        event_date        DATETIME      NULL,
        start_time        CHAR(5)       NULL,
        end_time          CHAR(5)       NULL,
        notes             TEXT          NULL,
        is_vip            TINYINT(1)    NULL,
        created_at        DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at        DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        KEY idx_bookings_user (user_id),
        KEY idx_bookings_queue (type, status, is_vip),
        CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
        CONSTRAINT fk_bookings_room FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE SET NULL
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema to db.
func Migrate(ctx context.Context, db *sql.DB) error {
    for _, stmt := range schema {
        if _, err := db.ExecContext(ctx, stmt); err != nil {
            return fmt.Errorf("migrate: %w", err)
        }
    }
    return nil
}
