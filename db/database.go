package db

import (
	"database/sql"
	"fmt"
	"log"

	"Bt1QDL/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database")
	return nil
}

// InitDB creates the tables the pipeline writes to if they do not exist.
func InitDB() error {
	createTracks := `
	CREATE TABLE IF NOT EXISTS tracks (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		artist VARCHAR(255),
		album VARCHAR(255),
		file_path VARCHAR(1024) NOT NULL,
		cover_art_path VARCHAR(1024),
		duration FLOAT DEFAULT 0,
		source_url VARCHAR(1024),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);`

	if _, err := DB.Exec(createTracks); err != nil {
		return fmt.Errorf("failed to create tracks table: %w", err)
	}

	log.Println("Database schema initialized")
	return nil
}
