package repository

import (
	"database/sql"
	"fmt"
	"time"

	"Bt1QDL/logger"
	"Bt1QDL/model"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	CreateTrack(track *model.Track) (int64, error)
	GetTrackByID(id int64) (*model.Track, error)
	GetRecentTracks(limit int) ([]*model.Track, error)
}

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	DB *sql.DB
}

// NewMySQLTrackRepository creates a new instance of mysqlTrackRepository.
func NewMySQLTrackRepository(db *sql.DB) TrackRepository {
	return &mysqlTrackRepository{DB: db}
}

// CreateTrack adds a new track to the database.
func (r *mysqlTrackRepository) CreateTrack(track *model.Track) (int64, error) {
	query := `INSERT INTO tracks (title, artist, album, file_path, cover_art_path, duration, source_url, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateTrack: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	res, err := stmt.Exec(track.Title, track.Artist, track.Album, track.FilePath, track.CoverArtPath, track.Duration, track.SourceURL, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}
	logger.Info("track created",
		logger.Int64("trackId", id),
		logger.String("title", track.Title))
	return id, nil
}

// GetTrackByID retrieves a track by its ID.
func (r *mysqlTrackRepository) GetTrackByID(id int64) (*model.Track, error) {
	query := `SELECT id, title, artist, album, file_path, cover_art_path, duration, source_url, created_at, updated_at
	           FROM tracks WHERE id = ?`
	row := r.DB.QueryRow(query, id)

	track := &model.Track{}
	err := row.Scan(&track.ID, &track.Title, &track.Artist, &track.Album, &track.FilePath, &track.CoverArtPath, &track.Duration, &track.SourceURL, &track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // track not found
		}
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}
	return track, nil
}

// GetRecentTracks retrieves the most recently acquired tracks.
func (r *mysqlTrackRepository) GetRecentTracks(limit int) ([]*model.Track, error) {
	query := `SELECT id, title, artist, album, file_path, cover_art_path, duration, source_url, created_at, updated_at
	           FROM tracks ORDER BY created_at DESC LIMIT ?`
	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*model.Track
	for rows.Next() {
		track := &model.Track{}
		if err := rows.Scan(&track.ID, &track.Title, &track.Artist, &track.Album, &track.FilePath, &track.CoverArtPath, &track.Duration, &track.SourceURL, &track.CreatedAt, &track.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}
