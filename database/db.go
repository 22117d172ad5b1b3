package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bachnx23/trello-backup/internal/models"
)

// Store is the run manifest: a small sqlite database in the destination
// directory recording which boards have been archived and when. It exists
// for operators to query backup history; the backup itself never depends on
// it.
type Store struct {
	db *gorm.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening manifest database %s: %w", dbPath, err)
	}

	if err := db.AutoMigrate(&models.BoardBackup{}); err != nil {
		return nil, fmt.Errorf("migrating manifest database %s: %w", dbPath, err)
	}

	zap.L().Debug("Manifest database ready", zap.String("path", dbPath))

	return &Store{db: db}, nil
}

// RecordBackup upserts the manifest row for a freshly archived board.
func (s *Store) RecordBackup(board models.BoardSummary, jsonPath string, sizeBytes int64, attachmentCount int) error {
	now := time.Now()
	entry := models.BoardBackup{
		ID:              board.ID,
		Name:            board.Name,
		OrgName:         board.OrgName,
		JSONPath:        jsonPath,
		SizeBytes:       sizeBytes,
		AttachmentCount: attachmentCount,
		ArchivedAt:      now,
		LastSeenAt:      now,
	}
	if result := s.db.Save(&entry); result.Error != nil {
		return fmt.Errorf("recording backup of board %q: %w", board.Name, result.Error)
	}
	return nil
}

// TouchSeen marks a board whose backup file already existed on disk, so the
// manifest reflects that the board was still present in this run.
func (s *Store) TouchSeen(board models.BoardSummary, jsonPath string) error {
	result := s.db.Model(&models.BoardBackup{}).
		Where("id = ?", board.ID).
		Update("last_seen_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("updating manifest for board %q: %w", board.Name, result.Error)
	}
	if result.RowsAffected == 0 {
		// Archived by an earlier run before the manifest existed.
		entry := models.BoardBackup{
			ID:         board.ID,
			Name:       board.Name,
			OrgName:    board.OrgName,
			JSONPath:   jsonPath,
			LastSeenAt: time.Now(),
		}
		if result := s.db.Save(&entry); result.Error != nil {
			return fmt.Errorf("updating manifest for board %q: %w", board.Name, result.Error)
		}
	}
	return nil
}

// Backups returns the manifest rows, most recently archived first.
func (s *Store) Backups() ([]models.BoardBackup, error) {
	var entries []models.BoardBackup
	if result := s.db.Order("archived_at desc").Find(&entries); result.Error != nil {
		return nil, fmt.Errorf("listing manifest: %w", result.Error)
	}
	return entries, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
