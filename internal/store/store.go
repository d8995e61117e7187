package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"mail-extractor-go/internal/models"
)

// Store handles processed-message tracking and extraction logs
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db: db,
	}
}

// IsMessageProcessed checks if a message has already been answered
func (s *Store) IsMessageProcessed(messageID string) (bool, error) {
	var processed models.ProcessedMessage
	result := s.db.Where("message_id = ?", messageID).First(&processed)

	if result.Error == nil {
		return true, nil // Message has been processed
	}

	if result.Error == gorm.ErrRecordNotFound {
		return false, nil // Message has not been processed
	}

	return false, fmt.Errorf("database error checking processed message: %w", result.Error)
}

// MarkMessageAsProcessed marks a message as processed
func (s *Store) MarkMessageAsProcessed(messageID string) error {
	processed := models.ProcessedMessage{
		MessageID:   messageID,
		ProcessedAt: time.Now(),
	}

	result := s.db.Create(&processed)
	if result.Error != nil {
		return fmt.Errorf("failed to mark message as processed: %w", result.Error)
	}

	return nil
}

// CountProcessedMessages returns the number of processed messages
func (s *Store) CountProcessedMessages() (int64, error) {
	var count int64
	result := s.db.Model(&models.ProcessedMessage{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count processed messages: %w", result.Error)
	}
	return count, nil
}

// LogExtraction logs the outcome of one processed message
func (s *Store) LogExtraction(messageID, sender string, urlCount, emailCount int, status, errorMsg string) error {
	log := models.ExtractionLog{
		MessageID:  messageID,
		Sender:     sender,
		URLCount:   urlCount,
		EmailCount: emailCount,
		Status:     status,
		ErrorMsg:   errorMsg,
		CreatedAt:  time.Now(),
	}

	result := s.db.Create(&log)
	if result.Error != nil {
		return fmt.Errorf("failed to log extraction: %w", result.Error)
	}

	return nil
}

// GetLogs returns extraction logs with pagination, newest first
func (s *Store) GetLogs(offset, limit int) ([]models.ExtractionLog, int64, error) {
	var logs []models.ExtractionLog
	var total int64

	if err := s.db.Model(&models.ExtractionLog{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count logs: %w", err)
	}

	if err := s.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch logs: %w", err)
	}

	return logs, total, nil
}

// GetLog returns a single extraction log by ID
func (s *Store) GetLog(id uint) (*models.ExtractionLog, error) {
	var log models.ExtractionLog
	if err := s.db.First(&log, id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}
