package models

import (
	"time"

	"gorm.io/gorm"
)

// ProcessedMessage records a message that has already been answered, so a
// poll cycle never replies to the same message twice
type ProcessedMessage struct {
	ID          uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	MessageID   string         `json:"message_id" gorm:"type:varchar(255);not null;uniqueIndex"`
	ProcessedAt time.Time      `json:"processed_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for ProcessedMessage
func (ProcessedMessage) TableName() string {
	return "processed_messages"
}

// ExtractionLog represents a log entry for one processed message
type ExtractionLog struct {
	ID         uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	MessageID  string         `json:"message_id" gorm:"type:varchar(255);not null;index"`
	Sender     string         `json:"sender" gorm:"type:varchar(255)"`
	URLCount   int            `json:"url_count"`
	EmailCount int            `json:"email_count"`
	Status     string         `json:"status" gorm:"type:varchar(50);not null"` // success, failure, skipped
	ErrorMsg   string         `json:"error_msg" gorm:"type:text"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for ExtractionLog
func (ExtractionLog) TableName() string {
	return "extraction_logs"
}

// EmailMessage represents an email message structure
type EmailMessage struct {
	ID          string            `json:"id"`
	UID         uint32            `json:"uid,omitempty"`
	Subject     string            `json:"subject"`
	From        string            `json:"from"`
	To          []string          `json:"to"`
	CC          []string          `json:"cc"`
	BCC         []string          `json:"bcc"`
	Body        string            `json:"body"`
	HTMLBody    string            `json:"html_body"`
	Headers     map[string]string `json:"headers"`
	Raw         []byte            `json:"raw"`
	Attachments []Attachment      `json:"attachments"`
}

// Attachment represents an email attachment
type Attachment struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// ExtractRequest represents the request structure for ad-hoc extraction
type ExtractRequest struct {
	Text string `json:"text" binding:"required"`
}

// ExtractResponse represents the response structure for ad-hoc extraction
type ExtractResponse struct {
	URLs   []string `json:"urls"`
	Emails []string `json:"emails"`
}

// ExtractionLogResponse represents the response structure for extraction logs
type ExtractionLogResponse struct {
	ID         uint      `json:"id"`
	MessageID  string    `json:"message_id"`
	Sender     string    `json:"sender"`
	URLCount   int       `json:"url_count"`
	EmailCount int       `json:"email_count"`
	Status     string    `json:"status"`
	ErrorMsg   string    `json:"error_msg"`
	CreatedAt  time.Time `json:"created_at"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Gmail     string            `json:"gmail"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
