package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"mail-extractor-go/internal/config"
	"mail-extractor-go/internal/extractor"
	"mail-extractor-go/internal/fetcher"
	"mail-extractor-go/internal/metrics"
	"mail-extractor-go/internal/models"
	"mail-extractor-go/internal/replier"
)

// ReportSender sends an extraction report back to a message's sender
type ReportSender interface {
	SendReport(ctx context.Context, original models.EmailMessage, result extractor.Result) error
}

// MessageStore tracks answered messages and extraction outcomes
type MessageStore interface {
	IsMessageProcessed(messageID string) (bool, error)
	MarkMessageAsProcessed(messageID string) error
	CountProcessedMessages() (int64, error)
	LogExtraction(messageID, sender string, urlCount, emailCount int, status, errorMsg string) error
}

// Scheduler manages the periodic mailbox processing
type Scheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.SchedulerConfig
	fetcher   fetcher.EmailFetcher
	store     MessageStore
	sender    ReportSender
	metrics   *metrics.Metrics
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.SchedulerConfig, fetcher fetcher.EmailFetcher, store MessageStore, sender ReportSender, metrics *metrics.Metrics) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		config:  cfg,
		fetcher: fetcher,
		store:   store,
		sender:  sender,
		metrics: metrics,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	// A previous Stop cancelled the context; restore it
	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}

	// Schedule the job to run every N minutes
	schedule := fmt.Sprintf("0 */%d * * * *", s.config.IntervalMinutes)

	entryID, err := s.cron.AddFunc(schedule, s.processMailbox)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started with interval: %d minutes", s.config.IntervalMinutes)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	// Cancel context to stop any running operations
	s.cancel()

	// Stop the cron scheduler
	ctx := s.cron.Stop()

	// Wait for all jobs to complete
	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}

	s.cron.Remove(s.entryID)
	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// processMailbox is the main processing function that runs periodically
func (s *Scheduler) processMailbox() {
	s.wg.Add(1)
	defer s.wg.Done()

	logrus.Info("Starting mailbox processing cycle")

	startTime := time.Now()

	// Increment pull count metric
	s.metrics.PullCount.Inc()

	// Fetch new emails
	emails, err := s.fetcher.FetchNewEmails(s.ctx)
	if err != nil {
		logrus.Errorf("Failed to fetch emails: %v", err)
		return
	}

	logrus.Infof("Fetched %d new emails", len(emails))

	// Process each email
	for _, email := range emails {
		if err := s.processMessage(email); err != nil {
			logrus.Errorf("Failed to process message %s: %v", email.ID, err)
		}
	}

	duration := time.Since(startTime)
	s.metrics.ProcessingTime.Observe(duration.Seconds())

	if count, err := s.store.CountProcessedMessages(); err == nil {
		s.metrics.ProcessedMessages.Set(float64(count))
	}

	logrus.Infof("Mailbox processing cycle completed in %v", duration)
}

// processMessage extracts URLs and email addresses from a single message and
// replies to its sender
func (s *Scheduler) processMessage(email models.EmailMessage) error {
	// Check if context is cancelled
	select {
	case <-s.ctx.Done():
		return fmt.Errorf("context cancelled")
	default:
	}

	// Check if message has already been answered
	processed, err := s.store.IsMessageProcessed(email.ID)
	if err != nil {
		return fmt.Errorf("failed to check if message is processed: %w", err)
	}

	if processed {
		logrus.Debugf("Message %s already processed, skipping", email.ID)
		return nil
	}

	sender := replier.SenderAddress(email.From)
	text := inputText(email)

	// Nothing to extract from or nobody to answer: record and move on
	if text == "" || sender == "" {
		reason := "No text found in message body or subject"
		if sender == "" {
			reason = "No sender address on message"
		}
		s.store.LogExtraction(email.ID, sender, 0, 0, "skipped", reason)
		s.store.MarkMessageAsProcessed(email.ID)
		return nil
	}

	result := extractor.Extract(text)
	s.metrics.URLsExtracted.Add(float64(len(result.URLs)))
	s.metrics.EmailsExtracted.Add(float64(len(result.Emails)))

	logrus.Infof("Message %s: extracted %d URLs and %d email addresses", email.ID, len(result.URLs), len(result.Emails))

	// Send the report back to the sender
	if err := s.sender.SendReport(s.ctx, email, result); err != nil {
		// Leave the message unprocessed so the next cycle retries it
		s.store.LogExtraction(email.ID, sender, len(result.URLs), len(result.Emails), "failure", err.Error())
		s.metrics.ReplyFailures.Inc()
		return fmt.Errorf("failed to send report: %w", err)
	}

	// Mark message as processed, both at the source (read/seen, so it stops
	// being listed) and in the store
	if err := s.fetcher.MarkProcessed(s.ctx, email); err != nil {
		logrus.Warnf("Failed to mark message %s processed at source: %v", email.ID, err)
	}
	if err := s.store.MarkMessageAsProcessed(email.ID); err != nil {
		logrus.Errorf("Failed to mark message as processed: %v", err)
	}

	s.store.LogExtraction(email.ID, sender, len(result.URLs), len(result.Emails), "success", "")
	s.metrics.ReplySuccesses.Inc()

	return nil
}

// inputText picks the text to scan: the message body when it has one,
// the subject line otherwise. HTML-only messages are flattened first.
func inputText(email models.EmailMessage) string {
	text := strings.TrimSpace(email.Body)
	if text == "" && email.HTMLBody != "" {
		text = strings.TrimSpace(replier.HTMLToPlainText(email.HTMLBody))
	}
	if text == "" {
		text = strings.TrimSpace(email.Subject)
	}
	return text
}

// RunOnce runs the mailbox processing once (for manual triggering). It works
// whether or not the scheduler is running; after a Stop the cancelled context
// is restored first.
func (s *Scheduler) RunOnce() error {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}
	s.mu.Unlock()

	logrus.Info("Running mailbox processing once")
	s.processMailbox()
	return nil
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}

	entry := s.cron.Entry(s.entryID)
	return entry.Next
}

// GetLastRun returns the time of the last run
func (s *Scheduler) GetLastRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}

	entry := s.cron.Entry(s.entryID)
	return entry.Prev
}

// Wait waits for the scheduler to stop
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
