package fetcher

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"
	"github.com/sirupsen/logrus"

	"mail-extractor-go/internal/config"
	"mail-extractor-go/internal/models"
)

// EmailFetcher interface for fetching emails. MarkProcessed flags a message
// as handled at the source (read/seen) so it stops being listed; callers
// invoke it only after the reply went out, which keeps failed messages
// visible for the next cycle.
type EmailFetcher interface {
	FetchNewEmails(ctx context.Context) ([]models.EmailMessage, error)
	MarkProcessed(ctx context.Context, email models.EmailMessage) error
	Close() error
}

// GmailAPIFetcher implements EmailFetcher using Gmail API
type GmailAPIFetcher struct {
	service   *gmail.Service
	userEmail string
}

// IMAPFetcher implements EmailFetcher using IMAP
type IMAPFetcher struct {
	client *client.Client
}

// NewGmailAPIFetcher creates a new Gmail API fetcher
func NewGmailAPIFetcher(cfg *config.GmailConfig) (*GmailAPIFetcher, error) {
	ctx := context.Background()

	// Create OAuth2 config; modify scope is needed to clear UNREAD after a
	// successful reply
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gmail.GmailModifyScope},
		Endpoint:     google.Endpoint,
	}

	// Create token source from refresh token
	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	}

	tokenSource := oauth2Config.TokenSource(ctx, token)

	// Create Gmail service
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &GmailAPIFetcher{
		service:   service,
		userEmail: cfg.UserEmail,
	}, nil
}

// NewIMAPFetcher creates a new IMAP fetcher
func NewIMAPFetcher(cfg *config.GmailConfig) (*IMAPFetcher, error) {
	// Connect to IMAP server
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", cfg.IMAPHost, cfg.IMAPPort), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	// Login
	if err := c.Login(cfg.IMAPUser, cfg.IMAPPassword); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	return &IMAPFetcher{client: c}, nil
}

// FetchNewEmails fetches unread emails using Gmail API. Listing by is:unread
// instead of a time window means a message whose reply failed is listed
// again next cycle rather than slipping past a moving cutoff.
func (f *GmailAPIFetcher) FetchNewEmails(ctx context.Context) ([]models.EmailMessage, error) {
	call := f.service.Users.Messages.List(f.userEmail).Q("is:unread")
	response, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	var emails []models.EmailMessage

	for _, msg := range response.Messages {
		// Get full message details
		message, err := f.service.Users.Messages.Get(f.userEmail, msg.Id).Format("full").Do()
		if err != nil {
			logrus.Warnf("Failed to get message %s: %v", msg.Id, err)
			continue
		}

		email, err := f.parseGmailMessage(message)
		if err != nil {
			logrus.Warnf("Failed to parse message %s: %v", msg.Id, err)
			continue
		}

		emails = append(emails, email)
	}

	return emails, nil
}

// MarkProcessed clears the UNREAD label so the message stops being listed
func (f *GmailAPIFetcher) MarkProcessed(ctx context.Context, email models.EmailMessage) error {
	req := &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}
	if _, err := f.service.Users.Messages.Modify(f.userEmail, email.ID, req).Do(); err != nil {
		return fmt.Errorf("failed to mark message %s as read: %w", email.ID, err)
	}
	return nil
}

// parseGmailMessage parses a Gmail API message into EmailMessage
func (f *GmailAPIFetcher) parseGmailMessage(msg *gmail.Message) (models.EmailMessage, error) {
	email := models.EmailMessage{
		ID:      msg.Id,
		Headers: make(map[string]string),
	}

	// Parse headers
	for _, header := range msg.Payload.Headers {
		email.Headers[header.Name] = header.Value

		switch header.Name {
		case "Subject":
			email.Subject = header.Value
		case "From":
			email.From = header.Value
		case "To":
			email.To = strings.Split(header.Value, ",")
		case "Cc":
			email.CC = strings.Split(header.Value, ",")
		}
	}

	// Parse body
	if err := f.parseGmailBody(msg.Payload, &email); err != nil {
		return email, err
	}

	return email, nil
}

// parseGmailBody recursively parses Gmail message body parts
func (f *GmailAPIFetcher) parseGmailBody(part *gmail.MessagePart, email *models.EmailMessage) error {
	if part.Body != nil && part.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return fmt.Errorf("failed to decode body data: %w", err)
		}

		content := string(data)

		switch part.MimeType {
		case "text/plain":
			email.Body = content
		case "text/html":
			email.HTMLBody = content
		}
	}

	// Handle multipart messages
	if part.Parts != nil {
		for _, subPart := range part.Parts {
			if err := f.parseGmailBody(subPart, email); err != nil {
				return err
			}
		}
	}

	return nil
}

// Close closes the Gmail API fetcher
func (f *GmailAPIFetcher) Close() error {
	// Gmail API service doesn't need explicit closing
	return nil
}

// fetchSection returns the body section to request and the matching fetch
// items. BODY.PEEK[] delivers the full raw body without setting \Seen, so a
// message stays listed until MarkProcessed flags it after a successful reply.
func fetchSection() (*imap.BodySectionName, []imap.FetchItem) {
	section := &imap.BodySectionName{Peek: true}
	return section, []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}
}

// FetchNewEmails fetches unread emails using IMAP
func (f *IMAPFetcher) FetchNewEmails(ctx context.Context) ([]models.EmailMessage, error) {
	// Select INBOX
	_, err := f.client.Select("INBOX", false)
	if err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	// Search for unseen messages; the \Seen flag survives restarts, so a
	// message is never picked up twice even after a reconnect
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	uids, err := f.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	if len(uids) == 0 {
		return []models.EmailMessage{}, nil
	}

	// Fetch messages
	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section, items := fetchSection()

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)

	go func() {
		done <- f.client.Fetch(seqset, items, messages)
	}()

	var emails []models.EmailMessage

	for msg := range messages {
		email, err := f.parseIMAPMessage(msg, section)
		if err != nil {
			logrus.Warnf("Failed to parse IMAP message: %v", err)
			continue
		}
		emails = append(emails, email)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	return emails, nil
}

// MarkProcessed sets the \Seen flag so the next UNSEEN search skips the message
func (f *IMAPFetcher) MarkProcessed(ctx context.Context, email models.EmailMessage) error {
	seqset := new(imap.SeqSet)
	seqset.AddNum(email.UID)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}

	if err := f.client.UidStore(seqset, item, flags, nil); err != nil {
		return fmt.Errorf("failed to mark message %s as seen: %w", email.ID, err)
	}
	return nil
}

// parseIMAPMessage parses an IMAP message into EmailMessage
func (f *IMAPFetcher) parseIMAPMessage(msg *imap.Message, section *imap.BodySectionName) (models.EmailMessage, error) {
	email := models.EmailMessage{
		ID:      fmt.Sprintf("imap-%d", msg.Uid),
		UID:     msg.Uid,
		Headers: make(map[string]string),
	}

	if msg.Envelope != nil {
		email.Subject = msg.Envelope.Subject
		if msg.Envelope.MessageId != "" {
			email.ID = msg.Envelope.MessageId
		}
		if msg.Envelope.From != nil && len(msg.Envelope.From) > 0 {
			email.From = msg.Envelope.From[0].Address()
		}
		if msg.Envelope.To != nil && len(msg.Envelope.To) > 0 {
			for _, addr := range msg.Envelope.To {
				email.To = append(email.To, addr.Address())
			}
		}
	}

	// Parse body
	if err := f.parseIMAPBody(msg, section, &email); err != nil {
		return email, err
	}

	return email, nil
}

// parseIMAPBody parses the raw body section requested by fetchSection
func (f *IMAPFetcher) parseIMAPBody(msg *imap.Message, section *imap.BodySectionName, email *models.EmailMessage) error {
	if msg.Body == nil {
		return nil
	}

	r := msg.GetBody(section)
	if r == nil {
		return fmt.Errorf("failed to get message body")
	}

	entity, err := message.Read(r)
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}

	// Parse multipart message
	if mr := entity.MultipartReader(); mr != nil {
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("failed to read part: %w", err)
			}

			content, err := io.ReadAll(p.Body)
			if err != nil {
				return fmt.Errorf("failed to read part body: %w", err)
			}

			contentType := p.Header.Get("Content-Type")
			if strings.Contains(contentType, "text/plain") {
				email.Body = string(content)
			} else if strings.Contains(contentType, "text/html") {
				email.HTMLBody = string(content)
			}
		}
	} else {
		// Single part message
		content, err := io.ReadAll(entity.Body)
		if err != nil {
			return fmt.Errorf("failed to read message body: %w", err)
		}

		contentType := entity.Header.Get("Content-Type")
		if strings.Contains(contentType, "text/plain") {
			email.Body = string(content)
		} else if strings.Contains(contentType, "text/html") {
			email.HTMLBody = string(content)
		}
	}

	return nil
}

// Close closes the IMAP fetcher
func (f *IMAPFetcher) Close() error {
	return f.client.Logout()
}
