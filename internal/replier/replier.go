package replier

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/sirupsen/logrus"

	"mail-extractor-go/internal/config"
	"mail-extractor-go/internal/extractor"
	"mail-extractor-go/internal/models"
)

// addrPattern pulls the bare address out of a "Name <addr>" From header
var addrPattern = regexp.MustCompile(`<(.*?)>`)

// Replier sends extraction reports back to the original sender via Gmail API
type Replier struct {
	service       *gmail.Service
	userEmail     string
	subjectPrefix string
	maxRetries    int
}

// NewReplier creates a new replier
func NewReplier(cfg *config.GmailConfig, reply *config.ReplyConfig, maxRetries int) (*Replier, error) {
	ctx := context.Background()

	// Create OAuth2 config
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gmail.GmailSendScope},
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

	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Replier{
		service:       service,
		userEmail:     cfg.UserEmail,
		subjectPrefix: reply.SubjectPrefix,
		maxRetries:    maxRetries,
	}, nil
}

// SendReport sends the extraction result for original back to its sender
func (r *Replier) SendReport(ctx context.Context, original models.EmailMessage, result extractor.Result) error {
	target := SenderAddress(original.From)
	if target == "" {
		return fmt.Errorf("message %s has no sender address", original.ID)
	}

	reply := r.buildReplyEmail(original, target, result)

	// Encode the email
	encodedEmail := base64.URLEncoding.EncodeToString([]byte(reply))

	// Create the message
	message := &gmail.Message{
		Raw: encodedEmail,
	}

	// Send the email with retry logic
	err := r.sendWithRetry(ctx, func() error {
		_, err := r.service.Users.Messages.Send(r.userEmail, message).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}

	logrus.Infof("Sent extraction report for message %s to %s", original.ID, target)
	return nil
}

// sendWithRetry retries quota/rate failures with exponential backoff. The
// backoff wait aborts as soon as ctx is cancelled so shutdown is not held
// up behind retry sleeps.
func (r *Replier) sendWithRetry(ctx context.Context, send func() error) error {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		err := send()
		if err == nil {
			return nil
		}

		lastErr = err
		logrus.Warnf("Failed to send report (attempt %d/%d): %v", attempt, r.maxRetries, err)

		// Check if it's a rate limit error
		if strings.Contains(err.Error(), "quota") || strings.Contains(err.Error(), "rate") {
			// Wait with exponential backoff
			waitTime := time.Duration(attempt*attempt) * time.Second
			logrus.Infof("Rate limited, waiting %v before retry", waitTime)
			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			}
		} else {
			// For other errors, don't retry
			break
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", r.maxRetries, lastErr)
}

// buildReplyEmail assembles the RFC 2822 reply with proper headers
func (r *Replier) buildReplyEmail(original models.EmailMessage, target string, result extractor.Result) string {
	var emailBuilder strings.Builder

	emailBuilder.WriteString(fmt.Sprintf("From: %s\r\n", r.userEmail))
	emailBuilder.WriteString(fmt.Sprintf("To: %s\r\n", target))
	emailBuilder.WriteString(fmt.Sprintf("Subject: %s%s\r\n", r.subjectPrefix, original.Subject))
	emailBuilder.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	emailBuilder.WriteString("MIME-Version: 1.0\r\n")
	emailBuilder.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	emailBuilder.WriteString("Content-Transfer-Encoding: 7bit\r\n")

	if original.ID != "" {
		emailBuilder.WriteString(fmt.Sprintf("In-Reply-To: %s\r\n", original.ID))
		emailBuilder.WriteString(fmt.Sprintf("X-Original-Message-ID: %s\r\n", original.ID))
	}
	emailBuilder.WriteString(fmt.Sprintf("X-Extracted-At: %s\r\n", time.Now().Format(time.RFC3339)))

	emailBuilder.WriteString("\r\n")
	emailBuilder.WriteString(BuildReport(result))

	return emailBuilder.String()
}

// BuildReport renders the plain-text extraction report, one value per line
// in extraction order
func BuildReport(result extractor.Result) string {
	var b strings.Builder

	b.WriteString("Hello from your Extractor Bot!\r\n")
	b.WriteString("\r\nHere are the extracted items:\r\n")

	b.WriteString("\r\nURLs Found:\r\n")
	if len(result.URLs) == 0 {
		b.WriteString("  (none found)\r\n")
	}
	for _, url := range result.URLs {
		b.WriteString(fmt.Sprintf("  %s\r\n", url))
	}

	b.WriteString("\r\nEmail Addresses Found:\r\n")
	if len(result.Emails) == 0 {
		b.WriteString("  (none found)\r\n")
	}
	for _, email := range result.Emails {
		b.WriteString(fmt.Sprintf("  %s\r\n", email))
	}

	return b.String()
}

// SenderAddress extracts the bare address from a From header value.
// "Jane Doe <jane@example.com>" yields "jane@example.com"; a header that is
// already a bare address is returned as is.
func SenderAddress(from string) string {
	if m := addrPattern.FindStringSubmatch(from); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(from)
}

// HTMLToPlainText converts HTML to plain text (simple implementation)
func HTMLToPlainText(html string) string {
	text := html

	// Remove common HTML tags
	replacements := []struct {
		from string
		to   string
	}{
		{"<br>", "\r\n"},
		{"<br/>", "\r\n"},
		{"<br />", "\r\n"},
		{"<p>", "\r\n"},
		{"</p>", "\r\n"},
		{"<div>", "\r\n"},
		{"</div>", "\r\n"},
		{"&nbsp;", " "},
		{"&amp;", "&"},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", "\""},
	}

	for _, replacement := range replacements {
		text = strings.ReplaceAll(text, replacement.from, replacement.to)
	}

	// Remove remaining HTML tags using regex
	re := regexp.MustCompile(`<[^>]*>`)
	text = re.ReplaceAllString(text, "")

	// Clean up whitespace
	text = strings.TrimSpace(text)

	// Normalize line endings
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\n", "\r\n")

	return text
}

// TestConnection tests the Gmail API connection
func (r *Replier) TestConnection(ctx context.Context) error {
	// Try to get user profile to test connection
	_, err := r.service.Users.GetProfile(r.userEmail).Do()
	if err != nil {
		return fmt.Errorf("failed to test Gmail API connection: %w", err)
	}
	return nil
}

// Close closes the replier (no-op for Gmail API)
func (r *Replier) Close() error {
	return nil
}
