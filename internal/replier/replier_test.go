package replier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mail-extractor-go/internal/extractor"
)

func TestSenderAddress(t *testing.T) {
	assert.Equal(t, "jane@example.com", SenderAddress("Jane Doe <jane@example.com>"))
	assert.Equal(t, "jane@example.com", SenderAddress("jane@example.com"))
	assert.Equal(t, "jane@example.com", SenderAddress("  jane@example.com  "))
	assert.Equal(t, "", SenderAddress(""))
}

func TestBuildReportListsMatchesInOrder(t *testing.T) {
	report := BuildReport(extractor.Result{
		URLs:   []string{"www.example.com", "https://example.org/a"},
		Emails: []string{"info@mysite.org"},
	})

	assert.Contains(t, report, "Hello from your Extractor Bot!")
	assert.Contains(t, report, "URLs Found:")
	assert.Contains(t, report, "Email Addresses Found:")
	assert.Contains(t, report, "  www.example.com\r\n")
	assert.Contains(t, report, "  https://example.org/a\r\n")
	assert.Contains(t, report, "  info@mysite.org\r\n")

	// order within the URL section follows extraction order
	assert.Less(t,
		strings.Index(report, "www.example.com"),
		strings.Index(report, "https://example.org/a"),
	)
}

func TestBuildReportEmptyResult(t *testing.T) {
	report := BuildReport(extractor.Result{})

	assert.Contains(t, report, "URLs Found:\r\n  (none found)")
	assert.Contains(t, report, "Email Addresses Found:\r\n  (none found)")
}

func TestSendWithRetryAbortsOnCancelledContext(t *testing.T) {
	r := &Replier{maxRetries: 3}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := r.sendWithRetry(ctx, func() error {
		calls++
		return errors.New("rate limit exceeded")
	})

	// the backoff wait must not outlive the context
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestSendWithRetryDoesNotRetryPermanentErrors(t *testing.T) {
	r := &Replier{maxRetries: 3}

	calls := 0
	err := r.sendWithRetry(context.Background(), func() error {
		calls++
		return errors.New("invalid recipient")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestSendWithRetrySucceedsImmediately(t *testing.T) {
	r := &Replier{maxRetries: 3}

	calls := 0
	err := r.sendWithRetry(context.Background(), func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestHTMLToPlainText(t *testing.T) {
	text := HTMLToPlainText("<div>Hello<br>visit <a href=\"http://example.com\">http://example.com</a> &amp; more</div>")

	assert.NotContains(t, text, "<")
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "http://example.com")
	assert.Contains(t, text, "&")
}
