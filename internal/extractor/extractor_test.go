package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractURLsAndEmails(t *testing.T) {
	result := Extract("Check out www.example.com and https://docs.python.org/3/library/re.html, email info@mysite.org")

	assert.Equal(t, []string{"www.example.com", "https://docs.python.org/3/library/re.html"}, result.URLs)
	assert.Equal(t, []string{"info@mysite.org"}, result.Emails)
}

func TestExtractDeduplicatesRepeatedURL(t *testing.T) {
	result := Extract("visit www.x.com again at www.x.com")

	assert.Equal(t, []string{"www.x.com"}, result.URLs)
	assert.Empty(t, result.Emails)
}

func TestExtractEmptyInput(t *testing.T) {
	result := Extract("")

	assert.Empty(t, result.URLs)
	assert.Empty(t, result.Emails)
}

func TestExtractEmailOnly(t *testing.T) {
	result := Extract("please contact ops+alerts@example.co.uk for access")

	assert.Empty(t, result.URLs)
	assert.Equal(t, []string{"ops+alerts@example.co.uk"}, result.Emails)
}

func TestExtractPreservesFirstSeenOrder(t *testing.T) {
	text := "b.example.org is down, see https://a.example.org/status and b.example.org again"
	result := Extract("www." + text)

	assert.Equal(t, []string{"www.b.example.org", "https://a.example.org/status"}, result.URLs)
}

func TestExtractTrimsTrailingPunctuation(t *testing.T) {
	result := Extract("read https://example.com/docs. or https://example.com/faq, then www.example.net!")

	assert.Equal(t, []string{
		"https://example.com/docs",
		"https://example.com/faq",
		"www.example.net",
	}, result.URLs)
}

func TestExtractKeepsBalancedParentheses(t *testing.T) {
	result := Extract("see https://en.wikipedia.org/wiki/Go_(programming_language) for details")

	assert.Equal(t, []string{"https://en.wikipedia.org/wiki/Go_(programming_language)"}, result.URLs)
}

func TestExtractIsCaseSensitive(t *testing.T) {
	result := Extract("WWW.EXAMPLE.COM should not match but info@Example.ORG and info@example.org differ")

	assert.Empty(t, result.URLs)
	assert.Equal(t, []string{"info@Example.ORG", "info@example.org"}, result.Emails)
}

func TestExtractOutputsAreSubstringsOfInput(t *testing.T) {
	text := "mix of www.one.example/path?q=1, two@example.com, http://localhost:8080/status and junk"
	result := Extract(text)

	for _, url := range result.URLs {
		assert.True(t, strings.Contains(text, url), "url %q not a substring of input", url)
	}
	for _, email := range result.Emails {
		assert.True(t, strings.Contains(text, email), "email %q not a substring of input", email)
	}
}

func TestExtractDiscardsDotlessAndTinyMatches(t *testing.T) {
	result := Extract("www.a and http://ab are not worth reporting")

	assert.Empty(t, result.URLs)
}
