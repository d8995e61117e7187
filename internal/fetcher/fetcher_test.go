package fetcher

import (
	"bytes"
	"testing"

	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
)

func TestFetchSectionRequestsFullBody(t *testing.T) {
	section, items := fetchSection()

	// BODY.PEEK[] delivers the raw body without flagging the message \Seen
	assert.Equal(t, imap.FetchItem("BODY.PEEK[]"), section.FetchItem())
	assert.Contains(t, items, section.FetchItem())
	assert.Contains(t, items, imap.FetchEnvelope)
	assert.Contains(t, items, imap.FetchUid)
}

func TestParseIMAPMessageReadsFetchedBodySection(t *testing.T) {
	raw := "Subject: links\r\nFrom: jane@example.com\r\nContent-Type: text/plain\r\n\r\nsee www.example.com\r\n"

	// the server answers a BODY.PEEK[] request with an untagged BODY[] item
	respKey, err := imap.ParseBodySectionName("BODY[]")
	assert.NoError(t, err)

	msg := &imap.Message{
		Uid: 7,
		Body: map[*imap.BodySectionName]imap.Literal{
			respKey: bytes.NewBufferString(raw),
		},
	}

	section, _ := fetchSection()
	f := &IMAPFetcher{}

	email, err := f.parseIMAPMessage(msg, section)
	assert.NoError(t, err)
	assert.Equal(t, uint32(7), email.UID)
	assert.Equal(t, "imap-7", email.ID)
	assert.Contains(t, email.Body, "see www.example.com")
}

func TestParseIMAPMessageMultipartBody(t *testing.T) {
	raw := "Subject: links\r\n" +
		"Content-Type: multipart/alternative; boundary=b1\r\n" +
		"\r\n" +
		"--b1\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"plain www.example.com\r\n" +
		"--b1\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>html www.example.com</p>\r\n" +
		"--b1--\r\n"

	respKey, err := imap.ParseBodySectionName("BODY[]")
	assert.NoError(t, err)

	msg := &imap.Message{
		Uid: 8,
		Body: map[*imap.BodySectionName]imap.Literal{
			respKey: bytes.NewBufferString(raw),
		},
	}

	section, _ := fetchSection()
	f := &IMAPFetcher{}

	email, err := f.parseIMAPMessage(msg, section)
	assert.NoError(t, err)
	assert.Contains(t, email.Body, "plain www.example.com")
	assert.Contains(t, email.HTMLBody, "html www.example.com")
}
