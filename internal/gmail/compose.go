package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

const (
	contentTypePlain = `text/plain; charset="UTF-8"`
	contentTypeHTML  = `text/html; charset="UTF-8"`

	replyPrefix = "Re: "
)

// Message is an outgoing email before encoding.
type Message struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
	HTML    bool
	// HTMLBody, when set, is sent next to Body as multipart/alternative.
	HTMLBody   string
	InReplyTo  string
	References string

	Attachments []Attachment
}

// checkHeaders rejects header values that would break out of their line.
func (m *Message) checkHeaders() error {
	type field struct{ name, value string }
	var fields []field
	for _, v := range m.To {
		fields = append(fields, field{"To", v})
	}
	for _, v := range m.Cc {
		fields = append(fields, field{"Cc", v})
	}
	for _, v := range m.Bcc {
		fields = append(fields, field{"Bcc", v})
	}
	fields = append(fields,
		field{"Subject", m.Subject},
		field{"In-Reply-To", m.InReplyTo},
		field{"References", m.References},
	)
	for _, a := range m.Attachments {
		fields = append(fields, field{"attachment filename", a.Filename})
	}

	for _, f := range fields {
		if strings.ContainsAny(f.value, "\r\n") {
			return fmt.Errorf("%w: %s", ErrHeaderInjection, f.name)
		}
	}
	return nil
}

func (m *Message) contentType() string {
	if m.HTML {
		return contentTypeHTML
	}
	return contentTypePlain
}

// Compose renders m as an RFC 2822 header block, a blank line and the body.
// Empty headers are omitted and lines end in CRLF. Attachments and HTMLBody
// are ignored; Build picks the multipart form for those.
func Compose(m *Message) ([]byte, error) {
	if err := m.checkHeaders(); err != nil {
		return nil, err
	}
	var b strings.Builder

	writeHeader := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	writeHeader("To", strings.Join(m.To, ", "))
	writeHeader("Cc", strings.Join(m.Cc, ", "))
	writeHeader("Bcc", strings.Join(m.Bcc, ", "))
	writeHeader("Subject", encodeRFC2047(m.Subject))
	writeHeader("Content-Type", m.contentType())
	writeHeader("In-Reply-To", m.InReplyTo)
	writeHeader("References", m.References)
	b.WriteString("\r\n")
	b.WriteString(m.Body)

	return []byte(b.String()), nil
}

func (m *Message) header() mail.Header {
	var h mail.Header
	h.SetDate(time.Now())
	setIfNotEmpty(&h, "To", strings.Join(m.To, ", "))
	setIfNotEmpty(&h, "Cc", strings.Join(m.Cc, ", "))
	setIfNotEmpty(&h, "Bcc", strings.Join(m.Bcc, ", "))
	if m.Subject != "" {
		h.SetSubject(m.Subject)
	}
	setIfNotEmpty(&h, "In-Reply-To", m.InReplyTo)
	setIfNotEmpty(&h, "References", m.References)
	return h
}

type inlinePartWriter interface {
	CreatePart(h mail.InlineHeader) (io.WriteCloser, error)
}

// writeBodies writes the text bodies of m as parts of an alternative group:
// Body alone, or Body as text/plain followed by HTMLBody as text/html.
func (m *Message) writeBodies(iw inlinePartWriter) error {
	parts := []struct{ contentType, body string }{{m.contentType(), m.Body}}
	if m.HTMLBody != "" {
		parts = []struct{ contentType, body string }{
			{contentTypePlain, m.Body},
			{contentTypeHTML, m.HTMLBody},
		}
	}
	for _, p := range parts {
		var ih mail.InlineHeader
		ih.Set("Content-Type", p.contentType)
		w, err := iw.CreatePart(ih)
		if err != nil {
			return fmt.Errorf("failed to create body part: %w", err)
		}
		if _, err := io.WriteString(w, p.body); err != nil {
			return fmt.Errorf("failed to write body: %w", err)
		}
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

// ComposeAlternative renders m as multipart/alternative with a text/plain
// Body and a text/html HTMLBody.
func ComposeAlternative(m *Message) ([]byte, error) {
	if err := m.checkHeaders(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	iw, err := mail.CreateInlineWriter(&buf, m.header())
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}
	if err := m.writeBodies(iw); err != nil {
		return nil, err
	}
	if err := iw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}
	return buf.Bytes(), nil
}

// ComposeWithAttachments renders m as a multipart/mixed message with the
// inline body group followed by one part per attachment.
func ComposeWithAttachments(m *Message) ([]byte, error) {
	if err := m.checkHeaders(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, m.header())
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	if err := m.writeBodies(tw); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}

	for _, a := range m.Attachments {
		var ah mail.AttachmentHeader
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		ah.Set("Content-Type", ct)
		ah.SetFilename(a.Filename)
		ah.Set("Content-Transfer-Encoding", "base64")

		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment %s: %w", a.Filename, err)
		}
		if _, err := aw.Write(a.Data); err != nil {
			return nil, fmt.Errorf("failed to write attachment %s: %w", a.Filename, err)
		}
		if err := aw.Close(); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}
	return buf.Bytes(), nil
}

// Build renders m, picking multipart/mixed when it carries attachments and
// multipart/alternative when it has an HTMLBody.
func Build(m *Message) ([]byte, error) {
	switch {
	case len(m.Attachments) > 0:
		return ComposeWithAttachments(m)
	case m.HTMLBody != "":
		return ComposeAlternative(m)
	default:
		return Compose(m)
	}
}

func setIfNotEmpty(h *mail.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}

// EncodeRaw encodes a composed message as unpadded URL-safe base64, the form
// expected in the Gmail API raw field.
func EncodeRaw(msg []byte) string {
	return base64.RawURLEncoding.EncodeToString(msg)
}

// DecodeRaw reverses EncodeRaw. Padded input is accepted as well.
func DecodeRaw(raw string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
	if err != nil {
		return nil, fmt.Errorf("failed to decode raw message: %w", err)
	}
	return data, nil
}

// ReplySubject prefixes subject with "Re: " unless it already starts with it.
// The check is case-sensitive.
func ReplySubject(subject string) string {
	if strings.HasPrefix(subject, replyPrefix) {
		return subject
	}
	return replyPrefix + subject
}

// ReplyReferences appends messageID to an existing References header.
func ReplyReferences(references, messageID string) string {
	switch {
	case messageID == "":
		return references
	case references == "":
		return messageID
	default:
		return references + " " + messageID
	}
}

// LoadAttachments reads files from disk for inclusion in an outgoing message.
func LoadAttachments(paths []string) ([]Attachment, error) {
	out := make([]Attachment, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %s: %w", p, err)
		}
		if len(data) > MaxAttachmentSize {
			return nil, fmt.Errorf("%w: %s is %d bytes", ErrAttachmentTooLarge, p, len(data))
		}
		ct := mime.TypeByExtension(filepath.Ext(p))
		if ct == "" {
			ct = "application/octet-stream"
		}
		out = append(out, Attachment{
			Filename:    filepath.Base(p),
			ContentType: ct,
			Data:        data,
		})
	}
	return out, nil
}

// encodeRFC2047 encodes a header value when it contains non-ASCII characters,
// such as German umlauts in a subject.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// NewReply builds a reply to orig. It is addressed to the original sender
// (or Reply-To when present) and carries the threading headers.
func NewReply(orig *MessageDetail, body string, cc, bcc []string, html bool) *Message {
	to := orig.Header("Reply-To")
	if to == "" {
		to = orig.Header("From")
	}
	msgID := orig.Header("Message-ID")
	return &Message{
		To:         []string{to},
		Cc:         cc,
		Bcc:        bcc,
		Subject:    ReplySubject(orig.Header("Subject")),
		Body:       body,
		HTML:       html,
		InReplyTo:  msgID,
		References: ReplyReferences(orig.Header("References"), msgID),
	}
}
