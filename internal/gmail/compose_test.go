package gmail

import (
	"bytes"
	"io"
	netmail "net/mail"
	"os"
	"strings"
	"testing"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompose(t *testing.T, m *Message) []byte {
	t.Helper()
	msg, err := Compose(m)
	require.NoError(t, err)
	return msg
}

func TestCompose_HeaderOrder(t *testing.T) {
	msg := mustCompose(t, &Message{
		To:         []string{"a@example.com", "b@example.com"},
		Cc:         []string{"c@example.com"},
		Subject:    "Status",
		Body:       "hello",
		InReplyTo:  "<orig@example.com>",
		References: "<root@example.com> <orig@example.com>",
	})

	want := "To: a@example.com, b@example.com\r\n" +
		"Cc: c@example.com\r\n" +
		"Subject: Status\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"In-Reply-To: <orig@example.com>\r\n" +
		"References: <root@example.com> <orig@example.com>\r\n" +
		"\r\n" +
		"hello"
	assert.Equal(t, want, string(msg))
}

func TestCompose_HTMLAndEmptyHeaders(t *testing.T) {
	msg := string(mustCompose(t, &Message{
		To:      []string{"a@example.com"},
		Subject: "Hi",
		Body:    "<p>hi</p>",
		HTML:    true,
	}))

	assert.Contains(t, msg, "Content-Type: text/html; charset=\"UTF-8\"\r\n")
	for _, h := range []string{"Cc:", "Bcc:", "In-Reply-To:", "References:"} {
		assert.NotContains(t, msg, h)
	}
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>"))
}

func TestCompose_NonASCIISubject(t *testing.T) {
	msg := string(mustCompose(t, &Message{To: []string{"a@example.com"}, Subject: "Grüße", Body: "x"}))
	assert.Contains(t, msg, "Subject: =?UTF-8?b?")
	assert.NotContains(t, msg, "Grüße")
}

func TestEncodeRaw_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
	}{
		{"plain", &Message{To: []string{"x@example.com"}, Subject: "S", Body: "B"}},
		{"multi-line body", &Message{To: []string{"x@example.com"}, Subject: "S", Body: "line 1\r\nline 2\n\nend"}},
		{"umlauts", &Message{To: []string{"x@example.com"}, Subject: "Über", Body: "Schöne Grüße ~~~ ???"}},
		{"empty body", &Message{To: []string{"x@example.com"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composed := mustCompose(t, tt.msg)
			raw := EncodeRaw(composed)
			assert.NotContains(t, raw, "=")
			assert.NotContains(t, raw, "+")
			assert.NotContains(t, raw, "/")

			decoded, err := DecodeRaw(raw)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(composed, decoded))
		})
	}
}

func TestCompose_RejectsHeaderLineBreaks(t *testing.T) {
	base := func() *Message {
		return &Message{To: []string{"alice@example.com"}, Subject: "Hello", Body: "hi"}
	}
	tests := []struct {
		name   string
		mutate func(m *Message)
	}{
		{"subject CRLF", func(m *Message) { m.Subject = "Hello\r\nBcc: attacker@evil.example" }},
		{"subject LF", func(m *Message) { m.Subject = "Hello\nBcc: attacker@evil.example" }},
		{"to", func(m *Message) { m.To = []string{"alice@example.com\r\nBcc: attacker@evil.example"} }},
		{"cc", func(m *Message) { m.Cc = []string{"c@example.com\nX-Evil: 1"} }},
		{"bcc", func(m *Message) { m.Bcc = []string{"\rd@example.com"} }},
		{"references", func(m *Message) { m.References = "<a>\r\nBcc: x@example.com" }},
		{"attachment filename", func(m *Message) {
			m.Attachments = []Attachment{{Filename: "a\r\nb.txt", Data: []byte("x")}}
		}},
	}

	composers := map[string]func(*Message) ([]byte, error){
		"plain":       Compose,
		"alternative": ComposeAlternative,
		"attachments": ComposeWithAttachments,
		"build":       Build,
	}

	for _, tt := range tests {
		for cname, compose := range composers {
			t.Run(tt.name+"/"+cname, func(t *testing.T) {
				m := base()
				m.HTMLBody = "<p>hi</p>"
				tt.mutate(m)
				msg, err := compose(m)
				assert.ErrorIs(t, err, ErrHeaderInjection)
				assert.Nil(t, msg)
			})
		}
	}
}

func TestCompose_SubjectStaysSingleHeader(t *testing.T) {
	msg := mustCompose(t, &Message{To: []string{"alice@example.com"}, Subject: "Hello", Body: "hi"})

	parsed, err := netmail.ReadMessage(bytes.NewReader(msg))
	require.NoError(t, err)
	assert.Equal(t, "Hello", parsed.Header.Get("Subject"))
	assert.Empty(t, parsed.Header.Get("Bcc"))
}

func TestBuild_Alternative(t *testing.T) {
	data, err := Build(&Message{
		To:       []string{"a@example.com"},
		Subject:  "Newsletter",
		Body:     "plain text",
		HTMLBody: "<p>rich text</p>",
	})
	require.NoError(t, err)

	mr, err := mail.CreateReader(bytes.NewReader(data))
	require.NoError(t, err)
	mediaType, _, err := mr.Header.ContentType()
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	bodies := map[string]string{}
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		h, ok := p.Header.(*mail.InlineHeader)
		require.True(t, ok)
		ct, _, err := h.ContentType()
		require.NoError(t, err)
		b, err := io.ReadAll(p.Body)
		require.NoError(t, err)
		bodies[ct] = string(b)
	}
	assert.Equal(t, map[string]string{
		"text/plain": "plain text",
		"text/html":  "<p>rich text</p>",
	}, bodies)
}

func TestDecodeRaw_Invalid(t *testing.T) {
	_, err := DecodeRaw("!!!")
	assert.Error(t, err)
}

func TestComposeWithAttachments(t *testing.T) {
	m := &Message{
		To:      []string{"a@example.com"},
		Subject: "Report",
		Body:    "see attached",
		Attachments: []Attachment{
			{Filename: "report.csv", ContentType: "text/csv", Data: []byte("a,b\n1,2\n")},
			{Filename: "blob.bin", Data: []byte{0, 1, 2, 3}},
		},
	}

	data, err := Build(m)
	require.NoError(t, err)

	mr, err := mail.CreateReader(bytes.NewReader(data))
	require.NoError(t, err)

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Report", subject)

	var body string
	var names []string
	contents := map[string][]byte{}
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			b, err := io.ReadAll(p.Body)
			require.NoError(t, err)
			body = string(b)
		case *mail.AttachmentHeader:
			name, err := h.Filename()
			require.NoError(t, err)
			b, err := io.ReadAll(p.Body)
			require.NoError(t, err)
			names = append(names, name)
			contents[name] = b
		}
	}

	assert.Equal(t, "see attached", body)
	assert.Equal(t, []string{"report.csv", "blob.bin"}, names)
	assert.Equal(t, []byte("a,b\n1,2\n"), contents["report.csv"])
	assert.Equal(t, []byte{0, 1, 2, 3}, contents["blob.bin"])
}

func TestReplySubject(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"Status", "Re: Status"},
		{"Re: Status", "Re: Status"},
		{"RE: Status", "Re: RE: Status"},
		{"re: Status", "Re: re: Status"},
		{"", "Re: "},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			if got := ReplySubject(tt.subject); got != tt.want {
				t.Errorf("ReplySubject(%q) = %q, want %q", tt.subject, got, tt.want)
			}
		})
	}
}

func TestReplyReferences(t *testing.T) {
	assert.Equal(t, "<a>", ReplyReferences("", "<a>"))
	assert.Equal(t, "<r> <a>", ReplyReferences("<r>", "<a>"))
	assert.Equal(t, "<r>", ReplyReferences("<r>", ""))
}

func TestNewReply(t *testing.T) {
	orig := &MessageDetail{
		ThreadID: "t1",
		Headers: map[string]string{
			"From":       "Bob <bob@example.com>",
			"Subject":    "Status",
			"Message-Id": "<m1@example.com>",
			"References": "<m0@example.com>",
		},
	}

	reply := NewReply(orig, "thanks", []string{"c@example.com"}, nil, false)
	assert.Equal(t, []string{"Bob <bob@example.com>"}, reply.To)
	assert.Equal(t, []string{"c@example.com"}, reply.Cc)
	assert.Equal(t, "Re: Status", reply.Subject)
	assert.Equal(t, "<m1@example.com>", reply.InReplyTo)
	assert.Equal(t, "<m0@example.com> <m1@example.com>", reply.References)

	orig.Headers["Reply-To"] = "list@example.com"
	reply = NewReply(orig, "thanks", nil, nil, true)
	assert.Equal(t, []string{"list@example.com"}, reply.To)
	assert.True(t, reply.HTML)
}

func TestLoadAttachments(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/notes.txt"
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0600))

	atts, err := LoadAttachments([]string{path})
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, "notes.txt", atts[0].Filename)
	assert.True(t, strings.HasPrefix(atts[0].ContentType, "text/plain"))
	assert.Equal(t, []byte("hello"), atts[0].Data)

	_, err = LoadAttachments([]string{dir + "/missing.txt"})
	assert.Error(t, err)
}
