package docgendelivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

// EmailMessage is an outbound document email. DocumentID, when set, is
// stamped on the message as an X-Document-Id header so bounce handling can
// tie replies back to the generated document.
type EmailMessage struct {
	From       string
	To         []string
	Cc         []string
	Bcc        []string
	ReplyTo    string
	Subject    string
	Body       string
	Attachment *Attachment
	DocumentID string
}

// EmailSender delivers document emails.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SMTPClient abstracts the SMTP send for testing.
type SMTPClient interface {
	SendMail(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// SMTPMailer sends document emails over SMTP.
type SMTPMailer struct {
	Addr   string
	Auth   smtp.Auth
	From   string
	Client SMTPClient
	Now    func() time.Time
}

// Send composes the MIME message and hands it to the SMTP client.
func (m *SMTPMailer) Send(ctx context.Context, msg EmailMessage) error {
	if m == nil {
		return docgen.NewError(docgen.KindInternal, "mailer is nil", nil)
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	from := strings.TrimSpace(msg.From)
	if from == "" {
		from = strings.TrimSpace(m.From)
	}
	if from == "" {
		return docgen.NewError(docgen.KindValidation, "email from is required", nil)
	}
	recipients := make([]string, 0, len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	recipients = append(recipients, msg.To...)
	recipients = append(recipients, msg.Cc...)
	recipients = append(recipients, msg.Bcc...)
	if len(recipients) == 0 {
		return docgen.NewError(docgen.KindValidation, "email recipients are required", nil)
	}

	when := time.Now()
	if m.Now != nil {
		when = m.Now()
	}
	raw, err := composeEmail(msg, from, when)
	if err != nil {
		return err
	}

	client := m.Client
	if client == nil {
		client = netSMTP{}
	}
	if err := client.SendMail(m.Addr, m.Auth, from, recipients, raw); err != nil {
		return docgen.NewError(docgen.KindExternal, "smtp send failed", err)
	}
	return nil
}

// composeEmail renders the RFC 5322 message: plain text when there is no
// attachment, multipart/mixed with a base64 part otherwise.
func composeEmail(msg EmailMessage, from string, when time.Time) ([]byte, error) {
	var buf bytes.Buffer
	header := func(key, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		fmt.Fprintf(&buf, "%s: %s\r\n", key, value)
	}

	header("From", from)
	header("To", strings.Join(msg.To, ", "))
	header("Cc", strings.Join(msg.Cc, ", "))
	header("Reply-To", msg.ReplyTo)
	header("Subject", msg.Subject)
	header("Date", when.Format(time.RFC1123Z))
	header("X-Document-Id", msg.DocumentID)
	header("MIME-Version", "1.0")

	if msg.Attachment == nil {
		header("Content-Type", "text/plain; charset=utf-8")
		header("Content-Transfer-Encoding", "7bit")
		buf.WriteString("\r\n")
		buf.WriteString(msg.Body)
		buf.WriteString("\r\n")
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	header("Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", mw.Boundary()))
	buf.WriteString("\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	textHeader.Set("Content-Transfer-Encoding", "7bit")
	part, err := mw.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}

	fileHeader := textproto.MIMEHeader{}
	contentType := msg.Attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	fileHeader.Set("Content-Type", contentType)
	fileHeader.Set("Content-Transfer-Encoding", "base64")
	fileHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", msg.Attachment.Filename))
	filePart, err := mw.CreatePart(fileHeader)
	if err != nil {
		return nil, err
	}
	if err := foldBase64(filePart, msg.Attachment.Data); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// foldBase64 writes base64 data wrapped at the 76-column MIME limit.
func foldBase64(w io.Writer, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		line := encoded
		if len(line) > 76 {
			line = line[:76]
		}
		if _, err := io.WriteString(w, line+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[len(line):]
	}
	return nil
}

type netSMTP struct{}

func (netSMTP) SendMail(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	return smtp.SendMail(addr, auth, from, to, msg)
}
