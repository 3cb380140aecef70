// Package services contains the sender that delivers closing reports to a
// book's recipients by email.
package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zenibo-dev/zenibo/internal/export"
	"github.com/zenibo-dev/zenibo/internal/lib/sl"
	"github.com/zenibo-dev/zenibo/internal/lib/smtp"
	"github.com/zenibo-dev/zenibo/internal/models"
)

// Renderer renders one book's closing report for one month.
type Renderer interface {
	RenderForBook(ctx context.Context, bookID int, month time.Time) (*export.Result, error)
}

// SenderRepository defines the storage methods the sender relies on.
type SenderRepository interface {
	GetBookByID(ctx context.Context, id int) (*models.Book, error)
	ListRecipientsForBook(ctx context.Context, bookID int) ([]*models.Recipient, error)
}

// SenderService consumes report jobs and emails the rendered CSV to each
// recipient assigned to the book.
type SenderService struct {
	repo      SenderRepository
	renderer  Renderer
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService creates a new SenderService.
func NewSenderService(repo SenderRepository, renderer Renderer, transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		repo:      repo,
		renderer:  renderer,
		transport: transport,
		log:       log,
	}
}

// HandleJob processes one queued report job. A book whose month holds no
// entries is acknowledged and skipped rather than requeued.
func (s *SenderService) HandleJob(ctx context.Context, body []byte) error {
	const op = "services.HandleJob"

	var job models.ReportJob
	if err := json.Unmarshal(body, &job); err != nil {
		s.log.Error("failed to unmarshal report job", sl.Err(err))
		// A malformed job can never succeed; drop it.
		return nil
	}

	month, err := time.Parse("2006-01", job.Month)
	if err != nil {
		s.log.Error("invalid month in report job", slog.String("month", job.Month))
		return nil
	}

	report, err := s.renderer.RenderForBook(ctx, job.BookID, month)
	if err != nil {
		if errors.Is(err, export.ErrNoData) {
			s.log.Info("no entries for month, skipping report",
				slog.Int("book_id", job.BookID),
				slog.String("month", job.Month))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	book, err := s.repo.GetBookByID(ctx, job.BookID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	recipients, err := s.repo.ListRecipientsForBook(ctx, job.BookID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, recipient := range recipients {
		if err := s.sendReport(recipient.Email, book, job.Month, report); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("report sent",
			slog.Int("book_id", job.BookID),
			slog.String("month", job.Month),
			slog.String("to", recipient.Email))
	}
	return nil
}

func (s *SenderService) sendReport(to string, book *models.Book, month string, report *export.Result) error {
	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		if quitErr := client.Quit(); quitErr != nil {
			s.log.Error("failed to close SMTP session", sl.Err(quitErr))
		}
	}()

	from := s.transport.GetSMTPUser()
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	writer, err := client.Data()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil {
			s.log.Error("failed to finish message body", sl.Err(closeErr))
		}
	}()

	msg := buildMessage(from, to, book, month, report)
	if _, err := writer.Write([]byte(msg)); err != nil {
		return err
	}
	return nil
}

// buildMessage assembles a MIME message with the CSV as a base64 attachment.
func buildMessage(from, to string, book *models.Book, month string, report *export.Result) string {
	const boundary = "zenibo-report-boundary"

	subject := fmt.Sprintf("%s %s closing report", book.BusinessName, month)
	body := fmt.Sprintf("The %s closing report of %s is attached.\r\n", month, book.BusinessName)

	encoded := base64.StdEncoding.EncodeToString(report.Data)
	var chunks []string
	for len(encoded) > 76 {
		chunks = append(chunks, encoded[:76])
		encoded = encoded[76:]
	}
	chunks = append(chunks, encoded)

	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="` + boundary + `"`,
		"",
		"--" + boundary,
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
		"--" + boundary,
		`Content-Type: text/csv; charset="utf-8"`,
		"Content-Transfer-Encoding: base64",
		`Content-Disposition: attachment; filename="` + report.FileName + `"`,
		"",
		strings.Join(chunks, "\r\n"),
		"--" + boundary + "--",
		"",
	}
	return strings.Join(headers, "\r\n")
}
