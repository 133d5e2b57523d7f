package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	mailtpl "github.com/soundclone/soundclone-api/pkg/mailer/templates"
)

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack   Outcome = iota // sent
	Retry                // transient failure, requeue
	Drop                 // malformed or unrenderable, never retried
)

var errNoRecipient = errors.New("email job has no recipient")

// Render resolves the job into a subject and bodies. Jobs naming a template
// are rendered from Data; others are sent as-is.
func (j EmailJob) Render() (subject, text, html string, err error) {
	if strings.TrimSpace(j.To) == "" {
		return "", "", "", errNoRecipient
	}
	if j.Template == "" {
		return j.Subject, j.Text, j.HTML, nil
	}
	return mailtpl.Render(j.Template, j.Data)
}

// Handle decodes, renders and sends one queued job. A redelivered job that
// fails again is dropped so a poisoned message cannot loop forever.
func Handle(ctx context.Context, body []byte, redelivered bool, s Sender, logger *logrus.Logger) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		logger.WithError(err).Error("bad email job")
		return Drop
	}
	entry := logger.WithFields(logrus.Fields{"template": job.Template, "to": job.To})

	subject, text, html, err := job.Render()
	if err != nil {
		entry.WithError(err).Error("render failed")
		return Drop
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := s.Send(c, job.To, subject, text, html); err != nil {
		if redelivered {
			entry.WithError(err).Error("send failed twice; dropping")
			return Drop
		}
		entry.WithError(err).Warn("send failed; requeueing")
		return Retry
	}
	entry.Info("email sent")
	return Ack
}
