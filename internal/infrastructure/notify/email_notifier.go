package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/config"
	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/internal/domain/entity"
	"github.com/soundclone/soundclone-api/pkg/mailer"
	mailtpl "github.com/soundclone/soundclone-api/pkg/mailer/templates"
)

// Publisher puts a JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// EmailNotifier enqueues templated email jobs for the email worker. With no
// publisher configured it only logs what would have been sent.
type EmailNotifier struct {
	cfg    *config.Config
	pub    Publisher
	logger *logrus.Logger
}

func NewEmailNotifier(cfg *config.Config, pub Publisher, logger *logrus.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, pub: pub, logger: logger}
}

func (n *EmailNotifier) SendVerification(ctx context.Context, u *entity.User, link string) error {
	data := mailtpl.NewVerifyEmailData(n.cfg, u.Name, u.Email, link, mailtpl.WithTime(time.Now()))
	return n.enqueue(ctx, mailer.EmailJob{To: u.Email, Template: mailtpl.VerifyEmail, Data: data})
}

func (n *EmailNotifier) SendPasswordOTP(ctx context.Context, u *entity.User, code string, ttl time.Duration) error {
	data := mailtpl.NewPasswordOTPData(n.cfg, u.Name, u.Email, code,
		mailtpl.WithTime(time.Now()), mailtpl.WithExpiresIn(ttl))
	return n.enqueue(ctx, mailer.EmailJob{To: u.Email, Template: mailtpl.PasswordOTP, Data: data})
}

func (n *EmailNotifier) enqueue(ctx context.Context, job mailer.EmailJob) error {
	if n.pub == nil {
		if n.logger != nil {
			n.logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("mail sending disabled; email not queued")
		}
		return nil
	}
	if err := n.pub.PublishJSON(ctx, job); err != nil {
		return err
	}
	if n.logger != nil {
		n.logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Debug("email queued")
	}
	return nil
}

var _ application.Notifier = (*EmailNotifier)(nil)
