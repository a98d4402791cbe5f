package services

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/email"
	"github.com/alitto/pond/v2"
	"github.com/adampresley/mediacatalog/pkg/models"
	"github.com/adampresley/mediacatalog/pkg/stores"
)

var commentEmailTemplate = template.Must(template.New("commentEmail").Parse(`
<h1>New comment on your photo</h1>
<p>Hello {{.ownerName}}! {{.commenterName}} left a comment on '{{.photoTitle}}':</p>
<blockquote>{{.text}}</blockquote>
<a href="{{.photoURL}}">View the photo</a>
`))

const (
	DefaultNotificationWorkers     = 2
	DefaultNotificationSendTimeout = 15 * time.Second
)

type NotificationServiceConfig struct {
	BaseURL     string
	FromEmail   string
	FromName    string
	MailService email.MailServicer
	MaxWorkers  int
	SendTimeout time.Duration
	UserStore   stores.UserStorer
}

/*
NotificationService emails a photo's owner when someone else comments on
it. Emails go out on a small worker pool so the comment request never
waits on the mail provider. Delivery failures are logged and never reach
the commenter.
*/
type NotificationService struct {
	baseURL     string
	fromEmail   string
	fromName    string
	mailService email.MailServicer
	pool        pond.Pool
	sendTimeout time.Duration
	userStore   stores.UserStorer
}

func NewNotificationService(config NotificationServiceConfig) NotificationService {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = DefaultNotificationWorkers
	}

	if config.SendTimeout <= 0 {
		config.SendTimeout = DefaultNotificationSendTimeout
	}

	return NotificationService{
		baseURL:     strings.TrimSuffix(config.BaseURL, "/"),
		fromEmail:   config.FromEmail,
		fromName:    config.FromName,
		mailService: config.MailService,
		pool:        pond.NewPool(config.MaxWorkers),
		sendTimeout: config.SendTimeout,
		userStore:   config.UserStore,
	}
}

/*
CommentAdded queues the owner's email and returns straight away. The send
runs on a context detached from the request, bounded by the send timeout.
*/
func (s NotificationService) CommentAdded(ctx context.Context, photo models.Photo, comment models.Comment) {
	if comment.UserID == photo.OwnerID {
		return
	}

	sendCtx := context.WithoutCancel(ctx)

	err := s.pool.Go(func() {
		ctx, cancel := context.WithTimeout(sendCtx, s.sendTimeout)
		defer cancel()

		if err := s.sendCommentEmail(ctx, photo, comment); err != nil {
			slog.Error("failed to send comment notification", "error", err, "photoID", photo.ID, "ownerID", photo.OwnerID)
		}
	})

	if err != nil {
		slog.Error("dropping comment notification", "error", err, "photoID", photo.ID, "ownerID", photo.OwnerID)
	}
}

/*
Stop waits for queued emails to finish sending. Comments added afterwards
are not emailed.
*/
func (s NotificationService) Stop() {
	s.pool.StopAndWait()
}

func (s NotificationService) sendCommentEmail(ctx context.Context, photo models.Photo, comment models.Comment) error {
	var (
		err    error
		owner  *models.User
		parsed strings.Builder
	)

	if owner, err = s.userStore.FindByID(ctx, photo.OwnerID); err != nil {
		return fmt.Errorf("error looking up owner: %w", err)
	}

	title := photo.Title

	if title == "" {
		title = photo.Filename
	}

	data := map[string]any{
		"ownerName":     owner.Name,
		"commenterName": comment.UserName,
		"photoTitle":    title,
		"text":          comment.Text,
		"photoURL":      fmt.Sprintf("%s/photo/%d", s.baseURL, photo.ID),
	}

	if err = commentEmailTemplate.Execute(&parsed, data); err != nil {
		return fmt.Errorf("error rendering comment email: %w", err)
	}

	return s.mailService.Send(email.Mail{
		Body:       parsed.String(),
		BodyIsHtml: true,
		From: email.EmailAddress{
			Email: s.fromEmail,
			Name:  s.fromName,
		},
		Subject: fmt.Sprintf("%s commented on your photo", comment.UserName),
		To: []email.EmailAddress{
			{Name: owner.Name, Email: owner.Email},
		},
	})
}
