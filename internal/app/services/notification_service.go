package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/pkg/apperrors"
	"github.com/yigit/hackathon/internal/pkg/email"
	"golang.org/x/sync/semaphore"
)

const (
	dispatchTimeout  = 30 * time.Second
	maxSubjectLength = 255

	// DefaultMaxConcurrentDispatches applies when maxConcurrent is not positive
	DefaultMaxConcurrentDispatches = 8
)

type templateKey struct {
	typ      models.NotificationType
	audience models.ApplicationKind
}

// defaultTemplates are used when no template of the kind is active
var defaultTemplates = map[templateKey]models.EmailTemplate{
	{models.NotificationAcceptance, models.KindTeam}: {
		Subject: "Congratulations {{teamName}}, you're in!",
		Body: `<p>Hi {{teamName}},</p>
<p>We are delighted to let you know that your application from {{school}} has been <strong>accepted</strong>.</p>
<p>We will follow up at {{contactEmail}} with schedule and logistics.</p>
<p>See you at the hackathon!</p>`,
	},
	{models.NotificationRejection, models.KindTeam}: {
		Subject: "Your hackathon application, {{teamName}}",
		Body: `<p>Hi {{teamName}},</p>
<p>Thank you for applying. We received many strong applications and unfortunately could not offer your team a place this time.</p>
<p>We hope to see {{school}} apply again next year.</p>`,
	},
	{models.NotificationAcceptance, models.KindSchool}: {
		Subject: "Workshop confirmed for {{schoolName}}",
		Body: `<p>Dear {{coordinatorName}},</p>
<p>Your workshop request for {{numStudents}} students at {{schoolName}} has been <strong>accepted</strong>.</p>
<p>We will contact you at {{coordinatorEmail}} to agree on the final date.</p>`,
	},
	{models.NotificationRejection, models.KindSchool}: {
		Subject: "Your workshop request for {{schoolName}}",
		Body: `<p>Dear {{coordinatorName}},</p>
<p>Thank you for your interest. Unfortunately we are unable to schedule a workshop at {{schoolName}} this season.</p>`,
	},
}

// DefaultTemplate returns the built-in template for a decision and audience
func DefaultTemplate(typ models.NotificationType, audience models.ApplicationKind) models.EmailTemplate {
	tmpl := defaultTemplates[templateKey{typ, audience}]
	tmpl.Type = typ
	tmpl.Audience = audience
	return tmpl
}

// NotificationService renders and sends decision emails and records every attempt
type NotificationService struct {
	templates TemplateStore
	logs      EmailLogStore
	sender    email.Sender
	from      string
	async     bool
	inFlight  *semaphore.Weighted
	now       func() time.Time
	logger    zerolog.Logger
	wg        sync.WaitGroup
}

// NewNotificationService creates a new NotificationService.
// With async set, Dispatch returns before delivery and at most maxConcurrent
// sends run at once; call Wait on shutdown.
func NewNotificationService(templates TemplateStore, logs EmailLogStore, sender email.Sender, from string, async bool, maxConcurrent int, logger zerolog.Logger) *NotificationService {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentDispatches
	}
	return &NotificationService{
		templates: templates,
		logs:      logs,
		sender:    sender,
		from:      from,
		async:     async,
		inFlight:  semaphore.NewWeighted(int64(maxConcurrent)),
		now:       time.Now,
		logger:    logger,
	}
}

// Dispatch runs Notify detached from the caller's cancellation, on a goroutine when async.
// When the concurrency limit is reached, Dispatch blocks until a send finishes.
func (s *NotificationService) Dispatch(ctx context.Context, target models.NotificationTarget, decision models.NotificationType) {
	detached := context.WithoutCancel(ctx)

	if !s.async {
		s.notifyWithTimeout(detached, target, decision)
		return
	}

	if err := s.inFlight.Acquire(detached, 1); err != nil {
		s.logger.Warn().Err(err).
			Str("applicationId", target.ApplicationID.String()).
			Msg("Could not reserve a notification slot, sending inline")
		s.notifyWithTimeout(detached, target, decision)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Release(1)
		s.notifyWithTimeout(detached, target, decision)
	}()
}

func (s *NotificationService) notifyWithTimeout(ctx context.Context, target models.NotificationTarget, decision models.NotificationType) {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	s.Notify(ctx, target, decision)
}

// Wait blocks until in-flight async dispatches finish
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

// Notify sends one decision email and appends exactly one log record.
// It never returns an error; delivered reports whether the sender accepted the message.
func (s *NotificationService) Notify(ctx context.Context, target models.NotificationTarget, decision models.NotificationType) (delivered bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Str("applicationId", target.ApplicationID.String()).
				Msg("Recovered from panic while sending notification")
			delivered = false
		}
	}()

	tmpl := s.resolveTemplate(ctx, decision, target.Kind)
	subject := Render(tmpl.Subject, target.Placeholders)
	body := Render(tmpl.Body, target.Placeholders)

	messageID, sendErr := s.send(ctx, email.Message{
		From:    s.from,
		To:      target.Email,
		Subject: subject,
		HTML:    body,
	})

	entry := &models.EmailNotificationLog{
		Type:           decision,
		RecipientEmail: target.Email,
		Subject:        truncate(subject, maxSubjectLength),
		SentAt:         s.now(),
		Status:         models.DeliverySent,
	}
	appID := target.ApplicationID
	if target.Kind == models.KindSchool {
		entry.SchoolApplicationID = &appID
	} else {
		entry.ApplicationID = &appID
	}

	if sendErr != nil {
		msg := sendErr.Error()
		entry.Status = models.DeliveryFailed
		entry.ErrorMessage = &msg
		s.logger.Warn().Err(sendErr).
			Str("applicationId", appID.String()).
			Str("type", string(decision)).
			Msg("Decision email delivery failed")
	} else if messageID != "" {
		entry.ProviderMessageID = &messageID
	}

	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).
			Str("applicationId", appID.String()).
			Str("deliveryStatus", string(entry.Status)).
			Msg("Failed to record notification log")
	}

	return sendErr == nil
}

// resolveTemplate looks up the active template and falls back to the default
// when none is active or the lookup fails
func (s *NotificationService) resolveTemplate(ctx context.Context, decision models.NotificationType, audience models.ApplicationKind) models.EmailTemplate {
	tmpl, err := s.templates.FindActive(ctx, decision, audience)
	if err == nil && tmpl != nil {
		return *tmpl
	}
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		s.logger.Warn().Err(err).Str("type", string(decision)).Msg("Template lookup failed, using default template")
	}
	return DefaultTemplate(decision, audience)
}

// send converts a panicking sender into an error so the attempt is still logged
func (s *NotificationService) send(ctx context.Context, msg email.Message) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("email sender panicked: %v", r)
		}
	}()
	return s.sender.Send(ctx, msg)
}

// Render replaces every {{name}} with its value verbatim. Values are not escaped.
func Render(text string, placeholders map[string]string) string {
	if len(placeholders) == 0 {
		return text
	}
	pairs := make([]string, 0, len(placeholders)*2)
	for k, v := range placeholders {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

var _ Notifier = (*NotificationService)(nil)
