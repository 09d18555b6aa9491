// Package worker runs the background side of outbound email: a queue
// consumer that delivers invite and reminder mail, and a periodic sweep
// that turns the attention list into reminder jobs.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/causeplan/backend/internal/emaillogs"
	"github.com/causeplan/backend/internal/models"
	"github.com/causeplan/backend/pkg/mailer"
	"github.com/causeplan/backend/pkg/queue"
)

// EmailProcessor consumes email jobs from the queue, sends them over SMTP
// and records every attempt in email_logs.
type EmailProcessor struct {
	mailer *mailer.Mailer
	logs   *emaillogs.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(m *mailer.Mailer, logs *emaillogs.Repository, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{mailer: m, logs: logs, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeInviteEmail:
		return p.processInvite(ctx, job)
	case queue.JobTypeReminderEmail:
		return p.processReminder(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *EmailProcessor) processInvite(ctx context.Context, job *queue.Job) error {
	var payload queue.InviteEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	subject := fmt.Sprintf("You're invited to join %s", payload.OrgName)
	body := fmt.Sprintf(
		`<p>You have been invited to join <strong>%s</strong> as a %s.</p>
<p><a href="%s">Accept the invitation</a></p>
<p>The invitation expires automatically; if the link no longer works, ask for a new one.</p>`,
		payload.OrgName, payload.Role, payload.AcceptURL)

	sendErr := p.mailer.Send(payload.RecipientEmail, subject, body)
	p.record(ctx, &models.EmailLog{
		OrganizationID: payload.OrganizationID,
		Recipient:      payload.RecipientEmail,
		EmailType:      models.EmailTypeInvite,
		Subject:        subject,
	}, sendErr)
	if sendErr != nil {
		return fmt.Errorf("send invite: %w", sendErr)
	}
	return nil
}

func (p *EmailProcessor) processReminder(ctx context.Context, job *queue.Job) error {
	var payload queue.ReminderEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	subject := fmt.Sprintf("[%s] %s: %s", payload.AttentionType, payload.EventTitle, payload.MilestoneTitle)
	body := fmt.Sprintf(
		`<p>The milestone <strong>%s</strong> for <strong>%s</strong> needs attention (%s).</p>
<p>Due date: %s</p>`,
		payload.MilestoneTitle, payload.EventTitle, payload.AttentionType,
		payload.DueDate.Format("January 2, 2006"))

	sendErr := p.mailer.Send(payload.RecipientEmail, subject, body)
	p.record(ctx, &models.EmailLog{
		OrganizationID: payload.OrganizationID,
		EventID:        &payload.EventID,
		MilestoneID:    &payload.MilestoneID,
		Recipient:      payload.RecipientEmail,
		EmailType:      models.EmailTypeReminder,
		Subject:        subject,
	}, sendErr)
	if sendErr != nil {
		return fmt.Errorf("send reminder: %w", sendErr)
	}
	return nil
}

// record writes the email log row. Logging failures must not fail the job,
// the mail already went out.
func (p *EmailProcessor) record(ctx context.Context, log *models.EmailLog, sendErr error) {
	if sendErr != nil {
		log.Status = models.EmailStatusFailed
		log.ErrorMessage = sendErr.Error()
	} else {
		log.Status = models.EmailStatusSent
	}
	if err := p.logs.Insert(ctx, log); err != nil {
		p.logger.Error("email log insert failed", zap.Error(err), zap.String("recipient", log.Recipient))
	}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
