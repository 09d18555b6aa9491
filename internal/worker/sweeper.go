package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/causeplan/backend/internal/attention"
	"github.com/causeplan/backend/internal/auth"
	"github.com/causeplan/backend/internal/emaillogs"
	"github.com/causeplan/backend/internal/events"
	"github.com/causeplan/backend/pkg/queue"
)

// ReminderSweeper periodically rebuilds each organization's attention list
// and enqueues a reminder email for every assigned item. A milestone gets
// at most one reminder per day.
type ReminderSweeper struct {
	events   *events.Repository
	users    *auth.Repository
	logs     *emaillogs.Repository
	queue    *queue.Queue
	interval time.Duration
	logger   *zap.Logger
}

// NewReminderSweeper creates a reminder sweeper.
func NewReminderSweeper(eventsRepo *events.Repository, users *auth.Repository, logs *emaillogs.Repository,
	q *queue.Queue, interval time.Duration, logger *zap.Logger) *ReminderSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderSweeper{
		events:   eventsRepo,
		users:    users,
		logs:     logs,
		queue:    q,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (s *ReminderSweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder sweeper stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ReminderSweeper) sweep(ctx context.Context) {
	orgIDs, err := s.events.ListOrgIDsWithOpenMilestones(ctx)
	if err != nil {
		s.logger.Error("list orgs for sweep", zap.Error(err))
		return
	}
	now := time.Now()
	for _, orgID := range orgIDs {
		if ctx.Err() != nil {
			return
		}
		s.sweepOrg(ctx, orgID, now)
	}
}

func (s *ReminderSweeper) sweepOrg(ctx context.Context, orgID uuid.UUID, now time.Time) {
	milestones, eventList, err := s.events.ListByOrgForTriage(ctx, orgID)
	if err != nil {
		s.logger.Error("triage snapshot for sweep", zap.Error(err), zap.String("org_id", orgID.String()))
		return
	}

	emailByUser := make(map[uuid.UUID]string)
	for _, item := range attention.Build(milestones, eventList, now) {
		m := item.Milestone
		if m.AssigneeID == nil {
			continue
		}

		sent, err := s.logs.ReminderSentSince(ctx, m.ID, now.AddDate(0, 0, -1))
		if err != nil {
			s.logger.Error("reminder dedupe check", zap.Error(err), zap.String("milestone_id", m.ID.String()))
			continue
		}
		if sent {
			continue
		}

		email, ok := emailByUser[*m.AssigneeID]
		if !ok {
			user, err := s.users.GetByID(ctx, *m.AssigneeID)
			if err != nil {
				s.logger.Warn("assignee lookup failed", zap.Error(err), zap.String("user_id", m.AssigneeID.String()))
				continue
			}
			email = user.Email
			emailByUser[*m.AssigneeID] = email
		}

		payload := queue.ReminderEmailPayload{
			OrganizationID: orgID,
			EventID:        item.Event.ID,
			MilestoneID:    m.ID,
			RecipientEmail: email,
			AttentionType:  string(item.Type),
			MilestoneTitle: m.Title,
			EventTitle:     item.Event.Title,
			DueDate:        m.DueDate,
		}
		if err := s.queue.EnqueueReminderEmail(ctx, payload); err != nil {
			s.logger.Error("enqueue reminder", zap.Error(err), zap.String("milestone_id", m.ID.String()))
		}
	}
}
