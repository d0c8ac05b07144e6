package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/silverlynx18/sock/internal/services"
	"github.com/silverlynx18/sock/pkg/logger"
)

const (
	defaultAuditRetentionDays        = 90
	defaultNotificationRetentionDays = 30
	defaultInviteSpec                = "@hourly"
	defaultNotificationSpec          = "@daily"
	defaultAuditSpec                 = "@daily"
)

// Cleaner coordinates background maintenance tasks: sweeping overdue
// invitations into the expired state, pruning old read notifications, and
// enforcing audit log retention.
type Cleaner struct {
	invites       *services.InviteService
	notifications *services.NotificationService
	audit         *services.AuditService

	cron *cron.Cron
	now  func() time.Time
	log  *zap.Logger

	enabled               bool
	auditRetention        int
	notificationRetention int

	inviteSchedule       string
	notificationSchedule string
	auditSchedule        string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.auditRetention = days
		}
	}
}

// WithNotificationRetentionDays adjusts how long read notifications are kept.
func WithNotificationRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.notificationRetention = days
		}
	}
}

// WithInviteSchedule overrides the cron specification for the invite sweep.
func WithInviteSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.inviteSchedule = spec
		}
	}
}

// WithNotificationSchedule overrides the cron specification for notification pruning.
func WithNotificationSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.notificationSchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency
// results in the corresponding job being skipped.
func NewCleaner(invites *services.InviteService, notifications *services.NotificationService, audit *services.AuditService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		invites:               invites,
		notifications:         notifications,
		audit:                 audit,
		now:                   time.Now,
		auditRetention:        defaultAuditRetentionDays,
		notificationRetention: defaultNotificationRetentionDays,
		inviteSchedule:        defaultInviteSpec,
		notificationSchedule:  defaultNotificationSpec,
		auditSchedule:         defaultAuditSpec,
		log:                   logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.invites != nil || cleaner.notifications != nil || cleaner.audit != nil

	return cleaner
}

// Start registers the jobs with the cron scheduler and launches it if at
// least one job is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.invites != nil {
		if _, err := c.cron.AddFunc(c.inviteSchedule, func() {
			ctx := context.Background()
			count, err := c.invites.ExpireOverdue(ctx, c.now())
			if err != nil {
				c.log.Warn("invite expiry sweep failed", zap.Error(err))
				return
			}
			if count > 0 {
				c.log.Info("expired overdue invitations", zap.Int64("count", count))
			}
		}); err != nil {
			return err
		}
	}

	if c.notifications != nil && c.notificationRetention > 0 {
		if _, err := c.cron.AddFunc(c.notificationSchedule, func() {
			ctx := context.Background()
			if _, err := c.notifications.PruneRead(ctx, c.notificationRetention); err != nil {
				c.log.Warn("notification pruning failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.audit != nil && c.auditRetention > 0 {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			ctx := context.Background()
			if _, err := c.audit.CleanupOlderThan(ctx, c.auditRetention); err != nil {
				c.log.Warn("audit cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured jobs sequentially. Used in tests and during
// graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.invites != nil {
		if _, err := c.invites.ExpireOverdue(ctx, c.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.notifications != nil && c.notificationRetention > 0 {
		if _, err := c.notifications.PruneRead(ctx, c.notificationRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.audit != nil && c.auditRetention > 0 {
		if _, err := c.audit.CleanupOlderThan(ctx, c.auditRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
