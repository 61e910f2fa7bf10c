package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

type DueSource interface {
	ListDue(ctx context.Context, date time.Time, clock string, limit int) ([]*reminder.DueReminder, error)
	MarkSent(ctx context.Context, ids []uuid.UUID) error
}

type DispatcherConfig struct {
	Interval  time.Duration
	BatchSize int
	Location  *time.Location
}

// Dispatcher polls for reminders whose time has come, marks them sent and
// queues a notification for the patient.
type Dispatcher struct {
	source  DueSource
	queue   *ReminderQueue
	cfg     DispatcherConfig
	metrics *metrics.Collector
	log     *zap.Logger
	now     func() time.Time
	done    chan struct{}
}

func NewDispatcher(source DueSource, queue *ReminderQueue, cfg DispatcherConfig, m *metrics.Collector, log *zap.Logger) *Dispatcher {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 500
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Dispatcher{
		source:  source,
		queue:   queue,
		cfg:     cfg,
		metrics: m,
		log:     log,
		now:     time.Now,
		done:    make(chan struct{}),
	}
}

// Run dispatches once immediately and then on every tick until ctx is
// cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	d.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			d.log.Info("reminder dispatcher stopped")
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

// Done is closed once Run has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) tick(ctx context.Context) {
	n, err := d.DispatchOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			d.log.Error("reminder dispatch failed", zap.Error(err))
		}
		return
	}
	if n > 0 {
		d.log.Info("reminders dispatched", zap.Int("count", n))
	}
}

// DispatchOnce handles one batch of due reminders. They are marked sent
// before being queued so a failed write never produces a duplicate.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	now := d.now().In(d.cfg.Location)

	due, err := d.source.ListDue(ctx, now, now.Format("15:04"), d.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, len(due))
	for i, r := range due {
		ids[i] = r.ID
	}
	if err := d.source.MarkSent(ctx, ids); err != nil {
		return 0, err
	}

	for _, r := range due {
		d.queue.Push(r.PatientID, d.notificationFor(r))
	}
	d.metrics.RemindersDispatched.Add(float64(len(due)))

	return len(due), nil
}

func (d *Dispatcher) notificationFor(r *reminder.DueReminder) Notification {
	n := Notification{
		ReminderID:     r.ID,
		PrescriptionID: r.PrescriptionID,
		MedicationName: r.MedicationName,
		Dosage:         r.Dosage,
		Message:        fmt.Sprintf("It's %s: time to take %s (%s).", r.Kitchen(), r.MedicationName, r.Dosage),
	}

	if r.ReminderDate != nil {
		at := time.Date(r.ReminderDate.Year(), r.ReminderDate.Month(), r.ReminderDate.Day(), 0, 0, 0, 0, d.cfg.Location)
		if tod, err := reminder.ParseTimeOfDay(r.ReminderTime); err == nil {
			at = at.Add(time.Duration(tod.Hour)*time.Hour + time.Duration(tod.Minute)*time.Minute)
		}
		n.ScheduledFor = at
	}
	return n
}
