// Package worker runs the background reminder dispatch loop and holds the
// per-patient notification queues it fills.
package worker

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

type Notification struct {
	ReminderID     uuid.UUID `json:"reminder_id"`
	PrescriptionID uuid.UUID `json:"prescription_id"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage"`
	ScheduledFor   time.Time `json:"scheduled_for"`
	Message        string    `json:"message"`
}

// ReminderQueue is a bounded in-memory inbox per patient. Push never
// blocks: a full inbox drops its oldest notification.
type ReminderQueue struct {
	mu       sync.Mutex
	capacity int
	inboxes  map[uuid.UUID][]Notification
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewReminderQueue(capacity int, m *metrics.Collector, log *zap.Logger) *ReminderQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &ReminderQueue{
		capacity: capacity,
		inboxes:  make(map[uuid.UUID][]Notification),
		metrics:  m,
		log:      log,
	}
}

func (q *ReminderQueue) Push(patientID uuid.UUID, n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()

	inbox := q.inboxes[patientID]
	if len(inbox) >= q.capacity {
		dropped := inbox[0]
		inbox = inbox[1:]
		q.metrics.ReminderQueueDrops.Inc()
		q.log.Warn("reminder inbox full, dropping oldest notification",
			zap.String("patient_id", patientID.String()),
			zap.String("reminder_id", dropped.ReminderID.String()),
		)
	}
	q.inboxes[patientID] = append(inbox, n)
}

// Drain returns and clears everything queued for the patient, oldest first.
func (q *ReminderQueue) Drain(patientID uuid.UUID) []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	inbox := q.inboxes[patientID]
	delete(q.inboxes, patientID)
	if inbox == nil {
		return []Notification{}
	}
	return inbox
}

func (q *ReminderQueue) Pending(patientID uuid.UUID) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inboxes[patientID])
}
