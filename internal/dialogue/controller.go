// Package dialogue runs the patient chat: a per-patient state machine that
// suggests doctors, books slots and walks the patient through activating
// prescription reminders.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/intent"
)

const DefaultMaxHops = 3

type DoctorInfo struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Specialization string `json:"specialization"`
}

type Reply struct {
	Response string
	Doctors  []DoctorInfo
}

type Dependencies struct {
	Classifier    intent.Classifier
	Doctors       DoctorDirectory
	Slots         SlotFinder
	Appointments  AppointmentBooker
	Prescriptions PrescriptionStore
	Reminders     ReminderActivator
}

type Controller struct {
	classifier    intent.Classifier
	doctors       DoctorDirectory
	slots         SlotFinder
	appointments  AppointmentBooker
	prescriptions PrescriptionStore
	reminders     ReminderActivator
	maxHops       int
	log           *zap.Logger
}

func NewController(deps Dependencies, maxHops int, log *zap.Logger) *Controller {
	if maxHops < 1 {
		maxHops = DefaultMaxHops
	}
	return &Controller{
		classifier:    deps.Classifier,
		doctors:       deps.Doctors,
		slots:         deps.Slots,
		appointments:  deps.Appointments,
		prescriptions: deps.Prescriptions,
		reminders:     deps.Reminders,
		maxHops:       maxHops,
		log:           log,
	}
}

// Process handles one patient message against sess and mutates it in place.
//
// When a collaborator fails the session is restored to what it was before
// the turn, the generic apology is returned as the reply and the cause is
// returned as the error. The reply is always safe to show the patient.
func (c *Controller) Process(ctx context.Context, patientID uuid.UUID, sess *Session, message string) (reply Reply, err error) {
	ctx, span := otel.Tracer("medibook/dialogue").Start(ctx, "Controller.Process",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()
	span.SetAttributes(
		attribute.String("patient.id", patientID.String()),
		attribute.String("chat.stage.before", sess.Stage.String()),
	)

	text := normalizeMessage(message)
	if resetWords.has(text) {
		sess.Reset()
		return Reply{Response: resetReply}, nil
	}

	snapshot := sess.Clone()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chat turn panicked: %v", r)
		}
		if err != nil {
			*sess = *snapshot
			span.RecordError(err)
			span.SetStatus(codes.Error, "chat turn failed")
			reply = Reply{Response: genericErrorReply}
			return
		}
		span.SetAttributes(attribute.String("chat.stage.after", sess.Stage.String()))
	}()

	return c.run(ctx, patientID, sess, text)
}

// run steps the state machine until a handler produces a reply. A handler
// that only moves the session forward hands off to the next stage within
// the same turn, at most maxHops times.
func (c *Controller) run(ctx context.Context, patientID uuid.UUID, sess *Session, text string) (Reply, error) {
	for hop := 0; hop < c.maxHops; hop++ {
		reply, handoff, err := c.step(ctx, patientID, sess, text)
		if err != nil {
			return Reply{}, err
		}
		if !handoff {
			return reply, nil
		}
	}
	return Reply{}, fmt.Errorf("%w (%d)", ErrTooManyHops, c.maxHops)
}

func (c *Controller) step(ctx context.Context, patientID uuid.UUID, sess *Session, text string) (Reply, bool, error) {
	switch sess.Stage {
	case StageGeneral:
		return c.handleGeneral(ctx, sess, text)
	case StageAwaitingDoctorSelection:
		reply, err := c.handleDoctorSelection(ctx, sess, text)
		return reply, false, err
	case StageAwaitingSlotSelection:
		reply, err := c.handleSlotSelection(ctx, patientID, sess, text)
		return reply, false, err
	case StageCheckInactiveAppointments:
		reply, err := c.handleCheckInactive(ctx, patientID, sess)
		return reply, false, err
	case StageActivateReminders:
		reply, err := c.handleActivateReminders(ctx, sess, text)
		return reply, false, err
	case StageWaitingForExit:
		return c.handleWaitingForExit(sess, text), false, nil
	}
	return Reply{}, false, fmt.Errorf("%w: %s", ErrInvalidStage, sess.Stage)
}

func (c *Controller) handleGeneral(ctx context.Context, sess *Session, text string) (Reply, bool, error) {
	in, err := c.classifier.Classify(ctx, text)
	if err != nil {
		return Reply{}, false, fmt.Errorf("classifying message: %w", err)
	}

	switch {
	case in.CheckPrescriptions:
		sess.Stage = StageCheckInactiveAppointments
		return Reply{}, true, nil
	case in.SuggestDoctor:
		return c.suggestDoctors(ctx, sess, in), false, nil
	}
	return Reply{Response: in.Response + startOverHint}, false, nil
}

func (c *Controller) suggestDoctors(ctx context.Context, sess *Session, in intent.Intent) Reply {
	users, err := c.doctors.DoctorsBySpecialization(ctx, in.Specialization)
	if err != nil {
		c.log.Warn("doctor lookup failed",
			zap.String("specialization", in.Specialization),
			zap.Error(err),
		)
		return Reply{Response: doctorLookupFailedReply(in.Response)}
	}
	if len(users) == 0 {
		return Reply{Response: noDoctorsReply(in.Response, in.Specialization)}
	}

	candidates := make([]Doctor, len(users))
	infos := make([]DoctorInfo, len(users))
	for i, u := range users {
		candidates[i] = doctorFromUser(u)
		infos[i] = DoctorInfo{FirstName: u.FirstName, LastName: u.LastName, Specialization: u.Specialization}
	}

	sess.Stage = StageAwaitingDoctorSelection
	sess.DoctorCandidates = candidates
	sess.SelectedDoctor = nil

	return Reply{Response: doctorListReply(in.Response, candidates), Doctors: infos}
}

func (c *Controller) handleDoctorSelection(ctx context.Context, sess *Session, text string) (Reply, error) {
	doctor, ok := sess.findCandidate(text)
	if !ok {
		return Reply{Response: doctorNotFoundReply}, nil
	}

	slots, err := c.slots.AvailableSlots(ctx, doctor.ID)
	if err != nil {
		return Reply{}, fmt.Errorf("loading slots for doctor %s: %w", doctor.ID, err)
	}

	if len(slots) == 0 {
		var others []Doctor
		for _, d := range sess.DoctorCandidates {
			if d.ID == doctor.ID {
				continue
			}
			open, err := c.slots.AvailableSlots(ctx, d.ID)
			if err != nil {
				return Reply{}, fmt.Errorf("loading slots for doctor %s: %w", d.ID, err)
			}
			if len(open) > 0 {
				others = append(others, d)
			}
		}
		return Reply{Response: noSlotsReply(doctor, others)}, nil
	}

	sess.Stage = StageAwaitingSlotSelection
	sess.SelectedDoctor = &doctor

	return Reply{Response: slotListReply(doctor, slots)}, nil
}

// handleSlotSelection re-reads the doctor's open slots so the number the
// patient typed indexes the same ordering they were shown.
func (c *Controller) handleSlotSelection(ctx context.Context, patientID uuid.UUID, sess *Session, text string) (Reply, error) {
	if sess.SelectedDoctor == nil {
		return Reply{}, ErrNoDoctorChosen
	}
	doctor := *sess.SelectedDoctor

	slots, err := c.slots.AvailableSlots(ctx, doctor.ID)
	if err != nil {
		return Reply{}, fmt.Errorf("loading slots for doctor %s: %w", doctor.ID, err)
	}

	idx, ok := parseSlotChoice(text, len(slots))
	if !ok {
		return Reply{Response: invalidSlotReply}, nil
	}
	slot := slots[idx]

	_, err = c.appointments.Book(ctx, &appointment.BookCommand{
		PatientID:  patientID,
		DoctorID:   doctor.ID,
		TimeSlotID: slot.ID,
	})
	if errors.Is(err, timeslot.ErrSlotUnavailable) {
		return Reply{Response: invalidSlotReply}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("booking slot %s: %w", slot.ID, err)
	}

	sess.backToGeneral()
	return Reply{Response: bookedReply(doctor, slot)}, nil
}

func (c *Controller) handleCheckInactive(ctx context.Context, patientID uuid.UUID, sess *Session) (Reply, error) {
	appt, err := c.appointments.LatestInactive(ctx, patientID)
	if errors.Is(err, appointment.ErrNoInactiveFound) {
		sess.Stage = StageWaitingForExit
		return Reply{Response: noInactiveAppointmentReply}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("finding latest inactive appointment: %w", err)
	}

	prescriptions, err := c.prescriptions.ForPatientDoctor(ctx, patientID, appt.DoctorID)
	if err != nil {
		return Reply{}, fmt.Errorf("listing prescriptions: %w", err)
	}
	if len(prescriptions) == 0 {
		sess.Stage = StageWaitingForExit
		return Reply{Response: noPrescriptionsReply}, nil
	}

	var pending []PendingPrescription
	for _, p := range prescriptions {
		if !p.IsActive {
			continue
		}
		active, err := c.reminders.HasActive(ctx, p.ID)
		if err != nil {
			return Reply{}, fmt.Errorf("checking reminders for prescription %s: %w", p.ID, err)
		}
		if !active {
			pending = append(pending, PendingPrescription{ID: p.ID, MedicationName: p.MedicationName})
		}
	}

	if len(pending) == 0 {
		sess.Stage = StageWaitingForExit
		return Reply{Response: allRemindersActiveReply}, nil
	}

	sess.Stage = StageActivateReminders
	sess.PendingPrescriptions = pending
	return Reply{Response: pendingListReply(pending)}, nil
}

// handleActivateReminders activates one prescription per affirmative turn.
func (c *Controller) handleActivateReminders(ctx context.Context, sess *Session, text string) (Reply, error) {
	switch {
	case affirmativeWords.has(text):
	case negativeWords.has(text):
		sess.backToGeneral()
		return Reply{Response: declinedReply}, nil
	default:
		return Reply{Response: yesNoRetryReply}, nil
	}

	if len(sess.PendingPrescriptions) == 0 {
		sess.backToGeneral()
		return Reply{Response: nothingPendingReply}, nil
	}
	head := sess.PendingPrescriptions[0]

	activated, err := c.reminders.ActivateForPrescription(ctx, head.ID)
	if isActivationRefusal(err) {
		c.log.Warn("reminder activation refused",
			zap.String("prescription_id", head.ID.String()),
			zap.Error(err),
		)
		sess.backToGeneral()
		return Reply{Response: activationFailedReply(head.MedicationName, err)}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("activating reminders for prescription %s: %w", head.ID, err)
	}

	if err := c.prescriptions.MarkInactive(ctx, head.ID); err != nil {
		c.log.Warn("failed to mark prescription inactive",
			zap.String("prescription_id", head.ID.String()),
			zap.Error(err),
		)
	}

	times := reminderTimes(activated)
	sess.PendingPrescriptions = sess.PendingPrescriptions[1:]

	if len(sess.PendingPrescriptions) > 0 {
		next := sess.PendingPrescriptions[0].MedicationName
		return Reply{Response: activatedNextReply(head.MedicationName, times, next)}, nil
	}

	sess.backToGeneral()
	return Reply{Response: activatedDoneReply(head.MedicationName, times)}, nil
}

func (c *Controller) handleWaitingForExit(sess *Session, text string) Reply {
	if exitWords.has(text) {
		sess.backToGeneral()
		return Reply{Response: exitReply}
	}
	return Reply{Response: exitRetryReply}
}

// isActivationRefusal reports errors the patient should hear about directly
// instead of the generic apology.
func isActivationRefusal(err error) bool {
	return errors.Is(err, reminder.ErrNoInactiveReminders) ||
		errors.Is(err, prescription.ErrPrescriptionNotFound)
}

// reminderTimes lists the distinct times of day, in schedule order.
func reminderTimes(reminders []*reminder.Reminder) string {
	seen := make(map[string]struct{}, len(reminders))
	var times []string
	for _, r := range reminders {
		t := r.Kitchen()
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		times = append(times, t)
	}
	return strings.Join(times, ", ")
}
