package dialogue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/reminder"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/timeslot"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
	"github.com/dmehra2102/prod-golang-projects/medibook/internal/intent"
)

var errBoom = errors.New("connection refused")

type fakeDirectory struct {
	doctors []*user.User
	err     error
	asked   []string
}

func (f *fakeDirectory) DoctorsBySpecialization(_ context.Context, specialization string) ([]*user.User, error) {
	f.asked = append(f.asked, specialization)
	return f.doctors, f.err
}

type fakeSlots struct {
	byDoctor map[uuid.UUID][]*timeslot.TimeSlot
	err      error
}

func (f *fakeSlots) AvailableSlots(_ context.Context, doctorID uuid.UUID) ([]*timeslot.TimeSlot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byDoctor[doctorID], nil
}

type fakeBooker struct {
	booked    []*appointment.BookCommand
	bookErr   error
	latest    *appointment.Appointment
	latestErr error
}

func (f *fakeBooker) Book(_ context.Context, cmd *appointment.BookCommand) (*appointment.Appointment, error) {
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	f.booked = append(f.booked, cmd)
	return &appointment.Appointment{ID: uuid.New(), PatientID: cmd.PatientID, DoctorID: cmd.DoctorID, TimeSlotID: cmd.TimeSlotID}, nil
}

func (f *fakeBooker) LatestInactive(context.Context, uuid.UUID) (*appointment.Appointment, error) {
	return f.latest, f.latestErr
}

type fakePrescriptions struct {
	list           []*prescription.Prescription
	err            error
	markErr        error
	markedInactive []uuid.UUID
}

func (f *fakePrescriptions) ForPatientDoctor(context.Context, uuid.UUID, uuid.UUID) ([]*prescription.Prescription, error) {
	return f.list, f.err
}

func (f *fakePrescriptions) MarkInactive(_ context.Context, id uuid.UUID) error {
	f.markedInactive = append(f.markedInactive, id)
	return f.markErr
}

type fakeReminders struct {
	active      map[uuid.UUID]bool
	frequency   map[uuid.UUID]int
	activateErr error
	activated   []uuid.UUID
}

func (f *fakeReminders) HasActive(_ context.Context, id uuid.UUID) (bool, error) {
	return f.active[id], nil
}

func (f *fakeReminders) ActivateForPrescription(_ context.Context, id uuid.UUID) ([]*reminder.Reminder, error) {
	if f.activateErr != nil {
		return nil, f.activateErr
	}
	f.activated = append(f.activated, id)

	freq := f.frequency[id]
	if freq == 0 {
		freq = 2
	}
	rs, err := reminder.Schedule(id, uuid.New(), freq, 2)
	if err != nil {
		return nil, err
	}
	return reminder.AssignDates(rs, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), freq, 2), nil
}

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string) (intent.Intent, error) {
	return intent.Intent{}, errBoom
}

type harness struct {
	dir      *fakeDirectory
	slots    *fakeSlots
	booker   *fakeBooker
	rx       *fakePrescriptions
	rem      *fakeReminders
	ctrl     *Controller
	patient  uuid.UUID
	cardio   *user.User
	cardio2  *user.User
	morning  *timeslot.TimeSlot
	midday   *timeslot.TimeSlot
	classify intent.Classifier
}

func newHarness(maxHops int) *harness {
	h := &harness{
		patient: uuid.New(),
		cardio:  &user.User{ID: uuid.New(), FirstName: "John", LastName: "Smith", Specialization: "Cardiologist"},
		cardio2: &user.User{ID: uuid.New(), FirstName: "Ana", LastName: "Lopez", Specialization: "Cardiologist"},
	}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	h.morning = &timeslot.TimeSlot{ID: uuid.New(), DoctorID: h.cardio.ID, StartTime: day.Add(9 * time.Hour), EndTime: day.Add(9*time.Hour + 30*time.Minute), Status: timeslot.StatusAvailable}
	h.midday = &timeslot.TimeSlot{ID: uuid.New(), DoctorID: h.cardio.ID, StartTime: day.Add(13 * time.Hour), EndTime: day.Add(13*time.Hour + 30*time.Minute), Status: timeslot.StatusAvailable}

	h.dir = &fakeDirectory{doctors: []*user.User{h.cardio, h.cardio2}}
	h.slots = &fakeSlots{byDoctor: map[uuid.UUID][]*timeslot.TimeSlot{
		h.cardio.ID: {h.morning, h.midday},
	}}
	h.booker = &fakeBooker{latestErr: appointment.ErrNoInactiveFound}
	h.rx = &fakePrescriptions{}
	h.rem = &fakeReminders{active: map[uuid.UUID]bool{}, frequency: map[uuid.UUID]int{}}
	h.classify = intent.NewKeywordClassifier()

	h.ctrl = NewController(Dependencies{
		Classifier:    h.classify,
		Doctors:       h.dir,
		Slots:         h.slots,
		Appointments:  h.booker,
		Prescriptions: h.rx,
		Reminders:     h.rem,
	}, maxHops, zap.NewNop())
	return h
}
