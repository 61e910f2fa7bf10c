package dialogue

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain/user"
)

// Doctor is the part of a doctor's profile a session carries between turns.
type Doctor struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Specialization string    `json:"specialization"`
}

func doctorFromUser(u *user.User) Doctor {
	return Doctor{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Specialization: u.Specialization,
	}
}

func (d Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}

func (d Doctor) Title() string {
	return "Dr. " + d.FullName()
}

type PendingPrescription struct {
	ID             uuid.UUID `json:"id"`
	MedicationName string    `json:"medication_name"`
}

// Session is one patient's conversation state. It is owned by a single
// turn at a time; see Manager.
type Session struct {
	Stage                Stage                 `json:"stage"`
	DoctorCandidates     []Doctor              `json:"doctor_candidates,omitempty"`
	SelectedDoctor       *Doctor               `json:"selected_doctor,omitempty"`
	PendingPrescriptions []PendingPrescription `json:"pending_prescriptions,omitempty"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

func NewSession() *Session {
	return &Session{Stage: StageGeneral}
}

// Reset returns the session to a fresh general conversation.
func (s *Session) Reset() {
	updated := s.UpdatedAt
	*s = Session{Stage: StageGeneral, UpdatedAt: updated}
}

func (s *Session) Clone() *Session {
	c := *s
	if s.DoctorCandidates != nil {
		c.DoctorCandidates = append([]Doctor(nil), s.DoctorCandidates...)
	}
	if s.SelectedDoctor != nil {
		d := *s.SelectedDoctor
		c.SelectedDoctor = &d
	}
	if s.PendingPrescriptions != nil {
		c.PendingPrescriptions = append([]PendingPrescription(nil), s.PendingPrescriptions...)
	}
	return &c
}

// findCandidate matches the whole lower-cased message against each
// candidate's "first last" name. First match wins.
func (s *Session) findCandidate(text string) (Doctor, bool) {
	for _, d := range s.DoctorCandidates {
		if strings.ToLower(d.FullName()) == text {
			return d, true
		}
	}
	return Doctor{}, false
}

func (s *Session) backToGeneral() {
	s.Stage = StageGeneral
	s.DoctorCandidates = nil
	s.SelectedDoctor = nil
	s.PendingPrescriptions = nil
}
