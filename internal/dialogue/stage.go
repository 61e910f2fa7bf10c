package dialogue

import "fmt"

// Stage is where a patient's conversation currently sits.
type Stage uint8

const (
	StageGeneral Stage = iota
	StageAwaitingDoctorSelection
	StageAwaitingSlotSelection
	StageCheckInactiveAppointments
	StageActivateReminders
	StageWaitingForExit
)

var stageNames = [...]string{
	StageGeneral:                   "general",
	StageAwaitingDoctorSelection:   "awaiting_doctor_selection",
	StageAwaitingSlotSelection:     "awaiting_slot_selection",
	StageCheckInactiveAppointments: "check_inactive_appointments",
	StageActivateReminders:         "activate_reminders",
	StageWaitingForExit:            "waiting_for_exit",
}

func (s Stage) IsValid() bool {
	return int(s) < len(stageNames)
}

func (s Stage) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
	return stageNames[s]
}

func (s Stage) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStage, uint8(s))
	}
	return []byte(stageNames[s]), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	for i, name := range stageNames {
		if name == string(text) {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidStage, text)
}
