package dialogue

import "errors"

var (
	ErrInvalidStage   = errors.New("invalid conversation stage")
	ErrTooManyHops    = errors.New("conversation did not settle within the hop limit")
	ErrNoDoctorChosen = errors.New("slot selection without a selected doctor")
	ErrSessionBusy    = errors.New("another turn for this conversation is in progress")
)
