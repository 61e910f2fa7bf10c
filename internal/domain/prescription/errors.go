package prescription

import "errors"

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrNothingToUpdate      = errors.New("no prescription fields to update")
)
