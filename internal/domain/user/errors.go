package user

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrUsernameTaken   = errors.New("username is already taken")
	ErrInvalidRole     = errors.New("invalid role specified")
)
