package usecase

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoResumes          = errors.New("no resume data available for analysis")
	ErrNoPersonnel        = errors.New("no selected personnel found for analysis")
	ErrNoInterviewHistory = errors.New("no matching interview history found")
	ErrMissingCredentials = errors.New("sender email and password must be provided")
	ErrFileNotFound       = errors.New("file not found")
	ErrUnsupportedSource  = errors.New("only GitHub repository URLs are supported")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
