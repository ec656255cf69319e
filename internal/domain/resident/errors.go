package resident

import "errors"

var (
	ErrResidentNotFound      = errors.New("resident not found")
	ErrResidentAlreadyExists = errors.New("resident with this national ID already exists")
	ErrResidentArchived      = errors.New("resident record is archived")
)
