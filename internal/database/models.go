package database

import (
	"github.com/google/uuid"
)

type ResumeDocument struct {
	ID               uuid.UUID
	OriginalFilename string
	Mime             string
	SizeBytes        int64
	ObjectKey        string
	SessionID        uuid.UUID
}
