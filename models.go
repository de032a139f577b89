package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/resumematch/internal/analyzer"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type WorkerConfig struct {
	Store       sessionStore
	Objects     objectFetcher
	Publisher   updatePublisher
	Analyzer    *analyzer.Analyzer
	Logger      *zap.Logger
	RABBITMQUrl string

	mu        sync.Mutex
	consumers []*amqp.Connection
	stopped   bool
}

// ResumeAnalysis is one résumé's outcome inside a session. Failed résumés
// carry the error instead of a result.
type ResumeAnalysis struct {
	ResumeID         uuid.UUID `json:"resume_id"`
	OriginalFilename string    `json:"original_filename"`
	analyzer.MatchResult
	IsErrorResult bool   `json:"is_error_result"`
	Error         string `json:"error,omitempty"`
}

type SessionResults struct {
	SessionID uuid.UUID        `json:"session_id"`
	Results   []ResumeAnalysis `json:"results"`
}

type Session struct {
	ID             uuid.UUID `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Name           string    `json:"name"`
	UserID         uuid.UUID `json:"user_id"`
	Status         string    `json:"status"`
	JobTitle       string    `json:"job_title"`
	JobDescription string    `json:"job_description"`
}

const (
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)
