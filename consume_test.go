package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/resumematch/internal/database"
	"github.com/muhammadolammi/resumematch/internal/testdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type fakeStore struct {
	mu       sync.Mutex
	resumes  []database.ResumeDocument
	listErr  error
	statuses []string
}

func (s *fakeStore) ListResumeDocumentsBySession(_ context.Context, sessionID uuid.UUID) ([]database.ResumeDocument, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []database.ResumeDocument
	for _, r := range s.resumes {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) SetSessionStatus(_ context.Context, arg database.SetSessionStatusParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, arg.Status)
	return nil
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	// failures is the number of calls that fail before objects are served
	failures int
	calls    int
}

func (f *fakeObjects) Fetch(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection reset by peer")
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return data, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	updates []map[string]any
}

func (p *fakePublisher) Publish(_ uuid.UUID, update map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
	return nil
}

func (p *fakePublisher) last(t *testing.T) map[string]any {
	t.Helper()
	require.NotEmpty(t, p.updates)
	return p.updates[len(p.updates)-1]
}

func newTestWorker(t *testing.T, store *fakeStore, objects *fakeObjects) (*WorkerConfig, *fakePublisher) {
	t.Helper()
	old := retryBackoff
	retryBackoff = time.Millisecond
	t.Cleanup(func() { retryBackoff = old })

	pub := &fakePublisher{}
	return &WorkerConfig{
		Store:     store,
		Objects:   objects,
		Publisher: pub,
		Analyzer:  testAnalyzer(),
		Logger:    zap.NewNop(),
	}, pub
}

func sessionBody(t *testing.T, s Session) []byte {
	t.Helper()
	body, err := json.Marshal(s)
	require.NoError(t, err)
	return body
}

func TestHandleMessage_Completed(t *testing.T) {
	session := Session{ID: uuid.New(), Name: "backend", JobTitle: "Engineer", JobDescription: scenarioJob}
	docxID, pdfID := uuid.New(), uuid.New()
	store := &fakeStore{resumes: []database.ResumeDocument{
		{ID: docxID, OriginalFilename: "a.docx", Mime: mimeDOCX, ObjectKey: "k/a.docx", SessionID: session.ID},
		{ID: pdfID, OriginalFilename: "b.pdf", Mime: mimePDF + "; charset=binary", ObjectKey: "k/b.pdf", SessionID: session.ID},
		{ID: uuid.New(), OriginalFilename: "other.pdf", Mime: mimePDF, ObjectKey: "k/other.pdf", SessionID: uuid.New()},
	}}
	objects := &fakeObjects{objects: map[string][]byte{
		"k/a.docx": testdoc.DOCX(scenarioResume),
		"k/b.pdf":  testdoc.PDF("aws and python"),
	}}
	wc, pub := newTestWorker(t, store, objects)

	wc.handleMessage(context.Background(), sessionBody(t, session))

	assert.Equal(t, []string{statusProcessing, statusCompleted}, store.statuses)
	require.Len(t, pub.updates, 2)
	assert.Equal(t, statusProcessing, pub.updates[0]["status"])
	assert.Equal(t, session.ID, pub.updates[0]["session_id"])

	last := pub.last(t)
	assert.Equal(t, statusCompleted, last["status"])
	results, ok := last["results"].([]ResumeAnalysis)
	require.True(t, ok)
	require.Len(t, results, 2)

	assert.Equal(t, docxID, results[0].ResumeID)
	assert.False(t, results[0].IsErrorResult)
	assert.Equal(t, []string{"python"}, results[0].MatchingSkills)
	assert.Equal(t, []string{"aws"}, results[0].MissingSkills)
	assert.InDelta(t, 39.33, results[0].MatchScore, 0.005)

	assert.Equal(t, pdfID, results[1].ResumeID)
	assert.False(t, results[1].IsErrorResult)
	assert.Equal(t, []string{"aws", "python"}, results[1].MatchingSkills)
	assert.Equal(t, 100.0, results[1].SkillMatch)
}

func TestHandleMessage_PerResumeErrors(t *testing.T) {
	session := Session{ID: uuid.New(), JobDescription: scenarioJob}
	store := &fakeStore{resumes: []database.ResumeDocument{
		{ID: uuid.New(), OriginalFilename: "missing.pdf", Mime: mimePDF, ObjectKey: "k/missing.pdf", SessionID: session.ID},
		{ID: uuid.New(), OriginalFilename: "notes.txt", Mime: "text/plain", ObjectKey: "k/notes.txt", SessionID: session.ID},
		{ID: uuid.New(), OriginalFilename: "broken.pdf", Mime: mimePDF, ObjectKey: "k/broken.pdf", SessionID: session.ID},
		{ID: uuid.New(), OriginalFilename: "cv.docx", Mime: "application/octet-stream", ObjectKey: "k/cv.docx", SessionID: session.ID},
	}}
	objects := &fakeObjects{objects: map[string][]byte{
		"k/notes.txt":  []byte(scenarioResume),
		"k/broken.pdf": []byte("%PDF-garbage"),
		"k/cv.docx":    testdoc.DOCX(scenarioResume),
	}}
	wc, pub := newTestWorker(t, store, objects)

	wc.handleMessage(context.Background(), sessionBody(t, session))

	last := pub.last(t)
	assert.Equal(t, statusCompleted, last["status"])
	results := last["results"].([]ResumeAnalysis)
	require.Len(t, results, 4)

	assert.True(t, results[0].IsErrorResult)
	assert.Contains(t, results[0].Error, "file download error")
	assert.True(t, results[1].IsErrorResult)
	assert.Contains(t, results[1].Error, "unsupported file format")
	assert.True(t, results[2].IsErrorResult)
	assert.Contains(t, results[2].Error, "text extraction error")

	// unknown MIME falls back to the file extension
	assert.False(t, results[3].IsErrorResult)
	assert.Equal(t, []string{"python", "sql"}, results[3].Skills)
}

func TestHandleMessage_RetriesDownload(t *testing.T) {
	session := Session{ID: uuid.New(), JobDescription: scenarioJob}
	store := &fakeStore{resumes: []database.ResumeDocument{
		{ID: uuid.New(), OriginalFilename: "a.docx", Mime: mimeDOCX, ObjectKey: "k/a.docx", SessionID: session.ID},
	}}
	objects := &fakeObjects{
		objects:  map[string][]byte{"k/a.docx": testdoc.DOCX(scenarioResume)},
		failures: 2,
	}
	wc, pub := newTestWorker(t, store, objects)

	wc.handleMessage(context.Background(), sessionBody(t, session))

	assert.Equal(t, 3, objects.calls)
	results := pub.last(t)["results"].([]ResumeAnalysis)
	require.Len(t, results, 1)
	assert.False(t, results[0].IsErrorResult)
}

func TestHandleMessage_Failed(t *testing.T) {
	t.Run("bad body", func(t *testing.T) {
		store := &fakeStore{}
		wc, pub := newTestWorker(t, store, &fakeObjects{})
		core, logs := observer.New(zap.ErrorLevel)
		wc.Logger = zap.New(core)

		wc.handleMessage(context.Background(), []byte("{not json"))

		assert.Empty(t, store.statuses)
		require.Len(t, pub.updates, 1)
		assert.Equal(t, statusFailed, pub.last(t)["status"])
		assert.Equal(t, 1, logs.FilterMessage("error unmarshalling message body").Len())
	})

	t.Run("missing session id", func(t *testing.T) {
		store := &fakeStore{}
		wc, pub := newTestWorker(t, store, &fakeObjects{})

		core, logs := observer.New(zap.ErrorLevel)
		wc.Logger = zap.New(core)

		wc.handleMessage(context.Background(), []byte(`{"job_description":"python"}`))

		assert.Empty(t, store.statuses)
		require.Len(t, pub.updates, 1)
		assert.Equal(t, statusFailed, pub.last(t)["status"])
		assert.Equal(t, 1, logs.FilterMessage("message has no session id").Len())
	})

	t.Run("store error", func(t *testing.T) {
		store := &fakeStore{listErr: errors.New("connection refused")}
		wc, pub := newTestWorker(t, store, &fakeObjects{})

		wc.handleMessage(context.Background(), sessionBody(t, Session{ID: uuid.New()}))

		assert.Equal(t, []string{statusProcessing, statusFailed}, store.statuses)
		last := pub.last(t)
		assert.Equal(t, statusFailed, last["status"])
		assert.NotContains(t, last, "results")
	})
}
