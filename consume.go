package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	appconfig "github.com/muhammadolammi/resumematch/internal/config"
	"github.com/muhammadolammi/resumematch/internal/database"
	"github.com/muhammadolammi/resumematch/internal/extract"
	"github.com/muhammadolammi/resumematch/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume analysis sessions from RabbitMQ",
	RunE:  runWorker,
}

func init() {
	workerCmd.Flags().Int("workers", 3, "number of consumers in the pool")
	viper.BindPFlag("worker.count", workerCmd.Flags().Lookup("workers"))
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) error {
	cfg, err := appconfig.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if err := cfg.ValidateWorker(); err != nil {
		return err
	}
	log, err := logger.New(cfg.JSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	db, err := sql.Open("postgres", cfg.Worker.DBURL)
	if err != nil {
		return fmt.Errorf("error opening db: %w", err)
	}
	defer db.Close()

	objects, err := newR2Store(context.Background(), cfg.Worker.R2)
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(cfg.Worker.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}

	workerConfig := &WorkerConfig{
		Store:       database.New(db),
		Objects:     objects,
		Publisher:   &amqpPublisher{conn: conn},
		Analyzer:    newAnalyzer(cfg, log),
		Logger:      log,
		RABBITMQUrl: cfg.Worker.RabbitMQURL,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info("shutting down workers")
		// closed connections close their delivery channels, which ends each worker loop
		workerConfig.stop()
		conn.Close()
	}()

	log.Info("starting consumer worker pool", zap.Int("workers", cfg.Worker.Count))
	workerConfig.StartConsumerWorkerPool(cfg.Worker.Count)
	return nil
}

func (workerConfig *WorkerConfig) stop() {
	workerConfig.mu.Lock()
	defer workerConfig.mu.Unlock()
	workerConfig.stopped = true
	for _, c := range workerConfig.consumers {
		c.Close()
	}
}

// track registers a consumer connection so stop can close it. It reports
// false when the pool is already stopping.
func (workerConfig *WorkerConfig) track(conn *amqp.Connection) bool {
	workerConfig.mu.Lock()
	defer workerConfig.mu.Unlock()
	if workerConfig.stopped {
		return false
	}
	workerConfig.consumers = append(workerConfig.consumers, conn)
	return true
}

func worker(id int, workerConfig *WorkerConfig, wg *sync.WaitGroup) {
	defer wg.Done()
	log := workerConfig.Logger.With(zap.Int("worker", id+1))

	conn, err := amqp.Dial(workerConfig.RABBITMQUrl)
	if err != nil {
		log.Error("error dialling rabbitmq", zap.Error(err))
		return
	}
	defer conn.Close()
	if !workerConfig.track(conn) {
		return
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Error("error connecting to rabbitmq channel", zap.Error(err))
		return
	}
	defer ch.Close()
	_, err = ch.QueueDeclare(
		"sessions", // queue name
		true,       // durable (survives broker restarts)
		false,      // auto-delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		log.Error("failed to declare queue", zap.Error(err))
		return
	}

	msgs, err := ch.Consume(
		"sessions", // queue name
		"",         // consumer tag
		true,       // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		log.Error("error consuming rabbitmq message", zap.Error(err))
		return
	}

	for msg := range msgs {
		workerConfig.handleMessage(context.Background(), msg.Body)
	}
	log.Info("delivery channel closed")
}

// handleMessage decodes one session message, analyzes its résumés and
// publishes the status transitions.
func (workerConfig *WorkerConfig) handleMessage(ctx context.Context, body []byte) {
	log := workerConfig.Logger

	session := Session{}
	if err := json.Unmarshal(body, &session); err != nil {
		log.Error("error unmarshalling message body", zap.Error(err))
		workerConfig.setStatus(ctx, session, statusFailed, "analysis failed", nil)
		return
	}
	if session.ID == uuid.Nil {
		log.Error("message has no session id")
		workerConfig.setStatus(ctx, session, statusFailed, "analysis failed", nil)
		return
	}
	log.Info("processing session", zap.Stringer("session_id", session.ID))
	workerConfig.setStatus(ctx, session, statusProcessing, "analysis started", nil)

	results, err := workerConfig.analyzeSession(ctx, session)
	if err != nil {
		log.Error("error analyzing session", zap.Stringer("session_id", session.ID), zap.Error(err))
		workerConfig.setStatus(ctx, session, statusFailed, "analysis failed", nil)
		return
	}
	workerConfig.setStatus(ctx, session, statusCompleted, "analysis completed", results)
}

func (workerConfig *WorkerConfig) setStatus(ctx context.Context, session Session, status, message string, results *SessionResults) {
	log := workerConfig.Logger.With(zap.Stringer("session_id", session.ID), zap.String("status", status))

	// an unreadable message has no session to update
	if session.ID != uuid.Nil {
		if err := workerConfig.Store.SetSessionStatus(ctx, database.SetSessionStatusParams{
			Status: status,
			ID:     session.ID,
		}); err != nil {
			log.Warn("failed to update session status", zap.Error(err))
		}
	}

	update := sessionUpdate(session.ID, status, message)
	if results != nil {
		update["results"] = results.Results
	}
	if err := workerConfig.Publisher.Publish(session.ID, update); err != nil {
		log.Warn("failed to publish update", zap.Error(err))
	}
}

// analyzeSession scores every résumé in the session against its job
// description. Download and extraction failures are recorded per résumé.
func (workerConfig *WorkerConfig) analyzeSession(ctx context.Context, session Session) (*SessionResults, error) {
	resumes, err := workerConfig.Store.ListResumeDocumentsBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("error getting resumes for session %v: %w", session.ID, err)
	}

	results := &SessionResults{
		SessionID: session.ID,
		Results:   make([]ResumeAnalysis, 0, len(resumes)),
	}
	for _, resume := range resumes {
		results.Results = append(results.Results, workerConfig.analyzeResume(ctx, session, resume))
	}
	return results, nil
}

func (workerConfig *WorkerConfig) analyzeResume(ctx context.Context, session Session, resume database.ResumeDocument) ResumeAnalysis {
	log := workerConfig.Logger.With(zap.String("object_key", resume.ObjectKey))
	entry := ResumeAnalysis{ResumeID: resume.ID, OriginalFilename: resume.OriginalFilename}
	fail := func(msg string, err error) ResumeAnalysis {
		log.Warn(msg, zap.Error(err))
		entry.IsErrorResult = true
		entry.Error = fmt.Sprintf("%s: %v", msg, err)
		return entry
	}

	format, err := extract.FormatFromMIME(resume.Mime)
	if err != nil {
		if format, err = extract.FormatFromPath(resume.OriginalFilename); err != nil {
			return fail("unsupported file format", err)
		}
	}

	// network failures are transient, parsing failures are not
	fileBytes, err := retry(3, func() ([]byte, error) {
		return workerConfig.Objects.Fetch(ctx, resume.ObjectKey)
	})
	if err != nil {
		return fail("file download error", err)
	}

	res, err := workerConfig.Analyzer.AnalyzeBytes(format, fileBytes, session.JobDescription)
	if err != nil {
		if errors.Is(err, extract.ErrExtractionFailed) {
			return fail("text extraction error", err)
		}
		return fail("analysis error", err)
	}
	entry.MatchResult = res
	return entry
}

func (workerConfig *WorkerConfig) StartConsumerWorkerPool(numWorkers int) {
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := range numWorkers {
		workerConfig.Logger.Info("worker started", zap.Int("worker", i+1))
		go worker(i, workerConfig, &wg)
	}
	wg.Wait() // block until all workers finish
}
