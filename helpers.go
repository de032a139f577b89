package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/muhammadolammi/resumematch/internal/analyzer"
	appconfig "github.com/muhammadolammi/resumematch/internal/config"
	"github.com/muhammadolammi/resumematch/internal/database"
	"github.com/muhammadolammi/resumematch/internal/skills"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type sessionStore interface {
	ListResumeDocumentsBySession(ctx context.Context, sessionID uuid.UUID) ([]database.ResumeDocument, error)
	SetSessionStatus(ctx context.Context, arg database.SetSessionStatusParams) error
}

type objectFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

type updatePublisher interface {
	Publish(sessionID uuid.UUID, update map[string]any) error
}

// newAnalyzer wires the vocabulary, tokenizer and weights from cfg. The
// vocabulary and tokenizer are built once and shared by every request.
func newAnalyzer(cfg *appconfig.Config, logger *zap.Logger) *analyzer.Analyzer {
	vocab := skills.LoadVocabulary(cfg.VocabularySource(), logger)
	ex := skills.NewExtractor(vocab, skills.NewTokenizer(cfg.Tokenizer), cfg.ExtractorOptions()...)
	logger.Info("skill extractor ready",
		zap.Int("vocabulary_size", vocab.Len()),
		zap.String("tokenizer", cfg.Tokenizer),
		zap.Stringer("match_mode", ex.Mode()),
	)
	return analyzer.New(ex, analyzer.WithWeights(cfg.Weights), analyzer.WithLogger(logger))
}

// retryBackoff is the base wait between attempts; attempt i waits (i+1) times it.
var retryBackoff = 500 * time.Millisecond

// retry retries a function up to `attempts` times with linear backoff
func retry[T any](attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i < attempts-1 {
			time.Sleep(time.Duration(i+1) * retryBackoff)
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// --- File Download ---

type r2Store struct {
	client *s3.Client
	bucket string
}

func newR2Store(ctx context.Context, r2 appconfig.R2Config) (*r2Store, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2.AccessKey, r2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating aws config: %w", err)
	}
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	})
	return &r2Store{client: client, bucket: r2.Bucket}, nil
}

func (s *r2Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	return DownloadFromR2(ctx, s.client, s.bucket, key)
}

func DownloadFromR2(ctx context.Context, client *s3.Client, bucket, key string) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	_, err = io.Copy(buf, out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

// --- Session updates ---

type amqpPublisher struct {
	conn *amqp.Connection
}

func (p *amqpPublisher) Publish(sessionID uuid.UUID, update map[string]any) error {
	return publishSessionUpdate(p.conn, sessionID.String(), update)
}

func publishSessionUpdate(rabbitConn *amqp.Connection, sessionID string, update map[string]any) error {
	ch, err := rabbitConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal session update: %w", err)
	}
	routingKey := fmt.Sprintf("session.%s", sessionID)

	return ch.Publish(
		"session_updates", // exchange
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func sessionUpdate(sessionID uuid.UUID, status, message string) map[string]any {
	return map[string]any{
		"session_id": sessionID,
		"status":     status,
		"message":    message,
		"timestamp":  time.Now(),
	}
}
