package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medibook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medibook/pkg/metrics"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

type AuditEntry struct {
	UserID       uuid.UUID
	UserRole     domain.Role
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	Changes      string
}

type requestMetaKey struct{}

type requestMeta struct {
	ip        string
	requestID string
}

// WithRequestMeta attaches the caller's address and request id so audit
// entries written deeper in the call stack can carry them.
func WithRequestMeta(ctx context.Context, ip, requestID string) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, requestMeta{ip: ip, requestID: requestID})
}

func requestMetaFrom(ctx context.Context) requestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(requestMeta)
	return m
}

type AuditService struct {
	repo    AuditRepository
	log     *zap.Logger
	metrics *metrics.Collector
	entries chan *domain.AuditLog
	done    chan struct{}
}

const auditBufferSize = 10_000

func NewAuditService(repo AuditRepository, m *metrics.Collector, log *zap.Logger) *AuditService {
	svc := &AuditService{
		repo:    repo,
		log:     log,
		metrics: m,
		entries: make(chan *domain.AuditLog, auditBufferSize),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// LogAsync enqueues an audit entry for async persistence.
// If the buffer is full, the entry is dropped and a warning is emitted.
func (s *AuditService) LogAsync(ctx context.Context, entry AuditEntry) {
	meta := requestMetaFrom(ctx)
	al := &domain.AuditLog{
		UserID:       entry.UserID,
		UserRole:     entry.UserRole,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		IPAddress:    meta.ip,
		RequestID:    meta.requestID,
		Changes:      entry.Changes,
	}

	select {
	case s.entries <- al:
	default:
		s.metrics.AuditBufferDropped.Inc()
		s.log.Warn("audit log buffer full, dropping entry",
			zap.String("action", string(entry.Action)),
			zap.String("resource", entry.ResourceType),
		)
	}
}

func (s *AuditService) Shutdown() {
	close(s.entries)
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("audit service shutdown timed out; some entries may be lost")
	}
}

func (s *AuditService) worker() {
	defer close(s.done)
	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Error("failed to persist audit log", zap.Error(err))
		} else {
			s.metrics.AuditEntriesTotal.Inc()
		}
		cancel()
	}
}
