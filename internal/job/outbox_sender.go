package job

import (
	"context"
	"log"
	"time"

	"loyalty/internal/config"
	"loyalty/internal/infrastructure/mq"
	"loyalty/internal/model"
	"loyalty/internal/repository"

	"gorm.io/gorm"
)

// OutboxSender drains staged loyalty events to Kafka. Events are
// written inside the business unit of work, so everything this job
// publishes describes a committed state change.
type OutboxSender struct {
	outboxRepo *repository.OutboxRepository
	maxRetry   int
	interval   time.Duration
	batchSize  int
}

func NewOutboxSender(db *gorm.DB, cfg *config.Config) *OutboxSender {
	maxRetry := cfg.Business.OutboxMaxRetry
	if maxRetry <= 0 {
		maxRetry = 3
	}
	return &OutboxSender{
		outboxRepo: repository.NewOutboxRepository(db),
		maxRetry:   maxRetry,
		interval:   200 * time.Millisecond,
		batchSize:  100,
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	log.Println("[OutboxSender] started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[OutboxSender] stopped")
			return
		case <-ticker.C:
			s.drain(ctx)
		}
	}
}

func (s *OutboxSender) drain(ctx context.Context) {
	messages, err := s.outboxRepo.GetPending(ctx, s.batchSize)
	if err != nil {
		log.Printf("[OutboxSender] fetch pending: %v", err)
		return
	}

	for _, msg := range messages {
		s.send(ctx, msg)
	}
}

func (s *OutboxSender) send(ctx context.Context, msg *model.OutboxMessage) {
	err := mq.SendMessage(msg.Topic, msg.MessageKey, msg.Payload)
	if err == nil {
		if err := s.outboxRepo.MarkSent(ctx, msg.ID); err != nil {
			log.Printf("[OutboxSender] mark sent id=%d: %v", msg.ID, err)
		}
		return
	}

	log.Printf("[OutboxSender] publish id=%d topic=%s: %v", msg.ID, msg.Topic, err)

	final := msg.RetryCount+1 >= s.maxRetry
	if err := s.outboxRepo.RecordFailure(ctx, msg.ID, final); err != nil {
		log.Printf("[OutboxSender] record failure id=%d: %v", msg.ID, err)
	}
	if final {
		log.Printf("[OutboxSender] giving up on id=%d after %d attempts", msg.ID, msg.RetryCount+1)
	}
}
