package workers

import (
	"context"
	"log"
	"time"

	"clubquest/models"

	"gorm.io/gorm"
)

// AuditWriter drains audit events off a channel and batch-inserts them.
// The audit trail is best-effort: a full queue or a failed insert is logged
// and dropped, never propagated back to the business transaction.
type AuditWriter struct {
	db      *gorm.DB
	queue   chan models.AuditLog
	maxWait time.Duration
	batch   int
}

func NewAuditWriter(db *gorm.DB, queueSize int) *AuditWriter {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &AuditWriter{
		db:      db,
		queue:   make(chan models.AuditLog, queueSize),
		maxWait: 2 * time.Second,
		batch:   50,
	}
}

// Enqueue offers an entry to the writer without blocking the caller.
func (w *AuditWriter) Enqueue(entry models.AuditLog) {
	select {
	case w.queue <- entry:
	default:
		log.Printf("⚠️ [AUDIT] queue full, dropping entry: %s", entry.Action)
	}
}

// Run drains the queue until ctx is cancelled, then flushes what is left.
func (w *AuditWriter) Run(ctx context.Context) {
	pending := make([]models.AuditLog, 0, w.batch)
	ticker := time.NewTicker(w.maxWait)
	defer ticker.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := w.db.Create(&pending).Error; err != nil {
			log.Printf("⚠️ [AUDIT] failed to write %d entries: %v", len(pending), err)
		}
		pending = pending[:0]
	}

	for {
		select {
		case entry := <-w.queue:
			pending = append(pending, entry)
			if len(pending) >= w.batch {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			// Drain whatever is still queued before exiting.
			for {
				select {
				case entry := <-w.queue:
					pending = append(pending, entry)
				default:
					flush()
					log.Println("Audit writer stopped")
					return
				}
			}
		}
	}
}
