package services

import (
	"encoding/json"
	"log"

	"clubquest/models"
	"clubquest/workers"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditService records who did what, after the fact. Record is fire-and-
// forget: it runs outside the business transaction and its failures are
// logged and swallowed.
type AuditService struct {
	DB     *gorm.DB
	writer *workers.AuditWriter
}

// NewAuditService wires the service to an async writer. A nil writer makes
// Record write synchronously (used by tests and small deployments).
func NewAuditService(db *gorm.DB, writer *workers.AuditWriter) *AuditService {
	return &AuditService{DB: db, writer: writer}
}

// Record enqueues an audit entry. details may be nil; anything serializable
// is accepted and stored as JSON.
func (s *AuditService) Record(actorID, action, actionType, entityKind, entityID string, details map[string]interface{}) {
	if s == nil {
		return
	}

	entry := models.AuditLog{
		ID:         uuid.NewString(),
		Action:     action,
		ActionType: actionType,
		EntityKind: entityKind,
		EntityID:   entityID,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			log.Printf("⚠️ [AUDIT] unserializable details for %q: %v", action, err)
		} else {
			entry.Details = string(raw)
		}
	}

	if s.writer != nil {
		s.writer.Enqueue(entry)
		return
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		log.Printf("⚠️ [AUDIT] failed to record %q: %v", action, err)
	}
}

// ListAuditLog returns the newest entries, optionally filtered by actor.
func (s *AuditService) ListAuditLog(actorID string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.DB.Order("created_at DESC").Limit(limit)
	if actorID != "" {
		q = q.Where("actor_id = ?", actorID)
	}
	var entries []models.AuditLog
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
