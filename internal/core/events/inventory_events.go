package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRecordMutated   = "record.mutated"
	EventTypeApprovalDecided = "approval.decided"
	EventTypeSyncCompleted   = "sync.completed"
	EventTypeLoginAttempted  = "auth.login_attempted"
)

type RecordMutatedEvent struct {
	BaseEvent
	Entity   string `json:"entity"`
	Action   string `json:"action"`
	RecordID int64  `json:"record_id"`
	Actor    string `json:"actor"`
}

func NewRecordMutatedEvent(entity, action string, recordID int64, actor string) *RecordMutatedEvent {
	return &RecordMutatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRecordMutated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entity":    entity,
				"action":    action,
				"record_id": recordID,
				"actor":     actor,
			},
		},
		Entity:   entity,
		Action:   action,
		RecordID: recordID,
		Actor:    actor,
	}
}

type ApprovalDecidedEvent struct {
	BaseEvent
	Entity   string `json:"entity"`
	RecordID int64  `json:"record_id"`
	Decision string `json:"decision"`
	Actor    string `json:"actor"`
}

func NewApprovalDecidedEvent(entity string, recordID int64, decision, actor string) *ApprovalDecidedEvent {
	return &ApprovalDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApprovalDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entity":    entity,
				"record_id": recordID,
				"decision":  decision,
				"actor":     actor,
			},
		},
		Entity:   entity,
		RecordID: recordID,
		Decision: decision,
		Actor:    actor,
	}
}

type SyncCompletedEvent struct {
	BaseEvent
	Provider string `json:"provider"`
	Added    int    `json:"added"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
	Actor    string `json:"actor"`
	Failed   bool   `json:"failed"`
}

func NewSyncCompletedEvent(provider string, added, updated, skipped int, actor string, failed bool) *SyncCompletedEvent {
	return &SyncCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSyncCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"provider": provider,
				"added":    added,
				"updated":  updated,
				"skipped":  skipped,
				"actor":    actor,
				"failed":   failed,
			},
		},
		Provider: provider,
		Added:    added,
		Updated:  updated,
		Skipped:  skipped,
		Actor:    actor,
		Failed:   failed,
	}
}

type LoginAttemptedEvent struct {
	BaseEvent
	Username string `json:"username"`
	Outcome  string `json:"outcome"`
}

func NewLoginAttemptedEvent(username, outcome string) *LoginAttemptedEvent {
	return &LoginAttemptedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLoginAttempted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"username": username,
				"outcome":  outcome,
			},
		},
		Username: username,
		Outcome:  outcome,
	}
}
