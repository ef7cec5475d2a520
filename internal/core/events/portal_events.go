package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSessionInvalidated   = "session.invalidated"
	EventTypeFinancePeriodCreated = "finance.period_created"
)

type SessionInvalidatedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Reason    string `json:"reason"`
}

func NewSessionInvalidatedEvent(sessionID, userID, reason string) *SessionInvalidatedEvent {
	return &SessionInvalidatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionInvalidated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"session_id": sessionID,
				"user_id":    userID,
				"reason":     reason,
			},
		},
		SessionID: sessionID,
		UserID:    userID,
		Reason:    reason,
	}
}

// FinancePeriodCreatedEvent tells every open period list to refetch.
type FinancePeriodCreatedEvent struct {
	BaseEvent
	PeriodID  string `json:"period_id"`
	Year      int    `json:"year"`
	SessionID string `json:"session_id"`
}

func NewFinancePeriodCreatedEvent(periodID string, year int, sessionID string) *FinancePeriodCreatedEvent {
	return &FinancePeriodCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeFinancePeriodCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"period_id":  periodID,
				"year":       year,
				"session_id": sessionID,
			},
		},
		PeriodID:  periodID,
		Year:      year,
		SessionID: sessionID,
	}
}
