package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IntentType identifies which notification an external deliverer should send.
type IntentType string

// Possible intent types
const (
	IntentMatchCreated  IntentType = "match_created"
	IntentMatchAccepted IntentType = "match_accepted"
	IntentMatchDeclined IntentType = "match_declined"
)

// IntentStatus tracks delivery of an intent to the outbound sink.
type IntentStatus string

// Possible intent status values
const (
	IntentPending   IntentStatus = "pending"
	IntentDelivered IntentStatus = "delivered"
	IntentFailed    IntentStatus = "failed"
)

// NotificationIntent is a request for an outbound notification. The engine
// records it and hands it off; it never waits for delivery.
type NotificationIntent struct {
	ID          uuid.UUID       `json:"id"`
	Type        IntentType      `json:"type"`
	RecipientID uuid.UUID       `json:"recipient_id"`
	Payload     json.RawMessage `json:"payload"`
	Status      IntentStatus    `json:"status"`
	Attempts    int             `json:"attempts"`
	LastError   string          `json:"last_error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MatchCreatedPayload is sent to the provider when a match is proposed.
type MatchCreatedPayload struct {
	MatchID       uuid.UUID `json:"match_id"`
	RequesterName string    `json:"requester_name"`
	Score         int       `json:"score"`
}

// MatchDecisionPayload is sent to the requester when a provider accepts or
// declines a match.
type MatchDecisionPayload struct {
	MatchID      uuid.UUID `json:"match_id"`
	ProviderName string    `json:"provider_name"`
}

// NewNotificationIntent creates a pending intent with a JSON payload.
func NewNotificationIntent(intentType IntentType, recipientID uuid.UUID, payload any) (*NotificationIntent, error) {
	if recipientID == uuid.Nil {
		return nil, NewValidationError("recipient_id", "cannot be empty", ErrInvalidID)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", intentType, err)
	}
	now := time.Now().UTC()
	return &NotificationIntent{
		ID:          uuid.New(),
		Type:        intentType,
		RecipientID: recipientID,
		Payload:     raw,
		Status:      IntentPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// MatchCreatedIntent notifies the provider's owner about a new proposal.
func MatchCreatedIntent(m *Match, provider *ProviderProfile, requester *RequesterProfile) (*NotificationIntent, error) {
	return NewNotificationIntent(IntentMatchCreated, provider.OwnerID, MatchCreatedPayload{
		MatchID:       m.ID,
		RequesterName: requester.DisplayName,
		Score:         m.Score,
	})
}

// MatchDecisionIntent notifies the requester's owner that a match was
// accepted or declined.
func MatchDecisionIntent(m *Match, provider *ProviderProfile, requester *RequesterProfile) (*NotificationIntent, error) {
	intentType := IntentMatchDeclined
	if m.Status == MatchAccepted {
		intentType = IntentMatchAccepted
	}
	return NewNotificationIntent(intentType, requester.OwnerID, MatchDecisionPayload{
		MatchID:      m.ID,
		ProviderName: provider.DisplayName,
	})
}
