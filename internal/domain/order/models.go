package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConversationStatus string

const (
	StatusCollecting          ConversationStatus = "collecting"
	StatusConfirmationPending ConversationStatus = "confirmation_pending"
	StatusComplete            ConversationStatus = "complete"
)

// Conversation is one customer chat, keyed by the channel address
// (e.g. "whatsapp:+2250787360757").
type Conversation struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CustomerAddr  string    `gorm:"column:customer_addr;not null;uniqueIndex" json:"customer_addr"`
	Channel       string    `gorm:"column:channel;not null;default:'whatsapp'" json:"channel"`
	Status        string    `gorm:"column:status;not null;default:'collecting';index" json:"status"`
	LastMessageAt time.Time `gorm:"column:last_message_at;not null;default:now();index" json:"last_message_at"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Conversation) TableName() string { return "conversation" }

type ConversationMessage struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`

	Direction  string `gorm:"column:direction;not null;index" json:"direction"` // inbound | outbound
	Body       string `gorm:"column:body;type:text;not null;default:''" json:"body"`
	MediaCount int    `gorm:"column:media_count;not null;default:0" json:"media_count"`

	// Outbound only: how the reply was produced and which trigger fired.
	ReplySource     string `gorm:"column:reply_source" json:"reply_source,omitempty"`
	TriggerCategory string `gorm:"column:trigger_category" json:"trigger_category,omitempty"`

	Metadata datatypes.JSON `gorm:"type:jsonb;column:metadata;not null;default:'{}'" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ConversationMessage) TableName() string { return "conversation_message" }

// ConversationState is the persisted field state, one row per conversation,
// rehydrated at the start of every turn and rewritten whole after
// reconciliation (last-writer-wins across devices, per-turn atomicity).
type ConversationState struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"conversation_id"`

	Status  string         `gorm:"column:status;not null;default:'collecting'" json:"status"`
	Fields  datatypes.JSON `gorm:"type:jsonb;column:fields;not null;default:'{}'" json:"fields"`
	Pending datatypes.JSON `gorm:"type:jsonb;column:pending;not null;default:'[]'" json:"pending"`

	SnapshotID *uuid.UUID `gorm:"type:uuid;column:snapshot_id" json:"snapshot_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ConversationState) TableName() string { return "conversation_state" }

func (s *ConversationState) DecodeFields() (OrderFields, error) {
	var out OrderFields
	if s == nil || len(s.Fields) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(s.Fields, &out); err != nil {
		return OrderFields{}, err
	}
	return out, nil
}

func (s *ConversationState) SetFields(f OrderFields) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return err
	}
	s.Fields = raw
	return nil
}

func (s *ConversationState) DecodePending() ([]PendingConfirmation, error) {
	if s == nil || len(s.Pending) == 0 {
		return nil, nil
	}
	var out []PendingConfirmation
	if err := json.Unmarshal(s.Pending, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ConversationState) SetPending(p []PendingConfirmation) error {
	if p == nil {
		p = []PendingConfirmation{}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.Pending = raw
	return nil
}

// OrderSnapshot is the immutable completion record, created at most once per
// conversation.
type OrderSnapshot struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"conversation_id"`

	PhotoDescription string `gorm:"column:photo_description;type:text;not null;default:''" json:"photo_description"`
	ProductName      string `gorm:"column:product_name" json:"product_name,omitempty"`
	Amount           int    `gorm:"column:amount;not null" json:"amount"`
	Currency         string `gorm:"column:currency;not null;default:'XOF'" json:"currency"`
	ZoneName         string `gorm:"column:zone_name;not null" json:"zone_name"`
	ZoneCost         int    `gorm:"column:zone_cost;not null;default:0" json:"zone_cost"`
	ZoneCategory     string `gorm:"column:zone_category;not null;default:'local'" json:"zone_category"`
	Phone            string `gorm:"column:phone;not null" json:"phone"`
	DeliveryEstimate string `gorm:"column:delivery_estimate" json:"delivery_estimate,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (OrderSnapshot) TableName() string { return "order_snapshot" }
