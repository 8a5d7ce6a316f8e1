package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatType string

const (
	ChatTypeDirect ChatType = "direct"
	ChatTypeGroup  ChatType = "group"
)

// Chat is a conversation owned by a manager. Group chats spawned from a task
// carry the TaskID; their membership must cover the manager plus every
// employee with an accepted assignment on that task. Membership is only ever
// added by the engine, never retracted (declining a task keeps history
// visible).
type Chat struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	Type      ChatType   `gorm:"not null" json:"type"`
	ManagerID uuid.UUID  `gorm:"type:uuid;not null;index" json:"manager_id"`
	TaskID    *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"task_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`

	Members []ChatMember `gorm:"foreignKey:ChatID" json:"members,omitempty"`
}

type ChatMember struct {
	ChatID uuid.UUID `gorm:"type:uuid;primaryKey" json:"chat_id"`
	UserID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
}

type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID     uuid.UUID `gorm:"type:uuid;not null;index" json:"chat_id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	SenderRole Role      `gorm:"not null" json:"sender_role"`
	Text       string    `gorm:"not null" json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MemberIDs flattens the membership rows.
func (c *Chat) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// HasMember reports whether the user is part of the chat.
func (c *Chat) HasMember(userID uuid.UUID) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
