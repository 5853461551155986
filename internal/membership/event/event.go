package event

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Topics published by the membership service.
const (
	OrganizationCreatedTopic = "organization.created"
	OrganizationDeletedTopic = "organization.deleted"
	MemberJoinedTopic        = "member.joined"
	MemberLeftTopic          = "member.left"
	InviteSentTopic          = "invite.sent"
	InviteRevokedTopic       = "invite.revoked"
)

type Publisher interface {
	Publish(ctx context.Context, orgID snowflake.ID, topic string, payload []byte) error
}

// MembershipEvent is an outbox row consumed by downstream publishers.
type MembershipEvent struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	OrgID     snowflake.ID   `gorm:"not null;index"`
	EventType string         `gorm:"type:text;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	Published bool           `gorm:"not null;default:false"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (MembershipEvent) TableName() string { return "membership_events" }

type outboxPublisher struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewOutboxPublisher(db *gorm.DB, genID *snowflake.Node) Publisher {
	return &outboxPublisher{
		db:    db,
		genID: genID,
	}
}

func (p *outboxPublisher) Publish(ctx context.Context, orgID snowflake.ID, topic string, payload []byte) error {
	return p.db.WithContext(ctx).Create(&MembershipEvent{
		ID:        p.genID.Generate(),
		OrgID:     orgID,
		EventType: topic,
		Payload:   datatypes.JSON(payload),
		Published: false,
		CreatedAt: time.Now().UTC(),
	}).Error
}
