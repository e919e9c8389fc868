// internal/models/tracking.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a partner organization sharing deals through the platform.
type Project struct {
	BaseModel
	OwnerID     uuid.UUID     `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name        string        `json:"name" gorm:"size:255;not null"`
	Slug        string        `json:"slug" gorm:"size:100;uniqueIndex"`
	Description string        `json:"description" gorm:"type:text"`
	Status      ProjectStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ReferralTag string        `json:"referral_tag" gorm:"size:100"`

	Owner User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

// ScheduledPost is a social post queued for a project. The post content
// itself is produced by an external generator; this service only stores rows.
type ScheduledPost struct {
	BaseModel
	ProjectID   uuid.UUID  `json:"project_id" gorm:"type:uuid;not null;index"`
	DealID      string     `json:"deal_id" gorm:"size:64;index"`
	Content     string     `json:"content" gorm:"type:text"`
	ScheduledAt time.Time  `json:"scheduled_at" gorm:"index"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Status      PostStatus `json:"status" gorm:"type:varchar(20);default:'scheduled';index"`

	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

// ClickEvent records one referral-link click.
type ClickEvent struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DealID    string     `json:"deal_id" gorm:"size:64;not null;index"`
	ProjectID *uuid.UUID `json:"project_id,omitempty" gorm:"type:uuid;index"`
	Referrer  string     `json:"referrer" gorm:"size:2048"`
	IPAddress string     `json:"ip_address" gorm:"size:45"`
	UserAgent string     `json:"user_agent" gorm:"size:512"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

func (ClickEvent) TableName() string {
	return "click_tracking"
}

// ShareEvent records one share action on a deal.
type ShareEvent struct {
	ID        uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DealID    string        `json:"deal_id" gorm:"size:64;not null;index"`
	ProjectID *uuid.UUID    `json:"project_id,omitempty" gorm:"type:uuid;index"`
	Platform  SharePlatform `json:"platform" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time     `json:"created_at" gorm:"index"`
}

func (ShareEvent) TableName() string {
	return "share_tracking"
}
