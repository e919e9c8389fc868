// internal/models/deal.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Deal is the canonical row produced by the sync pipeline. The ID is derived
// from product metadata (ASIN, thread ID, or title+price slug) so repeated
// syncs update rather than duplicate a row.
type Deal struct {
	ID               string     `json:"id" gorm:"primaryKey;size:64"`
	Title            string     `json:"title" gorm:"size:512;not null"`
	Description      string     `json:"description" gorm:"type:text"`
	Price            float64    `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice    *float64   `json:"original_price,omitempty" gorm:"type:decimal(10,2)"`
	Discount         *int       `json:"discount,omitempty"`
	ImageURL         string     `json:"image_url" gorm:"size:2048"`
	VerifiedImageURL *string    `json:"verified_image_url,omitempty" gorm:"size:2048"`
	ImageReady       bool       `json:"image_ready" gorm:"default:false;index"`
	ImageRetryCount  int        `json:"image_retry_count" gorm:"default:0"`
	ImageLastChecked *time.Time `json:"image_last_checked,omitempty"`
	ProductURL       string     `json:"product_url" gorm:"size:2048"`
	Category         string     `json:"category" gorm:"size:100;index"`
	Brand            *string    `json:"brand,omitempty" gorm:"size:255"`
	Rating           *float64   `json:"rating,omitempty" gorm:"type:decimal(3,2)"`
	ReviewCount      *int       `json:"review_count,omitempty"`
	InStock          bool       `json:"in_stock" gorm:"default:true"`
	CouponCode       *string    `json:"coupon_code,omitempty" gorm:"size:100"`
	PostedAt         *time.Time `json:"posted_at,omitempty"`
	FetchedAt        time.Time  `json:"fetched_at" gorm:"index;not null"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	PriceHistory []DealPriceHistory `json:"price_history,omitempty" gorm:"foreignKey:DealID"`
}

// DealPriceHistory is an append-only snapshot written whenever a sync
// observes a price change for a deal. Rows are never updated or deleted by
// this service.
type DealPriceHistory struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DealID        string    `json:"deal_id" gorm:"size:64;not null;index"`
	Price         float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice *float64  `json:"original_price,omitempty" gorm:"type:decimal(10,2)"`
	Discount      *int      `json:"discount,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (DealPriceHistory) TableName() string {
	return "deal_price_history"
}

// CategoryRule maps title keywords onto a category label. Rules are matched
// in priority order; the first rule with a keyword hit wins.
type CategoryRule struct {
	BaseModel
	Category string         `json:"category" gorm:"size:100;not null;uniqueIndex"`
	Keywords pq.StringArray `json:"keywords" gorm:"type:text[]"`
	Priority int            `json:"priority" gorm:"default:0;index"`
}

// CronJobHealth records the outcome of the last scheduled run per job.
type CronJobHealth struct {
	JobName             string     `json:"job_name" gorm:"primaryKey;size:100"`
	LastRunAt           time.Time  `json:"last_run_at"`
	LastSuccessAt       *time.Time `json:"last_success_at,omitempty"`
	LastError           string     `json:"last_error" gorm:"type:text"`
	ConsecutiveFailures int        `json:"consecutive_failures" gorm:"default:0"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (CronJobHealth) TableName() string {
	return "cron_job_health"
}
