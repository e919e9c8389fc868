// internal/services/sync_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/relaystation/backend/internal/config"
	"github.com/relaystation/backend/internal/feed"
	"github.com/relaystation/backend/internal/models"
	"github.com/relaystation/backend/internal/normalize"
)

const syncJobName = "sync-deals"

// dealUpdateColumns are the normalized fields the pipeline owns and fully
// overwrites on conflict. Image verification state is owned by the verifier
// and must survive a sync untouched.
var dealUpdateColumns = []string{
	"title", "description", "price", "original_price", "discount",
	"image_url", "product_url", "category", "brand", "rating",
	"review_count", "in_stock", "coupon_code", "posted_at", "fetched_at",
	"updated_at",
}

// SyncService runs the deal ingestion pipeline: feed fetch, normalization,
// dedup, bulk upsert, price-history append, and retention pruning.
//
// Concurrent runs are not locked against each other. Upserts are idempotent
// by stable ID, so overlapping runs converge; price-history rows may
// interleave out of order, which is acceptable for an informational side
// channel.
type SyncService struct {
	db         *gorm.DB
	feedClient *feed.Client
	cfg        *config.Config
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	FeedCount   int   `json:"feed_count"`
	Synced      int   `json:"synced"`
	HistoryRows int   `json:"history_rows"`
	Pruned      int64 `json:"pruned"`
}

type pricePair struct {
	Price         float64
	OriginalPrice *float64
}

func NewSyncService(db *gorm.DB, feedClient *feed.Client, cfg *config.Config) *SyncService {
	return &SyncService{
		db:         db,
		feedClient: feedClient,
		cfg:        cfg,
	}
}

// SyncDeals executes one full pipeline run. Feed failures are fatal and
// leave the database untouched; per-deal history failures are logged and
// skipped.
func (s *SyncService) SyncDeals(ctx context.Context) (*SyncResult, error) {
	result, err := s.run(ctx)
	recordCronHealth(s.db, syncJobName, err)
	return result, err
}

func (s *SyncService) run(ctx context.Context) (*SyncResult, error) {
	payload, err := s.feedClient.FetchFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed fetch failed: %w", err)
	}

	now := time.Now().UTC()
	normalizer := normalize.New(s.loadCategoryRules())

	deals := normalizer.NormalizeBatch(payload.Products, now)
	deals = normalize.Deduplicate(deals)

	logrus.WithFields(logrus.Fields{
		"feed_count": len(payload.Products),
		"normalized": len(deals),
	}).Info("Normalized sync batch")

	result := &SyncResult{FeedCount: len(payload.Products), Synced: len(deals)}

	if len(deals) > 0 {
		// Snapshot prior prices before the upsert overwrites them, so
		// history rows reflect actual changes rather than every tick.
		previous, err := s.previousPrices(deals)
		if err != nil {
			return nil, fmt.Errorf("failed to load prior prices: %w", err)
		}

		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(dealUpdateColumns),
		}).Create(&deals).Error; err != nil {
			return nil, fmt.Errorf("bulk upsert failed: %w", err)
		}

		result.HistoryRows = s.appendPriceHistory(deals, previous)
	}

	pruned, err := s.pruneOldDeals(now)
	if err != nil {
		// Pruning failure does not undo a successful sync
		logrus.WithError(err).Error("Retention pruning failed")
	}
	result.Pruned = pruned

	logrus.WithFields(logrus.Fields{
		"synced":       result.Synced,
		"history_rows": result.HistoryRows,
		"pruned":       result.Pruned,
	}).Info("Sync run completed")

	return result, nil
}

func (s *SyncService) loadCategoryRules() []normalize.CategoryEntry {
	var rules []models.CategoryRule
	if err := s.db.Order("priority ASC").Find(&rules).Error; err != nil {
		logrus.WithError(err).Warn("Failed to load category rules, using built-in table")
		return nil
	}

	entries := make([]normalize.CategoryEntry, 0, len(rules))
	for _, rule := range rules {
		entries = append(entries, normalize.CategoryEntry{
			Category: rule.Category,
			Keywords: rule.Keywords,
		})
	}
	return entries
}

func (s *SyncService) previousPrices(deals []models.Deal) (map[string]pricePair, error) {
	ids := make([]string, 0, len(deals))
	for _, d := range deals {
		ids = append(ids, d.ID)
	}

	var rows []models.Deal
	if err := s.db.Select("id", "price", "original_price").
		Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	previous := make(map[string]pricePair, len(rows))
	for _, row := range rows {
		previous[row.ID] = pricePair{Price: row.Price, OriginalPrice: row.OriginalPrice}
	}
	return previous, nil
}

// appendPriceHistory writes one history row per deal whose price pair is new
// or changed. This is a best-effort side channel: a failed insert is logged
// and never fails the run.
func (s *SyncService) appendPriceHistory(deals []models.Deal, previous map[string]pricePair) int {
	written := 0
	for _, deal := range deals {
		prev, existed := previous[deal.ID]
		if existed && prev.Price == deal.Price && floatPtrEqual(prev.OriginalPrice, deal.OriginalPrice) {
			continue
		}

		entry := models.DealPriceHistory{
			DealID:        deal.ID,
			Price:         deal.Price,
			OriginalPrice: deal.OriginalPrice,
			Discount:      deal.Discount,
		}
		if err := s.db.Create(&entry).Error; err != nil {
			logrus.WithError(err).WithField("deal_id", deal.ID).
				Warn("Failed to append price history, skipping")
			continue
		}
		written++
	}
	return written
}

// pruneOldDeals applies the two-tier retention rule: the RetentionFloor most
// recently fetched deals always survive; beyond the floor, rows older than
// RetentionDays are deleted. The floor keeps the table populated through a
// feed outage.
func (s *SyncService) pruneOldDeals(now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -s.cfg.Sync.RetentionDays)

	res := s.db.Exec(
		`DELETE FROM deals
		 WHERE id IN (SELECT id FROM deals ORDER BY fetched_at DESC OFFSET ?)
		   AND fetched_at < ?`,
		s.cfg.Sync.RetentionFloor, cutoff,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
