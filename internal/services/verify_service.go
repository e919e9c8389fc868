// internal/services/verify_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/relaystation/backend/internal/config"
	"github.com/relaystation/backend/internal/models"
	"github.com/relaystation/backend/internal/normalize"
	"github.com/relaystation/backend/internal/scrape"
)

const verifyJobName = "verify-deal-images"

// Verification result statuses reported per deal.
const (
	VerifyStatusVerified = "verified"
	VerifyStatusRetry    = "retry"
	VerifyStatusError    = "error"
)

// VerifyService drives the per-deal image verification state machine:
// unverified deals either graduate to verified (image_ready=true) or burn a
// retry; once the retry ceiling is reached they are exhausted and excluded
// from batch selection until a manual reset.
type VerifyService struct {
	db         *gorm.DB
	cfg        config.VerifierConfig
	userAgent  string
	headClient *http.Client
	pageClient *http.Client
}

// VerifyParams selects and sizes one verification batch. Zero values fall
// back to the configured defaults; DealID narrows the batch to one deal.
type VerifyParams struct {
	BatchSize  int    `json:"batch_size" validate:"omitempty,min=1,max=100"`
	MaxRetries int    `json:"max_retries" validate:"omitempty,min=1,max=20"`
	DealID     string `json:"deal_id" validate:"omitempty,max=64"`
}

// VerifyOutcome summarizes one verification batch.
type VerifyOutcome struct {
	Message   string         `json:"message"`
	Processed int            `json:"processed"`
	Verified  int            `json:"verified"`
	NeedRetry int            `json:"need_retry"`
	Results   []VerifyResult `json:"results"`
}

type VerifyResult struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	ImageURL string `json:"image_url,omitempty"`
}

func NewVerifyService(db *gorm.DB, cfg *config.Config) *VerifyService {
	return &VerifyService{
		db:        db,
		cfg:       cfg.Verifier,
		userAgent: cfg.Proxy.UserAgent,
		headClient: &http.Client{
			Timeout: time.Duration(cfg.Verifier.HeadTimeoutSeconds) * time.Second,
		},
		pageClient: &http.Client{
			Timeout: time.Duration(cfg.Verifier.ScrapeTimeoutSeconds) * time.Second,
		},
	}
}

// VerifyBatch runs verification over one selected batch of deals.
func (s *VerifyService) VerifyBatch(ctx context.Context, params VerifyParams) (*VerifyOutcome, error) {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = s.cfg.BatchSize
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = s.cfg.MaxRetries
	}

	deals, err := s.selectBatch(params.DealID, batchSize, maxRetries)
	if err != nil {
		recordCronHealth(s.db, verifyJobName, err)
		return nil, fmt.Errorf("failed to select verification batch: %w", err)
	}

	outcome := &VerifyOutcome{Results: make([]VerifyResult, 0, len(deals))}
	now := time.Now().UTC()

	for i := range deals {
		deal := &deals[i]
		outcome.Processed++

		imageURL, found := s.resolveImage(ctx, deal)
		result := VerifyResult{ID: deal.ID}

		if found {
			if err := s.markVerified(deal, imageURL, now); err != nil {
				logrus.WithError(err).WithField("deal_id", deal.ID).
					Error("Failed to persist verified image")
				result.Status = VerifyStatusError
			} else {
				result.Status = VerifyStatusVerified
				result.ImageURL = imageURL
				outcome.Verified++
			}
		} else {
			if err := s.markRetry(deal, now); err != nil {
				logrus.WithError(err).WithField("deal_id", deal.ID).
					Error("Failed to persist retry state")
				result.Status = VerifyStatusError
			} else {
				result.Status = VerifyStatusRetry
				outcome.NeedRetry++
			}
		}

		outcome.Results = append(outcome.Results, result)
	}

	outcome.Message = fmt.Sprintf("Processed %d deals: %d verified, %d need retry",
		outcome.Processed, outcome.Verified, outcome.NeedRetry)

	logrus.WithFields(logrus.Fields{
		"processed":  outcome.Processed,
		"verified":   outcome.Verified,
		"need_retry": outcome.NeedRetry,
	}).Info("Image verification batch completed")

	recordCronHealth(s.db, verifyJobName, nil)
	return outcome, nil
}

// ResetAndVerify clears a deal's retry state and immediately runs a
// single-deal batch. This is the manual escape hatch for exhausted deals.
func (s *VerifyService) ResetAndVerify(ctx context.Context, dealID string) (*VerifyOutcome, error) {
	res := s.db.Model(&models.Deal{}).Where("id = ?", dealID).
		Updates(map[string]interface{}{
			"image_ready":       false,
			"image_retry_count": 0,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to reset image state: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errors.New("deal not found")
	}

	return s.VerifyBatch(ctx, VerifyParams{BatchSize: 1, DealID: dealID})
}

// selectBatch picks unready deals under the retry ceiling, never-checked
// rows first, then oldest checks.
func (s *VerifyService) selectBatch(dealID string, batchSize, maxRetries int) ([]models.Deal, error) {
	query := s.db.Model(&models.Deal{})

	if dealID != "" {
		query = query.Where("id = ?", dealID)
	} else {
		query = query.Where("image_ready = ? AND image_retry_count < ?", false, maxRetries).
			Order("image_last_checked ASC NULLS FIRST")
	}

	var deals []models.Deal
	if err := query.Limit(batchSize).Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

// resolveImage tries, in order: the current image URL as-is, constructed
// Amazon CDN candidates from the ASIN, and finally a product page scrape.
// A network timeout anywhere is a normal "not verified yet" outcome.
func (s *VerifyService) resolveImage(ctx context.Context, deal *models.Deal) (string, bool) {
	if !scrape.IsPlaceholderURL(deal.ImageURL) && s.checkImageURL(ctx, deal.ImageURL) {
		return deal.ImageURL, true
	}

	if asin := normalize.ExtractASIN(deal.ProductURL); asin != "" {
		for _, candidate := range CDNCandidates(asin) {
			if s.checkImageURL(ctx, candidate) {
				return candidate, true
			}
		}
	}

	if candidate := s.scrapeProductPage(ctx, deal.ProductURL); candidate != "" {
		if s.checkImageURL(ctx, candidate) {
			return candidate, true
		}
	}

	return "", false
}

// CDNCandidates builds the Amazon CDN image URL guesses for an ASIN, in the
// fixed priority order the verifier probes them.
func CDNCandidates(asin string) []string {
	return []string{
		fmt.Sprintf("https://m.media-amazon.com/images/P/%s.01._SL1500_.jpg", asin),
		fmt.Sprintf("https://m.media-amazon.com/images/P/%s.01._SL1000_.jpg", asin),
		fmt.Sprintf("https://m.media-amazon.com/images/P/%s.01._SL500_.jpg", asin),
		fmt.Sprintf("https://images-na.ssl-images-amazon.com/images/P/%s.01._SL1500_.jpg", asin),
	}
}

// checkImageURL validates a candidate with a HEAD request: 2xx, an image
// content type, and a body large enough to not be a tracking pixel or error
// stub.
func (s *VerifyService) checkImageURL(ctx context.Context, imageURL string) bool {
	if !strings.HasPrefix(imageURL, "http") {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.headClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		return false
	}
	return resp.ContentLength > s.cfg.MinImageBytes
}

func (s *VerifyService) scrapeProductPage(ctx context.Context, productURL string) string {
	if !strings.HasPrefix(productURL, "http") {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, productURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.pageClient.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("url", productURL).Debug("Product page fetch failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return ""
	}

	return scrape.ExtractImageCandidate(string(body))
}

func (s *VerifyService) markVerified(deal *models.Deal, imageURL string, now time.Time) error {
	return s.db.Model(&models.Deal{}).Where("id = ?", deal.ID).
		Updates(map[string]interface{}{
			"image_ready":        true,
			"verified_image_url": imageURL,
			"image_url":          imageURL,
			"image_last_checked": now,
		}).Error
}

func (s *VerifyService) markRetry(deal *models.Deal, now time.Time) error {
	return s.db.Model(&models.Deal{}).Where("id = ?", deal.ID).
		Updates(map[string]interface{}{
			"image_retry_count":  gorm.Expr("image_retry_count + 1"),
			"image_last_checked": now,
		}).Error
}
