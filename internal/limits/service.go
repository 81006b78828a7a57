package limits

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/eloity/tradelimits/internal/models"
	"github.com/eloity/tradelimits/internal/repository"
	"github.com/shopspring/decimal"
)

const limitCacheTTL = 5 * time.Minute

// Cache is the subset of the Redis wrapper the service needs. A nil cache
// disables caching without changing behavior.
type Cache interface {
	Get(key string) (string, error)
	Set(key string, value string, expiration time.Duration) error
	Delete(key string) error
}

// Service is the single entry point callers use for trading limits and
// KYC documents. It never returns errors: failures are logged and degrade
// to nil, false or an empty slice, so callers can only act on "it worked"
// or "it didn't". Anything needing failure causes talks to the
// repositories directly.
type Service struct {
	limitRepo repository.TradingLimitRepository
	docRepo   repository.KYCDocumentRepository
	cache     Cache
	logger    *slog.Logger
}

func New(limitRepo repository.TradingLimitRepository, docRepo repository.KYCDocumentRepository, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		limitRepo: limitRepo,
		docRepo:   docRepo,
		cache:     cache,
		logger:    logger,
	}
}

func limitCacheKey(userID string) string {
	return "trading_limits:" + userID
}

// GetUserTradingLimits returns the user's limit row, creating the tier-0
// default when the row is legitimately absent. A lookup that fails for any
// other reason returns nil without creating anything; masking an outage
// as a fleet of new users would be worse than failing the request.
func (s *Service) GetUserTradingLimits(userID string) *models.TradingLimit {
	if s.cache != nil {
		raw, err := s.cache.Get(limitCacheKey(userID))
		if err == nil {
			var limit models.TradingLimit
			if err := json.Unmarshal([]byte(raw), &limit); err == nil {
				return &limit
			}
		}
	}

	limit, found, err := s.limitRepo.GetByUserID(userID)
	if err != nil {
		s.logger.Error("fetching trading limits", "user_id", userID, "error", err)
		return nil
	}

	if !found {
		return s.CreateDefaultTradingLimits(userID)
	}

	s.cacheLimit(limit)

	return limit
}

// CreateDefaultTradingLimits persists the tier-0 row for a user and
// returns it, or nil if the store refused the insert.
func (s *Service) CreateDefaultTradingLimits(userID string) *models.TradingLimit {
	tier := ResolveTier(0)

	limit, err := s.limitRepo.InsertDefault(userID, tier.DailyLimit, tier.MonthlyLimit)
	if err != nil {
		s.logger.Error("creating default trading limits", "user_id", userID, "error", err)
		return nil
	}

	s.cacheLimit(limit)

	return limit
}

// UpdateTradingLimits moves the user to the tier for kycLevel, falling
// back to tier 0 for unknown levels. The volume accumulators are never
// touched here, an upgrade does not hand back spent headroom.
func (s *Service) UpdateTradingLimits(userID string, kycLevel int) bool {
	tier := ResolveTier(kycLevel)

	err := s.limitRepo.Upsert(userID, tier.Level, tier.DailyLimit, tier.MonthlyLimit)
	if err != nil {
		s.logger.Error("updating trading limits", "user_id", userID, "kyc_level", kycLevel, "error", err)
		return false
	}

	s.invalidate(userID)

	return true
}

// RecordTradeVolume adds a settled trade amount to the user's volume
// accumulators, lazily creating the default row for first-time traders.
func (s *Service) RecordTradeVolume(userID string, amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		s.logger.Error("refusing to record non-positive trade volume", "user_id", userID, "amount", amount)
		return false
	}

	recorded, err := s.limitRepo.RecordVolume(userID, amount)
	if err != nil {
		s.logger.Error("recording trade volume", "user_id", userID, "error", err)
		return false
	}

	if !recorded {
		if s.CreateDefaultTradingLimits(userID) == nil {
			return false
		}

		recorded, err = s.limitRepo.RecordVolume(userID, amount)
		if err != nil || !recorded {
			s.logger.Error("recording trade volume after init", "user_id", userID, "error", err)
			return false
		}
	}

	s.invalidate(userID)

	return true
}

// CanTrade reports whether an amount fits inside the user's remaining
// daily and monthly headroom. The reason is empty when trading is allowed.
func (s *Service) CanTrade(userID string, amount decimal.Decimal) (bool, string) {
	limit := s.GetUserTradingLimits(userID)
	if limit == nil {
		return false, "trading limits are unavailable, try again later"
	}

	daily, monthly := EffectiveVolumes(limit, time.Now().UTC())

	if daily.Add(amount).GreaterThan(limit.DailyLimit) {
		return false, "daily trading limit exceeded, upgrade your verification level"
	}

	if monthly.Add(amount).GreaterThan(limit.MonthlyLimit) {
		return false, "monthly trading limit exceeded, upgrade your verification level"
	}

	return true, ""
}

// EffectiveVolumes returns the accumulators as of now, treating a volume
// whose window has rolled over as zero. The stored row is reset lazily on
// the next recording, reads must not trust stale windows in the meantime.
func EffectiveVolumes(limit *models.TradingLimit, now time.Time) (daily, monthly decimal.Decimal) {
	daily = decimal.Zero
	monthly = decimal.Zero

	dy, dm, dd := limit.DailyWindowStart.Date()
	ny, nm, nd := now.Date()
	if dy == ny && dm == nm && dd == nd {
		daily = limit.CurrentDailyVolume
	}

	my, mm, _ := limit.MonthlyWindowStart.Date()
	if my == ny && mm == nm {
		monthly = limit.CurrentMonthlyVolume
	}

	return daily, monthly
}

// UploadKYCDocument persists an uploaded document and returns the stored
// row with its generated id and timestamp, or nil on failure. The document
// type is the caller's responsibility, the store takes what it is given.
func (s *Service) UploadKYCDocument(doc *models.KYCDocument) *models.KYCDocument {
	inserted, err := s.docRepo.Insert(doc)
	if err != nil {
		s.logger.Error("inserting kyc document", "user_id", doc.UserID, "error", err)
		return nil
	}

	return inserted
}

// GetUserKYCDocuments returns the user's documents newest first. The
// slice is empty both for users with no documents and on store failure,
// only the log tells them apart.
func (s *Service) GetUserKYCDocuments(userID string) []models.KYCDocument {
	documents, err := s.docRepo.GetAllByUserID(userID)
	if err != nil {
		s.logger.Error("fetching kyc documents", "user_id", userID, "error", err)
		return []models.KYCDocument{}
	}

	if documents == nil {
		documents = []models.KYCDocument{}
	}

	return documents
}

func (s *Service) cacheLimit(limit *models.TradingLimit) {
	if s.cache == nil || limit == nil {
		return
	}

	raw, err := json.Marshal(limit)
	if err != nil {
		return
	}

	if err := s.cache.Set(limitCacheKey(limit.UserID), string(raw), limitCacheTTL); err != nil {
		s.logger.Warn("caching trading limits", "user_id", limit.UserID, "error", err)
	}
}

func (s *Service) invalidate(userID string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(limitCacheKey(userID)); err != nil {
		s.logger.Warn("invalidating trading limits cache", "user_id", userID, "error", err)
	}
}
