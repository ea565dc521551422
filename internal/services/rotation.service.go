package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/internal/phone"
	"github.com/gescall/dialer-console/internal/repository"
	"github.com/gescall/dialer-console/pkg/logger"
	"github.com/gescall/dialer-console/pkg/prom"
	"github.com/gescall/dialer-console/pkg/redis"
)

type SettingsReader interface {
	GetByCampaign(ctx context.Context, campaignID string) (*model.CampaignCallerIDSettings, error)
}

type PoolReader interface {
	Get(ctx context.Context, id int64) (*model.CallerIDPool, error)
}

type RotationClaimer interface {
	ClaimRoundRobin(ctx context.Context, poolID int64, areaCode string) (*model.PoolNumber, error)
	ClaimRandom(ctx context.Context, poolID int64, areaCode string) (*model.PoolNumber, error)
	ClaimLRU(ctx context.Context, poolID int64, areaCode string) (*model.PoolNumber, error)
}

type UsageLogAppender interface {
	Append(ctx context.Context, entry *model.UsageLogEntry) (*model.UsageLogEntry, error)
	List(ctx context.Context, f model.UsageLogFilter) ([]*model.UsageLogEntry, int64, error)
}

// RotationOptions tune the selection path. Zero values fall back to
// defaults sized for the call-setup latency budget.
type RotationOptions struct {
	SelectTimeout  time.Duration
	LockTTL        time.Duration
	LockRetryDelay time.Duration
}

// RotationService answers "which caller-ID should this call present".
// Select never returns an error: the call must go out even when the
// console is on fire, so every failure degrades to the campaign default.
type RotationService struct {
	settingsRepo SettingsReader
	poolRepo     PoolReader
	claimer      RotationClaimer
	usageRepo    UsageLogAppender
	locks        *groupLocks
	opts         RotationOptions
}

func NewRotationService(settingsRepo SettingsReader, poolRepo PoolReader, claimer RotationClaimer, usageRepo UsageLogAppender, rd redis.RedisAdapter, opts RotationOptions) *RotationService {
	if opts.SelectTimeout <= 0 {
		opts.SelectTimeout = 800 * time.Millisecond
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Second
	}
	if opts.LockRetryDelay <= 0 {
		opts.LockRetryDelay = 5 * time.Millisecond
	}
	return &RotationService{
		settingsRepo: settingsRepo,
		poolRepo:     poolRepo,
		claimer:      claimer,
		usageRepo:    usageRepo,
		locks:        newGroupLocks(rd, opts.LockTTL, opts.LockRetryDelay),
		opts:         opts,
	}
}

// Select picks the caller-ID for one outbound call. The empty CallerID in
// the DEFAULT result means the dialer keeps the campaign's own number.
func (s *RotationService) Select(ctx context.Context, campaignID, leadPhone, leadID string) model.Selection {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.opts.SelectTimeout)
	defer cancel()

	sel, settings := s.doSelect(ctx, campaignID, leadPhone)

	s.appendUsage(campaignID, leadPhone, leadID, sel)

	prom.IncCounterVec(prom.SystemRotation, prom.MetricRotationSelections, string(sel.Result), string(sel.Strategy))
	prom.AddHistogram(prom.SystemRotation, prom.MetricRotationSelectDuration, time.Since(start).Seconds())

	if settings != nil {
		logger.Debug("Caller-ID selected",
			"campaign_id", campaignID, "result", string(sel.Result),
			"callerid", sel.CallerID, "area_code", sel.AreaCodeTarget)
	}
	return sel
}

func (s *RotationService) doSelect(ctx context.Context, campaignID, leadPhone string) (model.Selection, *model.CampaignCallerIDSettings) {
	settings, err := s.settingsRepo.GetByCampaign(ctx, campaignID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Selection{Result: model.ResultDefault}, nil
	}
	if err != nil {
		logger.Error("Settings lookup failed, using campaign default", "campaign_id", campaignID, "error", err)
		return model.Selection{Result: model.ResultDefault}, nil
	}

	if settings.RotationMode != model.RotationModePool || settings.PoolID == nil {
		return model.Selection{Result: model.ResultDefault}, settings
	}

	sel := model.Selection{
		Result:   model.ResultDefault,
		PoolID:   settings.PoolID,
		Strategy: settings.SelectionStrategy,
	}

	pool, err := s.poolRepo.Get(ctx, *settings.PoolID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Error("Pool lookup failed, using campaign default", "pool_id", *settings.PoolID, "error", err)
		}
		return sel, settings
	}
	if !pool.IsActive {
		return sel, settings
	}

	area := s.targetAreaCode(settings, leadPhone)
	sel.AreaCodeTarget = area

	if area != "" {
		number, err := s.claim(ctx, settings, area)
		if err == nil {
			sel.CallerID = number.CallerID
			sel.Result = model.ResultMatched
			return sel, settings
		}
		if !errors.Is(err, repository.ErrNoCandidate) {
			logger.Error("Caller-ID claim failed, using campaign default",
				"campaign_id", campaignID, "pool_id", *settings.PoolID, "area_code", area, "error", err)
			return sel, settings
		}
	}

	if settings.FallbackCallerID != "" {
		sel.CallerID = settings.FallbackCallerID
		sel.Result = model.ResultFallback
		return sel, settings
	}

	sel.Result = model.ResultNoMatch
	return sel, settings
}

func (s *RotationService) targetAreaCode(settings *model.CampaignCallerIDSettings, leadPhone string) string {
	if settings.MatchMode == model.MatchModeFixed {
		return settings.FixedAreaCode
	}
	return phone.LeadAreaCode(leadPhone)
}

func (s *RotationService) claim(ctx context.Context, settings *model.CampaignCallerIDSettings, area string) (*model.PoolNumber, error) {
	poolID := *settings.PoolID

	switch settings.SelectionStrategy {
	case model.StrategyRandom:
		return s.claimer.ClaimRandom(ctx, poolID, area)
	case model.StrategyLRU:
		return s.claimer.ClaimLRU(ctx, poolID, area)
	default:
		// Round robin mutates the group order, so claims on the same
		// (pool, area code) group are serialized across instances.
		unlock := s.locks.lock(ctx, fmt.Sprintf("rotation:lock:%d:%s", poolID, area))
		defer unlock()
		return s.claimer.ClaimRoundRobin(ctx, poolID, area)
	}
}

// appendUsage records the decision outside the caller's deadline: the log
// row matters even when the selection hit the timeout.
func (s *RotationService) appendUsage(campaignID, leadPhone, leadID string, sel model.Selection) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := s.usageRepo.Append(ctx, &model.UsageLogEntry{
		CampaignID:     campaignID,
		LeadID:         leadID,
		PhoneNumber:    phone.Digits(leadPhone),
		CallerID:       sel.CallerID,
		AreaCodeTarget: sel.AreaCodeTarget,
		PoolID:         sel.PoolID,
		Result:         sel.Result,
		Strategy:       sel.Strategy,
	})
	if err != nil {
		logger.Error("Usage log append failed", "campaign_id", campaignID, "error", err)
	}
}

func (s *RotationService) ListUsage(ctx context.Context, f model.UsageLogFilter) ([]*model.UsageLogEntry, int64, error) {
	return s.usageRepo.List(ctx, f)
}

// groupLocks serializes round-robin claims per (pool, area code) group: a
// local mutex covers goroutines in this process, a redis lease covers
// other instances. When redis is down the local mutex still holds and the
// claim proceeds; cross-instance overlap then only skews the order, never
// corrupts it.
type groupLocks struct {
	rd         redis.RedisAdapter
	ttl        time.Duration
	retryDelay time.Duration

	mu    sync.Mutex
	local map[string]*sync.Mutex
}

func newGroupLocks(rd redis.RedisAdapter, ttl, retryDelay time.Duration) *groupLocks {
	return &groupLocks{
		rd:         rd,
		ttl:        ttl,
		retryDelay: retryDelay,
		local:      make(map[string]*sync.Mutex),
	}
}

func (g *groupLocks) lock(ctx context.Context, key string) func() {
	g.mu.Lock()
	m, ok := g.local[key]
	if !ok {
		m = &sync.Mutex{}
		g.local[key] = m
	}
	g.mu.Unlock()

	m.Lock()

	leased := false
	if g.rd != nil {
		for {
			ok, err := g.rd.SetNX(key, []byte("1"), g.ttl)
			if err != nil {
				logger.Warn("Rotation lock unavailable, proceeding with local lock", "key", key, "error", err)
				break
			}
			if ok {
				leased = true
				break
			}
			select {
			case <-ctx.Done():
				// Deadline spent waiting on another instance; claim
				// anyway under the local lock.
				return func() { m.Unlock() }
			case <-time.After(g.retryDelay):
			}
		}
	}

	return func() {
		if leased {
			if err := g.rd.Del(key); err != nil {
				logger.Warn("Rotation lock release failed", "key", key, "error", err)
			}
		}
		m.Unlock()
	}
}
