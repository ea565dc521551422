package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/internal/phone"
	"github.com/gescall/dialer-console/internal/repository"
	"github.com/gescall/dialer-console/pkg/logger"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrPoolInactive    = errors.New("pool is not active")
	ErrEmptyImport     = errors.New("import payload contains no numbers")
	ErrInvalidNumber   = errors.New("number does not match the pool country format")
	ErrDuplicateNumber = errors.New("callerid already exists in pool")
)

var importSeparators = regexp.MustCompile(`[\r\n,;]+`)

type PoolRepository interface {
	Create(ctx context.Context, pool *model.CallerIDPool) (*model.CallerIDPool, error)
	Get(ctx context.Context, id int64) (*model.CallerIDPool, error)
	List(ctx context.Context, f model.PoolFilter) ([]*model.CallerIDPool, int64, error)
	Update(ctx context.Context, id int64, req model.PoolUpdateRequest) (*model.CallerIDPool, error)
	Delete(ctx context.Context, id int64) error
	InsertNumbers(ctx context.Context, numbers []*model.PoolNumber) (int, error)
	InsertNumber(ctx context.Context, number *model.PoolNumber) (*model.PoolNumber, error)
	ListNumbers(ctx context.Context, f model.PoolNumberFilter) ([]*model.PoolNumber, int64, error)
	DeleteNumber(ctx context.Context, poolID, numberID int64) error
	SetNumberActive(ctx context.Context, poolID, numberID int64, active bool) error
	AreaCodeSummaries(ctx context.Context, poolID int64) ([]*model.AreaCodeSummary, error)
}

type SettingsRepository interface {
	GetByCampaign(ctx context.Context, campaignID string) (*model.CampaignCallerIDSettings, error)
	Upsert(ctx context.Context, s *model.CampaignCallerIDSettings) (*model.CampaignCallerIDSettings, error)
	Delete(ctx context.Context, campaignID string) error
	List(ctx context.Context) ([]*model.CampaignCallerIDSettings, error)
}

type PoolService struct {
	poolRepo     PoolRepository
	settingsRepo SettingsRepository
}

func NewPoolService(poolRepo PoolRepository, settingsRepo SettingsRepository) *PoolService {
	return &PoolService{
		poolRepo:     poolRepo,
		settingsRepo: settingsRepo,
	}
}

func (s *PoolService) Create(ctx context.Context, req model.PoolCreateRequest) (*model.CallerIDPool, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	country := strings.ToUpper(strings.TrimSpace(req.CountryCode))
	if country == "" {
		country = phone.DefaultCountry
	}

	pool := &model.CallerIDPool{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CountryCode: country,
		IsActive:    true,
	}

	created, err := s.poolRepo.Create(ctx, pool)
	if err != nil {
		return nil, err
	}

	logger.Info("Pool created", "pool_id", created.ID, "name", created.Name, "country", created.CountryCode)
	return created, nil
}

func (s *PoolService) Get(ctx context.Context, id int64) (*model.CallerIDPool, error) {
	pool, err := s.poolRepo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return pool, err
}

func (s *PoolService) List(ctx context.Context, f model.PoolFilter) ([]*model.CallerIDPool, int64, error) {
	return s.poolRepo.List(ctx, f)
}

func (s *PoolService) Update(ctx context.Context, id int64, req model.PoolUpdateRequest) (*model.CallerIDPool, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, errors.New("name cannot be empty")
	}
	if req.CountryCode != nil {
		country := strings.ToUpper(strings.TrimSpace(*req.CountryCode))
		req.CountryCode = &country
	}

	pool, err := s.poolRepo.Update(ctx, id, req)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return pool, err
}

func (s *PoolService) Delete(ctx context.Context, id int64) error {
	err := s.poolRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err == nil {
		logger.Info("Pool deleted", "pool_id", id)
	}
	return err
}

// ImportNumbers takes a raw paste of numbers separated by newlines, commas
// or semicolons and loads the valid ones into the pool. Invalid numbers
// and duplicates are counted, never fatal: operators paste thousand-line
// blobs from spreadsheets and expect the good rows to land.
func (s *PoolService) ImportNumbers(ctx context.Context, poolID int64, raw string) (*model.ImportResult, error) {
	pool, err := s.Get(ctx, poolID)
	if err != nil {
		return nil, err
	}

	tokens := importSeparators.Split(raw, -1)
	result := &model.ImportResult{}
	seen := make(map[string]struct{})
	var numbers []*model.PoolNumber

	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		result.Found++

		clean, ok := phone.ValidateForCountry(tok, pool.CountryCode)
		if !ok {
			result.Invalid++
			continue
		}
		if _, dup := seen[clean]; dup {
			result.Skipped++
			continue
		}
		seen[clean] = struct{}{}

		numbers = append(numbers, &model.PoolNumber{
			PoolID:   poolID,
			CallerID: clean,
			AreaCode: phone.AreaCode(clean),
			IsActive: true,
		})
	}

	if result.Found == 0 {
		return nil, ErrEmptyImport
	}

	inserted, err := s.poolRepo.InsertNumbers(ctx, numbers)
	if err != nil {
		return nil, err
	}
	result.Inserted = inserted
	result.Skipped += len(numbers) - inserted

	logger.Info("Numbers imported",
		"pool_id", poolID, "found", result.Found, "inserted", result.Inserted,
		"skipped", result.Skipped, "invalid", result.Invalid)
	return result, nil
}

// AddNumber adds one validated number to the pool.
func (s *PoolService) AddNumber(ctx context.Context, poolID int64, raw string) (*model.PoolNumber, error) {
	pool, err := s.Get(ctx, poolID)
	if err != nil {
		return nil, err
	}

	clean, ok := phone.ValidateForCountry(raw, pool.CountryCode)
	if !ok {
		return nil, ErrInvalidNumber
	}

	number, err := s.poolRepo.InsertNumber(ctx, &model.PoolNumber{
		PoolID:   poolID,
		CallerID: clean,
		AreaCode: phone.AreaCode(clean),
		IsActive: true,
	})
	if errors.Is(err, repository.ErrDuplicateNumber) {
		return nil, ErrDuplicateNumber
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Number added", "pool_id", poolID, "callerid", clean, "area_code", number.AreaCode)
	return number, nil
}

func (s *PoolService) ListNumbers(ctx context.Context, f model.PoolNumberFilter) ([]*model.PoolNumber, int64, error) {
	return s.poolRepo.ListNumbers(ctx, f)
}

func (s *PoolService) DeleteNumber(ctx context.Context, poolID, numberID int64) error {
	err := s.poolRepo.DeleteNumber(ctx, poolID, numberID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *PoolService) SetNumberActive(ctx context.Context, poolID, numberID int64, active bool) error {
	err := s.poolRepo.SetNumberActive(ctx, poolID, numberID, active)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *PoolService) AreaCodes(ctx context.Context, poolID int64) ([]*model.AreaCodeSummary, error) {
	if _, err := s.Get(ctx, poolID); err != nil {
		return nil, err
	}
	return s.poolRepo.AreaCodeSummaries(ctx, poolID)
}

// GetSettings returns the campaign's rotation settings, or a synthetic
// OFF row when the campaign was never configured.
func (s *PoolService) GetSettings(ctx context.Context, campaignID string) (*model.CampaignCallerIDSettings, error) {
	settings, err := s.settingsRepo.GetByCampaign(ctx, campaignID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.CampaignCallerIDSettings{
			CampaignID:        campaignID,
			RotationMode:      model.RotationModeOff,
			MatchMode:         model.MatchModeLead,
			SelectionStrategy: model.StrategyRoundRobin,
		}, nil
	}
	return settings, err
}

func (s *PoolService) UpsertSettings(ctx context.Context, req model.SettingsUpsertRequest) (*model.CampaignCallerIDSettings, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.RotationMode == model.RotationModePool {
		if _, err := s.Get(ctx, *req.PoolID); err != nil {
			return nil, err
		}
	}

	matchMode := req.MatchMode
	if matchMode == "" {
		matchMode = model.MatchModeLead
	}
	strategy := req.SelectionStrategy
	if strategy == "" {
		strategy = model.StrategyRoundRobin
	}

	settings, err := s.settingsRepo.Upsert(ctx, &model.CampaignCallerIDSettings{
		CampaignID:        req.CampaignID,
		RotationMode:      req.RotationMode,
		PoolID:            req.PoolID,
		MatchMode:         matchMode,
		FixedAreaCode:     req.FixedAreaCode,
		FallbackCallerID:  req.FallbackCallerID,
		SelectionStrategy: strategy,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Campaign rotation settings saved",
		"campaign_id", req.CampaignID, "mode", string(req.RotationMode), "strategy", string(strategy))
	return settings, nil
}

func (s *PoolService) DeleteSettings(ctx context.Context, campaignID string) error {
	err := s.settingsRepo.Delete(ctx, campaignID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *PoolService) ListSettings(ctx context.Context) ([]*model.CampaignCallerIDSettings, error) {
	return s.settingsRepo.List(ctx)
}
