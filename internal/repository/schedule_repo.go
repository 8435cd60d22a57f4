package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/timmy/autoposter/internal/domain"
	"github.com/timmy/autoposter/internal/logger"
	"github.com/timmy/autoposter/internal/storage"
)

// ScheduleRepository loads the posting calendar and the title banks from the
// blob store. The schedule is read-only per run.
type ScheduleRepository struct {
	store          storage.ObjectStorage
	configKey      string
	titlesKey      string
	shortTitlesKey string
	logger         *logger.Logger
}

// NewScheduleRepository creates a schedule repository.
// Parameters:
//   - store: blob store backend.
//   - configKey: object key of the schedule config document.
//   - titlesKey: object key of the long-form title bank.
//   - shortTitlesKey: object key of the shorts/reels title bank.
//   - log: logger instance.
// Returns:
//   - *ScheduleRepository: initialized repository.
func NewScheduleRepository(store storage.ObjectStorage, configKey, titlesKey, shortTitlesKey string, log *logger.Logger) *ScheduleRepository {
	return &ScheduleRepository{
		store:          store,
		configKey:      configKey,
		titlesKey:      titlesKey,
		shortTitlesKey: shortTitlesKey,
		logger:         log,
	}
}

// LoadSchedule fetches and parses the schedule config. A missing or
// unparseable config is fatal to the run.
func (r *ScheduleRepository) LoadSchedule(ctx context.Context) (*domain.ScheduleConfig, error) {
	data, err := storage.GetBytes(ctx, r.store, r.configKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule config %s: %w", r.configKey, err)
	}
	cfg := &domain.ScheduleConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse schedule config %s: %w", r.configKey, err)
	}
	if !cfg.Valid() {
		return nil, fmt.Errorf("invalid schedule config %s: no YouTube channels", r.configKey)
	}
	return cfg, nil
}

// LoadTitles fetches a title bank. Failures degrade to an empty bank so the
// run can fall back to creator-name titles.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - short: true for the shorts/reels bank, false for the long-form bank.
// Returns:
//   - domain.TitleBank: parsed bank, empty on any failure.
func (r *ScheduleRepository) LoadTitles(ctx context.Context, short bool) domain.TitleBank {
	key := r.titlesKey
	if short {
		key = r.shortTitlesKey
	}
	data, err := storage.GetBytes(ctx, r.store, key)
	if err != nil {
		logger.CtxWarn(ctx, "Failed to load titles from %s: %v", key, err)
		return domain.TitleBank{}
	}
	bank := domain.TitleBank{}
	if err := json.Unmarshal(data, &bank); err != nil {
		logger.CtxWarn(ctx, "Failed to parse titles from %s: %v", key, err)
		return domain.TitleBank{}
	}
	return bank
}
