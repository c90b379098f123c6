package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/JulioFS/zforum/internal/dto"
	"github.com/JulioFS/zforum/internal/models"
	"github.com/JulioFS/zforum/internal/repository"
)

// ErrSettingNotFound indicates no system setting matches the given name.
var ErrSettingNotFound = errors.New("system setting not found")

// SettingsService reads and writes process-wide tunables. Values are
// read-mostly; writes arrive only from the administrative surface.
type SettingsService interface {
	Seed(ctx context.Context) error
	Get(ctx context.Context, name, fallback string) string
	Set(ctx context.Context, name, value string) (dto.SettingResponse, error)
	List(ctx context.Context) ([]dto.SettingResponse, error)
}

type settingsService struct {
	settings repository.SettingRepository
	logger   zerolog.Logger
}

// NewSettingsService constructs the settings service.
func NewSettingsService(settings repository.SettingRepository, logger zerolog.Logger) SettingsService {
	return &settingsService{
		settings: settings,
		logger:   logger.With().Str("component", "settings_service").Logger(),
	}
}

// Seed inserts the default tunables on first run; existing values win.
func (s *settingsService) Seed(ctx context.Context) error {
	return s.settings.Seed(ctx, models.DefaultSystemSettings())
}

// Get returns the stored value, or fallback when the setting is missing.
// Lookup failures degrade to the fallback rather than surfacing.
func (s *settingsService) Get(ctx context.Context, name, fallback string) string {
	setting, err := s.settings.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("name", name).Msg("failed to read system setting")
		}
		return fallback
	}
	return setting.Value
}

func (s *settingsService) Set(ctx context.Context, name, value string) (dto.SettingResponse, error) {
	if err := s.settings.Set(ctx, name, value); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SettingResponse{}, ErrSettingNotFound
		}
		return dto.SettingResponse{}, err
	}

	setting, err := s.settings.Get(ctx, name)
	if err != nil {
		return dto.SettingResponse{}, err
	}

	s.logger.Info().Str("name", name).Msg("system setting updated")

	return dto.NewSettingResponse(setting), nil
}

func (s *settingsService) List(ctx context.Context) ([]dto.SettingResponse, error) {
	settings, err := s.settings.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewSettingResponseSlice(settings), nil
}
