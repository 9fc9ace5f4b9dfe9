package service

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"examportal/internal/model"
	"examportal/internal/repository"
)

// knownControlKeys are the setting keys the portal understands. Unknown keys
// in an update payload are ignored rather than stored.
var knownControlKeys = map[string]bool{
	model.SettingShowResultImmediately: true,
	model.SettingShowResultHistory:     true,
	model.SettingShowRankings:          true,
	model.SettingAllowAnswerReview:     true,
	model.SettingCopyProtection:        true,
	model.SettingScreenshotBlock:       true,
	model.SettingTabSwitchDetect:       true,
}

// SettingService manages exam behaviour toggles.
type SettingService struct {
	settingRepo *repository.SettingRepository
	log         zerolog.Logger
}

// NewSettingService creates a new SettingService.
func NewSettingService(settingRepo *repository.SettingRepository, log zerolog.Logger) *SettingService {
	return &SettingService{
		settingRepo: settingRepo,
		log:         log.With().Str("component", "setting_service").Logger(),
	}
}

// GetControls assembles the current exam controls, falling back to defaults
// for keys that were never stored.
func (s *SettingService) GetControls(ctx context.Context) (*model.ExamControls, error) {
	stored, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load settings")
		return nil, err
	}

	controls := model.DefaultExamControls()
	apply := func(key string, target *bool) {
		if v, ok := stored[key]; ok {
			if parsed, err := strconv.ParseBool(v); err == nil {
				*target = parsed
			}
		}
	}
	apply(model.SettingShowResultImmediately, &controls.ShowResultImmediately)
	apply(model.SettingShowResultHistory, &controls.ShowResultHistory)
	apply(model.SettingShowRankings, &controls.ShowRankings)
	apply(model.SettingAllowAnswerReview, &controls.AllowAnswerReview)
	apply(model.SettingCopyProtection, &controls.CopyProtection)
	apply(model.SettingScreenshotBlock, &controls.ScreenshotBlock)
	apply(model.SettingTabSwitchDetect, &controls.TabSwitchDetect)
	return &controls, nil
}

// UpdateControls persists the provided toggles. Keys absent from the payload
// keep their stored value.
func (s *SettingService) UpdateControls(ctx context.Context, req *model.UpdateControlsRequest) (*model.ExamControls, error) {
	for key, value := range req.Controls {
		if !knownControlKeys[key] {
			s.log.Warn().Str("key", key).Msg("ignoring unknown control key")
			continue
		}
		if err := s.settingRepo.Set(ctx, key, strconv.FormatBool(value)); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("failed to update setting")
			return nil, err
		}
	}
	return s.GetControls(ctx)
}
