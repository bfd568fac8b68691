package service

import (
	"context"
	"strings"

	"github.com/zlnvch/seodash/config"
	"github.com/zlnvch/seodash/models"
)

type SettingsView struct {
	Effective models.Settings          `json:"effective"`
	Overrides models.SettingsOverrides `json:"overrides"`
}

// EffectiveSettings builds a fresh settings value for one request from the
// server defaults and the user's stored overrides.
func (s *Service) EffectiveSettings(ctx context.Context, userId string) (models.Settings, error) {
	overrides, err := s.Store.GetSettings(ctx, userId)
	if err != nil {
		return models.Settings{}, err
	}
	return config.MergeSettings(s.Defaults, overrides), nil
}

func (s *Service) GetSettings(ctx context.Context, user models.User) (SettingsView, error) {
	overrides, err := s.Store.GetSettings(ctx, user.Id)
	if err != nil {
		return SettingsView{}, err
	}
	return SettingsView{Effective: config.MergeSettings(s.Defaults, overrides), Overrides: overrides}, nil
}

func validateOverrides(o models.SettingsOverrides) error {
	if o.ContentModel != nil && strings.TrimSpace(*o.ContentModel) == "" {
		return invalid("contentModel", "must not be empty")
	}
	if o.ContentMaxTokens != nil && (*o.ContentMaxTokens < 256 || *o.ContentMaxTokens > 16000) {
		return invalid("contentMaxTokens", "must be between 256 and 16000")
	}
	if o.Temperature != nil && (*o.Temperature < 0 || *o.Temperature > 2) {
		return invalid("temperature", "must be between 0 and 2")
	}
	if o.Tone != nil && (strings.TrimSpace(*o.Tone) == "" || len(*o.Tone) > 50) {
		return invalid("tone", "must be 1 to 50 characters")
	}
	if o.TargetWordCount != nil && (*o.TargetWordCount < 300 || *o.TargetWordCount > 5000) {
		return invalid("targetWordCount", "must be between 300 and 5000")
	}
	if o.DefaultLocationCode != nil && *o.DefaultLocationCode <= 0 {
		return invalid("defaultLocationCode", "must be positive")
	}
	if o.DefaultLanguageCode != nil {
		if err := validateLanguageCode("defaultLanguageCode", *o.DefaultLanguageCode); err != nil {
			return err
		}
	}
	if o.AuditMaxPages != nil && (*o.AuditMaxPages < 1 || *o.AuditMaxPages > 50) {
		return invalid("auditMaxPages", "must be between 1 and 50")
	}
	if o.SystemPrompt != nil && (strings.TrimSpace(*o.SystemPrompt) == "" || len(*o.SystemPrompt) > 8000) {
		return invalid("systemPrompt", "must be 1 to 8000 characters")
	}
	return nil
}

// UpdateSettings folds patch into the stored overrides.
func (s *Service) UpdateSettings(ctx context.Context, user models.User, patch models.SettingsOverrides) (SettingsView, error) {
	if err := validateOverrides(patch); err != nil {
		return SettingsView{}, err
	}

	current, err := s.Store.GetSettings(ctx, user.Id)
	if err != nil {
		return SettingsView{}, err
	}

	merged := config.OverlayOverrides(current, patch)
	if err := s.Store.SaveSettings(ctx, user.Id, merged); err != nil {
		return SettingsView{}, err
	}

	return SettingsView{Effective: config.MergeSettings(s.Defaults, merged), Overrides: merged}, nil
}

func (s *Service) ResetSettings(ctx context.Context, user models.User) (SettingsView, error) {
	if err := s.Store.DeleteSettings(ctx, user.Id); err != nil {
		return SettingsView{}, err
	}
	return SettingsView{Effective: config.MergeSettings(s.Defaults, models.SettingsOverrides{}), Overrides: models.SettingsOverrides{}}, nil
}
