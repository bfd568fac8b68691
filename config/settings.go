package config

import (
	_ "embed"
	"fmt"

	"github.com/zlnvch/seodash/models"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultSettingsYAML []byte

// DefaultSettings returns a fresh copy of the built-in dashboard settings.
func DefaultSettings() (models.Settings, error) {
	var s models.Settings
	if err := yaml.Unmarshal(defaultSettingsYAML, &s); err != nil {
		return models.Settings{}, fmt.Errorf("failed to parse default settings: %w", err)
	}
	return s, nil
}

// MergeSettings applies the user's overrides to base and returns a new value.
// base is never modified.
func MergeSettings(base models.Settings, o models.SettingsOverrides) models.Settings {
	merged := base
	if o.ContentModel != nil {
		merged.ContentModel = *o.ContentModel
	}
	if o.ContentMaxTokens != nil {
		merged.ContentMaxTokens = *o.ContentMaxTokens
	}
	if o.Temperature != nil {
		merged.Temperature = *o.Temperature
	}
	if o.Tone != nil {
		merged.Tone = *o.Tone
	}
	if o.TargetWordCount != nil {
		merged.TargetWordCount = *o.TargetWordCount
	}
	if o.DefaultLocationCode != nil {
		merged.DefaultLocationCode = *o.DefaultLocationCode
	}
	if o.DefaultLanguageCode != nil {
		merged.DefaultLanguageCode = *o.DefaultLanguageCode
	}
	if o.AuditMaxPages != nil {
		merged.AuditMaxPages = *o.AuditMaxPages
	}
	if o.SystemPrompt != nil {
		merged.SystemPrompt = *o.SystemPrompt
	}
	return merged
}

// OverlayOverrides folds patch into current, field by field, so successive
// partial updates accumulate.
func OverlayOverrides(current, patch models.SettingsOverrides) models.SettingsOverrides {
	out := current
	if patch.ContentModel != nil {
		out.ContentModel = patch.ContentModel
	}
	if patch.ContentMaxTokens != nil {
		out.ContentMaxTokens = patch.ContentMaxTokens
	}
	if patch.Temperature != nil {
		out.Temperature = patch.Temperature
	}
	if patch.Tone != nil {
		out.Tone = patch.Tone
	}
	if patch.TargetWordCount != nil {
		out.TargetWordCount = patch.TargetWordCount
	}
	if patch.DefaultLocationCode != nil {
		out.DefaultLocationCode = patch.DefaultLocationCode
	}
	if patch.DefaultLanguageCode != nil {
		out.DefaultLanguageCode = patch.DefaultLanguageCode
	}
	if patch.AuditMaxPages != nil {
		out.AuditMaxPages = patch.AuditMaxPages
	}
	if patch.SystemPrompt != nil {
		out.SystemPrompt = patch.SystemPrompt
	}
	return out
}
