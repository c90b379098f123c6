package dto

import (
	"time"

	"github.com/JulioFS/zforum/internal/models"
)

// SettingUpdateRequest carries a new value for a named system setting.
type SettingUpdateRequest struct {
	Value string `json:"value" validate:"max=512"`
}

// SettingResponse is the serialized representation of a system setting.
type SettingResponse struct {
	Name        string    `json:"name"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewSettingResponse converts a model into a DTO.
func NewSettingResponse(setting models.SystemSetting) SettingResponse {
	return SettingResponse{
		Name:        setting.Name,
		Value:       setting.Value,
		Description: setting.Description,
		UpdatedAt:   setting.UpdatedAt,
	}
}

// NewSettingResponseSlice converts a slice of models into DTOs.
func NewSettingResponseSlice(settings []models.SystemSetting) []SettingResponse {
	out := make([]SettingResponse, 0, len(settings))
	for _, setting := range settings {
		out = append(out, NewSettingResponse(setting))
	}
	return out
}
