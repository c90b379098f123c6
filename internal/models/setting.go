package models

import "time"

// SystemSetting is a process-wide tunable keyed by name.
type SystemSetting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Value       string    `gorm:"size:512" json:"value"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultSystemSettings lists the settings seeded on first run. Existing
// rows are left untouched so operator overrides survive restarts.
func DefaultSystemSettings() []SystemSetting {
	return []SystemSetting{
		{Name: "topics_per_page", Value: "50", Description: "Number of topics shown per channel page"},
		{Name: "channels_per_page", Value: "25", Description: "Number of channels shown per listing page"},
		{Name: "use_rank_system", Value: "true", Description: "Order channel search results by derived rank"},
		{Name: "header_html", Value: "", Description: "Optional HTML fragment rendered above the channel index"},
	}
}
