package domain

import "time"

// AgencySettings is the single settings document for the portal.
type AgencySettings struct {
	AgencyName        string     `json:"agency_name"`
	LogoURL           string     `json:"logo_url,omitempty"`
	DefaultPeriodType PeriodType `json:"default_period_type"`
	NotifyOnPublish   bool       `json:"notify_on_publish"`
	NotifyOnMessage   bool       `json:"notify_on_message"`
	WeeklyDigest      bool       `json:"weekly_digest"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// DefaultAgencySettings returns the settings used before anything is saved.
func DefaultAgencySettings() *AgencySettings {
	return &AgencySettings{
		AgencyName:        "Synlig",
		DefaultPeriodType: PeriodMonthly,
		NotifyOnPublish:   true,
		NotifyOnMessage:   true,
	}
}
