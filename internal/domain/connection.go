package domain

import "time"

// Provider identifies an external data source a customer can be connected to.
type Provider string

const (
	ProviderSearchConsole Provider = "google_search_console"
	ProviderAnalytics     Provider = "google_analytics"
	ProviderAds           Provider = "google_ads"
	ProviderMetaAds       Provider = "meta_ads"
)

// Providers lists the providers the portal knows how to connect.
var Providers = []Provider{
	ProviderSearchConsole,
	ProviderAnalytics,
	ProviderAds,
	ProviderMetaAds,
}

// ConnectionStatus is the state of a customer's provider connection.
type ConnectionStatus string

const (
	ConnectionPending   ConnectionStatus = "pending"
	ConnectionConnected ConnectionStatus = "connected"
	ConnectionError     ConnectionStatus = "error"
)

// Connection links a customer to a provider property.
type Connection struct {
	ID          string           `json:"id"`
	CustomerID  string           `json:"customer_id"`
	Provider    Provider         `json:"provider"`
	Status      ConnectionStatus `json:"status"`
	PropertyRef string           `json:"property_ref,omitempty"`
	LastError   string           `json:"last_error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ValidProvider reports whether p is a known provider.
func ValidProvider(p Provider) bool {
	for _, known := range Providers {
		if known == p {
			return true
		}
	}
	return false
}
