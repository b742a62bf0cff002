package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BusinessProfile describes the shop the ledger records for. None of these
// fields enter the hash chain; they label reports and CLI output.
type BusinessProfile struct {
	Name                 string `yaml:"name" json:"name"`
	Location             string `yaml:"location" json:"location"`
	Timezone             string `yaml:"timezone" json:"timezone"`
	CurrencySymbol       string `yaml:"currency_symbol" json:"currency_symbol"`
	DefaultPriceCentavos int64  `yaml:"default_price_centavos" json:"default_price_centavos"`
}

// DefaultProfile returns the profile used when no file is configured.
func DefaultProfile() *BusinessProfile {
	return &BusinessProfile{
		Name:                 "HydroHub Cantilan",
		Location:             "Cantilan, Surigao del Sur, Philippines",
		Timezone:             "Asia/Manila",
		CurrencySymbol:       "₱",
		DefaultPriceCentavos: 2500,
	}
}

// LoadProfile reads a YAML business profile. Missing fields keep their
// defaults.
func LoadProfile(path string) (*BusinessProfile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", path, err)
	}
	return profile, nil
}
