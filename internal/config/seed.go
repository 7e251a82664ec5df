package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign"
)

// SeedEntry describes one campaign created at gateway startup.
type SeedEntry struct {
	Name        string   `yaml:"name"`
	PersonTags  []string `yaml:"person_tags"`
	CompanyTags []string `yaml:"company_tags"`
}

// CampaignSeed is the top-level YAML document of the seed file.
type CampaignSeed struct {
	Campaigns []SeedEntry `yaml:"campaigns"`
}

// LoadCampaignSeed reads and validates a campaign seed file.
// Returns an os.ErrNotExist-wrapped error if the file is absent (caller
// silently skips in that case).
func LoadCampaignSeed(path string) ([]campaign.Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("campaign seed: %w", err)
	}
	var doc CampaignSeed
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("campaign seed: %w", err)
	}
	out := make([]campaign.Campaign, 0, len(doc.Campaigns))
	seen := make(map[string]bool, len(doc.Campaigns))
	for i, e := range doc.Campaigns {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("campaign seed: campaigns[%d] missing name", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("campaign seed: duplicate campaign %q", name)
		}
		seen[name] = true
		out = append(out, campaign.Campaign{Name: name, PersonTags: e.PersonTags, CompanyTags: e.CompanyTags}.Normalize())
	}
	return out, nil
}
