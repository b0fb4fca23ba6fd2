package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedSchema is the top-level YAML structure of a seed file.
type SeedSchema struct {
	Defaults  *DefaultsSeed  `yaml:"defaults,omitempty"`
	Employees []EmployeeSeed `yaml:"employees"`
	Orders    []OrderSeed    `yaml:"orders"`
}

// DefaultsSeed holds values that cascade to entries leaving them unset.
type DefaultsSeed struct {
	DailyCapacityMin *int   `yaml:"daily_capacity_min,omitempty"`
	Priority         string `yaml:"priority,omitempty"`
}

type EmployeeSeed struct {
	ID               string `yaml:"id"`
	FirstName        string `yaml:"first_name"`
	LastName         string `yaml:"last_name"`
	Email            string `yaml:"email,omitempty"`
	DailyCapacityMin *int   `yaml:"daily_capacity_min,omitempty"`
	Active           *bool  `yaml:"active,omitempty"`
}

type OrderSeed struct {
	ID          string `yaml:"id"`
	OrderNumber string `yaml:"order_number,omitempty"`
	CardCount   int    `yaml:"card_count"`
	Priority    string `yaml:"priority,omitempty"`
	// SubmittedAt is RFC3339 or YYYY-MM-DD.
	SubmittedAt string `yaml:"submitted_at"`
}

// LoadSeedSchema reads and parses a seed YAML file.
func LoadSeedSchema(path string) (*SeedSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedSchema(data)
}

// ParseSeedSchema decodes YAML, rejecting unknown keys.
func ParseSeedSchema(data []byte) (*SeedSchema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var schema SeedSchema
	if err := dec.Decode(&schema); err != nil {
		if errors.Is(err, io.EOF) {
			return &schema, nil
		}
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return &schema, nil
}
