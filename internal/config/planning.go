package config

import (
	"fmt"
	"time"

	"github.com/alexanderramin/gradeplan/internal/app"
	"github.com/alexanderramin/gradeplan/internal/scheduler"
)

type PlanningConfig struct {
	TimePerCard       int                  `json:"time_per_card"`
	WorkdayStart      string               `json:"workday_start"`
	WorkdayEnd        string               `json:"workday_end"`
	BufferMinutes     int                  `json:"buffer_minutes"`
	Policy            string               `json:"policy"`
	BatchLimit        int                  `json:"batch_limit"`
	CleanFirst        bool                 `json:"clean_first"`
	CleanScope        string               `json:"clean_scope"`
	OrderLookbackDays int                  `json:"order_lookback_days"`
	UrgentReanchor    UrgentReanchorConfig `json:"urgent_reanchor"`
	LeaseTTLSeconds   int                  `json:"lease_ttl_seconds"`
}

type UrgentReanchorConfig struct {
	Enabled     bool   `json:"enabled"`
	LateMorning string `json:"late_morning"`
}

func DefaultPlanning() PlanningConfig {
	return PlanningConfig{
		TimePerCard:       3,
		WorkdayStart:      "09:00",
		WorkdayEnd:        "17:00",
		BufferMinutes:     15,
		Policy:            scheduler.PolicyLeastLoaded,
		BatchLimit:        100,
		CleanScope:        string(app.CleanNonTerminal),
		UrgentReanchor:    UrgentReanchorConfig{Enabled: true, LateMorning: "10:00"},
		LeaseTTLSeconds:   600,
	}
}

// SetDefaults fills fields left empty by an explicit blank value.
func (c *PlanningConfig) SetDefaults() {
	d := DefaultPlanning()
	if c.WorkdayStart == "" {
		c.WorkdayStart = d.WorkdayStart
	}
	if c.WorkdayEnd == "" {
		c.WorkdayEnd = d.WorkdayEnd
	}
	if c.Policy == "" {
		c.Policy = d.Policy
	}
	if c.CleanScope == "" {
		c.CleanScope = d.CleanScope
	}
	if c.UrgentReanchor.LateMorning == "" {
		c.UrgentReanchor.LateMorning = d.UrgentReanchor.LateMorning
	}
	if c.LeaseTTLSeconds == 0 {
		c.LeaseTTLSeconds = d.LeaseTTLSeconds
	}
}

func (c PlanningConfig) Validate() error {
	if c.TimePerCard < 1 {
		return fmt.Errorf("time_per_card must be at least 1, got %d", c.TimePerCard)
	}
	if c.BatchLimit < 0 {
		return fmt.Errorf("batch_limit must be non-negative, got %d", c.BatchLimit)
	}
	if c.OrderLookbackDays < 0 {
		return fmt.Errorf("order_lookback_days must be non-negative, got %d", c.OrderLookbackDays)
	}
	if c.LeaseTTLSeconds < 1 {
		return fmt.Errorf("lease_ttl_seconds must be positive, got %d", c.LeaseTTLSeconds)
	}
	if !app.CleanScope(c.CleanScope).Valid() {
		return fmt.Errorf("unknown clean_scope %q", c.CleanScope)
	}
	if _, err := scheduler.ParsePolicy(c.Policy); err != nil {
		return err
	}
	_, err := c.Engine()
	return err
}

// SlotRules converts the workday settings.
func (c PlanningConfig) SlotRules() (scheduler.SlotRules, error) {
	start, err := scheduler.ParseClock(c.WorkdayStart)
	if err != nil {
		return scheduler.SlotRules{}, fmt.Errorf("workday_start: %w", err)
	}
	end, err := scheduler.ParseClock(c.WorkdayEnd)
	if err != nil {
		return scheduler.SlotRules{}, fmt.Errorf("workday_end: %w", err)
	}
	late, err := scheduler.ParseClock(c.UrgentReanchor.LateMorning)
	if err != nil {
		return scheduler.SlotRules{}, fmt.Errorf("urgent_reanchor.late_morning: %w", err)
	}
	r := scheduler.SlotRules{
		WorkStart:      start,
		WorkEnd:        end,
		BufferMin:      c.BufferMinutes,
		UrgentReanchor: c.UrgentReanchor.Enabled,
		LateMorning:    late,
	}
	if err := r.Validate(); err != nil {
		return scheduler.SlotRules{}, err
	}
	return r, nil
}

// Engine builds the allocation engine configuration.
func (c PlanningConfig) Engine() (scheduler.Config, error) {
	rules, err := c.SlotRules()
	if err != nil {
		return scheduler.Config{}, err
	}
	cfg := scheduler.Config{TimePerCard: c.TimePerCard, Slots: rules, Policy: c.Policy}
	if err := cfg.Validate(); err != nil {
		return scheduler.Config{}, err
	}
	return cfg, nil
}

func (c PlanningConfig) LeaseTTL() time.Duration {
	return time.Duration(c.LeaseTTLSeconds) * time.Second
}
