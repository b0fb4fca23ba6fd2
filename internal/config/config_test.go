package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	p := cfg.Planning
	assert.Equal(t, 3, p.TimePerCard)
	assert.Equal(t, "09:00", p.WorkdayStart)
	assert.Equal(t, "17:00", p.WorkdayEnd)
	assert.Equal(t, 15, p.BufferMinutes)
	assert.Equal(t, "least-loaded", p.Policy)
	assert.Equal(t, 100, p.BatchLimit)
	assert.False(t, p.CleanFirst)
	assert.Equal(t, "non_terminal", p.CleanScope)
	assert.Zero(t, p.OrderLookbackDays)
	assert.True(t, p.UrgentReanchor.Enabled)
	assert.Equal(t, "10:00", p.UrgentReanchor.LateMorning)
	assert.Equal(t, 10*time.Minute, p.LeaseTTL())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "auto", cfg.Logging.Format)
	assert.NotEmpty(t, cfg.Database.Path)
	assert.Empty(t, cfg.Metrics.TextfilePath)
}

func TestLoad_YAMLOverridesKeepOtherDefaults(t *testing.T) {
	path := writeFile(t, "gradeplan.yaml", `database:
  path: /tmp/plan.db
planning:
  time_per_card: 5
  buffer_minutes: 0
  policy: round-robin
  urgent_reanchor:
    enabled: false
logging:
  level: debug
  format: json
metrics:
  textfile_path: /var/lib/node_exporter/gradeplan.prom
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"database.path", cfg.Database.Path, "/tmp/plan.db"},
		{"time_per_card", cfg.Planning.TimePerCard, 5},
		{"buffer_minutes", cfg.Planning.BufferMinutes, 0},
		{"policy", cfg.Planning.Policy, "round-robin"},
		{"reanchor.enabled", cfg.Planning.UrgentReanchor.Enabled, false},
		{"reanchor.late_morning", cfg.Planning.UrgentReanchor.LateMorning, "10:00"},
		{"workday_start", cfg.Planning.WorkdayStart, "09:00"},
		{"batch_limit", cfg.Planning.BatchLimit, 100},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.format", cfg.Logging.Format, "json"},
		{"metrics.textfile_path", cfg.Metrics.TextfilePath, "/var/lib/node_exporter/gradeplan.prom"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "gradeplan.json", `{"planning": {"workday_start": "08:00", "workday_end": "16:00"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	rules, err := cfg.Planning.SlotRules()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, rules.WorkStart)
	assert.Equal(t, 16*time.Hour, rules.WorkEnd)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "gradeplan.yaml", "planning:\n  time_per_card: 5\n")
	t.Setenv("GRADEPLAN_PLANNING__TIME_PER_CARD", "7")
	t.Setenv("GRADEPLAN_PLANNING__CLEAN_FIRST", "true")
	t.Setenv("GRADEPLAN_PLANNING__URGENT_REANCHOR__LATE_MORNING", "11:30")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Planning.TimePerCard)
	assert.True(t, cfg.Planning.CleanFirst)
	assert.Equal(t, "11:30", cfg.Planning.UrgentReanchor.LateMorning)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"unsupported extension", "gradeplan.toml", "x = 1"},
		{"zero time per card", "a.yaml", "planning:\n  time_per_card: 0\n"},
		{"bad clock", "b.yaml", "planning:\n  workday_start: nine\n"},
		{"end before start", "c.yaml", "planning:\n  workday_start: \"18:00\"\n"},
		{"unknown policy", "d.yaml", "planning:\n  policy: random\n"},
		{"unknown clean scope", "e.yaml", "planning:\n  clean_scope: everything\n"},
		{"negative buffer", "f.yaml", "planning:\n  buffer_minutes: -5\n"},
		{"bad log level", "g.yaml", "logging:\n  level: loud\n"},
		{"bad log format", "h.yaml", "logging:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPlanningConfig_Engine(t *testing.T) {
	eng, err := DefaultPlanning().Engine()
	require.NoError(t, err)
	assert.Equal(t, 3, eng.TimePerCard)
	assert.Equal(t, 9*time.Hour, eng.Slots.WorkStart)
	assert.Equal(t, 10*time.Hour, eng.Slots.LateMorning)
	assert.True(t, eng.Slots.UrgentReanchor)
	assert.Equal(t, 15, eng.Slots.BufferMin)
}
