package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "wager-service")

	cfg := Load()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "wager-service", cfg.ServiceName)
	assert.Equal(t, "8082", cfg.HTTPPort)
	assert.Equal(t, "9098", cfg.MetricsPort)
	assert.Equal(t, "line_updates", cfg.TopicLineUpdates)
	assert.Equal(t, "grade_requests", cfg.TopicGradeRequests)
	assert.Equal(t, 5*time.Minute, cfg.AcceptanceBuffer)
	assert.Equal(t, 60*time.Second, cfg.AuditInterval)
}

func TestLoadPortsPerService(t *testing.T) {
	cases := map[string]struct{ http, metrics string }{
		"lines-service":      {"8080", "9095"},
		"provider-simulator": {"8081", "9094"},
		"grading-worker":     {"", "9099"},
	}
	for svc, want := range cases {
		t.Run(svc, func(t *testing.T) {
			t.Setenv("SERVICE_NAME", svc)
			cfg := Load()
			assert.Equal(t, want.http, cfg.HTTPPort)
			assert.Equal(t, want.metrics, cfg.MetricsPort)
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "wager-service")
	t.Setenv("ACCEPTANCE_BUFFER", "90s")
	t.Setenv("KAFKA_TOPIC_GRADES", "grades_v2")

	cfg := Load()

	assert.Equal(t, 90*time.Second, cfg.AcceptanceBuffer)
	assert.Equal(t, "grades_v2", cfg.TopicGradeRequests)
}

func TestGetDurationIgnoresGarbage(t *testing.T) {
	t.Setenv("AUDIT_INTERVAL", "not-a-duration")
	cfg := Load()
	assert.Equal(t, 60*time.Second, cfg.AuditInterval)
}
