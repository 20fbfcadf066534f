package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	name   string
	result *Result
	delay  time.Duration
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) *Result {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Unhealthy("check cancelled").WithDetail("error", ctx.Err().Error())
		}
	}
	return m.result
}

func TestManager_CheckKeepsOrder(t *testing.T) {
	m := NewManager()
	m.AddChecker(&mockChecker{name: "slow", result: Healthy("ok"), delay: 20 * time.Millisecond})
	m.AddChecker(&mockChecker{name: "fast", result: Degraded("meh")})

	reports := m.Check(context.Background())

	require.Len(t, reports, 2)
	assert.Equal(t, "slow", reports[0].Name)
	assert.Equal(t, "fast", reports[1].Name)
	assert.Equal(t, StatusDegraded, reports[1].Status)
	assert.Positive(t, reports[0].Latency)
}

func TestManager_Timeout(t *testing.T) {
	m := NewManager().WithTimeout(10 * time.Millisecond)
	m.AddChecker(&mockChecker{name: "hang", result: Healthy("never"), delay: time.Second})

	reports := m.Check(context.Background())

	require.Len(t, reports, 1)
	assert.Equal(t, StatusUnhealthy, reports[0].Status)
	assert.Equal(t, "check cancelled", reports[0].Message)
}

func TestManager_NilResult(t *testing.T) {
	m := NewManager()
	m.AddChecker(&mockChecker{name: "broken"})

	reports := m.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, reports[0].Status)
}

func TestOverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reports []Report
			for _, s := range tt.statuses {
				reports = append(reports, newReport("x", NewResult(s, "")))
			}
			assert.Equal(t, tt.want, OverallStatus(reports))
		})
	}
}

func TestResult_WithDetail(t *testing.T) {
	r := Healthy("fine").WithDetail("a", 1).WithDetail("b", "two")

	assert.Equal(t, "healthy", r.Status.String())
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, r.Details)
}
