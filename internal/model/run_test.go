package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDuration(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	r := Run{CreatedAt: start, UpdatedAt: start.Add(90 * time.Second)}
	assert.Equal(t, 90*time.Second, r.Duration())
}

func TestRunResult_OmitsUnsetCounters(t *testing.T) {
	data, err := json.Marshal(RunResult{Rows: 3, Highlighted: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows":3,"highlighted":1}`, string(data))
}

func TestRun_JSONShape(t *testing.T) {
	r := Run{
		ID:     "run-1",
		Kind:   RunKindCompare,
		Status: RunStatusFailed,
		Inputs: []string{"a.xlsx", "b.xlsx"},
		Result: &RunResult{Error: "pipeline: load a.xlsx"},
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "compare", m["kind"])
	assert.Equal(t, "failed", m["status"])
	assert.Contains(t, m, "created_at")
	assert.Equal(t, map[string]any{"error": "pipeline: load a.xlsx"}, m["result"])
}
