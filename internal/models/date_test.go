package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_DecodesPlainAndRFC3339(t *testing.T) {
	var payload struct {
		A Date `json:"a"`
		B Date `json:"b"`
		C Date `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a":"2024-01-05","b":"2024-01-05T09:30:00Z","c":null}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-05", payload.A.String())
	assert.Equal(t, "2024-01-05", payload.B.String())
	assert.True(t, payload.C.IsZero())
}

func TestDate_RejectsGarbage(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
}

func TestTimeEntry_UnknownStatusDecodes(t *testing.T) {
	var e TimeEntry
	err := json.Unmarshal([]byte(`{"id":7,"date":"2024-02-01","description":"Sync","hours":1.5,"status":"escalated"}`), &e)
	require.NoError(t, err)
	assert.Equal(t, ApprovalStatus("escalated"), e.Status)
}

func TestAsActivity_FallsBackToProjectName(t *testing.T) {
	e := TimeEntry{ID: 3, ProjectName: "Portal", Hours: 4, Status: StatusApproved}
	a := e.AsActivity()
	assert.Equal(t, "Portal", a.Activity)
	assert.Equal(t, int64(3), a.ID)
}
