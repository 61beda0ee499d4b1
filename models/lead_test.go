package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadStatusValid(t *testing.T) {
	valid := []LeadStatus{
		LeadStatusPending,
		LeadStatusContacted,
		LeadStatusResponded,
		LeadStatusConverted,
	}
	for _, s := range valid {
		assert.True(t, s.Valid(), "expected %s to be valid", s)
	}

	assert.False(t, LeadStatus("").Valid())
	assert.False(t, LeadStatus("pending").Valid(), "status values are case-sensitive")
	assert.False(t, LeadStatus("Archived").Valid())
}

func TestCampaignStatusValid(t *testing.T) {
	valid := []CampaignStatus{
		CampaignStatusDraft,
		CampaignStatusActive,
		CampaignStatusPaused,
		CampaignStatusCompleted,
		CampaignStatusInactive,
	}
	for _, s := range valid {
		assert.True(t, s.Valid(), "expected %s to be valid", s)
	}

	assert.False(t, CampaignStatus("").Valid())
	assert.False(t, CampaignStatus("active").Valid())
}

func TestLeadStatusValue(t *testing.T) {
	v, err := LeadStatusContacted.Value()
	require.NoError(t, err)
	assert.Equal(t, "Contacted", v)

	_, err = LeadStatus("Bogus").Value()
	assert.Error(t, err)
}

func TestInteractionHistoryScan(t *testing.T) {
	t.Run("NilValue", func(t *testing.T) {
		var h InteractionHistory
		require.NoError(t, h.Scan(nil))
		assert.NotNil(t, h)
		assert.Len(t, h, 0)
	})

	t.Run("EmptyBytes", func(t *testing.T) {
		var h InteractionHistory
		require.NoError(t, h.Scan([]byte{}))
		assert.Len(t, h, 0)
	})

	t.Run("JSONText", func(t *testing.T) {
		raw := `[{"date":"2026-03-01T10:00:00Z","type":"email","description":"Intro email"}]`

		var h InteractionHistory
		require.NoError(t, h.Scan(raw))
		require.Len(t, h, 1)
		assert.Equal(t, "email", h[0].Type)
		assert.Equal(t, "Intro email", h[0].Description)
		assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), h[0].Date.UTC())
	})

	t.Run("Garbage", func(t *testing.T) {
		var h InteractionHistory
		assert.Error(t, h.Scan([]byte("{not json")))
	})
}

func TestInteractionHistoryValue(t *testing.T) {
	t.Run("NilSerializesAsEmptyArray", func(t *testing.T) {
		var h InteractionHistory
		v, err := h.Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", v)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		h := InteractionHistory{
			{Date: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), Type: "call", Description: "Left voicemail"},
		}
		v, err := h.Value()
		require.NoError(t, err)

		var back InteractionHistory
		require.NoError(t, back.Scan(v))
		require.Len(t, back, 1)
		assert.Equal(t, h[0].Type, back[0].Type)
		assert.True(t, h[0].Date.Equal(back[0].Date))
	})
}

func TestInteractionHistoryAppend(t *testing.T) {
	original := InteractionHistory{
		{Date: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), Type: "email", Description: "first"},
	}

	updated := original.Append(InteractionEvent{
		Date:        time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Type:        "call",
		Description: "second",
	})

	require.Len(t, updated, 2)
	assert.Equal(t, "first", updated[0].Description)
	assert.Equal(t, "second", updated[1].Description)

	// Append must not mutate the original slice
	assert.Len(t, original, 1)
}

func TestInteractionEventJSONDate(t *testing.T) {
	event := InteractionEvent{
		Date:        time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		Type:        "meeting",
		Description: "Demo call",
	}

	b, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"date":"2026-03-01T10:30:00Z"`)
}

func TestLeadHasPasswordHelpers(t *testing.T) {
	u := &User{}
	assert.False(t, u.HasPassword())
	assert.False(t, u.IsOAuthAccount())

	hash := "$2a$10$abcdefghijklmnopqrstuv"
	u.PasswordHash = &hash
	assert.True(t, u.HasPassword())

	provider := "google"
	u.ProviderID = &provider
	assert.True(t, u.IsOAuthAccount())
}
