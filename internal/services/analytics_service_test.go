package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsCounters(t *testing.T) {
	s := NewAnalyticsService(newTestDB(t))

	require.NoError(t, s.RecordSubmission())
	require.NoError(t, s.RecordSubmission())
	require.NoError(t, s.RecordView())

	overview, err := s.Overview(7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), overview.SubmissionsToday)
	assert.Equal(t, int64(1), overview.ViewsToday)

	series, err := s.Series(7)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 2, series[0].Submissions)
	assert.Equal(t, 1, series[0].Views)
}

func TestAnalyticsOverviewIncludesTotals(t *testing.T) {
	db := newTestDB(t)
	s := NewAnalyticsService(db)
	apologies := NewApologyService(db)

	created, err := apologies.Create(ApologyInput{Content: "I'm sorry about the dashboard."})
	require.NoError(t, err)
	require.NoError(t, apologies.IncrementViews(created.UUID))

	overview, err := s.Overview(7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), overview.TotalApologies)
	assert.Equal(t, int64(1), overview.TotalViews)
}
