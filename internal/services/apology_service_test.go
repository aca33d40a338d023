package services

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsya371/apologyhub/internal/models"
)

func TestCreateApology(t *testing.T) {
	db := newTestDB(t)
	s := NewApologyService(db)

	apology, err := s.Create(ApologyInput{
		Content:   "I'm sorry for eating your leftovers.",
		ToWho:     "Sam",
		FromWho:   "Alex",
		IPAddress: "10.2.0.1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, apology.UUID)
	assert.Equal(t, "Sam", apology.ToWho)

	var activity []models.ActivityLog
	require.NoError(t, db.Find(&activity).Error)
	require.Len(t, activity, 1)
	assert.Equal(t, models.ActivityApologyCreated, activity[0].Action)
}

func TestCreateApologyValidation(t *testing.T) {
	s := NewApologyService(newTestDB(t))

	_, err := s.Create(ApologyInput{Content: "too short"})
	assert.ErrorIs(t, err, ErrContentTooShort)

	_, err = s.Create(ApologyInput{Content: strings.Repeat("a", 501)})
	assert.ErrorIs(t, err, ErrContentTooLong)

	_, err = s.Create(ApologyInput{
		Content: "I'm sorry for the long name below.",
		ToWho:   strings.Repeat("n", 101),
	})
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestCreateApologyPerCallMaxLength(t *testing.T) {
	s := NewApologyService(newTestDB(t))

	_, err := s.Create(ApologyInput{Content: strings.Repeat("a", 60), MaxLength: 50})
	assert.ErrorIs(t, err, ErrContentTooLong)

	_, err = s.Create(ApologyInput{Content: strings.Repeat("a", 60), MaxLength: 1000})
	assert.NoError(t, err)

	// Zero falls back to the default limit.
	_, err = s.Create(ApologyInput{Content: strings.Repeat("a", 400)})
	assert.NoError(t, err)
}

func TestCreateApologyConcurrentLimits(t *testing.T) {
	s := NewApologyService(newTestDB(t))

	// Creates with differing limits run in parallel; each call validates
	// against its own limit with no shared service state in between.
	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			max := 30
			if i%2 == 0 {
				max = 50
			}
			_, errs[i] = s.Create(ApologyInput{
				Content:   strings.Repeat("a", 60),
				MaxLength: max,
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.ErrorIs(t, err, ErrContentTooLong, "call %d", i)
	}
}

func TestCreateApologyStripsMarkup(t *testing.T) {
	s := NewApologyService(newTestDB(t))

	apology, err := s.Create(ApologyInput{
		Content: "<b>I'm sorry</b> for the <script>alert(1)</script> markup.",
	})
	require.NoError(t, err)
	assert.Equal(t, "I'm sorry for the alert(1) markup.", apology.Content)
}

func TestListPaginationAndSearch(t *testing.T) {
	s := NewApologyService(newTestDB(t))

	for i := 0; i < 25; i++ {
		_, err := s.Create(ApologyInput{Content: "I'm sorry for incident number whatever."})
		require.NoError(t, err)
	}
	_, err := s.Create(ApologyInput{Content: "I'm sorry about the unique pineapple."})
	require.NoError(t, err)

	page, pagination, err := s.List(ApologyFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page, 10)
	assert.Equal(t, int64(26), pagination.Total)
	assert.Equal(t, 3, pagination.TotalPages)

	results, pagination, err := s.List(ApologyFilter{Search: "pineapple"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, int64(1), pagination.Total)
}

func TestViewsAndFeatured(t *testing.T) {
	s := NewApologyService(newTestDB(t))

	first, err := s.Create(ApologyInput{Content: "I'm sorry for the first thing."})
	require.NoError(t, err)
	second, err := s.Create(ApologyInput{Content: "I'm sorry for the second thing."})
	require.NoError(t, err)

	require.NoError(t, s.IncrementViews(second.UUID))
	require.NoError(t, s.IncrementViews(second.UUID))
	require.NoError(t, s.IncrementViews(first.UUID))

	featured, err := s.Featured(2)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, second.UUID, featured[0].UUID)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalApologies)
	assert.Equal(t, int64(3), stats.TotalViews)
}

func TestUpdateAndDelete(t *testing.T) {
	s := NewApologyService(newTestDB(t))

	apology, err := s.Create(ApologyInput{Content: "I'm sorry for the original wording."})
	require.NoError(t, err)

	newContent := "I'm sorry for the corrected wording."
	updated, err := s.Update(apology.UUID, ApologyUpdate{Content: &newContent})
	require.NoError(t, err)
	assert.Equal(t, newContent, updated.Content)

	require.NoError(t, s.Delete(apology.UUID))
	assert.ErrorIs(t, s.Delete(apology.UUID), ErrApologyNotFound)

	_, err = s.GetByUUID(apology.UUID)
	assert.ErrorIs(t, err, ErrApologyNotFound)
}

func TestBulkDelete(t *testing.T) {
	s := NewApologyService(newTestDB(t))

	var uuids []string
	for i := 0; i < 3; i++ {
		apology, err := s.Create(ApologyInput{Content: "I'm sorry, this one goes soon."})
		require.NoError(t, err)
		uuids = append(uuids, apology.UUID)
	}

	deleted, err := s.BulkDelete(uuids[:2])
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = s.BulkDelete(nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
