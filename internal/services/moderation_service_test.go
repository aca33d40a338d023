package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arsya371/apologyhub/internal/models"
)

func TestModerateMatchesStoredWords(t *testing.T) {
	s := NewModerationService(newTestDB(t))

	_, err := s.AddWord("Badword", "")
	require.NoError(t, err)

	result, err := s.Moderate("this contains a BADWORD in caps")
	require.NoError(t, err)
	assert.False(t, result.Clean)
	assert.Equal(t, []string{"badword"}, result.Matches)

	result, err = s.Moderate("perfectly polite apology")
	require.NoError(t, err)
	assert.True(t, result.Clean)
	assert.Empty(t, result.Matches)
}

func TestMaskReplacesMatches(t *testing.T) {
	s := NewModerationService(newTestDB(t))

	_, err := s.AddWord("badword", "")
	require.NoError(t, err)

	masked, err := s.Mask("such a BadWord, twice: badword")
	require.NoError(t, err)
	assert.Equal(t, "such a *******, twice: *******", masked)
}

func TestMaskTerminatesOnAsteriskWord(t *testing.T) {
	db := newTestDB(t)
	s := NewModerationService(db)

	// A word whose replacement matches itself must not rescan forever.
	// Seeded directly since AddWord rejects asterisks.
	require.NoError(t, db.Create(&models.ProfanityWord{Word: "b*d", Language: "en", IsActive: true}).Error)

	masked, err := s.Mask("a b*d word and another b*d one")
	require.NoError(t, err)
	assert.Equal(t, "a *** word and another *** one", masked)
}

func TestAddWordRejectsAsterisks(t *testing.T) {
	s := NewModerationService(newTestDB(t))

	_, err := s.AddWord("***", "")
	assert.ErrorIs(t, err, gorm.ErrInvalidData)
	_, err = s.AddWord("b*d", "")
	assert.ErrorIs(t, err, gorm.ErrInvalidData)
}

func TestRemoveWordInvalidatesCache(t *testing.T) {
	s := NewModerationService(newTestDB(t))

	_, err := s.AddWord("gone", "")
	require.NoError(t, err)

	dirty, err := s.ContainsProfanity("it is gone now")
	require.NoError(t, err)
	assert.True(t, dirty)

	require.NoError(t, s.RemoveWord("gone"))

	dirty, err = s.ContainsProfanity("it is gone now")
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestRemoveUnknownWord(t *testing.T) {
	s := NewModerationService(newTestDB(t))
	assert.ErrorIs(t, s.RemoveWord("missing"), gorm.ErrRecordNotFound)
}

func TestAddWordIsIdempotent(t *testing.T) {
	s := NewModerationService(newTestDB(t))

	first, err := s.AddWord("dup", "")
	require.NoError(t, err)
	second, err := s.AddWord("DUP", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	words, err := s.ListWords()
	require.NoError(t, err)
	assert.Len(t, words, 1)
}
