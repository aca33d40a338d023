package services

import (
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/arsya371/apologyhub/internal/models"
)

const profanityCacheTTL = 5 * time.Minute

// ModerationResult describes what the filter found in a piece of content.
type ModerationResult struct {
	Clean   bool     `json:"clean"`
	Matches []string `json:"matches,omitempty"`
}

// ModerationService screens apology content against the operator-managed
// profanity word list. The list is cached and refreshed lazily.
type ModerationService struct {
	db *gorm.DB

	mu        sync.RWMutex
	words     []string
	fetchedAt time.Time
}

func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db}
}

// Moderate checks the content and reports every matched word.
func (s *ModerationService) Moderate(content string) (*ModerationResult, error) {
	words, err := s.wordList()
	if err != nil {
		return nil, err
	}

	lowered := strings.ToLower(content)
	var matches []string
	for _, word := range words {
		if strings.Contains(lowered, word) {
			matches = append(matches, word)
		}
	}
	return &ModerationResult{Clean: len(matches) == 0, Matches: matches}, nil
}

// Mask replaces every matched word in the content with asterisks.
func (s *ModerationService) Mask(content string) (string, error) {
	words, err := s.wordList()
	if err != nil {
		return "", err
	}

	masked := content
	for _, word := range words {
		if word == "" {
			continue
		}
		lowered := strings.ToLower(masked)
		var b strings.Builder
		start := 0
		// Scan forward past each replacement so a word whose mask matches
		// itself (e.g. one containing asterisks) cannot rematch.
		for {
			idx := strings.Index(lowered[start:], word)
			if idx < 0 {
				b.WriteString(masked[start:])
				break
			}
			idx += start
			b.WriteString(masked[start:idx])
			b.WriteString(strings.Repeat("*", len(word)))
			start = idx + len(word)
		}
		masked = b.String()
	}
	return masked, nil
}

// ContainsProfanity is a boolean shorthand for Moderate.
func (s *ModerationService) ContainsProfanity(content string) (bool, error) {
	result, err := s.Moderate(content)
	if err != nil {
		return false, err
	}
	return !result.Clean, nil
}

// AddWord inserts a word into the filter list and invalidates the cache.
func (s *ModerationService) AddWord(word, language string) (*models.ProfanityWord, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || strings.Contains(word, "*") {
		return nil, gorm.ErrInvalidData
	}
	if language == "" {
		language = "en"
	}

	entry := &models.ProfanityWord{Word: word, Language: language, IsActive: true}
	if err := s.db.Where("word = ?", word).FirstOrCreate(entry).Error; err != nil {
		return nil, err
	}
	s.Refresh()
	return entry, nil
}

// RemoveWord deletes a word from the filter list and invalidates the cache.
func (s *ModerationService) RemoveWord(word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	result := s.db.Where("word = ?", word).Delete(&models.ProfanityWord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	s.Refresh()
	return nil
}

// ListWords returns the stored filter list.
func (s *ModerationService) ListWords() ([]models.ProfanityWord, error) {
	var words []models.ProfanityWord
	err := s.db.Order("word asc").Find(&words).Error
	return words, err
}

// Refresh drops the cached word list so the next check reloads it.
func (s *ModerationService) Refresh() {
	s.mu.Lock()
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

func (s *ModerationService) wordList() ([]string, error) {
	s.mu.RLock()
	if time.Since(s.fetchedAt) < profanityCacheTTL {
		words := s.words
		s.mu.RUnlock()
		return words, nil
	}
	s.mu.RUnlock()

	var entries []models.ProfanityWord
	if err := s.db.Where("is_active = ?", true).Find(&entries).Error; err != nil {
		return nil, err
	}
	words := make([]string, 0, len(entries))
	for _, e := range entries {
		words = append(words, strings.ToLower(e.Word))
	}

	s.mu.Lock()
	s.words = words
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return words, nil
}
