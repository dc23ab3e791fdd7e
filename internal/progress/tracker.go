// Package progress records meditation sessions and derives streaks,
// favorite categories and recommendations from them.
package progress

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cocoacalm/internal/models"
)

const recentlyPlayedLimit = 5

// Store persists UserProgress under a fixed key.
type Store interface {
	GetProgress() (models.UserProgress, error)
	SaveProgress(models.UserProgress) error
}

// Catalog is the read-only content lookup the tracker needs.
type Catalog interface {
	ByID(id string) (models.ContentItem, bool)
	TodaysContent(day time.Weekday) []models.ContentItem
	Recommendations(favorites []models.Category, hour int) []models.ContentItem
}

type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

type Tracker struct {
	mu             sync.RWMutex
	store          Store
	catalog        Catalog
	logger         *zap.Logger
	now            func() time.Time
	progress       models.UserProgress
	recentlyPlayed []models.ContentItem
	recommended    []models.ContentItem
}

// New loads saved progress. Missing or undecodable data starts an empty
// history; it never fails.
func New(store Store, catalog Catalog, logger *zap.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:   store,
		catalog: catalog,
		logger:  logger.Named("progress"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	progress, err := store.GetProgress()
	if err != nil {
		t.logger.Warn("Failed to load user progress, starting fresh", zap.Error(err))
		progress = models.UserProgress{}
	}
	t.progress = progress
	t.generateRecommendations()
	return t
}

// StartSession creates an in-progress session for item. Nothing is recorded
// until CompleteSession.
func (t *Tracker) StartSession(item models.ContentItem) models.Session {
	return models.Session{
		ID:            uuid.New().String(),
		ContentID:     item.ID,
		StartTime:     t.now(),
		TotalDuration: item.Duration,
		Category:      item.Category,
	}
}

// CompleteSession finalizes session with the seconds actually practiced,
// records it and persists the updated progress.
func (t *Tracker) CompleteSession(session models.Session, completedDuration float64) models.Session {
	now := t.now()
	if completedDuration < 0 {
		completedDuration = 0
	}

	completed := models.Session{
		ID:                session.ID,
		ContentID:         session.ContentID,
		StartTime:         session.StartTime,
		EndTime:           now,
		CompletedDuration: completedDuration,
		TotalDuration:     session.TotalDuration,
		Category:          session.Category,
		WasCompleted:      models.IsCompletion(completedDuration, session.TotalDuration),
	}

	t.mu.Lock()
	t.progress.AddSession(completed, now)
	snapshot := t.progress
	t.generateRecommendations()
	t.updateRecentlyPlayed(session.ContentID)
	t.mu.Unlock()

	t.logger.Info("Session completed",
		zap.String("content_id", completed.ContentID),
		zap.Float64("completed_seconds", completed.CompletedDuration),
		zap.Bool("was_completed", completed.WasCompleted),
		zap.Int("current_streak", snapshot.CurrentStreak))

	if err := t.store.SaveProgress(snapshot); err != nil {
		t.logger.Error("Failed to save user progress", zap.Error(err))
	}
	return completed
}

// Progress returns a copy of the aggregate.
func (t *Tracker) Progress() models.UserProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p := t.progress
	p.CompletedSessions = slices.Clone(p.CompletedSessions)
	p.FavoriteCategories = slices.Clone(p.FavoriteCategories)
	return p
}

// RecentlyPlayed lists up to five items, most recent first.
func (t *Tracker) RecentlyPlayed() []models.ContentItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.recentlyPlayed)
}

func (t *Tracker) Recommendations() []models.ContentItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.recommended)
}

func (t *Tracker) TodaysContent() []models.ContentItem {
	return t.catalog.TodaysContent(t.now().Weekday())
}

// Today summarizes the sessions started today.
func (t *Tracker) Today() models.DayStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.progress.DayStats(t.now())
}

func (t *Tracker) generateRecommendations() {
	t.recommended = t.catalog.Recommendations(t.progress.FavoriteCategories, t.now().Hour())
}

func (t *Tracker) updateRecentlyPlayed(contentID string) {
	item, ok := t.catalog.ByID(contentID)
	if !ok {
		t.logger.Debug("Session content not in catalog", zap.String("content_id", contentID))
		return
	}

	t.recentlyPlayed = slices.DeleteFunc(t.recentlyPlayed, func(c models.ContentItem) bool {
		return c.ID == item.ID
	})
	t.recentlyPlayed = slices.Insert(t.recentlyPlayed, 0, item)
	if len(t.recentlyPlayed) > recentlyPlayedLimit {
		t.recentlyPlayed = t.recentlyPlayed[:recentlyPlayedLimit]
	}
}
