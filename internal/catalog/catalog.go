// Package catalog holds the read-only meditation content library.
package catalog

import (
	"slices"
	"time"

	"cocoacalm/internal/models"
)

const (
	todaysContentLimit   = 4
	recommendationsLimit = 6
)

type Catalog struct {
	items []models.ContentItem
	byID  map[string]int
}

// New builds a catalog over items. Later duplicates of an id are ignored.
func New(items []models.ContentItem) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(items))}
	for _, item := range items {
		if _, dup := c.byID[item.ID]; dup {
			continue
		}
		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c
}

// Default returns the built-in library.
func Default() *Catalog {
	return New(library)
}

func (c *Catalog) All() []models.ContentItem {
	return slices.Clone(c.items)
}

// ByID looks up a content item. A missing id is not an error.
func (c *Catalog) ByID(id string) (models.ContentItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.ContentItem{}, false
	}
	return c.items[i], true
}

func (c *Catalog) ByCategory(category models.Category) []models.ContentItem {
	return c.filter(func(item models.ContentItem) bool { return item.Category == category })
}

// Free returns items available without premium access.
func (c *Catalog) Free() []models.ContentItem {
	return c.filter(func(item models.ContentItem) bool { return !item.IsPremium })
}

// TodaysContent picks up to four items themed for the weekday.
func (c *Catalog) TodaysContent(day time.Weekday) []models.ContentItem {
	var match func(models.ContentItem) bool
	switch day {
	case time.Sunday: // rest & reflection
		match = func(i models.ContentItem) bool { return i.Category == models.CategorySleep || i.HasTag("reflection") }
	case time.Monday: // energy & focus
		match = func(i models.ContentItem) bool { return i.Category == models.CategoryFocus || i.HasTag("energy") }
	case time.Tuesday, time.Wednesday, time.Thursday: // anxiety relief
		match = func(i models.ContentItem) bool {
			return i.Category == models.CategoryAnxiety || i.Category == models.CategoryBreathing
		}
	case time.Friday: // stress relief
		match = func(i models.ContentItem) bool { return i.HasTag("stress") || i.Category == models.CategoryMeditation }
	default: // mindful living
		match = func(i models.ContentItem) bool { return i.Category == models.CategoryRitual || i.HasTag("mindfulness") }
	}
	return limit(c.filter(match), todaysContentLimit)
}

// Recommendations combines the first two favorite categories with content
// suited to the hour of day.
func (c *Catalog) Recommendations(favorites []models.Category, hour int) []models.ContentItem {
	var out []models.ContentItem
	seen := make(map[string]bool)
	add := func(items []models.ContentItem) {
		for _, item := range items {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			out = append(out, item)
		}
	}

	for _, category := range limit(favorites, 2) {
		add(limit(c.ByCategory(category), 2))
	}

	var match func(models.ContentItem) bool
	switch {
	case hour >= 6 && hour <= 11:
		match = func(i models.ContentItem) bool { return i.HasTag("morning") || i.Category == models.CategoryFocus }
	case hour >= 12 && hour <= 17:
		match = func(i models.ContentItem) bool { return i.Category == models.CategoryAnxiety || i.HasTag("stress") }
	case hour >= 18 && hour <= 23:
		match = func(i models.ContentItem) bool { return i.Category == models.CategorySleep || i.HasTag("evening") }
	default:
		match = func(i models.ContentItem) bool { return i.Category == models.CategorySleep }
	}
	add(limit(c.filter(match), 2))

	return limit(out, recommendationsLimit)
}

func (c *Catalog) filter(keep func(models.ContentItem) bool) []models.ContentItem {
	var out []models.ContentItem
	for _, item := range c.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func limit[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
