package catalog

import "cocoacalm/internal/models"

const guideAudio = "hot_chocolate_guide.mp3"

var library = []models.ContentItem{
	// Morning
	{
		ID:            "morning_awakening",
		Title:         "Gentle Morning Awakening",
		Description:   "Start your day with intention and clarity",
		Category:      models.CategoryMeditation,
		Subcategory:   "Morning",
		Duration:      600,
		IsPremium:     true,
		AudioFileName: guideAudio,
		Tags:          []string{"morning", "energy", "awakening"},
		Difficulty:    models.Beginner,
	},
	{
		ID:            "sunrise_meditation",
		Title:         "Sunrise Meditation",
		Description:   "Welcome the day with gratitude and purpose",
		Category:      models.CategoryMeditation,
		Subcategory:   "Morning",
		Duration:      900,
		IsPremium:     true,
		AudioFileName: guideAudio,
		Tags:          []string{"morning", "gratitude", "purpose"},
		Difficulty:    models.Intermediate,
	},
	// Anxiety relief
	{
		ID:            "panic_attack_rescue",
		Title:         "Panic Attack Rescue",
		Description:   "Immediate relief for overwhelming anxiety",
		Category:      models.CategoryAnxiety,
		Subcategory:   "Crisis",
		Duration:      300,
		IsPremium:     false, // free for accessibility
		AudioFileName: guideAudio,
		Tags:          []string{"panic", "emergency", "breathing"},
		Difficulty:    models.Beginner,
	},
	{
		ID:            "worry_release",
		Title:         "Releasing Worries",
		Description:   "Let go of anxious thoughts and find peace",
		Category:      models.CategoryAnxiety,
		Subcategory:   "Worry",
		Duration:      720,
		IsPremium:     true,
		AudioFileName: guideAudio,
		Tags:          []string{"worry", "release", "peace"},
		Difficulty:    models.Intermediate,
	},
	{
		ID:            "social_anxiety_calm",
		Title:         "Social Confidence Builder",
		Description:   "Build confidence for social situations",
		Category:      models.CategoryAnxiety,
		Subcategory:   "Social",
		Duration:      840,
		IsPremium:     true,
		AudioFileName: guideAudio,
		Tags:          []string{"social", "confidence", "anxiety"},
		Difficulty:    models.Intermediate,
	},
	// Breathing
	{
		ID:                "box_breathing",
		Title:             "Box Breathing Mastery",
		Description:       "Learn the powerful 4-4-4-4 breathing technique",
		Category:          models.CategoryBreathing,
		Subcategory:       "Technique",
		Duration:          480,
		IsPremium:         false,
		AudioFileName:     guideAudio,
		InstructionPhases: []string{"Inhale for 4", "Hold for 4", "Exhale for 4", "Hold for 4"},
		Tags:              []string{"technique", "calming", "focus"},
		Difficulty:        models.Beginner,
	},
	{
		ID:                "coherent_breathing",
		Title:             "Coherent Breathing",
		Description:       "5-second in, 5-second out for heart-brain coherence",
		Category:          models.CategoryBreathing,
		Subcategory:       "Technique",
		Duration:          600,
		IsPremium:         true,
		AudioFileName:     guideAudio,
		InstructionPhases: []string{"Inhale for 5", "Exhale for 5"},
		Tags:              []string{"coherence", "balance", "heart"},
		Difficulty:        models.Intermediate,
	},
	// Sleep
	{
		ID:            "sleep_story_forest",
		Title:         "Forest Dreams",
		Description:   "A gentle story to guide you into peaceful sleep",
		Category:      models.CategorySleep,
		Subcategory:   "Sleep Story",
		Duration:      1800,
		IsPremium:     true,
		AudioFileName: guideAudio,
		Tags:          []string{"story", "forest", "dreams", "evening"},
		Difficulty:    models.Beginner,
	},
	{
		ID:            "body_scan_sleep",
		Title:         "Sleep Body Scan",
		Description:   "Progressive relaxation for deep rest",
		Category:      models.CategorySleep,
		Subcategory:   "Body Scan",
		Duration:      1200,
		IsPremium:     true,
		AudioFileName: guideAudio,
		Tags:          []string{"body scan", "progressive", "relaxation", "evening"},
		Difficulty:    models.Beginner,
	},
	// Focus
	{
		ID:            "concentration_builder",
		Title:         "Focus Builder",
		Description:   "Strengthen your attention and concentration",
		Category:      models.CategoryFocus,
		Subcategory:   "Concentration",
		Duration:      900,
		IsPremium:     true,
		AudioFileName: guideAudio,
		Tags:          []string{"concentration", "attention", "focus"},
		Difficulty:    models.Intermediate,
	},
	{
		ID:            "work_focus",
		Title:         "Pre-Work Focus",
		Description:   "Center yourself before important tasks",
		Category:      models.CategoryFocus,
		Subcategory:   "Work",
		Duration:      420,
		IsPremium:     true,
		AudioFileName: guideAudio,
		Tags:          []string{"work", "productivity", "preparation"},
		Difficulty:    models.Beginner,
	},
	// Rituals
	{
		ID:            "mindful_coffee",
		Title:         "Mindful Coffee Ritual",
		Description:   "Transform your morning coffee into meditation",
		Category:      models.CategoryRitual,
		Subcategory:   "Drinks",
		Duration:      480,
		IsPremium:     true,
		AudioFileName: guideAudio,
		Tags:          []string{"coffee", "morning", "mindfulness", "ritual"},
		Difficulty:    models.Beginner,
	},
	{
		ID:            "mindful_walking",
		Title:         "Walking Meditation",
		Description:   "Find peace in movement and nature",
		Category:      models.CategoryRitual,
		Subcategory:   "Movement",
		Duration:      1080,
		IsPremium:     true,
		AudioFileName: guideAudio,
		Tags:          []string{"walking", "movement", "nature", "mindfulness"},
		Difficulty:    models.Intermediate,
	},
	{
		ID:            "mindful_hot_chocolate",
		Title:         "Mindful Hot Chocolate",
		Description:   "Turn your favorite drink into meditation",
		Category:      models.CategoryRitual,
		Subcategory:   "Drinks",
		Duration:      1200,
		IsPremium:     true,
		AudioFileName: guideAudio,
		Tags:          []string{"ritual", "mindfulness", "comfort", "warm"},
		Difficulty:    models.Beginner,
	},
}
