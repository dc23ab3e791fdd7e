package models

type Category string

const (
	CategoryMeditation Category = "meditation"
	CategoryBreathing  Category = "breathing"
	CategoryRituals    Category = "rituals"
	CategoryRitual     Category = "ritual"
	CategoryAnxiety    Category = "anxiety"
	CategorySleep      Category = "sleep"
	CategoryFocus      Category = "focus"
	CategoryCrisis     Category = "crisis"
)

type categoryInfo struct {
	displayName string
	icon        string
	color       string
}

var categories = map[Category]categoryInfo{
	CategoryMeditation: {"Meditation", "🍃", "#7BC67E"},
	CategoryBreathing:  {"Breathing", "🌬", "#7FDBFF"},
	CategoryRituals:    {"Rituals", "☕", "#C49A6C"},
	CategoryRitual:     {"Ritual", "☕", "#C49A6C"},
	CategoryAnxiety:    {"Anxiety Relief", "💗", "#FF7CCB"},
	CategorySleep:      {"Sleep", "🌙", "#9D8CFF"},
	CategoryFocus:      {"Focus", "🎯", "#FDFF8C"},
	CategoryCrisis:     {"Crisis Support", "🛡", "#FF6B6B"},
}

var unknownCategory = categoryInfo{"Other", "•", "#888888"}

// AllCategories lists the known categories in display order.
func AllCategories() []Category {
	return []Category{
		CategoryMeditation,
		CategoryBreathing,
		CategoryRituals,
		CategoryRitual,
		CategoryAnxiety,
		CategorySleep,
		CategoryFocus,
		CategoryCrisis,
	}
}

func (c Category) info() categoryInfo {
	if info, ok := categories[c]; ok {
		return info
	}
	return unknownCategory
}

func (c Category) DisplayName() string { return c.info().displayName }
func (c Category) Icon() string        { return c.info().icon }
func (c Category) Color() string       { return c.info().color }

func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

func (d Difficulty) DisplayName() string {
	switch d {
	case Beginner:
		return "Beginner"
	case Intermediate:
		return "Intermediate"
	case Advanced:
		return "Advanced"
	default:
		return string(d)
	}
}

type ContentItem struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Category          Category   `json:"category"`
	Subcategory       string     `json:"subcategory,omitempty"`
	Duration          float64    `json:"duration"` // in seconds
	IsPremium         bool       `json:"is_premium"`
	AudioFileName     string     `json:"audio_file_name,omitempty"`
	InstructionPhases []string   `json:"instruction_phases,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	Difficulty        Difficulty `json:"difficulty"`
}

func (c ContentItem) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Minutes returns the duration rounded down to whole minutes.
func (c ContentItem) Minutes() int {
	return int(c.Duration / 60)
}
