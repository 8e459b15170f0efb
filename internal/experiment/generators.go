package experiment

import (
	"fmt"
	"strings"
)

var (
	shockingPrefixes = []string{"😱 SHOCKING! ", "⚠️ WARNING! ", "🔥 HOT! ", "💥 BOOM! ", "⚡ THE TRUTH REVEALED! "}
	trendingHashtags = []string{"#fyp", "#viral", "#trending", "#foryou", "#foryoupage"}
	longTailHashtags = []string{"#thingsyouneedtoknow", "#interestingfacts", "#didyouknow"}
)

// TitleVariants returns the original title plus question, shocking and
// emotional rewrites of it.
func TitleVariants(base string) ([]VariantDefinition, error) {
	if strings.TrimSpace(base) == "" {
		return nil, ErrEmptyBaseline
	}
	return []VariantDefinition{
		{Name: "Original", Type: TypeTitle, Value: base, Description: "Unchanged title"},
		{Name: "Question", Type: TypeTitle, Value: toQuestion(base), Description: "Rephrased as a question"},
		{Name: "Shocking", Type: TypeTitle, Value: shockingPrefixes[0] + base, Description: "Attention-grabbing prefix"},
		{Name: "Emotional", Type: TypeTitle, Value: fmt.Sprintf("❤️ %s | The true story you need to know", base), Description: "Emotional framing"},
	}, nil
}

func toQuestion(title string) string {
	if strings.HasPrefix(strings.ToLower(title), "why") {
		return title
	}
	return fmt.Sprintf("Why %s? The answer will surprise you!", strings.TrimRight(title, ".!?"))
}

// ThumbnailVariants keeps the image and varies its styling.
func ThumbnailVariants(base string) ([]VariantDefinition, error) {
	if strings.TrimSpace(base) == "" {
		return nil, ErrEmptyBaseline
	}
	return []VariantDefinition{
		{Name: "Original", Type: TypeThumbnail, Value: base, Description: "Unchanged image",
			Attributes: map[string]string{"style": "default"}},
		{Name: "Text Overlay", Type: TypeThumbnail, Value: base, Description: "Adds a text overlay",
			Attributes: map[string]string{"style": "text-overlay", "overlay_text": "Must watch!", "overlay_color": "#ff0000", "overlay_font_size": "48"}},
		{Name: "Emoji Heavy", Type: TypeThumbnail, Value: base, Description: "Adds emoji",
			Attributes: map[string]string{"style": "emoji", "overlay_emojis": "😱 🔥 ⚡", "overlay_size": "64"}},
		{Name: "High Contrast", Type: TypeThumbnail, Value: base, Description: "Vivid colors",
			Attributes: map[string]string{"style": "high-contrast", "brightness": "1.2", "contrast": "1.3", "saturation": "1.5"}},
	}, nil
}

// HashtagVariants tries trending, long-tail and trimmed tag sets.
func HashtagVariants(base string) ([]VariantDefinition, error) {
	if strings.TrimSpace(base) == "" {
		return nil, ErrEmptyBaseline
	}
	return []VariantDefinition{
		{Name: "Original", Type: TypeHashtags, Value: base, Description: "Unchanged hashtags"},
		{Name: "Trending", Type: TypeHashtags, Value: base + " " + strings.Join(trendingHashtags, " "), Description: "Adds trending hashtags"},
		{Name: "Long Tail", Type: TypeHashtags, Value: base + " " + strings.Join(longTailHashtags, " "), Description: "Adds long-tail keywords"},
		{Name: "Minimal", Type: TypeHashtags, Value: minimizeHashtags(base), Description: "Keeps only the first five"},
	}, nil
}

func minimizeHashtags(base string) string {
	tags := strings.Split(base, " ")
	if len(tags) > 5 {
		tags = tags[:5]
	}
	return strings.Join(tags, " ")
}

// PostingTimeVariants returns four fixed daily slots.
func PostingTimeVariants() []VariantDefinition {
	return []VariantDefinition{
		{Name: "Morning Peak", Type: TypeTime, Value: "07:00", Description: "Morning, people waking up"},
		{Name: "Lunch Break", Type: TypeTime, Value: "12:00", Description: "Midday break"},
		{Name: "Evening Prime", Type: TypeTime, Value: "18:00", Description: "After work"},
		{Name: "Night Peak", Type: TypeTime, Value: "21:00", Description: "Before bed"},
	}
}

// GenerateVariants picks the generator for kind and seeds it from c.
func GenerateVariants(kind VariantType, c *Content) ([]VariantDefinition, error) {
	switch kind {
	case TypeTitle:
		return TitleVariants(c.Title)
	case TypeThumbnail:
		return ThumbnailVariants(c.ThumbnailURL)
	case TypeHashtags:
		return HashtagVariants(c.Hashtags)
	case TypeTime:
		return PostingTimeVariants(), nil
	default:
		return nil, fmt.Errorf("unknown variant kind %q", kind)
	}
}

// ParseVariantType validates a kind given on the command line or over HTTP.
func ParseVariantType(s string) (VariantType, error) {
	switch t := VariantType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeTitle, TypeThumbnail, TypeHashtags, TypeTime:
		return t, nil
	default:
		return "", fmt.Errorf("unknown variant kind %q (want title, thumbnail, hashtags or time)", s)
	}
}
