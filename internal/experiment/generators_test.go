package experiment_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headline-goat/clip-goat/internal/experiment"
)

func names(defs []experiment.VariantDefinition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out
}

func TestTitleVariants(t *testing.T) {
	defs, err := experiment.TitleVariants("This trick saves an hour a day")
	require.NoError(t, err)

	assert.Equal(t, []string{"Original", "Question", "Shocking", "Emotional"}, names(defs))
	assert.Equal(t, "This trick saves an hour a day", defs[0].Value)
	assert.Equal(t, "Why This trick saves an hour a day? The answer will surprise you!", defs[1].Value)
	assert.True(t, strings.HasSuffix(defs[2].Value, "This trick saves an hour a day"))
	assert.Contains(t, defs[3].Value, "This trick saves an hour a day")
	for _, d := range defs {
		assert.Equal(t, experiment.TypeTitle, d.Type)
	}

	// deterministic
	again, _ := experiment.TitleVariants("This trick saves an hour a day")
	assert.Equal(t, defs, again)
}

func TestTitleVariants_AlreadyAQuestion(t *testing.T) {
	defs, err := experiment.TitleVariants("Why cats knock things over")
	require.NoError(t, err)
	assert.Equal(t, "Why cats knock things over", defs[1].Value)
}

func TestThumbnailVariants(t *testing.T) {
	defs, err := experiment.ThumbnailVariants("https://cdn.example.com/t.jpg")
	require.NoError(t, err)

	assert.Equal(t, []string{"Original", "Text Overlay", "Emoji Heavy", "High Contrast"}, names(defs))
	for _, d := range defs {
		assert.Equal(t, "https://cdn.example.com/t.jpg", d.Value)
		assert.NotEmpty(t, d.Attributes["style"])
	}
	assert.Equal(t, "Must watch!", defs[1].Attributes["overlay_text"])
}

func TestHashtagVariants(t *testing.T) {
	base := "#a #b #c #d #e #f #g"
	defs, err := experiment.HashtagVariants(base)
	require.NoError(t, err)

	assert.Equal(t, []string{"Original", "Trending", "Long Tail", "Minimal"}, names(defs))
	assert.Equal(t, base, defs[0].Value)
	assert.True(t, strings.HasPrefix(defs[1].Value, base+" #fyp"))
	assert.True(t, strings.HasPrefix(defs[2].Value, base+" #"))
	assert.Equal(t, "#a #b #c #d #e", defs[3].Value)
}

func TestPostingTimeVariants(t *testing.T) {
	defs := experiment.PostingTimeVariants()
	require.Len(t, defs, 4)

	var slots []string
	for _, d := range defs {
		assert.Equal(t, experiment.TypeTime, d.Type)
		slots = append(slots, d.Value)
	}
	assert.Equal(t, []string{"07:00", "12:00", "18:00", "21:00"}, slots)
}

func TestGenerators_RequireBaseline(t *testing.T) {
	for name, gen := range map[string]func(string) ([]experiment.VariantDefinition, error){
		"title":     experiment.TitleVariants,
		"thumbnail": experiment.ThumbnailVariants,
		"hashtags":  experiment.HashtagVariants,
	} {
		_, err := gen("   ")
		assert.True(t, errors.Is(err, experiment.ErrEmptyBaseline), name)
	}
}

func TestGenerateVariants(t *testing.T) {
	c := &experiment.Content{Title: "Title", ThumbnailURL: "thumb.png", Hashtags: "#x"}

	for _, kind := range []experiment.VariantType{
		experiment.TypeTitle, experiment.TypeThumbnail, experiment.TypeHashtags, experiment.TypeTime,
	} {
		defs, err := experiment.GenerateVariants(kind, c)
		require.NoError(t, err, kind)
		assert.Len(t, defs, 4)
		assert.Equal(t, kind, defs[0].Type)
	}

	_, err := experiment.GenerateVariants("audio", c)
	assert.Error(t, err)
}

func TestParseVariantType(t *testing.T) {
	kind, err := experiment.ParseVariantType(" Hashtags ")
	require.NoError(t, err)
	assert.Equal(t, experiment.TypeHashtags, kind)

	_, err = experiment.ParseVariantType("audio")
	assert.Error(t, err)
}
