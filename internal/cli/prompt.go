package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/headline-goat/clip-goat/internal/experiment"
)

var errCancelled = errors.New("cancelled")

var kindChoices = []struct {
	Kind  experiment.VariantType
	Label string
}{
	{experiment.TypeTitle, "Title (question, shocking and emotional rewrites)"},
	{experiment.TypeThumbnail, "Thumbnail (overlay, emoji and contrast styles)"},
	{experiment.TypeHashtags, "Hashtags (trending, long-tail and minimal sets)"},
	{experiment.TypeTime, "Posting time (morning, lunch, evening, night)"},
}

func promptKind() (experiment.VariantType, error) {
	labels := make([]string, len(kindChoices))
	for i, c := range kindChoices {
		labels[i] = c.Label
	}

	prompt := promptui.Select{
		Label: "What do you want to test",
		Items: labels,
		Size:  len(labels),
	}

	idx, _, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return "", errCancelled
		}
		return "", err
	}
	return kindChoices[idx].Kind, nil
}

func promptBaseline(kind experiment.VariantType) (string, error) {
	prompt := promptui.Prompt{
		Label: fmt.Sprintf("Current %s", kind),
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return experiment.ErrEmptyBaseline
			}
			return nil
		},
	}

	value, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return "", errCancelled
		}
		return "", err
	}
	return value, nil
}
