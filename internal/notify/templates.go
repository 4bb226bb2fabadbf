package notify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

type Text struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Templates holds the texts of both match notifications.
type Templates struct {
	// FoundMatchesLost goes to a lost post's owner when a found report resembles their animal.
	FoundMatchesLost Text `yaml:"found_matches_lost"`
	// LostMatchesFound goes to a found post's owner when a lost report resembles what they found.
	LostMatchesFound Text `yaml:"lost_matches_found"`
	Defaults         struct {
		Animal   string `yaml:"animal"`
		Location string `yaml:"location"`
	} `yaml:"defaults"`
}

// LoadTemplates reads the embedded texts, overlaid by path when it is set.
func LoadTemplates(path string) (*Templates, error) {
	var t Templates
	if err := yaml.Unmarshal(defaultTemplates, &t); err != nil {
		return nil, fmt.Errorf("failed to parse default templates: %w", err)
	}

	if path == "" {
		return &t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse templates %s: %w", path, err)
	}

	return &t, nil
}

// FoundMatchesLostText renders the message for a lost post's owner.
func (t *Templates) FoundMatchesLostText(animal, location string) Text {
	return t.render(t.FoundMatchesLost, animal, location)
}

// LostMatchesFoundText renders the message for a found post's owner.
func (t *Templates) LostMatchesFoundText() Text {
	return t.render(t.LostMatchesFound, "", "")
}

func (t *Templates) render(text Text, animal, location string) Text {
	if animal == "" {
		animal = t.Defaults.Animal
	}
	if location == "" {
		location = t.Defaults.Location
	}

	r := strings.NewReplacer("{animal}", animal, "{location}", location)
	return Text{Title: r.Replace(text.Title), Body: r.Replace(text.Body)}
}
