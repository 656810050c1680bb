package controller

import (
	"context"

	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// readLanguage runs the language chain: supported-language list first,
// active language second. Every supported language becomes an option;
// the active one is pre-selected when it appears in the list. A device
// reporting no supported languages but a valid active language gets a
// single synthesized option. Neither fetch failing softly is fatal;
// transport failures abort.
func (c *Controller) readLanguage(ctx context.Context, universe uint, uid rdm.UID, params Params) (*Section, error) {
	var languages []string

	payload, status, err := c.get(universe, uid, rdm.PIDLanguageCapabilities, nil)
	if err != nil {
		return nil, err
	}
	if status.Type == rdm.ResponseTransportError {
		return nil, statusFailure(status)
	}
	if status.Succeeded() {
		languages, _ = payload.([]string)
	}

	payload, status, err = c.get(universe, uid, rdm.PIDLanguage, nil)
	if err != nil {
		return nil, err
	}
	if status.Type == rdm.ResponseTransportError {
		return nil, statusFailure(status)
	}

	active := ""
	activeKnown := status.Succeeded()
	if activeKnown {
		active, _ = payload.(string)
	}

	item := Item{
		Type:     ItemSelect,
		Label:    "Language",
		Field:    FieldLanguage,
		Selected: -1,
	}
	for i, language := range languages {
		item.Options = append(item.Options, Option{Label: language, Value: language})
		if activeKnown && language == active {
			item.Selected = i
		}
	}
	if activeKnown && len(languages) == 0 {
		item.Options = append(item.Options, Option{Label: active, Value: active})
		item.Selected = 0
	}

	return &Section{Items: []Item{item}}, nil
}

// writeLanguage sets the active language. The value is passed through
// as supplied; devices nack codes they don't speak.
func (c *Controller) writeLanguage(ctx context.Context, universe uint, uid rdm.UID, params Params) error {
	status, err := c.set(universe, uid, rdm.PIDLanguage, params[FieldLanguage])
	if err != nil {
		return err
	}
	return writeOutcome(status)
}
