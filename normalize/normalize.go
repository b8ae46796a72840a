// Package normalize reduces the upstream comparison payload, whatever
// shape it arrives in, to a canonical ordered list of compliance cards.
// The upstream contract is not trustworthy: the payload may be a single
// object, an array of objects, a JSON-encoded string, a double-encoded
// string, or prose with a JSON object embedded in it, and findings may
// use either the legacy bare-string format or the structured format.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vrushabhh97/NormaAI-RAG/model"
)

// ErrUnrecognizedPayload reports that no structure could be recovered
// from the payload and the terminal fallback card was returned instead.
var ErrUnrecognizedPayload = errors.New("unrecognized comparison payload")

// Default title when the payload supplies none.
const defaultAnalysisTitle = "SOP Analysis"

// Normalize converts a raw comparison payload into compliance cards.
// It is total: it never panics or returns an empty list. When nothing
// recognizable can be recovered it returns the single fallback card
// together with ErrUnrecognizedPayload so the caller can surface a
// notification; the returned list is valid either way.
func Normalize(raw any) ([]model.Card, error) {
	value := Recover(raw)

	if cards := dispatch(value); len(cards) > 0 {
		return cards, nil
	}

	// A payload that survived recovery as text may still contain an
	// embedded object among prose.
	if text, ok := value.(string); ok {
		if block := jsonBlockPattern.FindString(text); block != "" {
			var decoded any
			if err := json.Unmarshal([]byte(block), &decoded); err == nil {
				if cards := dispatch(decoded); len(cards) > 0 {
					return cards, nil
				}
			}
		}
	}

	return []model.Card{fallbackCard()}, ErrUnrecognizedPayload
}

// dispatch routes a recovered value to the single-object or array
// procedure. The card id counter runs across the whole batch so array
// elements share one strictly increasing sequence.
func dispatch(value any) []model.Card {
	nextID := 1

	switch v := value.(type) {
	case map[string]any:
		if !isAnalysisObject(v) {
			return nil
		}
		return objectCards(v, defaultAnalysisTitle, &nextID)
	case []any:
		var cards []model.Card
		for i, element := range v {
			obj, ok := element.(map[string]any)
			if !ok {
				continue
			}
			cards = append(cards, objectCards(obj, fmt.Sprintf("Item %d", i+1), &nextID)...)
		}
		return cards
	}

	return nil
}

// isAnalysisObject reports whether the object exposes at least one of
// the expected analysis fields. Objects without any are shape
// mismatches and fall through to the terminal fallback.
func isAnalysisObject(obj map[string]any) bool {
	for _, key := range []string{"title", "fda_requirement_summary", "user_summary", "potential_issues"} {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}

// objectCards applies the single-object procedure: one card per finding
// when findings are present (every finding of a non-compliant object
// becomes its own card), otherwise exactly one compliant card built
// from the object's own summaries.
func objectCards(obj map[string]any, defaultTitle string, nextID *int) []model.Card {
	baseTitle := stringField(obj, "title")
	if baseTitle == "" {
		baseTitle = defaultTitle
	}
	fdaSummary := stringField(obj, "fda_requirement_summary")
	sopSummary := stringField(obj, "user_summary")

	findings := decodeFindings(obj["potential_issues"])
	if len(findings) == 0 {
		card := model.Card{
			ID:          *nextID,
			Title:       baseTitle,
			FDASummary:  fdaSummary,
			SOPSummary:  sopSummary,
			Issues:      []string{},
			IsCompliant: true,
		}
		*nextID++
		return []model.Card{card}
	}

	cards := make([]model.Card, 0, len(findings))
	for _, f := range findings {
		title, fda, sop := classify(f, fdaSummary, sopSummary, baseTitle)
		cards = append(cards, model.Card{
			ID:          *nextID,
			Title:       title,
			FDASummary:  fda,
			SOPSummary:  sop,
			Issues:      []string{f.issue},
			IsCompliant: false,
		})
		*nextID++
	}
	return cards
}

// decodeFindings reads the potential_issues field, accepting both the
// legacy bare-string format and the structured object format on a
// per-entry basis. Scalar entries of other types are kept as legacy
// findings rather than dropped; objects without an issue field are the
// only entries skipped.
func decodeFindings(value any) []finding {
	list, ok := value.([]any)
	if !ok {
		return nil
	}

	findings := make([]finding, 0, len(list))
	for _, entry := range list {
		switch e := entry.(type) {
		case string:
			findings = append(findings, finding{issue: e})
		case map[string]any:
			if _, ok := e["issue"]; !ok {
				continue
			}
			findings = append(findings, finding{
				issue:          stringField(e, "issue"),
				structured:     true,
				category:       stringField(e, "category"),
				fdaRequirement: stringField(e, "fda_requirement"),
				sopDetail:      stringField(e, "sop_detail"),
			})
		case nil:
			continue
		default:
			findings = append(findings, finding{issue: fmt.Sprintf("%v", e)})
		}
	}
	return findings
}

// fallbackCard is the terminal card returned when no shape rule
// produced output.
func fallbackCard() model.Card {
	return model.Card{
		ID:          1,
		Title:       defaultAnalysisTitle,
		FDASummary:  "Unable to extract FDA requirements from data",
		SOPSummary:  "Unable to extract SOP details from data",
		Issues:      []string{"Please check the server response format"},
		IsCompliant: false,
	}
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return ""
}
