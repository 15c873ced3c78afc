// Package recommend scores feature rows against the pretrained per-category
// food models and ranks the results.
package recommend

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/yunseo-dev/weatherdish/internal/feature"
)

// Categories is the fixed food-category vocabulary the models are keyed by.
var Categories = []string{
	"Noodles", "RiceDishes", "StirFryGrill", "BrunchSalad", "SideDish", "SoupStew",
}

// DisplayNames maps category keys to their Korean display labels.
var DisplayNames = map[string]string{
	"Noodles":      "면요리",
	"RiceDishes":   "밥/죽/덮밥",
	"StirFryGrill": "볶음/구이",
	"BrunchSalad":  "브런치/샐러드",
	"SideDish":     "안주/보양식",
	"SoupStew":     "찌개/국/탕",
}

// CategoryScore is one ranked entry; ephemeral, consumed straight into the
// top-N selection.
type CategoryScore struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Score    float64 `json:"score"`
}

// Scorer produces a scalar score per category for a feature row. The row's
// vector order is part of the contract: models are trained against exactly
// that order.
type Scorer interface {
	Score(row feature.Row) map[string]float64
}

// Model holds the coefficients of one category's linear scoring model.
type Model struct {
	Bias    float64   `json:"bias"`
	Weights []float64 `json:"weights"`
}

// LinearScorer scores rows with per-category linear models loaded once at
// startup.
type LinearScorer struct {
	models map[string]Model
}

// LoadScorer reads the models file and validates it against the category
// vocabulary and the feature vector size. A malformed file is fatal at
// startup, never a per-request condition.
func LoadScorer(path string) (*LinearScorer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read models file: %w", err)
	}

	models := make(map[string]Model)
	if err := json.Unmarshal(data, &models); err != nil {
		return nil, fmt.Errorf("decode models file: %w", err)
	}

	for _, cat := range Categories {
		m, ok := models[cat]
		if !ok {
			return nil, fmt.Errorf("models file is missing category %q", cat)
		}
		if len(m.Weights) != feature.Size {
			return nil, fmt.Errorf("category %q has %d weights, want %d",
				cat, len(m.Weights), feature.Size)
		}
	}
	return &LinearScorer{models: models}, nil
}

// NewLinearScorer builds a scorer from an in-memory model map. Used by tests
// and callers that manage model loading themselves.
func NewLinearScorer(models map[string]Model) *LinearScorer {
	return &LinearScorer{models: models}
}

// Score computes the dot product of each category's weights with the row
// vector plus the bias.
func (s *LinearScorer) Score(row feature.Row) map[string]float64 {
	vec := row.Vector()
	scores := make(map[string]float64, len(s.models))
	for cat, m := range s.models {
		v := m.Bias
		for i, w := range m.Weights {
			if i >= len(vec) {
				break
			}
			v += w * vec[i]
		}
		scores[cat] = v
	}
	return scores
}

// TopN returns the n best-scoring categories in descending score order.
// Equal scores are broken by category name so the ranking is deterministic.
func TopN(scores map[string]float64, n int) []CategoryScore {
	ranked := make([]CategoryScore, 0, len(scores))
	for cat, score := range scores {
		ranked = append(ranked, CategoryScore{
			Category: cat,
			Label:    DisplayNames[cat],
			Score:    score,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Category < ranked[j].Category
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
