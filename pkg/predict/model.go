// Package predict estimates likely next navigation targets from recorded
// history. The model is a first-order Markov estimate: a transition
// frequency table built from consecutive history pairs, normalized per
// source row, recomputed on demand rather than incrementally maintained.
package predict

import "sort"

// ReasonHistory marks predictions derived from recorded navigation history.
const ReasonHistory = "history"

// Prediction is one candidate next route.
type Prediction struct {
	Route       string  `json:"route"`
	Probability float64 `json:"probability"`
	Reason      string  `json:"reason"`
}

// Model builds transition probabilities over a bounded recent window of
// navigation history.
type Model struct {
	window int
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithWindow bounds how many trailing history entries feed the matrix.
// Default: 50.
func WithWindow(n int) ModelOption {
	return func(m *Model) {
		if n > 1 {
			m.window = n
		}
	}
}

// NewModel creates a prediction model.
func NewModel(opts ...ModelOption) *Model {
	m := &Model{window: 50}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Predict returns candidate destinations from the given route, sorted by
// descending probability (route name breaks ties, keeping the order a
// total order). Empty when the route has no recorded outgoing transitions.
func (m *Model) Predict(history []string, from string) []Prediction {
	matrix := m.buildMatrix(history)
	row, ok := matrix[from]
	if !ok {
		return nil
	}

	predictions := make([]Prediction, 0, len(row))
	for to, p := range row {
		predictions = append(predictions, Prediction{
			Route:       to,
			Probability: p,
			Reason:      ReasonHistory,
		})
	}
	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].Probability != predictions[j].Probability {
			return predictions[i].Probability > predictions[j].Probability
		}
		return predictions[i].Route < predictions[j].Route
	})
	return predictions
}

// buildMatrix counts adjacent pairs in the trailing window and normalizes
// each source row to sum to 1.
func (m *Model) buildMatrix(history []string) map[string]map[string]float64 {
	if len(history) > m.window {
		history = history[len(history)-m.window:]
	}

	counts := make(map[string]map[string]float64)
	for i := 0; i+1 < len(history); i++ {
		from, to := history[i], history[i+1]
		if counts[from] == nil {
			counts[from] = make(map[string]float64)
		}
		counts[from][to]++
	}

	for _, row := range counts {
		var sum float64
		for _, n := range row {
			sum += n
		}
		for to := range row {
			row[to] /= sum
		}
	}
	return counts
}
