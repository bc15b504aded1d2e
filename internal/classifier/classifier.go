package classifier

import (
	"math/rand"
	"sync"
	"time"
)

// Category is a fault classification for one measurement.
type Category string

const (
	NoFault    Category = "No Fault"
	FiberBreak Category = "Fiber Break"
	HighLoss   Category = "High Loss"
	SpliceLoss Category = "Splice Loss"
)

// Categories lists every category in a fixed order. The order also decides
// argmax ties, so classification stays deterministic for a given noise draw.
var Categories = [4]Category{NoFault, FiberBreak, HighLoss, SpliceLoss}

// Result is the outcome of classifying a single measurement.
type Result struct {
	Category      Category             `json:"prediction"`
	Probabilities map[Category]float64 `json:"probabilities"`
	Confidence    float64              `json:"confidence"`
}

// Classifier maps raw fiber-link readings to a fault category using a fixed
// rule table with injected noise. It holds no per-call state beyond the shared
// random source and is safe for concurrent use.
type Classifier struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Classifier with a time-seeded noise source.
func New() *Classifier {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed creates a Classifier with a fixed seed. Used by tests.
func NewWithSeed(seed int64) *Classifier {
	return &Classifier{rng: rand.New(rand.NewSource(seed))}
}

// Classify maps the three readings to a fault category, a probability
// distribution over all categories, and a confidence score. The base rule
// bands are mutually exclusive, first match wins; distance does not affect
// the banding and is carried through for display only. It never fails: the
// final band covers every input.
func (c *Classifier) Classify(signalPower, attenuation, distance float64) Result {
	_ = distance

	probs := baseProbabilities(signalPower, attenuation)

	// Perturb each entry by a uniform value in [-0.05, +0.05], clamped to [0, 1].
	c.mu.Lock()
	for i := range probs {
		probs[i] += c.rng.Float64()*0.1 - 0.05
		if probs[i] < 0 {
			probs[i] = 0
		} else if probs[i] > 1 {
			probs[i] = 1
		}
	}
	c.mu.Unlock()

	var total float64
	for _, p := range probs {
		total += p
	}
	for i := range probs {
		probs[i] /= total
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	dist := make(map[Category]float64, len(Categories))
	for i, cat := range Categories {
		dist[cat] = probs[i]
	}

	return Result{
		Category:      Categories[best],
		Probabilities: dist,
		Confidence:    probs[best],
	}
}

// baseProbabilities returns the rule-table probability vector, indexed to
// match Categories.
func baseProbabilities(signalPower, attenuation float64) [4]float64 {
	switch {
	// Fiber Break: very low signal power, high attenuation.
	case signalPower < -40 && attenuation > 1.5:
		return [4]float64{0.02, 0.85, 0.10, 0.03}
	// High Loss: moderate-low signal power, moderate-high attenuation.
	case signalPower >= -40 && signalPower < -30 && attenuation > 1.0:
		return [4]float64{0.02, 0.15, 0.75, 0.08}
	// Splice Loss: moderate signal power, low-moderate attenuation.
	case signalPower >= -30 && signalPower < -20 && attenuation > 0.5 && attenuation <= 1.5:
		return [4]float64{0.10, 0.05, 0.15, 0.70}
	// No Fault: good signal power, low attenuation.
	default:
		return [4]float64{0.85, 0.01, 0.04, 0.10}
	}
}
