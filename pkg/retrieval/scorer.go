package retrieval

import (
	"log"
	"math"
	"sort"
	"time"
)

// Weights control how much each signal contributes to the combined score.
type Weights struct {
	FTS     float64
	Vector  float64
	Recency float64
}

// DefaultWeights favors semantic similarity, with lexical rank and document
// freshness as secondary signals.
func DefaultWeights() Weights {
	return Weights{
		FTS:     0.3,
		Vector:  0.5,
		Recency: 0.2,
	}
}

// Config encapsulates ranking parameters
type Config struct {
	Weights Weights

	// HalfLife is the recency decay half-life: a document this old scores
	// half the recency of one updated now.
	HalfLife time.Duration

	// MinScore drops candidates whose combined score falls below the bar.
	MinScore float64

	TopK int
}

// DefaultConfig returns default ranking configuration
func DefaultConfig() Config {
	return Config{
		Weights:  DefaultWeights(),
		HalfLife: 365 * 24 * time.Hour,
		MinScore: 0.35,
		TopK:     10,
	}
}

// Candidate carries the raw signals for one passage before ranking.
type Candidate struct {
	ID      string
	Title   string
	Content string
	Source  string

	// FTSRank is the normalized full-text rank in [0,1).
	FTSRank float64

	// Similarity is 1 - cosine distance against the query embedding.
	Similarity float64

	// UpdatedAt is the effective timestamp used for recency decay.
	UpdatedAt time.Time
}

// Components breaks the combined score down per signal for diagnostics.
type Components struct {
	FTS     float64
	Vector  float64
	Recency float64
}

// Scored is a candidate with its combined score attached.
type Scored struct {
	Candidate
	Score      float64
	Components Components
}

// Scorer ranks candidates by a weighted sum of lexical, vector, and recency
// signals.
type Scorer struct {
	config Config
	logger *log.Logger
}

func NewScorer(config Config, logger *log.Logger) *Scorer {
	if config.TopK <= 0 {
		config.TopK = DefaultConfig().TopK
	}
	if config.HalfLife <= 0 {
		config.HalfLife = DefaultConfig().HalfLife
	}
	return &Scorer{
		config: config,
		logger: logger,
	}
}

// Rank scores all candidates using every signal and returns the survivors
// ordered by combined score descending, truncated to top-k.
func (s *Scorer) Rank(candidates []Candidate, now time.Time) []Scored {
	return s.rank(candidates, now, s.config.Weights)
}

// RankLexical ranks without the vector signal. Used when embedding or vector
// search is unavailable; the remaining weights are rescaled so scores stay
// comparable against MinScore.
func (s *Scorer) RankLexical(candidates []Candidate, now time.Time) []Scored {
	w := s.config.Weights
	total := w.FTS + w.Recency
	if total <= 0 {
		total = 1
	}
	return s.rank(candidates, now, Weights{
		FTS:     w.FTS / total,
		Vector:  0,
		Recency: w.Recency / total,
	})
}

func (s *Scorer) rank(candidates []Candidate, now time.Time, w Weights) []Scored {
	out := make([]Scored, 0, len(candidates))

	for i, c := range candidates {
		comp := Components{
			FTS:     clamp01(c.FTSRank),
			Vector:  clamp01(c.Similarity),
			Recency: s.recency(c.UpdatedAt, now),
		}
		score := w.FTS*comp.FTS + w.Vector*comp.Vector + w.Recency*comp.Recency

		if score < s.config.MinScore {
			s.logger.Printf("[DEBUG] Candidate %d: Score=%.4f [FILTERED]", i+1, score)
			continue
		}
		s.logger.Printf("[DEBUG] Candidate %d: Score=%.4f (fts=%.3f vec=%.3f rec=%.3f) [KEEP]", i+1, score, comp.FTS, comp.Vector, comp.Recency)

		out = append(out, Scored{
			Candidate:  c,
			Score:      score,
			Components: comp,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	if len(out) > s.config.TopK {
		out = out[:s.config.TopK]
	}
	return out
}

// recency decays exponentially with age: 1.0 at now, 0.5 after one half-life.
// Future timestamps clamp to 1.0.
func (s *Scorer) recency(updatedAt time.Time, now time.Time) float64 {
	if updatedAt.IsZero() {
		return 0
	}
	age := now.Sub(updatedAt)
	if age <= 0 {
		return 1
	}
	halfLives := float64(age) / float64(s.config.HalfLife)
	return math.Exp2(-halfLives)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
