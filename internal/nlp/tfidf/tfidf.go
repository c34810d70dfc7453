package tfidf

import (
	"math"
	"regexp"
	"strings"

	"TranscriptDigest/internal/ports"
)

// Terms are lowercase runs of at least two word characters.
var reTerm = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Scorer weights terms by smoothed TF-IDF over the sentences it is given and
// scores each sentence as the sum of its L2-normalised term weights.
type Scorer struct{}

var _ ports.TermWeightScorer = Scorer{}

// Score returns one score per sentence in input order. Sentences without any
// term score zero.
func (Scorer) Score(sentences []string) []float64 {
	scores := make([]float64, len(sentences))
	if len(sentences) == 0 {
		return scores
	}

	docs := make([]map[string]int, len(sentences))
	df := make(map[string]int)
	for i, s := range sentences {
		tf := make(map[string]int)
		for _, term := range Tokenize(s) {
			tf[term]++
		}
		for term := range tf {
			df[term]++
		}
		docs[i] = tf
	}

	n := float64(len(sentences))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1.0
	}

	for i, tf := range docs {
		var sum, sumSquares float64
		for term, count := range tf {
			w := float64(count) * idf[term]
			sum += w
			sumSquares += w * w
		}
		if sumSquares == 0 {
			continue
		}
		scores[i] = sum / math.Sqrt(sumSquares)
	}

	return scores
}

// Tokenize lowercases text and extracts its terms.
func Tokenize(text string) []string {
	return reTerm.FindAllString(strings.ToLower(text), -1)
}
