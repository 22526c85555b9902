// Package similarity scores documents against a query with TF-IDF weighted
// cosine similarity. It is the offline ranker used when no language model
// is reachable.
package similarity

import (
	"math"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Tokenize lowercases s and returns its words of two or more characters.
func Tokenize(s string) []string {
	return tokenPattern.FindAllString(strings.ToLower(s), -1)
}

// Scores returns cosine(query, doc) for each doc, in [0, 1]. Term weights
// use smoothed IDF, ln((1+n)/(1+df))+1, fitted over the query and all docs.
func Scores(query string, docs []string) []float64 {
	corpus := make([][]string, 0, len(docs)+1)
	corpus = append(corpus, Tokenize(query))
	for _, d := range docs {
		corpus = append(corpus, Tokenize(d))
	}

	df := map[string]int{}
	for _, tokens := range corpus {
		seen := map[string]bool{}
		for _, tok := range tokens {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}
	n := float64(len(corpus))
	idf := make(map[string]float64, len(df))
	for term, d := range df {
		idf[term] = math.Log((1+n)/(1+float64(d))) + 1
	}

	vectors := make([]map[string]float64, len(corpus))
	for i, tokens := range corpus {
		vectors[i] = weigh(tokens, idf)
	}

	scores := make([]float64, len(docs))
	for i := range docs {
		scores[i] = cosine(vectors[0], vectors[i+1])
	}
	return scores
}

func weigh(tokens []string, idf map[string]float64) map[string]float64 {
	v := map[string]float64{}
	for _, tok := range tokens {
		v[tok]++
	}
	var norm float64
	for term, tf := range v {
		w := tf * idf[term]
		v[term] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for term := range v {
		v[term] /= norm
	}
	return v
}

func cosine(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, w := range a {
		dot += w * b[term]
	}
	return dot
}
