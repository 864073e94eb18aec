// Package estimator fabricates the "AI training value" statistics for a URL.
//
// The numbers are not measured. They are derived from a 32-bit hash of the
// URL string fed through a sine-based pseudo-random sequence, so the same URL
// always yields the same bundle.
package estimator

import (
	"math"
	"unicode/utf16"
)

// MetricBundle is the set of fabricated statistics for one analysis.
type MetricBundle struct {
	PageCount            int64 `json:"page_count"`
	WordCount            int64 `json:"word_count"`
	UniqueContentPercent int64 `json:"unique_content_percent"`
	QualityScore         int64 `json:"quality_score"`
	EstimatedValue       int64 `json:"estimated_value"`
}

// Hash32 folds the UTF-16 code units of s into h = h*31 + c with signed
// 32-bit wraparound. Runes outside the BMP contribute both surrogates.
func Hash32(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return h
}

// SeededRandom returns frac(sin(seed) * 10000), a value in [0,1).
func SeededRandom(seed int64) float64 {
	x := math.Sin(float64(seed)) * 10000
	return x - math.Floor(x)
}

// Seed returns |Hash32(s)| widened to int64 so MinInt32 stays positive.
func Seed(s string) int64 {
	seed := int64(Hash32(s))
	if seed < 0 {
		seed = -seed
	}
	return seed
}

// Derive maps a URL to its MetricBundle. It is pure: the same input string
// always produces the same bundle.
func Derive(url string) MetricBundle {
	seed := Seed(url)

	basePages := seed%500 + 50
	pagesMultiplier := SeededRandom(seed+1)*3 + 1
	pageCount := int64(math.Floor(float64(basePages) * pagesMultiplier))

	wordsPerPage := int64(math.Floor(SeededRandom(seed+2)*400 + 200))
	wordCount := pageCount * wordsPerPage

	unique := int64(math.Floor(SeededRandom(seed+3)*60 + 30))
	quality := int64(math.Floor(SeededRandom(seed+4)*30 + 65))

	baseValue := (float64(wordCount) / 1000) * (float64(quality) / 100) * (float64(unique) / 100)

	return MetricBundle{
		PageCount:            pageCount,
		WordCount:            wordCount,
		UniqueContentPercent: unique,
		QualityScore:         quality,
		EstimatedValue:       int64(math.Floor(baseValue*100)) + 500,
	}
}
