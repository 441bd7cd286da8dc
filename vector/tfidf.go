package vector

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize lowercases text and splits it into word tokens: maximal runs of
// letters, digits, marks and underscores that are at least two runes long.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
	tokens := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) >= 2 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Vectorizer turns documents into L2-normalized TF-IDF vectors.
//
// Weights use raw term counts and smoothed inverse document frequency:
// idf(t) = ln((1+n) / (1+df(t))) + 1.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
}

func NewVectorizer() *Vectorizer {
	return &Vectorizer{}
}

// Fit learns the vocabulary and idf weights. Vocabulary positions follow the
// sorted term order so results do not depend on map iteration.
func (v *Vectorizer) Fit(docs []string) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, t := range terms {
		v.vocabulary[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}

// Transform vectorizes documents with the fitted vocabulary. Unknown terms
// are dropped; a document without known terms yields a zero vector.
func (v *Vectorizer) Transform(docs []string) []SparseVector {
	out := make([]SparseVector, len(docs))
	for i, doc := range docs {
		out[i] = v.transformOne(doc)
	}
	return out
}

// FitTransform is Fit followed by Transform on the same documents.
func (v *Vectorizer) FitTransform(docs []string) []SparseVector {
	return v.Fit(docs).Transform(docs)
}

// Vocabulary returns the fitted terms in index order.
func (v *Vectorizer) Vocabulary() []string {
	return v.terms
}

// IDF returns the idf weight of term and whether it is in the vocabulary.
func (v *Vectorizer) IDF(term string) (float64, bool) {
	i, ok := v.vocabulary[term]
	if !ok {
		return 0, false
	}
	return v.idf[i], true
}

func (v *Vectorizer) transformOne(doc string) SparseVector {
	counts := make(map[int]float64)
	for _, tok := range Tokenize(doc) {
		if i, ok := v.vocabulary[tok]; ok {
			counts[i]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	indices := make([]int, 0, len(counts))
	for i := range counts {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for k, i := range indices {
		values[k] = counts[i] * v.idf[i]
	}
	return Normalize(SparseVector{Indices: indices, Values: values})
}
