package vector

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Action Adventure", []string{"action", "adventure"}},
		{"Robert Downey Jr. & a cat", []string{"robert", "downey", "jr", "cat"}},
		{"love of one's life", []string{"love", "of", "one", "life"}},
		{"sci_fi 3D x", []string{"sci_fi", "3d"}},
		{"Amélie Poulain", []string{"amélie", "poulain"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if len(tt.want) == 0 {
			assert.Empty(t, got, tt.in)
			continue
		}
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestVectorizer_IDF(t *testing.T) {
	docs := []string{"space war", "space opera", "romance"}
	v := NewVectorizer().Fit(docs)

	assert.Equal(t, []string{"opera", "romance", "space", "war"}, v.Vocabulary())

	space, ok := v.IDF("space")
	require.True(t, ok)
	assert.InDelta(t, math.Log(4.0/3.0)+1, space, 1e-12)

	war, ok := v.IDF("war")
	require.True(t, ok)
	assert.InDelta(t, math.Log(4.0/2.0)+1, war, 1e-12)

	_, ok = v.IDF("unknown")
	assert.False(t, ok)
}

func TestVectorizer_TransformNormalized(t *testing.T) {
	docs := []string{"space war war", "space opera", "", "a"}
	vecs := NewVectorizer().FitTransform(docs)
	require.Len(t, vecs, 4)

	assert.InDelta(t, 1.0, vecs[0].Norm(), 1e-12)
	assert.InDelta(t, 1.0, vecs[1].Norm(), 1e-12)
	assert.True(t, vecs[2].IsZero())
	assert.True(t, vecs[3].IsZero(), "single-character tokens are ignored")

	// Vocabulary is [opera space war]; "war" appears twice in doc 0 and
	// has a higher idf than "space".
	v := NewVectorizer().Fit(docs)
	require.Equal(t, []string{"opera", "space", "war"}, v.Vocabulary())
	dense := vecs[0].Dense(len(v.Vocabulary()))
	assert.Equal(t, 0.0, dense[0])
	assert.Greater(t, dense[2], dense[1])
}

func TestDot_MatchesDenseCosine(t *testing.T) {
	docs := []string{
		"action crime drama dc comics christian bale",
		"action crime thriller dc comics heath ledger christian bale",
		"animation comedy family toy friendship",
	}
	v := NewVectorizer()
	vecs := v.FitTransform(docs)
	dim := len(v.Vocabulary())

	for i := range vecs {
		for j := range vecs {
			dense := CosineSimilarity(vecs[i].Dense(dim), vecs[j].Dense(dim))
			assert.InDelta(t, dense, Dot(vecs[i], vecs[j]), 1e-12)
			assert.InDelta(t, dense, SparseCosine(vecs[i], vecs[j]), 1e-12)
		}
	}
}

func TestSimilarity(t *testing.T) {
	docs := []string{
		"action crime drama dc comics christian bale",
		"action crime thriller dc comics heath ledger christian bale",
		"animation comedy family toy friendship",
		"",
	}
	vecs := NewVectorizer().FitTransform(docs)

	m, err := Similarity(context.Background(), vecs)
	require.NoError(t, err)
	require.Equal(t, 4, m.Len())

	for i := 0; i < 3; i++ {
		assert.Equal(t, 1.0, m.At(i, i))
	}
	assert.Equal(t, 0.0, m.At(3, 3), "zero vector has no self-similarity")

	for i := 0; i < m.Len(); i++ {
		for j := 0; j < m.Len(); j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i))
			assert.GreaterOrEqual(t, m.At(i, j), 0.0)
			assert.LessOrEqual(t, m.At(i, j), 1.0)
		}
	}

	assert.Greater(t, m.At(0, 1), m.At(0, 2))
	assert.Equal(t, 0.0, m.At(0, 2))
	assert.Len(t, m.Row(1), 4)
}

func TestSimilarity_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	vecs := NewVectorizer().FitTransform([]string{"alpha beta", "beta gamma"})
	_, err := Similarity(ctx, vecs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewMatrix(t *testing.T) {
	_, err := NewMatrix(2, []float64{1, 0, 0})
	assert.Error(t, err)

	m, err := NewMatrix(2, []float64{1, 0.5, 0.5, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.5, m.At(0, 1))
}

func TestRank(t *testing.T) {
	row := []float64{0.2, 0.9, 1.0, 0.2, 1.0, 0.0}

	got := Rank(row, 4, 0)
	indices := make([]int, len(got))
	for i, n := range got {
		indices[i] = n.Index
	}
	// self (4) wins the tie at 1.0, then original order for ties at 0.2.
	assert.Equal(t, []int{4, 2, 1, 0, 3, 5}, indices)

	top := Rank(row, 4, 3)
	require.Len(t, top, 3)
	assert.Equal(t, 1.0, top[0].Score)

	noSelf := Rank(row, -1, 2)
	assert.Equal(t, 2, noSelf[0].Index)
	assert.Equal(t, 4, noSelf[1].Index)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestWithout(t *testing.T) {
	ns := []Neighbor{{Index: 3, Score: 1}, {Index: 1, Score: 0.5}, {Index: 2, Score: 0.1}}
	assert.Equal(t, []Neighbor{{Index: 1, Score: 0.5}, {Index: 2, Score: 0.1}}, Without(ns, 3))
	assert.Len(t, Without(ns, 9), 3)
}

func TestNormalize(t *testing.T) {
	v := Normalize(SparseVector{Indices: []int{1, 4}, Values: []float64{3, 4}})
	assert.InDelta(t, 0.6, v.Values[0], 1e-12)
	assert.InDelta(t, 0.8, v.Values[1], 1e-12)
	assert.InDelta(t, 1.0, v.Norm(), 1e-12)

	zero := Normalize(SparseVector{})
	assert.True(t, zero.IsZero())

	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 2}, []float64{1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
}
