package lexical

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleCorpus = [][]string{
	Tokenize("privacy risk management framework"),
	Tokenize("risk assessment for privacy engineering"),
	Tokenize("data governance and data inventory"),
}

func TestBuild_Statistics(t *testing.T) {
	idx := Build(sampleCorpus)

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []int{4, 5, 5}, idx.DocLens)
	assert.InDelta(t, 14.0/3.0, idx.AvgDocLen, 1e-12)
	assert.Equal(t, 2, idx.DocFreqs[2]["data"])

	// "risk" appears in 2 of 3 documents: log(1.5) - log(2.5) < 0, so it is
	// replaced by epsilon times the average idf.
	var sum float64
	for term := range idx.IDF {
		df := 0
		for _, freqs := range idx.DocFreqs {
			if freqs[term] > 0 {
				df++
			}
		}
		sum += math.Log(3-float64(df)+0.5) - math.Log(float64(df)+0.5)
	}
	eps := DefaultEpsilon * sum / float64(len(idx.IDF))
	assert.InDelta(t, eps, idx.IDF["risk"], 1e-12)
	assert.InDelta(t, math.Log(2.5)-math.Log(1.5), idx.IDF["governance"], 1e-12)
}

func TestIndex_Scores(t *testing.T) {
	idx := Build(sampleCorpus)

	scores := idx.Scores(Tokenize("data governance"))
	require.Len(t, scores, 3)
	assert.Zero(t, scores[0])
	assert.Zero(t, scores[1])
	assert.Greater(t, scores[2], 0.0)

	assert.Equal(t, []float64{0, 0, 0}, idx.Scores([]string{"unknown"}))
}

func TestIndex_ScoresFormula(t *testing.T) {
	idx := Build(sampleCorpus)

	tf := 2.0
	dl := 5.0
	norm := DefaultK1 * (1 - DefaultB + DefaultB*dl/idx.AvgDocLen)
	want := idx.IDF["data"] * tf * (DefaultK1 + 1) / (tf + norm)

	scores := idx.Scores([]string{"data"})
	assert.InDelta(t, want, scores[2], 1e-12)
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build(sampleCorpus)
	b := Build(sampleCorpus)
	assert.Equal(t, a.Marshal(), b.Marshal())
}

func TestBuild_Empty(t *testing.T) {
	idx := Build(nil)
	assert.Zero(t, idx.Len())
	assert.Empty(t, idx.Scores([]string{"x"}))
}

func TestIndex_MarshalRoundTrip(t *testing.T) {
	idx := Build(sampleCorpus)

	got, err := Unmarshal(idx.Marshal())
	require.NoError(t, err)
	assert.Equal(t, idx, got)
}

func TestUnmarshal_Truncated(t *testing.T) {
	data := Build(sampleCorpus).Marshal()
	_, err := Unmarshal(data[:len(data)/2])
	assert.Error(t, err)
}
