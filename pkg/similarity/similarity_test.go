package similarity

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("What is the capital of France?")
	want := []string{"what", "capital", "france"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("tokens = %v, want %v", tokens, want)
	}
}

func TestTokenizeDropsStopWordsAndShortWords(t *testing.T) {
	tokens := Tokenize("The cat and the dog are in a big garden")
	for _, tok := range tokens {
		if _, stop := stopWords[tok]; stop {
			t.Errorf("stop word %q survived tokenization", tok)
		}
		if len(tok) < minTokenLen {
			t.Errorf("short token %q survived tokenization", tok)
		}
	}
	want := []string{"cat", "dog", "big", "garden"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("tokens = %v, want %v", tokens, want)
	}
}

func TestJaccard(t *testing.T) {
	a := NewTokenSet([]string{"alpha", "beta", "gamma", "delta"})
	b := NewTokenSet([]string{"alpha", "beta", "gamma", "epsilon"})
	got := Jaccard(a, b)
	if math.Abs(got-0.6) > 1e-9 {
		t.Errorf("Jaccard = %f, want 0.6", got)
	}
	if Jaccard(a, a) != 1.0 {
		t.Error("identical sets should score 1.0")
	}
	if Jaccard(a, TokenSet{}) != 0 {
		t.Error("empty set should score 0")
	}
	if Jaccard(TokenSet{}, TokenSet{}) != 0 {
		t.Error("two empty sets should score 0")
	}
}

// words returns n distinct scoring-eligible words.
func words(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("word%03d", i)
	}
	return out
}

func TestScoreThresholdBoundary(t *testing.T) {
	all := words(20)
	query := strings.Join(all, " ")

	// 17 shared tokens out of a 20-token union: exactly 0.85.
	atThreshold := strings.Join(all[:17], " ")
	if got := Score(query, atThreshold); math.Abs(got-0.85) > 1e-9 {
		t.Errorf("score = %f, want exactly 0.85", got)
	}

	// 16 shared out of 20: 0.80, strictly below.
	below := strings.Join(all[:16], " ")
	if got := Score(query, below); got >= 0.85 {
		t.Errorf("score = %f, want below 0.85", got)
	}
}

func TestScoreLengthRatioReject(t *testing.T) {
	short := "capital france"
	long := strings.Repeat("capital france paris europe ", 10)
	if got := Score(short, long); got != 0 {
		t.Errorf("score = %f, want 0 for a >3:1 length ratio", got)
	}
	// At exactly 3:1 the pair is still scored.
	a := strings.Repeat("x", 10)
	b := strings.Repeat("x", 30)
	if !lengthRatioOK(len(a), len(b)) {
		t.Error("exact 3:1 ratio should pass the guard")
	}
	if lengthRatioOK(10, 31) {
		t.Error("ratio beyond 3:1 should fail the guard")
	}
	if lengthRatioOK(0, 10) {
		t.Error("zero-length side should fail the guard")
	}
}

func TestDownsampleDeterministic(t *testing.T) {
	tokens := words(450)
	a := downsample(tokens)
	b := downsample(tokens)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("downsample is not deterministic")
	}
	if len(a) > maxTokens {
		t.Errorf("downsample kept %d tokens, cap is %d", len(a), maxTokens)
	}
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		seen[tok] = struct{}{}
	}
	for _, tok := range a {
		if _, ok := seen[tok]; !ok {
			t.Errorf("downsample produced token %q not in the input", tok)
		}
	}
}

func TestDownsampleShortInputUntouched(t *testing.T) {
	tokens := words(maxTokens)
	if got := downsample(tokens); !reflect.DeepEqual(got, tokens) {
		t.Error("input at the cap should pass through unchanged")
	}
}

func TestScorerReuse(t *testing.T) {
	s := NewScorer("What is the capital of France?")
	if s.Empty() {
		t.Fatal("scorer should have tokens")
	}
	one := s.Score("what is the capital of france")
	two := s.Score("what is the capital of france")
	if one != two {
		t.Error("scorer is not stable across calls")
	}
	if one != 1.0 {
		t.Errorf("identical normalized questions scored %f, want 1.0", one)
	}
	if NewScorer("of at in").Empty() != true {
		t.Error("stop-word-only query should have an empty scorer")
	}
}

func TestIndexAddRemoveCandidates(t *testing.T) {
	ix := NewIndex()
	ix.Add("k1", Tokenize("What is the capital of France"))
	ix.Add("k2", Tokenize("Best pizza in Naples"))
	ix.Add("k3", Tokenize("Capital city of France"))

	cands := ix.Candidates(Tokenize("capital of france"))
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2: %v", len(cands), cands)
	}
	if cands["k1"] != 2 || cands["k3"] != 2 {
		t.Errorf("overlap counts = %v, want 2 for k1 and k3", cands)
	}
	if _, ok := cands["k2"]; ok {
		t.Error("unrelated key surfaced as a candidate")
	}

	ix.Remove("k1", Tokenize("What is the capital of France"))
	cands = ix.Candidates(Tokenize("capital of france"))
	if _, ok := cands["k1"]; ok {
		t.Error("removed key still surfaced as a candidate")
	}

	ix.Remove("k3", Tokenize("Capital city of France"))
	ix.Remove("k2", Tokenize("Best pizza in Naples"))
	if ix.TokenCount() != 0 {
		t.Errorf("token count = %d after removing all keys, want 0", ix.TokenCount())
	}
}

func TestIndexDuplicateQueryTokens(t *testing.T) {
	ix := NewIndex()
	ix.Add("k1", []string{"france", "capital"})
	cands := ix.Candidates([]string{"france", "france", "france"})
	if cands["k1"] != 1 {
		t.Errorf("overlap = %d, want 1 for repeated query tokens", cands["k1"])
	}
}
