package similarity

import (
	"math"
	"testing"
)

func TestScoreIdenticalText(t *testing.T) {
	s := NewTokenSetScorer()
	inputs := []string{
		"hello world",
		"Buy our new shoes today!",
		"a",
	}
	for _, in := range inputs {
		if got := s.Score(in, in); got != 1.0 {
			t.Errorf("Score(%q, %q) = %v, want 1.0", in, in, got)
		}
	}
}

func TestScoreEmptyInputs(t *testing.T) {
	s := NewTokenSetScorer()
	if got := s.Score("", ""); got != 1.0 {
		t.Errorf("Score(empty, empty) = %v, want 1.0", got)
	}
	if got := s.Score("", "hello"); got != 0.0 {
		t.Errorf("Score(empty, non-empty) = %v, want 0.0", got)
	}
	if got := s.Score("hello", ""); got != 0.0 {
		t.Errorf("Score(non-empty, empty) = %v, want 0.0", got)
	}
}

func TestScoreSymmetry(t *testing.T) {
	s := NewTokenSetScorer()
	pairs := [][2]string{
		{"the quick brown fox", "the quick brown dog"},
		{"Check out our summer sale", "Check out our summer sale now"},
		{"apple banana cherry", "xray yonder zebra"},
		{"", "something"},
	}
	for _, p := range pairs {
		ab := s.Score(p[0], p[1])
		ba := s.Score(p[1], p[0])
		if ab != ba {
			t.Errorf("Score(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestScoreNearDuplicateBand(t *testing.T) {
	s := NewTokenSetScorer()
	got := s.Score("the quick brown fox", "the quick brown dog")
	if got < 0.55 || got > 0.80 {
		t.Errorf("near-duplicate score = %v, want within [0.55, 0.80]", got)
	}
}

func TestScoreUnrelatedTexts(t *testing.T) {
	s := NewTokenSetScorer()
	got := s.Score("apple banana cherry", "xray yonder zebra")
	if got >= 0.10 {
		t.Errorf("unrelated score = %v, want < 0.10", got)
	}
}

func TestScoreIgnoresCaseAndPunctuation(t *testing.T) {
	s := NewTokenSetScorer()
	got := s.Score("Buy our new shoes today!", "buy our new shoes today")
	if got != 1.0 {
		t.Errorf("case/punctuation-normalized score = %v, want 1.0", got)
	}
}

func TestScoreWithinUnitInterval(t *testing.T) {
	s := NewTokenSetScorer()
	pairs := [][2]string{
		{"one two three", "three four five"},
		{"repeated repeated words words", "words repeated"},
		{"!!!", "???"},
	}
	for _, p := range pairs {
		got := s.Score(p[0], p[1])
		if math.IsNaN(got) || got < 0 || got > 1 {
			t.Errorf("Score(%q, %q) = %v, want within [0,1]", p[0], p[1], got)
		}
	}
}
