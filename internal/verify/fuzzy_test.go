// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"testing"
)

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		atLeast int
		atMost  int
	}{
		{name: "identical ignoring case", a: "Attention Is All You Need", b: "attention is all you need", atLeast: 100, atMost: 100},
		{name: "punctuation ignored", a: "BERT: Pre-training of Deep Bidirectional Transformers", b: "BERT Pre training of deep bidirectional transformers", atLeast: 100, atMost: 100},
		{name: "word order ignored", a: "learning deep residual", b: "Deep Residual Learning", atLeast: 100, atMost: 100},
		{name: "subset of words", a: "Deep residual learning", b: "Deep Residual Learning for Image Recognition", atLeast: 100, atMost: 100},
		{name: "one typo", a: "Generative Adversarial Networks", b: "Generative Adversarial Netwroks", atLeast: 97, atMost: 97},
		{name: "unrelated", a: "Graph neural networks", b: "Quantum chromodynamics on the lattice", atLeast: 28, atMost: 28},
		{name: "one word differs", a: "Learning representations for vision", b: "Learning representations for robotics", atLeast: 89, atMost: 89},
		{name: "inserted phrase", a: "Neural machine translation by jointly learning", b: "Neural machine translation with attention learning", atLeast: 86, atMost: 86},
		{name: "pronoun swapped", a: "Attention Is All You Need", b: "Attention is all we need", atLeast: 93, atMost: 93},
		{name: "empty left", a: "", b: "anything", atLeast: 0, atMost: 0},
		{name: "only punctuation", a: "?!", b: "?!", atLeast: 0, atMost: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenSetRatio(tt.a, tt.b)
			if got < tt.atLeast || got > tt.atMost {
				t.Errorf("TokenSetRatio(%q, %q) = %d, want in [%d, %d]", tt.a, tt.b, got, tt.atLeast, tt.atMost)
			}
		})
	}
}

func TestTokenSetRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Attention Is All You Need", "Attention is all we need"},
		{"Mastering the game of Go", "Mastering chess and shogi by self-play"},
	}
	for _, p := range pairs {
		if x, y := TokenSetRatio(p[0], p[1]), TokenSetRatio(p[1], p[0]); x != y {
			t.Errorf("asymmetric: %d vs %d for %q", x, y, p)
		}
	}
}

func TestRatio(t *testing.T) {
	if got := ratio("kitten", "sitting"); got != 62 {
		t.Errorf("ratio(kitten, sitting) = %d, want 62", got)
	}
	if got := ratio("ab", "ba"); got != 50 {
		t.Errorf("ratio(ab, ba) = %d, want 50", got)
	}
	if got := ratio("", ""); got != 0 {
		t.Errorf("ratio of empty strings = %d, want 0", got)
	}
}
