package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"releases/2025/0001.md", "0001.md"},
		{"README.md", "README.md"},
		{"a/b/", "b"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, TitleFromPath(tt.path))
		})
	}
}

func TestNewNoContext(t *testing.T) {
	a := NewNoContext(0.4)

	assert.Equal(t, AnswerNoContext, a.Kind)
	assert.Equal(t, InsufficientInformationAnswer, a.Text)
	assert.NotNil(t, a.Sources)
	assert.Empty(t, a.Sources)
	assert.Equal(t, 0.4, a.MaxSimilarity)
	assert.False(t, a.HasContext())
}

func TestNewAnswered(t *testing.T) {
	a := NewAnswered("Oswald.", []Source{{Title: "a.md", URL: "u", Similarity: 0.8}})

	assert.Equal(t, AnswerAnswered, a.Kind)
	assert.True(t, a.HasContext())
	assert.Len(t, a.Sources, 1)
	assert.Zero(t, a.MaxSimilarity)

	empty := NewAnswered("x", nil)
	assert.NotNil(t, empty.Sources)
}
