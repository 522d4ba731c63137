package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songlesson/api/internal/model"
)

func TestNewValidator_SongTiers(t *testing.T) {
	v := NewValidator()
	content := "Plants turn sunlight into food."

	for _, style := range model.ValidStyles {
		for _, complexity := range model.ValidComplexities {
			req := model.GenerateSongRequest{Content: content, Style: style, Complexity: complexity}
			assert.NoError(t, v.Struct(&req), "%s/%s", style, complexity)
		}
	}

	err := v.Struct(&model.GenerateSongRequest{Content: content, Style: "jazz", Complexity: model.ComplexitySimple})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"Style": "songstyle"}, formatValidationErrors(err))

	err = v.Struct(&model.GenerateSongRequest{Content: content, Style: model.StyleFusion, Complexity: "expert"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"Complexity": "complexity"}, formatValidationErrors(err))
}
