package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songlesson/api/internal/model"
)

type fakeTextGenerator struct {
	response   string
	err        error
	configured bool

	calls  int
	system string
	user   string
}

func (f *fakeTextGenerator) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.system = system
	f.user = user
	return f.response, f.err
}

func (f *fakeTextGenerator) IsConfigured() bool { return f.configured }

func TestParseLyricsResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want model.LyricsResult
	}{
		{
			name: "plain json",
			in:   `{"title":"Water Song","topic":"Water Cycle","lyrics":"Rain, rain","rhythmPattern":"6/8","culturalNotes":"Highlife guitar"}`,
			want: model.LyricsResult{Title: "Water Song", Topic: "Water Cycle", Lyrics: "Rain, rain", RhythmPattern: "6/8", CulturalNotes: "Highlife guitar"},
		},
		{
			name: "json code fence",
			in:   "```json\n{\"title\":\"Fence\",\"topic\":\"Maths\",\"lyrics\":\"One two\"}\n```",
			want: model.LyricsResult{Title: "Fence", Topic: "Maths", Lyrics: "One two"},
		},
		{
			name: "bare code fence",
			in:   "```\n{\"title\":\"Bare\"}\n```",
			want: model.LyricsResult{Title: "Bare", Topic: model.DefaultSongTopic},
		},
		{
			name: "missing fields default individually",
			in:   `{"lyrics":"Only lyrics here"}`,
			want: model.LyricsResult{Title: model.DefaultSongTitle, Topic: model.DefaultSongTopic, Lyrics: "Only lyrics here"},
		},
		{
			name: "lyrics as lines",
			in:   `{"title":"Lines","lyrics":["first line","second line"]}`,
			want: model.LyricsResult{Title: "Lines", Topic: model.DefaultSongTopic, Lyrics: "first line\nsecond line"},
		},
		{
			name: "json wrapped in prose",
			in:   `Here is your song: {"title":"Wrapped","topic":"Birds"} Enjoy!`,
			want: model.LyricsResult{Title: "Wrapped", Topic: "Birds"},
		},
		{
			name: "malformed json keeps raw text",
			in:   "Verse one: the sun is hot\nChorus: shine shine shine",
			want: model.LyricsResult{Title: model.DefaultSongTitle, Topic: model.DefaultSongTopic, Lyrics: "Verse one: the sun is hot\nChorus: shine shine shine"},
		},
		{
			name: "truncated json keeps raw text",
			in:   `{"title":"Cut off","lyrics":"never fin`,
			want: model.LyricsResult{Title: model.DefaultSongTitle, Topic: model.DefaultSongTopic, Lyrics: `{"title":"Cut off","lyrics":"never fin`},
		},
		{
			name: "json null keeps raw text",
			in:   "null",
			want: model.LyricsResult{Title: model.DefaultSongTitle, Topic: model.DefaultSongTopic, Lyrics: "null"},
		},
		{
			name: "json array keeps raw text",
			in:   `["one","two"]`,
			want: model.LyricsResult{Title: model.DefaultSongTitle, Topic: model.DefaultSongTopic, Lyrics: `["one","two"]`},
		},
		{
			name: "empty text",
			in:   "   \n",
			want: model.LyricsResult{Title: model.DefaultSongTitle, Topic: model.DefaultSongTopic},
		},
		{
			name: "empty title falls back",
			in:   `{"title":"  ","topic":"Soil"}`,
			want: model.LyricsResult{Title: model.DefaultSongTitle, Topic: "Soil"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLyricsResponse(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestLyricsService_Generate(t *testing.T) {
	gen := &fakeTextGenerator{
		configured: true,
		response:   `{"title":"Photosynthesis","topic":"Plants","lyrics":"Leaves drink light"}`,
	}
	svc := NewLyricsService(gen, "Yoruba")

	got, err := svc.Generate(context.Background(), "Plants use sunlight to make food.", model.StyleTraditional, model.ComplexitySimple)
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis", got.Title)
	assert.Equal(t, "Leaves drink light", got.Lyrics)

	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.system, "Yoruba")
	assert.Contains(t, gen.user, "Plants use sunlight to make food.")
	assert.Contains(t, gen.user, "traditional Yoruba folk")
	assert.Contains(t, gen.user, "simple")
}

func TestLyricsService_GenerateMalformedOutput(t *testing.T) {
	gen := &fakeTextGenerator{configured: true, response: "not json at all"}
	svc := NewLyricsService(gen, "")

	got, err := svc.Generate(context.Background(), "Fractions split a whole.", model.StyleFusion, model.ComplexityAdvanced)
	require.NoError(t, err)
	assert.Equal(t, "not json at all", got.Lyrics)
	assert.Equal(t, model.DefaultSongTitle, got.Title)
	assert.Equal(t, model.DefaultSongTopic, got.Topic)
}

func TestLyricsService_GenerateUpstreamError(t *testing.T) {
	upstream := errors.New("429 rate limited")
	gen := &fakeTextGenerator{configured: true, err: upstream}
	svc := NewLyricsService(gen, "")

	_, err := svc.Generate(context.Background(), "Fractions split a whole.", model.StyleFusion, model.ComplexityAdvanced)
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.ErrorIs(t, err, upstream)
}

func TestLyricsService_MockWhenUnconfigured(t *testing.T) {
	gen := &fakeTextGenerator{configured: false}
	svc := NewLyricsService(gen, "Ghanaian")

	got, err := svc.Generate(context.Background(), "Volcanoes erupt when magma rises. Lava cools into rock.", model.StyleContemporary, model.ComplexitySimple)
	require.NoError(t, err)
	assert.Zero(t, gen.calls)
	assert.Equal(t, "Volcanoes erupt when", got.Topic)
	assert.Equal(t, "The Volcanoes erupt when Song", got.Title)
	assert.True(t, strings.HasPrefix(got.Lyrics, "Volcanoes erupt when magma rises,\nLava cools into rock"))
	assert.Contains(t, got.CulturalNotes, "Ghanaian")

	nilSvc := NewLyricsService(nil, "")
	got, err = nilSvc.Generate(context.Background(), "Seeds grow into plants.", model.StyleTraditional, model.ComplexitySimple)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Lyrics)
}

func TestLyricsService_StyleDescriptor(t *testing.T) {
	svc := NewLyricsService(nil, "Zulu")
	assert.Contains(t, svc.StyleDescriptor(model.StyleTraditional), "traditional Zulu folk")
	assert.Contains(t, svc.StyleDescriptor(model.StyleContemporary), "contemporary Zulu pop")
	assert.Contains(t, svc.StyleDescriptor(model.StyleFusion), "Zulu fusion")
}
