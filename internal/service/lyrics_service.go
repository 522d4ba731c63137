package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/songlesson/api/internal/client"
	"github.com/songlesson/api/internal/logging"
	"github.com/songlesson/api/internal/model"
)

// LyricsGenerator defines the interface for lesson lyrics generation
type LyricsGenerator interface {
	Generate(ctx context.Context, content string, style model.Style, complexity model.Complexity) (*model.LyricsResult, error)
	StyleDescriptor(style model.Style) string
}

// LyricsService turns lesson content into song lyrics using Groq AI
type LyricsService struct {
	textClient      client.TextGenerator
	culturalContext string
	log             logging.Logger
}

// NewLyricsService creates a new lyrics service. A nil or unconfigured
// client makes Generate return a deterministic mock.
func NewLyricsService(textClient client.TextGenerator, culturalContext string) *LyricsService {
	if culturalContext == "" {
		culturalContext = "West African"
	}
	return &LyricsService{
		textClient:      textClient,
		culturalContext: culturalContext,
		log:             logging.New("lyrics"),
	}
}

// Generate produces song fields for the given lesson. Only a failed call to
// the text-generation service is an error; unusable output falls back to
// defaults.
func (s *LyricsService) Generate(ctx context.Context, content string, style model.Style, complexity model.Complexity) (*model.LyricsResult, error) {
	if s.textClient == nil || !s.textClient.IsConfigured() {
		return s.generateMock(content, style), nil
	}

	response, err := s.textClient.ChatCompletion(ctx, s.buildSystemPrompt(), s.buildGeneratePrompt(content, style, complexity))
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	return ParseLyricsResponse(response), nil
}

// StyleDescriptor is the musical style text sent to the audio renderer
func (s *LyricsService) StyleDescriptor(style model.Style) string {
	switch style {
	case model.StyleContemporary:
		return fmt.Sprintf("contemporary %s pop, upbeat, modern production, catchy chorus", s.culturalContext)
	case model.StyleFusion:
		return fmt.Sprintf("%s fusion, traditional percussion with modern instruments, educational", s.culturalContext)
	default:
		return fmt.Sprintf("traditional %s folk, acoustic percussion, call and response, educational", s.culturalContext)
	}
}

func (s *LyricsService) buildSystemPrompt() string {
	return fmt.Sprintf(`You are an educational songwriter rooted in %s musical traditions.
You turn classroom lessons into songs that help students remember the material.
Always output your response as valid JSON in the exact format requested.
Do not include any text outside the JSON structure.`, s.culturalContext)
}

func (s *LyricsService) buildGeneratePrompt(content string, style model.Style, complexity model.Complexity) string {
	return fmt.Sprintf(`Write a song that teaches the following lesson.

Lesson content:
%s

Musical style: %s
Language level: %s

Keep every key fact from the lesson accurate. Use a chorus that repeats the main idea.

Output as JSON: {"title": "song title", "topic": "lesson topic in a few words", "lyrics": "full lyrics with verses and chorus separated by blank lines", "rhythmPattern": "suggested rhythm or beat pattern", "culturalNotes": "notes on the cultural elements used"}`,
		content, styleGuidance(style, s.culturalContext), complexityGuidance(complexity))
}

func styleGuidance(style model.Style, culture string) string {
	switch style {
	case model.StyleContemporary:
		return fmt.Sprintf("contemporary %s popular music with modern rhythms and a hook students will sing along to", culture)
	case model.StyleFusion:
		return fmt.Sprintf("a fusion of traditional %s elements with contemporary genres", culture)
	default:
		return fmt.Sprintf("traditional %s folk music with call-and-response, proverbs and storytelling", culture)
	}
}

func complexityGuidance(complexity model.Complexity) string {
	switch complexity {
	case model.ComplexityIntermediate:
		return "intermediate; moderate vocabulary, verses of 6-8 lines, some subject terminology explained in context"
	case model.ComplexityAdvanced:
		return "advanced; rich vocabulary, longer verses, precise subject terminology and deeper concepts"
	default:
		return "simple; short lines, everyday words, lots of repetition, suitable for young learners"
	}
}

// ParseLyricsResponse converts raw model output into song fields. Code fences
// are stripped before parsing. Output that is not a JSON object becomes the
// lyrics verbatim, and missing fields fall back to defaults one by one.
func ParseLyricsResponse(text string) *model.LyricsResult {
	result := &model.LyricsResult{
		Title: model.DefaultSongTitle,
		Topic: model.DefaultSongTopic,
	}

	body := stripCodeFence(text)
	if body == "" {
		return result
	}

	var parsed struct {
		Title         lyricText `json:"title"`
		Topic         lyricText `json:"topic"`
		Lyrics        lyricText `json:"lyrics"`
		RhythmPattern lyricText `json:"rhythmPattern"`
		CulturalNotes lyricText `json:"culturalNotes"`
	}
	if err := decodeObject(body, &parsed); err != nil {
		if err := decodeObject(extractJSON(body), &parsed); err != nil {
			result.Lyrics = text
			return result
		}
	}

	if v := strings.TrimSpace(string(parsed.Title)); v != "" {
		result.Title = v
	}
	if v := strings.TrimSpace(string(parsed.Topic)); v != "" {
		result.Topic = v
	}
	result.Lyrics = string(parsed.Lyrics)
	result.RhythmPattern = string(parsed.RhythmPattern)
	result.CulturalNotes = string(parsed.CulturalNotes)
	return result
}

// lyricText accepts a JSON string or an array of lines
type lyricText string

func (t *lyricText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = lyricText(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(b, &lines); err == nil {
		*t = lyricText(strings.Join(lines, "\n"))
		return nil
	}
	// numbers, objects and null carry no usable text
	*t = ""
	return nil
}

// stripCodeFence removes a surrounding ``` or ```json fence
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		if tag := strings.TrimSpace(s[:nl]); tag == "" || isWord(tag) {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// decodeObject unmarshals s into v only when s is a JSON object
func decodeObject(s string, v any) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("lyrics response is not a JSON object")
	}
	return json.Unmarshal([]byte(s), v)
}

// extractJSON attempts to extract JSON from a response that may contain extra text
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")

	if start != -1 && end != -1 && end > start {
		return s[start : end+1]
	}
	return s
}

// Mock implementation for development/testing
func (s *LyricsService) generateMock(content string, style model.Style) *model.LyricsResult {
	topic := mockTopic(content)

	var lines []string
	for _, sentence := range strings.FieldsFunc(content, func(r rune) bool { return r == '.' || r == '\n' || r == '!' || r == '?' }) {
		if sentence = strings.TrimSpace(sentence); sentence != "" {
			lines = append(lines, sentence)
		}
		if len(lines) == 4 {
			break
		}
	}
	chorus := fmt.Sprintf("Sing it loud, sing it clear,\n%s is what we learn here!", topic)
	lyrics := strings.Join(lines, ",\n") + "\n\n" + chorus

	s.log.Debugf("text generation not configured, returning mock lyrics for %q", topic)

	return &model.LyricsResult{
		Title:         fmt.Sprintf("The %s Song", topic),
		Topic:         topic,
		Lyrics:        lyrics,
		RhythmPattern: "4/4 call and response, steady clap on 2 and 4",
		CulturalNotes: fmt.Sprintf("Sketch in the %s idiom; %s", s.culturalContext, styleGuidance(style, s.culturalContext)),
	}
}

func mockTopic(content string) string {
	words := strings.Fields(content)
	if len(words) > 3 {
		words = words[:3]
	}
	topic := strings.Trim(strings.Join(words, " "), ".,;:!?")
	if topic == "" {
		return model.DefaultSongTopic
	}
	return topic
}
