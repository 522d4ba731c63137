package service

import (
	"encoding/json"
	"fmt"
)

// JobResult is a provider status document reduced to what the poll and
// webhook paths need
type JobResult struct {
	AudioURL string
	Complete bool
}

// Ready reports whether the job finished with a usable audio URL. A URL
// without the completion marker, or the marker without a URL, is not ready.
func (r JobResult) Ready() bool {
	return r.Complete && r.AudioURL != ""
}

// maxWrapDepth is how many nested "data" objects may wrap the payload
const maxWrapDepth = 2

type jsonObject = map[string]any

// NormalizeJobStatus reads the audio URL and completion marker from a status
// or callback payload. The payload may be wrapped in up to two "data"
// objects, and the job outputs may be a sequence or a single object.
//
// URL lookup order: first element of an output sequence, starting at the
// innermost level; then an audio URL field on a nested level; then the
// top-level field.
func NormalizeJobStatus(body []byte) (JobResult, error) {
	var root jsonObject
	if err := json.Unmarshal(body, &root); err != nil {
		return JobResult{}, fmt.Errorf("decode job status: %w", err)
	}
	if root == nil {
		return JobResult{}, fmt.Errorf("decode job status: empty document")
	}

	levels := wrapLevels(root)

	var result JobResult
	for _, level := range levels {
		if isCompleteMarker(level) {
			result.Complete = true
			break
		}
	}

	// sequence field, innermost first
	for i := len(levels) - 1; i >= 0 && result.AudioURL == ""; i-- {
		result.AudioURL = firstOutputURL(levels[i])
	}

	// bare object field on a nested level, innermost first
	for i := len(levels) - 1; i >= 1 && result.AudioURL == ""; i-- {
		result.AudioURL = audioURLField(levels[i])
	}

	if result.AudioURL == "" {
		result.AudioURL = audioURLField(root)
	}

	return result, nil
}

// ExtractJobID returns the provider job id of a callback payload, or "" when
// none is present
func ExtractJobID(body []byte) (string, error) {
	var root jsonObject
	if err := json.Unmarshal(body, &root); err != nil {
		return "", fmt.Errorf("decode callback: %w", err)
	}

	if data, ok := root["data"].(jsonObject); ok {
		if id := stringField(data, "task_id", "taskId"); id != "" {
			return id, nil
		}
	}
	return stringField(root, "task_id", "taskId"), nil
}

// wrapLevels returns the root followed by each nested "data" object
func wrapLevels(root jsonObject) []jsonObject {
	levels := []jsonObject{root}
	current := root
	for depth := 0; depth < maxWrapDepth; depth++ {
		next, ok := current["data"].(jsonObject)
		if !ok {
			break
		}
		levels = append(levels, next)
		current = next
	}
	return levels
}

func isCompleteMarker(level jsonObject) bool {
	if v, ok := level["callbackType"].(string); ok && v == "complete" {
		return true
	}
	if v, ok := level["status"].(string); ok && v == "SUCCESS" {
		return true
	}
	return false
}

// firstOutputURL reads the first element of the level's output sequence.
// Callbacks carry it as "data"; status queries as "response.sunoData".
func firstOutputURL(level jsonObject) string {
	if seq, ok := level["data"].([]any); ok && len(seq) > 0 {
		if item, ok := seq[0].(jsonObject); ok {
			return audioURLField(item)
		}
	}
	if resp, ok := level["response"].(jsonObject); ok {
		if seq, ok := resp["sunoData"].([]any); ok && len(seq) > 0 {
			if item, ok := seq[0].(jsonObject); ok {
				return audioURLField(item)
			}
		}
	}
	return ""
}

func audioURLField(obj jsonObject) string {
	return stringField(obj, "audio_url", "audioUrl")
}

func stringField(obj jsonObject, keys ...string) string {
	for _, k := range keys {
		if v, ok := obj[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
