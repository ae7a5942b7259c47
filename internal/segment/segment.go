// internal/segment/segment.go
package segment

import (
	"strings"
	"unicode/utf8"
)

// Target lengths tuned for narration pacing: intro scenes cut faster than
// body scenes, so intro segments are shorter.
const (
	IntroTargetLength = 80
	BodyTargetLength  = 120
)

// Split cuts narration text into scene-sized chunks. Sentences are detected
// by their terminators (. ! ?) with an optional trailing quote; consecutive
// short sentences are greedily grouped until targetLength runes, and a single
// sentence longer than targetLength still becomes its own chunk. Text is
// never cut inside a sentence. The concatenation of the result, joined with
// single spaces, preserves every token of the input.
func Split(text string, targetLength int) []string {
	if targetLength <= 0 {
		return nil
	}

	// Newlines become spaces so paragraph breaks cannot truncate a sentence.
	sanitized := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	if strings.TrimSpace(sanitized) == "" {
		return nil
	}

	sentences := splitSentences(sanitized)
	if len(sentences) == 0 {
		return nil
	}

	var segments []string
	var group strings.Builder
	groupLen := 0

	for _, sentence := range sentences {
		sentenceLen := utf8.RuneCountInString(sentence)
		switch {
		case groupLen == 0:
			group.WriteString(sentence)
			groupLen = sentenceLen
		case groupLen+sentenceLen < targetLength:
			group.WriteString(" ")
			group.WriteString(sentence)
			// Account for the joining space so the group length is the
			// length of the joined string, not the sum of its sentences.
			groupLen += 1 + sentenceLen
		default:
			segments = append(segments, group.String())
			group.Reset()
			group.WriteString(sentence)
			groupLen = sentenceLen
		}
	}
	if groupLen > 0 {
		segments = append(segments, group.String())
	}

	return segments
}

// Partition splits an intro and a body script with their respective target
// lengths and concatenates the results. introCount is how many of the
// returned segments came from the intro.
func Partition(intro, body string) (segments []string, introCount int) {
	introSegments := Split(intro, IntroTargetLength)
	bodySegments := Split(body, BodyTargetLength)

	segments = make([]string, 0, len(introSegments)+len(bodySegments))
	segments = append(segments, introSegments...)
	segments = append(segments, bodySegments...)
	return segments, len(introSegments)
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isTrailingQuote(r rune) bool {
	switch r {
	case '"', '\'', '”', '’', '」', '』':
		return true
	}
	return false
}

// splitSentences scans for runs of non-terminator runes followed by one or
// more terminators and an optional closing quote. A trailing run with no
// terminator is kept as the final sentence. Results are trimmed; empty
// results are dropped.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)

	start := 0
	i := 0
	for i < len(runes) {
		if !isTerminator(runes[i]) {
			i++
			continue
		}
		// Consume the full terminator run, e.g. "?!" or "...".
		for i < len(runes) && isTerminator(runes[i]) {
			i++
		}
		if i < len(runes) && isTrailingQuote(runes[i]) {
			i++
		}
		if s := strings.TrimSpace(string(runes[start:i])); s != "" {
			sentences = append(sentences, s)
		}
		start = i
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
