package services

import (
	"regexp"
	"strings"
)

// contentStartSkip drops the likely course title / header / date block at the
// top of a lecture PDF so questions target actual body content.
const contentStartSkip = 400

const (
	defaultChunkLen     = 8000
	defaultChunkOverlap = 300
)

func contentOnlyText(text string) string {
	if len(text) < contentStartSkip {
		return strings.TrimSpace(text)
	}

	start := contentStartSkip
	// Try to start after a newline so a word is not cut in half.
	if newline := strings.Index(text[contentStartSkip/2:], "\n"); newline >= 0 {
		abs := contentStartSkip/2 + newline
		if abs < contentStartSkip+200 {
			start = abs + 1
		}
	}

	if body := strings.TrimSpace(text[start:]); body != "" {
		return body
	}
	return strings.TrimSpace(text)
}

// chunkText splits text into overlapping chunks, breaking at sentence
// boundaries where possible, so each difficulty batch can draw on a
// different slice of the document.
func chunkText(text string, maxChunkLen, overlap int) []string {
	if len(text) <= maxChunkLen {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + maxChunkLen
		if end > len(text) {
			end = len(text)
		}
		chunk := text[start:end]

		if lastPeriod := strings.LastIndex(chunk, "."); lastPeriod > maxChunkLen/2 {
			chunk = chunk[:lastPeriod+1]
			end = start + len(chunk)
		}
		chunks = append(chunks, chunk)

		if end >= len(text) {
			break
		}
		start = end - overlap
	}
	return chunks
}

var (
	codeTokenPattern = regexp.MustCompile(`(?i)←|:=|def\s+|function\s*\(|Merge\s*\(|len\s*\(`)
	codeHeadPattern  = regexp.MustCompile(`^\s*\w+\s*\([^)]*\)\s*:`)
	numericLine      = regexp.MustCompile(`^[\d\s:/-]+$`)
	sentenceSplit    = regexp.MustCompile(`[.!?]\s+`)
)

// looksLikeCode filters pseudocode fragments that make unreadable quiz
// options.
func looksLikeCode(s string) bool {
	if len(s) < 10 {
		return true
	}
	if codeTokenPattern.MatchString(s) || codeHeadPattern.MatchString(s) {
		return true
	}
	sym := 0
	for _, c := range s {
		if strings.ContainsRune("()[]{}=<>", c) {
			sym++
		}
	}
	return sym >= 3 || (sym >= 2 && len(s) < 60)
}

// sentencesFromContent extracts substantive prose sentences from body text,
// skipping headers and code-like lines.
func sentencesFromContent(text string, minLen, maxSentences int) []string {
	content := contentOnlyText(text)
	if len(content) < 100 {
		content = text
	}

	raw := sentenceSplit.Split(content, -1)
	var out []string
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if len(s) < minLen {
			continue
		}
		if numericLine.MatchString(s) || looksLikeCode(s) {
			continue
		}
		out = append(out, s)
		if len(out) >= maxSentences {
			break
		}
	}

	// If filtering was too aggressive, add back longer fragments (still no code).
	if len(out) < 5 {
		seen := make(map[string]bool, len(out))
		for _, s := range out {
			seen[s] = true
		}
		for _, s := range raw {
			s = strings.TrimSpace(s)
			if seen[s] || len(s) < minLen || looksLikeCode(s) {
				continue
			}
			out = append(out, s)
			if len(out) >= maxSentences {
				break
			}
		}
	}
	return out
}

// cleanOptionText trims a sentence into a readable multiple-choice option.
func cleanOptionText(sentence string, maxLen int) string {
	s := strings.TrimSpace(sentence)
	if len(s) <= maxLen {
		return s
	}
	for _, sep := range []string{". ", ", "} {
		limit := maxLen + 20
		if limit > len(s) {
			limit = len(s)
		}
		if idx := strings.Index(s[20:limit], sep); idx >= 0 && idx+20 > 30 {
			return strings.TrimSpace(s[:idx+20+1])
		}
	}
	return strings.TrimSpace(s[:maxLen-1]) + "…"
}
