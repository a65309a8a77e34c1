// Package enhance post-processes raw transcripts for readability: speaker
// labeling, filler-word removal, profanity masking, and paragraph
// formatting. All stages are string-based and best-effort; a stage that
// fails passes its input through unchanged, because the raw transcript is
// still valuable. Speaker labeling is cue-driven only: turns are split on
// provider-supplied "Speaker N" markers and renumbered in order of first
// appearance. Without cues no speakers are invented; the text is treated
// as a single unlabeled speaker.
package enhance

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/orendrasingh/video-transcription/internal/logger"
)

// Options selects which stages run. Zero value runs everything.
type Options struct {
	SkipSpeakers  bool
	SkipFillers   bool
	SkipProfanity bool
	SkipFormat    bool
}

// Enhancer applies the enhancement pipeline in fixed stage order.
type Enhancer struct {
	fillerRe    *regexp.Regexp
	profanityRe *regexp.Regexp
	speakerRe   *regexp.Regexp
	spaceRe     *regexp.Regexp
	punctRe     *regexp.Regexp
	sentenceRe  *regexp.Regexp

	sentencesPerParagraph int
}

// New builds an enhancer. sentencesPerParagraph bounds paragraph length
// during formatting; values below 1 default to 4.
func New(sentencesPerParagraph int) *Enhancer {
	if sentencesPerParagraph < 1 {
		sentencesPerParagraph = 4
	}
	return &Enhancer{
		fillerRe:              regexp.MustCompile(`(?i)\b(?:` + strings.Join(fillerLexicon, "|") + `)\b[,]?[ \t]*`),
		profanityRe:           regexp.MustCompile(`(?i)\b(?:` + strings.Join(profanityLexicon, "|") + `)\b`),
		speakerRe:             regexp.MustCompile(`(?i)\bspeaker\s*(\d+)\s*[:\-]`),
		spaceRe:               regexp.MustCompile(`[ \t]{2,}`),
		punctRe:               regexp.MustCompile(`[ \t]+([,.!?;:])`),
		sentenceRe:            regexp.MustCompile(`[.!?]['")\]]?\s+`),
		sentencesPerParagraph: sentencesPerParagraph,
	}
}

// Enhance runs the configured stages over raw and returns the result.
// Stage failures are logged and skipped; Enhance itself never fails.
func (e *Enhancer) Enhance(ctx context.Context, raw string, opts Options) string {
	text := raw
	stages := []struct {
		name string
		skip bool
		fn   func(string) (string, error)
	}{
		{"speakers", opts.SkipSpeakers, e.labelSpeakers},
		{"fillers", opts.SkipFillers, e.removeFillers},
		{"profanity", opts.SkipProfanity, e.maskProfanity},
		{"format", opts.SkipFormat, e.formatText},
	}
	for _, stage := range stages {
		if stage.skip {
			continue
		}
		text = e.apply(ctx, stage.name, text, stage.fn)
	}
	return text
}

// apply runs one stage, recovering from panics and falling back to the
// stage's input on any failure.
func (e *Enhancer) apply(ctx context.Context, name, text string, fn func(string) (string, error)) (out string) {
	defer func() {
		if r := recover(); r != nil {
			logger.CtxWarn(ctx, "enhancement stage %s panicked: %v", name, r)
			out = text
		}
	}()
	result, err := fn(text)
	if err != nil {
		logger.CtxWarn(ctx, "enhancement stage %s failed: %v", name, err)
		return text
	}
	return result
}

// labelSpeakers normalizes provider diarization cues into sequentially
// numbered turns. Text without cues is returned unchanged.
func (e *Enhancer) labelSpeakers(text string) (string, error) {
	matches := e.speakerRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	renumber := make(map[string]int)
	var sb strings.Builder

	if preamble := strings.TrimSpace(text[:matches[0][0]]); preamble != "" {
		sb.WriteString(preamble)
		sb.WriteString("\n\n")
	}

	for i, m := range matches {
		orig := text[m[2]:m[3]]
		label, ok := renumber[orig]
		if !ok {
			label = len(renumber) + 1
			renumber[orig] = label
		}

		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		turn := strings.TrimSpace(text[m[1]:end])
		if turn == "" {
			continue
		}
		sb.WriteString("Speaker " + strconv.Itoa(label) + ": " + turn)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

// removeFillers strips lexicon entries on whole-word boundaries and tidies
// the punctuation left behind.
func (e *Enhancer) removeFillers(text string) (string, error) {
	out := e.fillerRe.ReplaceAllString(text, "")
	out = e.punctRe.ReplaceAllString(out, "$1")
	out = e.spaceRe.ReplaceAllString(out, " ")
	// a removed leading filler can leave an orphaned comma at line start
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, ", ")
	}
	return strings.Join(lines, "\n"), nil
}

// maskProfanity replaces lexicon matches with the fixed mask.
func (e *Enhancer) maskProfanity(text string) (string, error) {
	return e.profanityRe.ReplaceAllString(text, profanityMask), nil
}

// formatText normalizes whitespace and breaks long unstructured text into
// paragraphs every few sentences. Speaker-labeled text already carries its
// own structure and only gets whitespace normalization.
func (e *Enhancer) formatText(text string) (string, error) {
	out := strings.ReplaceAll(text, "\r\n", "\n")
	out = e.spaceRe.ReplaceAllString(out, " ")
	out = regexp.MustCompile(`\n{3,}`).ReplaceAllString(out, "\n\n")
	out = strings.TrimSpace(out)

	if strings.Contains(out, "\n") || e.speakerRe.MatchString(out) {
		return out, nil
	}

	// single unbroken block: insert paragraph breaks
	ends := e.sentenceRe.FindAllStringIndex(out, -1)
	if len(ends) < e.sentencesPerParagraph {
		return out, nil
	}
	var sb strings.Builder
	prev := 0
	for i, end := range ends {
		if (i+1)%e.sentencesPerParagraph == 0 {
			sb.WriteString(strings.TrimSpace(out[prev:end[1]]))
			sb.WriteString("\n\n")
			prev = end[1]
		}
	}
	sb.WriteString(strings.TrimSpace(out[prev:]))
	return strings.TrimSpace(sb.String()), nil
}

// Mask exposes the profanity mask for consumers that need to recognize it.
func Mask() string { return profanityMask }
