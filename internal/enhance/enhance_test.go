package enhance

import (
	"context"
	"errors"
	"strings"
	"testing"
)

var errFailedStage = errors.New("stage failed")

func TestRemoveFillersWholeWordOnly(t *testing.T) {
	e := New(4)
	ctx := context.Background()

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "simple fillers",
			in:   "Um, I think, uh, we should start.",
			want: "I think, we should start.",
		},
		{
			name: "multi-word phrase",
			in:   "It was, you know, a good talk.",
			want: "It was, a good talk.",
		},
		{
			name: "case insensitive",
			in:   "UM yes ERM no",
			want: "yes no",
		},
		{
			name: "filler inside a word is kept",
			in:   "The Umbrella Corporation uhhhuh was mentioned.",
			want: "The Umbrella Corporation uhhhuh was mentioned.",
		},
		{
			name: "ah stays inside ahead",
			in:   "Go ahead with the plan.",
			want: "Go ahead with the plan.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Enhance(ctx, tc.in, Options{SkipSpeakers: true, SkipProfanity: true, SkipFormat: true})
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMaskProfanity(t *testing.T) {
	e := New(4)
	got := e.Enhance(context.Background(), "That was a damn good shot.",
		Options{SkipSpeakers: true, SkipFillers: true, SkipFormat: true})
	want := "That was a " + Mask() + " good shot."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLabelSpeakersRenumbering(t *testing.T) {
	e := New(4)
	in := "Speaker 4: Welcome everyone. Speaker 7: Thanks for having me. Speaker 4: Let's begin."
	got := e.Enhance(context.Background(), in,
		Options{SkipFillers: true, SkipProfanity: true, SkipFormat: true})

	if !strings.Contains(got, "Speaker 1: Welcome everyone.") {
		t.Errorf("first speaker not renumbered to 1: %q", got)
	}
	if !strings.Contains(got, "Speaker 2: Thanks for having me.") {
		t.Errorf("second speaker not renumbered to 2: %q", got)
	}
	if strings.Count(got, "Speaker 1:") != 2 {
		t.Errorf("recurring speaker should keep its number: %q", got)
	}
	if strings.Contains(got, "Speaker 4") || strings.Contains(got, "Speaker 7") {
		t.Errorf("original numbering leaked through: %q", got)
	}
}

func TestLabelSpeakersNoCuesUnchanged(t *testing.T) {
	e := New(4)
	in := "Just one person talking the whole time."
	got := e.Enhance(context.Background(), in,
		Options{SkipFillers: true, SkipProfanity: true, SkipFormat: true})
	if got != in {
		t.Errorf("text without cues must pass through, got %q", got)
	}
}

func TestFormatParagraphBreaks(t *testing.T) {
	e := New(2)
	in := "First sentence. Second sentence. Third sentence. Fourth sentence. Fifth sentence."
	got := e.Enhance(context.Background(), in,
		Options{SkipSpeakers: true, SkipFillers: true, SkipProfanity: true})

	paragraphs := strings.Split(got, "\n\n")
	if len(paragraphs) != 3 {
		t.Fatalf("got %d paragraphs, want 3: %q", len(paragraphs), got)
	}
	if joined := strings.Join(paragraphs, " "); joined != in {
		t.Errorf("formatting altered the words: %q", joined)
	}
}

func TestSkipOptions(t *testing.T) {
	e := New(4)
	in := "Um, Speaker 3: that damn thing broke."
	got := e.Enhance(context.Background(), in,
		Options{SkipSpeakers: true, SkipFillers: true, SkipProfanity: true, SkipFormat: true})
	if got != in {
		t.Errorf("all stages skipped must be identity, got %q", got)
	}
}

func TestStageOrderFillersBeforeProfanity(t *testing.T) {
	// Full pipeline over a messy transcript: fillers gone, profanity
	// masked, speakers renumbered.
	e := New(4)
	in := "Speaker 2: Um, this is, you know, a damn mess."
	got := e.Enhance(context.Background(), in, Options{})

	if strings.Contains(strings.ToLower(got), "um,") {
		t.Errorf("filler survived: %q", got)
	}
	if !strings.Contains(got, Mask()) {
		t.Errorf("profanity not masked: %q", got)
	}
	if !strings.HasPrefix(got, "Speaker 1:") {
		t.Errorf("speaker not renumbered: %q", got)
	}
}

func TestApplyFallsBackOnStageFailure(t *testing.T) {
	e := New(4)
	ctx := context.Background()

	got := e.apply(ctx, "boom", "original text", func(string) (string, error) {
		panic("stage exploded")
	})
	if got != "original text" {
		t.Errorf("panicking stage must pass input through, got %q", got)
	}

	got = e.apply(ctx, "fail", "original text", func(string) (string, error) {
		return "", errFailedStage
	})
	if got != "original text" {
		t.Errorf("failing stage must pass input through, got %q", got)
	}
}

func TestEnhanceEmptyInput(t *testing.T) {
	e := New(4)
	if got := e.Enhance(context.Background(), "", Options{}); got != "" {
		t.Errorf("empty input should stay empty, got %q", got)
	}
}
