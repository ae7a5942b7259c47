package segment

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func tokens(s string) []string {
	return strings.Fields(s)
}

func TestSplit_EmptyInput(t *testing.T) {
	if got := Split("", 100); got != nil {
		t.Errorf("empty text: got %v, want nil", got)
	}
	if got := Split("   \n\t ", 100); got != nil {
		t.Errorf("whitespace-only text: got %v, want nil", got)
	}
	if got := Split("hello.", 0); got != nil {
		t.Errorf("non-positive target: got %v, want nil", got)
	}
}

func TestSplit_GroupsShortSentences(t *testing.T) {
	got := Split("짧다. 또 짧다. 조금 더 길게 써본다.", 80)
	if len(got) != 1 {
		t.Fatalf("got %d segments, want 1: %v", len(got), got)
	}
	if got[0] != "짧다. 또 짧다. 조금 더 길게 써본다." {
		t.Errorf("grouped segment mismatch: %q", got[0])
	}
}

func TestSplit_FlushesAtTargetLength(t *testing.T) {
	a := strings.Repeat("가", 50) + "."
	b := strings.Repeat("나", 50) + "."
	got := Split(a+" "+b, 80)
	if len(got) != 2 {
		t.Fatalf("got %d segments, want 2: %v", len(got), got)
	}
	if got[0] != a || got[1] != b {
		t.Errorf("segments not flushed at boundary: %v", got)
	}
}

// The joining space counts toward the group length: 40 + 20 runes join into
// a 61-rune group, so a 19-rune third sentence (61+19 = 80) must be flushed
// into its own segment rather than merged.
func TestSplit_SeparatorSpaceCountsTowardTarget(t *testing.T) {
	a := strings.Repeat("가", 39) + "."
	b := strings.Repeat("나", 19) + "."
	c := strings.Repeat("다", 18) + "."
	got := Split(a+" "+b+" "+c, 80)
	if len(got) != 2 {
		t.Fatalf("got %d segments, want 2: %v", len(got), got)
	}
	if got[0] != a+" "+b {
		t.Errorf("first group mismatch: %q", got[0])
	}
	if got[1] != c {
		t.Errorf("second group mismatch: %q", got[1])
	}
}

func TestSplit_LongSentenceNeverCut(t *testing.T) {
	long := strings.Repeat("word ", 60) + "end."
	got := Split(long, 40)
	if len(got) != 1 {
		t.Fatalf("oversized sentence should stay whole, got %d segments", len(got))
	}
}

func TestSplit_NewlinesDoNotTruncateSentences(t *testing.T) {
	got := Split("This sentence\ncrosses a line break. Next one.", 200)
	if len(got) != 1 {
		t.Fatalf("got %d segments, want 1: %v", len(got), got)
	}
	if strings.Contains(got[0], "\n") {
		t.Errorf("newline survived sanitation: %q", got[0])
	}
}

func TestSplit_UnterminatedTailKept(t *testing.T) {
	got := Split("Finished sentence. trailing fragment without a period", 10)
	if len(got) != 2 {
		t.Fatalf("got %d segments, want 2: %v", len(got), got)
	}
	if got[1] != "trailing fragment without a period" {
		t.Errorf("tail mismatch: %q", got[1])
	}
}

func TestSplit_TrailingQuoteStaysWithSentence(t *testing.T) {
	got := Split(`그는 "멈춰!" 라고 외쳤다.`, 5)
	joined := strings.Join(got, " ")
	if !strings.Contains(joined, `"멈춰!"`) {
		t.Errorf("quote split from its sentence: %v", got)
	}
}

// Token preservation. Segmenting and rejoining with single spaces must keep
// exactly the non-whitespace tokens of the sanitized input, for any target.
func TestSplit_TokenPreservation(t *testing.T) {
	inputs := []string{
		"One. Two! Three? Four",
		"미스터리한 사건이 일어났다. 아무도 몰랐다! 정말일까? 그렇다.",
		"A very long single sentence that will exceed every small target we try here, certainly.",
		"Multi\nline\ntext. With breaks!",
	}
	targets := []int{1, 10, 40, 80, 120, 1000}

	for _, input := range inputs {
		sanitized := strings.NewReplacer("\n", " ", "\r", " ").Replace(input)
		want := tokens(sanitized)
		for _, target := range targets {
			segments := Split(input, target)
			got := tokens(strings.Join(segments, " "))
			if len(got) != len(want) {
				t.Fatalf("target %d: token count %d != %d for %q", target, len(got), len(want), input)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("target %d: token %d: %q != %q", target, i, got[i], want[i])
				}
			}
			for _, seg := range segments {
				if seg == "" {
					t.Fatalf("target %d: empty segment for %q", target, input)
				}
			}
		}
	}
}

func TestSplit_GroupLengthsApproachTarget(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString("짧은 문장이다. ")
	}
	got := Split(sb.String(), 80)
	if len(got) < 2 {
		t.Fatalf("expected multiple groups, got %d", len(got))
	}
	// Every group except the last must have been closed because adding one
	// more sentence would reach the target.
	for i, seg := range got[:len(got)-1] {
		if utf8.RuneCountInString(seg) >= 80+10 {
			t.Errorf("group %d far exceeds target: %d runes", i, utf8.RuneCountInString(seg))
		}
	}
}

func TestPartition(t *testing.T) {
	intro := "인트로 문장 하나. 인트로 문장 둘."
	body := "본문 문장 하나. 본문 문장 둘. 본문 문장 셋."

	segments, introCount := Partition(intro, body)
	if introCount == 0 {
		t.Fatal("introCount should count intro segments")
	}
	if len(segments) <= introCount {
		t.Fatalf("body segments missing: total %d, intro %d", len(segments), introCount)
	}
	if !strings.Contains(segments[0], "인트로") {
		t.Errorf("intro segments must come first: %q", segments[0])
	}
	if !strings.Contains(segments[len(segments)-1], "본문") {
		t.Errorf("body segments must come last: %q", segments[len(segments)-1])
	}
}

func TestPartition_EmptyIntro(t *testing.T) {
	segments, introCount := Partition("", "본문이다.")
	if introCount != 0 {
		t.Errorf("introCount: got %d, want 0", introCount)
	}
	if len(segments) != 1 {
		t.Errorf("segments: got %d, want 1", len(segments))
	}
}
