package shorts

import "testing"

func TestScoreSentiment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  int
	}{
		{name: "empty title", title: "", want: 0},
		{name: "no lexicon words", title: "운동화 리뷰 영상", want: 0},
		{name: "single positive", title: "이 신발 완전 대박", want: 1},
		{name: "single negative", title: "이 신발은 별로", want: -1},
		{name: "multiple positives", title: "대박 추천 최고의 선택", want: 4},
		// 최악이에요 matches both 최악 and 최악이에요.
		{name: "multiple negatives", title: "최악이에요 돈낭비 후회", want: -4},
		{name: "mixed cancels out", title: "추천하지만 별로", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreSentiment(tt.title); got != tt.want {
				t.Fatalf("ScoreSentiment(%q) = %d, want %d", tt.title, got, tt.want)
			}
		})
	}
}

func TestScoreSentimentSignedBounds(t *testing.T) {
	t.Parallel()

	for _, w := range negativeWords {
		if got := ScoreSentiment(w); got > 0 {
			t.Fatalf("negative-only title %q scored %d > 0", w, got)
		}
	}
	for _, w := range positiveWords {
		if got := ScoreSentiment(w); got < 0 {
			t.Fatalf("positive-only title %q scored %d < 0", w, got)
		}
	}
}
