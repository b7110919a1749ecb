package shorts

import "strings"

// Fixed Korean sentiment lexicon. Matching is plain substring containment
// over the raw title, with no tokenization or normalization; overlapping
// phrases all count.
var positiveWords = []string{
	"좋아요", "훌륭", "추천", "최고", "멋져요", "기쁨", "재미있어요", "흥미",
	"활발", "신나요", "트렌디", "완벽", "필수템", "대박", "코디", "사랑해요",
	"만족", "고마워요", "행복", "짱", "뛰어나요", "감동", "깔끔해요", "예뻐요",
	"멋있어요", "흥미진진", "기대 이상", "강추", "유익해요", "화려해요",
	"만족스러워요", "최상급", "열정적", "센스있어요", "따뜻해요", "귀여워요",
	"유용해요", "효과적", "편리해요", "아름다워요", "착해요", "믿음직해요",
	"든든해요", "눈부셔요", "희망적", "최고예요", "성공적", "감사해요",
	"필요한 정보", "기대돼요", "명작", "혁신적", "세련됐어요", "대단해요",
	"행복해요", "잘했어요", "든든", "최고의 선택", "활기차요",
}

var negativeWords = []string{
	"별로", "싫어요", "나빠요", "문제", "불만", "지루해요", "실망", "화나요",
	"사지 마세요", "짜증", "최악", "낡았어요", "불편해요", "구려요", "후회",
	"실패작", "거슬려요", "불쾌해요", "망했어요", "부족해요", "무의미",
	"고장났어요", "안좋아요", "별로예요", "비추", "돈낭비", "별로다",
	"쓸데없어요", "형편없어요", "불신", "망가졌어요", "촌스러워요",
	"하자 있어요", "어이없어요", "엉망이에요", "느려요", "부정적", "오류",
	"이해 안돼요", "낭비예요", "불성실", "도움 안돼요", "나쁘다", "아쉬워요",
	"쓸모없어요", "무리예요", "이상해요", "싫다", "후졌다", "최악이에요",
	"우울", "불쾌", "어려워요", "부실해요", "불합리해요", "답답해요",
	"이상하다", "애매해요",
}

// ScoreSentiment scores a video title against the lexicon: +1 for each
// positive phrase contained in the title, -1 for each negative phrase.
// An empty title scores 0.
func ScoreSentiment(title string) int {
	if title == "" {
		return 0
	}
	score := 0
	for _, w := range positiveWords {
		if strings.Contains(title, w) {
			score++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(title, w) {
			score--
		}
	}
	return score
}
