package service

import (
	"math"
	"regexp"
	"strings"

	"moodjournal/models"
)

// emoticonWeight 每个出现的表情符号计入的分值
const emoticonWeight = 2

// detailedThreshold 详细分析中判定为 happy/sad 所需的占比
const detailedThreshold = 0.6

// Lexicon 情绪词表。正负词表互不相交，构造后只读
type Lexicon struct {
	PositiveWords  []string
	NegativeWords  []string
	HappyEmoticons []string
	SadEmoticons   []string
}

// DefaultLexicon 内置词表，每次调用返回新的副本
func DefaultLexicon() Lexicon {
	return Lexicon{
		PositiveWords: []string{
			"happy", "joy", "love", "excited", "great", "wonderful", "amazing",
			"fantastic", "excellent", "good", "glad", "pleased", "delighted",
			"cheerful", "blessed", "grateful", "thankful", "awesome", "brilliant",
			"perfect", "beautiful", "lovely", "enjoy", "fun", "smile", "laugh",
			"celebrating", "thrilled", "ecstatic", "proud", "optimistic", "hope",
		},
		NegativeWords: []string{
			"sad", "angry", "hate", "depressed", "upset", "bad", "terrible",
			"awful", "horrible", "worried", "anxious", "stress", "fear", "scared",
			"hurt", "pain", "crying", "lonely", "miserable", "disappointed",
			"frustrated", "annoyed", "tired", "exhausted", "sick", "ill",
			"struggling", "difficult", "hard", "problem", "issue", "fail",
		},
		HappyEmoticons: []string{"😊", "😄", "😃", "🙂", "😁", "🥰", "😍", "🎉", "👍", "❤️", "💕"},
		SadEmoticons:   []string{"😢", "😭", "😞", "😔", "😟", "😩", "😫", "💔", "👎"},
	}
}

// MoodScores 正负得分
type MoodScores struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

// MoodDetail 带置信度的情绪分析结果，confidence 取值 0-100
type MoodDetail struct {
	Mood       models.Mood `json:"mood"`
	Confidence int         `json:"confidence"`
	Scores     MoodScores  `json:"scores"`
}

// MoodClassifier 基于固定词表的情绪分类器，无状态，可并发使用
type MoodClassifier struct {
	positive []*regexp.Regexp
	negative []*regexp.Regexp
	happy    []string
	sad      []string
}

// NewMoodClassifier 预编译整词匹配正则
func NewMoodClassifier(lex Lexicon) *MoodClassifier {
	return &MoodClassifier{
		positive: compileWords(lex.PositiveWords),
		negative: compileWords(lex.NegativeWords),
		happy:    append([]string(nil), lex.HappyEmoticons...),
		sad:      append([]string(nil), lex.SadEmoticons...),
	}
}

func compileWords(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return out
}

// Score 计算正负得分：词按整词出现次数累加，表情符号按是否出现计 2 分
func (m *MoodClassifier) Score(text string) MoodScores {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return MoodScores{}
	}

	var s MoodScores
	for _, re := range m.positive {
		s.Positive += len(re.FindAllStringIndex(lower, -1))
	}
	for _, re := range m.negative {
		s.Negative += len(re.FindAllStringIndex(lower, -1))
	}
	for _, e := range m.happy {
		if strings.Contains(lower, e) {
			s.Positive += emoticonWeight
		}
	}
	for _, e := range m.sad {
		if strings.Contains(lower, e) {
			s.Negative += emoticonWeight
		}
	}
	return s
}

// Classify 正分高为 happy，负分高为 sad，相等（含 0:0）为 neutral
func (m *MoodClassifier) Classify(text string) models.Mood {
	s := m.Score(text)
	switch {
	case s.Positive > s.Negative:
		return models.MoodHappy
	case s.Negative > s.Positive:
		return models.MoodSad
	default:
		return models.MoodNeutral
	}
}

// ClassifyDetailed 按正负占比判定，占比超过 60% 才给出 happy/sad，否则 neutral 且置信度 50
func (m *MoodClassifier) ClassifyDetailed(text string) MoodDetail {
	s := m.Score(text)
	total := s.Positive + s.Negative
	if total == 0 {
		return MoodDetail{Mood: models.MoodNeutral, Confidence: 0, Scores: s}
	}

	posRatio := float64(s.Positive) / float64(total)
	negRatio := float64(s.Negative) / float64(total)

	detail := MoodDetail{Mood: models.MoodNeutral, Confidence: 50, Scores: s}
	switch {
	case posRatio > detailedThreshold:
		detail.Mood = models.MoodHappy
		detail.Confidence = int(math.Round(math.Min(100, posRatio*100)))
	case negRatio > detailedThreshold:
		detail.Mood = models.MoodSad
		detail.Confidence = int(math.Round(math.Min(100, negRatio*100)))
	}
	return detail
}
