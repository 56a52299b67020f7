package service

import (
	"sync"
	"testing"

	"moodjournal/models"

	"github.com/stretchr/testify/assert"
)

func TestMoodClassifier_Classify(t *testing.T) {
	c := NewMoodClassifier(DefaultLexicon())

	tests := []struct {
		text string
		want models.Mood
	}{
		{"I am so happy and excited today!", models.MoodHappy},
		{"I feel sad and tired, everything is a struggle", models.MoodSad},
		{"The weather is cloudy today", models.MoodNeutral},
		{"", models.MoodNeutral},
		{"   \n\t ", models.MoodNeutral},
		// 大小写不敏感
		{"HAPPY HAPPY", models.MoodHappy},
		// 整词匹配：unhappy / sadness / goodbye 都不算
		{"unhappy sadness goodbye", models.MoodNeutral},
		// 一正一负相抵
		{"good but bad", models.MoodNeutral},
		// 重复词按次数累加
		{"bad bad good", models.MoodSad},
		{"tired 😊", models.MoodHappy},
		{"great day 💔💔", models.MoodSad},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, c.Classify(tt.text), "Classify(%q)", tt.text)
	}
}

func TestMoodClassifier_Score(t *testing.T) {
	c := NewMoodClassifier(DefaultLexicon())

	assert.Equal(t, MoodScores{Positive: 2, Negative: 0}, c.Score("I am so happy and excited today!"))
	assert.Equal(t, MoodScores{Positive: 0, Negative: 2}, c.Score("I feel sad and tired, everything is a struggle"))

	// 同一表情重复出现只计一次
	assert.Equal(t, MoodScores{Positive: 2}, c.Score("😊😊😊"))
	// 不同表情分别计分
	assert.Equal(t, MoodScores{Positive: 4}, c.Score("😊 🎉"))
	assert.Equal(t, MoodScores{Negative: 2}, c.Score("😭"))
}

func TestMoodClassifier_ClassifyDetailed(t *testing.T) {
	c := NewMoodClassifier(DefaultLexicon())

	d := c.ClassifyDetailed("")
	assert.Equal(t, MoodDetail{Mood: models.MoodNeutral, Confidence: 0}, d)

	d = c.ClassifyDetailed("happy and good")
	assert.Equal(t, models.MoodHappy, d.Mood)
	assert.Equal(t, 100, d.Confidence)
	assert.Equal(t, MoodScores{Positive: 2}, d.Scores)

	// 2:1 => 67%
	d = c.ClassifyDetailed("sad tired but hopeful hope")
	assert.Equal(t, models.MoodSad, d.Mood)
	assert.Equal(t, 67, d.Confidence)

	// 3:2 => 60%，未超过阈值
	d = c.ClassifyDetailed("happy good great bad sad")
	assert.Equal(t, models.MoodNeutral, d.Mood)
	assert.Equal(t, 50, d.Confidence)
	assert.Equal(t, MoodScores{Positive: 3, Negative: 2}, d.Scores)

	d = c.ClassifyDetailed("good bad")
	assert.Equal(t, models.MoodNeutral, d.Mood)
	assert.Equal(t, 50, d.Confidence)
}

func TestDefaultLexicon_Disjoint(t *testing.T) {
	lex := DefaultLexicon()
	pos := make(map[string]bool, len(lex.PositiveWords))
	for _, w := range lex.PositiveWords {
		pos[w] = true
	}
	for _, w := range lex.NegativeWords {
		assert.Falsef(t, pos[w], "word %q in both lists", w)
	}
	happy := make(map[string]bool, len(lex.HappyEmoticons))
	for _, e := range lex.HappyEmoticons {
		happy[e] = true
	}
	for _, e := range lex.SadEmoticons {
		assert.Falsef(t, happy[e], "emoticon %q in both lists", e)
	}
}

func TestMoodClassifier_ConcurrentUse(t *testing.T) {
	c := NewMoodClassifier(DefaultLexicon())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, models.MoodHappy, c.Classify("what a wonderful, lovely day"))
		}()
	}
	wg.Wait()
}
