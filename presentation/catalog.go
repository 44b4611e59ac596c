// Package presentation turns an accepted emotion label into what the user
// sees and hears: emoji, suggestion, colours, audio clip and speech.
package presentation

import (
	"math/rand"

	"github.com/maastricht-university/emotion-feedback/classifier"
)

const (
	fallbackEmoji      = "❓"
	fallbackSuggestion = "觀察中..."
	fallbackColor      = "#fff"
	fallbackHistory    = "#333"
)

// Style is the fixed look of one label.
type Style struct {
	Emoji        string `json:"emoji" yaml:"emoji"`
	Background   string `json:"background" yaml:"background"`
	HistoryColor string `json:"history_color" yaml:"history_color"`
}

// Catalog holds per-label styles and the pools suggestions and clips are drawn from.
type Catalog struct {
	Styles      map[classifier.Label]Style
	Suggestions map[classifier.Label][]string
	Clips       map[classifier.Label][]string
}

func DefaultCatalog() Catalog {
	return Catalog{
		Styles: map[classifier.Label]Style{
			classifier.Happy:   {Emoji: "😊", Background: "#fff0f5", HistoryColor: "#ff69b4"},
			classifier.Angry:   {Emoji: "😠", Background: "#ffeaea", HistoryColor: "#ff4d4d"},
			classifier.Tired:   {Emoji: "😴", Background: "#e8f0ff", HistoryColor: "#999"},
			classifier.Neutral: {Emoji: "😐", Background: "#f4f4f4", HistoryColor: "#666"},
		},
		Suggestions: map[classifier.Label][]string{
			classifier.Happy: {
				"她心情不錯！你可以說：『看到你我也整天都快樂！』",
				"氣氛超棒，可以說：『笑得像仙女一樣欸～』",
				"開心的時候最可愛，你可以說：『我是不是該錄起來，每天看一次』",
			},
			classifier.Angry: {
				"小心，她可能有點不開心。你可以說：『我剛才是不是太急了？對不起嘛～抱一下？』",
				"她似乎有點氣氣的。試試：『要不要我請你喝奶茶？不氣不氣～』",
				"火氣上來了？來點柔軟的：『你是我最重要的人，我想跟你好好講講』",
			},
			classifier.Tired: {
				"她好像很累。你可以說：『辛苦啦～今天不要再想工作了！』",
				"她有點疲倦。輕輕一句：『來，我幫你按摩三分鐘～』",
				"看起來需要放鬆一下：『我們來看部溫馨的劇好不好？』",
			},
			classifier.Neutral: {
				"她現在沒特別情緒。你可以說：『這週末你有想去哪裡嗎？』",
				"中性狀態～你可以說：『如果只能選一種飲料，你會喝？』",
				"平靜模式～用趣味破冰：『昨天夢到我們去環島欸！你夢到什麼？』",
			},
		},
		Clips: map[classifier.Label][]string{
			classifier.Happy:   {"happy_1.mp3", "happy_2.mp3", "happy_3.mp3"},
			classifier.Angry:   {"angry_1.mp3", "angry_2.mp3", "angry_3.mp3"},
			classifier.Tired:   {"tired_1.mp3", "tired_2.mp3", "tired_3.mp3"},
			classifier.Neutral: {"neutral_1.mp3", "neutral_2.mp3", "neutral_3.mp3"},
		},
	}
}

// Override replaces the pools for the labels present in suggestions and clips.
func (c Catalog) Override(suggestions, clips map[classifier.Label][]string) Catalog {
	out := Catalog{
		Styles:      c.Styles,
		Suggestions: make(map[classifier.Label][]string, len(c.Suggestions)),
		Clips:       make(map[classifier.Label][]string, len(c.Clips)),
	}
	for k, v := range c.Suggestions {
		out.Suggestions[k] = v
	}
	for k, v := range c.Clips {
		out.Clips[k] = v
	}
	for k, v := range suggestions {
		if len(v) > 0 {
			out.Suggestions[k] = v
		}
	}
	for k, v := range clips {
		if len(v) > 0 {
			out.Clips[k] = v
		}
	}
	return out
}

func (c Catalog) Style(l classifier.Label) Style {
	s, ok := c.Styles[l]
	if !ok {
		return Style{Emoji: fallbackEmoji, Background: fallbackColor, HistoryColor: fallbackHistory}
	}
	return s
}

// Pick draws a suggestion and an audio clip uniformly at random. clip is
// empty when the label has no clips.
func (c Catalog) Pick(l classifier.Label, rng *rand.Rand) (suggestion, clip string) {
	suggestion = fallbackSuggestion
	if pool := c.Suggestions[l]; len(pool) > 0 {
		suggestion = pool[rng.Intn(len(pool))]
	}
	if pool := c.Clips[l]; len(pool) > 0 {
		clip = pool[rng.Intn(len(pool))]
	}
	return suggestion, clip
}
