package chat

import (
	"math/rand"
	"strings"
	"sync"
	"unicode"
)

// Intent は定型応答1種類分。
// キーワード一致数が一番多いIntentの応答を返すだけの仕組みで、
// 学習や推論はしない。
type Intent struct {
	Tag       string
	Keywords  []string
	Responses []string
}

type Bot struct {
	intents  []Intent
	fallback []string

	// rand.Randは並行利用不可。Botはhandler goroutine間で共有される。
	mu  sync.Mutex
	rng *rand.Rand
}

// New はseed付きでBotを作る（テストで応答を固定できる）。
func New(intents []Intent, fallback []string, seed int64) *Bot {
	return &Bot{
		intents:  intents,
		fallback: fallback,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Reply はメッセージに一番合うIntentの応答を返す。
// どれにも掛からなければfallback。
func (b *Bot) Reply(message string) (tag string, response string) {
	tokens := tokenize(message)

	bestScore := 0
	bestIdx := -1

	for i, in := range b.intents {
		score := 0
		for _, kw := range in.Keywords {
			if tokens[kw] {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return "fallback", b.pick(b.fallback)
	}

	in := b.intents[bestIdx]
	return in.Tag, b.pick(in.Responses)
}

func (b *Bot) pick(responses []string) string {
	if len(responses) == 0 {
		return ""
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return responses[b.rng.Intn(len(responses))]
}

// 小文字化して単語集合にする
func tokenize(s string) map[string]bool {
	tokens := map[string]bool{}
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		tokens[f] = true
	}
	return tokens
}
