package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testIntents() []Intent {
	return []Intent{
		{
			Tag:       "shipping",
			Keywords:  []string{"shipping", "delivery", "arrive"},
			Responses: []string{"shipping answer"},
		},
		{
			Tag:       "returns",
			Keywords:  []string{"return", "refund"},
			Responses: []string{"returns answer"},
		},
	}
}

func TestReply_PicksHighestScore(t *testing.T) {
	b := New(testIntents(), []string{"fallback answer"}, 1)

	//shippingのキーワードが2つ、returnsは1つ
	tag, res := b.Reply("When does my shipping order arrive? Can I return it?")
	assert.Equal(t, "shipping", tag)
	assert.Equal(t, "shipping answer", res)
}

func TestReply_CaseAndPunctuationInsensitive(t *testing.T) {
	b := New(testIntents(), []string{"fallback answer"}, 1)

	tag, _ := b.Reply("REFUND!!!")
	assert.Equal(t, "returns", tag)
}

// Test: 同点なら先に定義したIntentが勝つ
func TestReply_TieKeepsEarlierIntent(t *testing.T) {
	b := New(testIntents(), []string{"fallback answer"}, 1)

	tag, _ := b.Reply("shipping refund")
	assert.Equal(t, "shipping", tag)
}

func TestReply_Fallback(t *testing.T) {
	b := New(testIntents(), []string{"fallback answer"}, 1)

	tag, res := b.Reply("completely unrelated message")
	assert.Equal(t, "fallback", tag)
	assert.Equal(t, "fallback answer", res)
}

func TestReply_EmptyMessageFallsBack(t *testing.T) {
	b := New(testIntents(), []string{"fallback answer"}, 1)

	tag, _ := b.Reply("")
	assert.Equal(t, "fallback", tag)
}

// Test: 同じseedなら応答の並びも同じ
func TestReply_DeterministicWithSeed(t *testing.T) {
	intents := []Intent{{
		Tag:       "greeting",
		Keywords:  []string{"hello"},
		Responses: []string{"a", "b", "c", "d"},
	}}

	run := func() []string {
		b := New(intents, nil, 42)
		var out []string
		for i := 0; i < 10; i++ {
			_, res := b.Reply("hello")
			out = append(out, res)
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestDefault_AnswersCommonQuestions(t *testing.T) {
	b := Default()

	tag, res := b.Reply("how long does shipping take?")
	assert.NotEqual(t, "fallback", tag)
	assert.NotEmpty(t, res)

	tag, res = b.Reply("zzz qqq xxx")
	assert.Equal(t, "fallback", tag)
	assert.NotEmpty(t, res)
}

// Test: 1つのBotを複数goroutineで共有しても安全
func TestReply_ConcurrentUse(t *testing.T) {
	b := Default()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				tag, res := b.Reply("hello shipping refund")
				assert.NotEmpty(t, tag)
				assert.NotEmpty(t, res)
			}
		}()
	}
	wg.Wait()
}
