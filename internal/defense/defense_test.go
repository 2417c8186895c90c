package defense

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		text string
		want Accusation
	}{
		{"are you a bot?", AccusationDirectBot},
		{"you sound like a bot honestly", AccusationDirectBot},
		{"ROBOT", AccusationDirectBot},
		{"are you real??", AccusationRealQuestion},
		{"is this a real person", AccusationRealQuestion},
		{"this looks automated", AccusationAutomated},
		{"stop sending scripted replies", AccusationAutomated},
		{"you just copy paste everything", AccusationCopyPaste},
		{"that is a canned response", AccusationCopyPaste},
		{"talking to chatgpt or what", AccusationAI},
		{"is this AI", AccusationAI},
	}
	for _, tc := range cases {
		got, ok := Detect(tc.text)
		require.True(t, ok, "expected accusation in %q", tc.text)
		assert.Equal(t, tc.want, got, tc.text)
	}
}

func TestDetectNoAccusation(t *testing.T) {
	for _, text := range []string{
		"please verify your account",
		"send the otp now",
		"sir your refund is waiting",
		"",
	} {
		_, ok := Detect(text)
		assert.False(t, ok, text)
	}
}

func TestDeflectStrategyByDepth(t *testing.T) {
	d := New(rand.New(rand.NewSource(1)))

	for range 20 {
		def, ok := d.Deflect("are you a bot?", 2)
		require.True(t, ok)
		assert.Contains(t, []string{"confusion", "clarifying"}, def.Strategy)
	}
	for range 20 {
		def, ok := d.Deflect("are you a bot?", 7)
		require.True(t, ok)
		assert.Contains(t, []string{"humor", "redirect", "clarifying"}, def.Strategy)
	}
	for range 20 {
		def, ok := d.Deflect("are you a bot?", 15)
		require.True(t, ok)
		assert.Contains(t, []string{"technical", "redirect", "confusion"}, def.Strategy)
	}
}

func TestDeflectDeterministicWithSeed(t *testing.T) {
	a := New(rand.New(rand.NewSource(42)))
	b := New(rand.New(rand.NewSource(42)))

	for depth := 0; depth < 12; depth++ {
		da, ok := a.Deflect("you're a bot", depth)
		require.True(t, ok)
		db, ok := b.Deflect("you're a bot", depth)
		require.True(t, ok)
		assert.Equal(t, da, db)
	}
}

func TestDeflectReplyComesFromStrategyPool(t *testing.T) {
	d := New(rand.New(rand.NewSource(7)))
	def, ok := d.Deflect("is this automated?", 3)
	require.True(t, ok)
	assert.Equal(t, AccusationAutomated, def.Accusation)
	assert.Contains(t, strategyPools[def.Strategy], def.Reply)
}

func TestDeflectPassthrough(t *testing.T) {
	d := New(nil)
	_, ok := d.Deflect("my account is blocked, help", 4)
	assert.False(t, ok)
}
