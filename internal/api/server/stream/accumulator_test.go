package stream

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deltaLine(content string) string {
	return fmt.Sprintf(`data: {"id":"gen-1","choices":[{"index":0,"delta":{"role":"assistant","content":%q}}]}`, content)
}

func foldAll(t *testing.T, acc *Accumulator, lines ...string) []error {
	t.Helper()
	var errs []error
	for _, line := range lines {
		if err := acc.Fold([]byte(line)); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func TestFoldConcatenatesInOrder(t *testing.T) {
	acc := NewAccumulator(0)
	errs := foldAll(t, acc,
		": OPENROUTER PROCESSING",
		"",
		deltaLine("Hel"),
		"   ",
		deltaLine("lo, "),
		": OPENROUTER PROCESSING",
		deltaLine("world"),
		"data: [DONE]",
	)

	assert.Empty(t, errs)
	assert.Equal(t, "Hello, world", acc.Text())
	assert.Equal(t, 3, acc.Fragments())
}

func TestFoldSkipsMalformedAndContinues(t *testing.T) {
	acc := NewAccumulator(0)
	errs := foldAll(t, acc,
		deltaLine("a"),
		`data: {"choices":[{"delta":{"content":"b"`,
		deltaLine("c"),
	)

	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrMalformedFragment))
	assert.Equal(t, "ac", acc.Text())
	assert.Equal(t, 1, acc.Skipped())
}

func TestFoldIgnoresLinesWithoutContent(t *testing.T) {
	acc := NewAccumulator(0)
	errs := foldAll(t, acc,
		`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
		`data: {"choices":[]}`,
		`data: {}`,
		`data: {"choices":[{"delta":{"content":""},"finish_reason":"stop"}]}`,
		`data: {"choices":[{"delta":{"content":null}}]}`,
	)

	assert.Empty(t, errs)
	assert.Equal(t, "", acc.Text())
	assert.Equal(t, 0, acc.Fragments())
}

func TestFoldIgnoresNonDataFields(t *testing.T) {
	acc := NewAccumulator(0)
	errs := foldAll(t, acc,
		"event: message",
		"id: 7",
		"retry: 1000",
		": keep-alive",
		` data: {"choices":[{"delta":{"content":"indented"}}]}`,
		`data:{"choices":[{"delta":{"content":"tight"}}]}`,
	)

	assert.Empty(t, errs)
	assert.Equal(t, "tight", acc.Text())
}

func TestFoldDoneOnlyIsEmpty(t *testing.T) {
	acc := NewAccumulator(0)
	assert.Empty(t, foldAll(t, acc, "data: [DONE]"))
	assert.Equal(t, "", acc.Text())
}

func TestFoldMarkersMatchAnywhere(t *testing.T) {
	acc := NewAccumulator(0)
	errs := foldAll(t, acc,
		deltaLine("keep"),
		deltaLine("still PROCESSING"),
		deltaLine("not [DONE] yet"),
	)

	assert.Empty(t, errs)
	assert.Equal(t, "keep", acc.Text())
}

func TestFoldPreservesUnicodeAndWhitespace(t *testing.T) {
	acc := NewAccumulator(0)
	foldAll(t, acc, deltaLine("  héllo"), deltaLine("\n"), deltaLine("🌴 "))
	assert.Equal(t, "  héllo\n🌴 ", acc.Text())
}

func TestFoldEnforcesLimit(t *testing.T) {
	acc := NewAccumulator(8)
	require.NoError(t, acc.Fold([]byte(deltaLine("12345"))))

	err := acc.Fold([]byte(deltaLine("6789")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResponseTooLarge))
	assert.Equal(t, "12345", acc.Text())
}

func TestFoldManyFragments(t *testing.T) {
	acc := NewAccumulator(0)
	var want strings.Builder
	for i := 0; i < 500; i++ {
		piece := fmt.Sprintf("<%d>", i)
		want.WriteString(piece)
		require.NoError(t, acc.Fold([]byte(deltaLine(piece))))
		if i%7 == 0 {
			require.NoError(t, acc.Fold([]byte(": OPENROUTER PROCESSING")))
		}
	}
	assert.Equal(t, want.String(), acc.Text())
	assert.Equal(t, 500, acc.Fragments())
}

func TestAccumulatorsAreIndependent(t *testing.T) {
	first := NewAccumulator(0)
	second := NewAccumulator(0)
	foldAll(t, first, deltaLine("one"))
	foldAll(t, second, deltaLine("two"))

	assert.Equal(t, "one", first.Text())
	assert.Equal(t, "two", second.Text())
}
