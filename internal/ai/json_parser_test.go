package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunstone-app/sunstone/internal/types"
)

type testDoc struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func TestParse_Direct(t *testing.T) {
	result := Parse[testDoc](`{"date": "2026-03-10", "count": 2}`, ParseOptions{})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "2026-03-10", result.Data.Date)
	assert.Equal(t, 2, result.Data.Count)
}

func TestParse_CodeFences(t *testing.T) {
	inputs := []string{
		"```json\n{\"date\": \"2026-03-10\", \"count\": 1}\n```",
		"```\n{\"date\": \"2026-03-10\", \"count\": 1}\n```",
		"```json{\"date\": \"2026-03-10\", \"count\": 1}```",
	}
	for _, input := range inputs {
		result := Parse[testDoc](input, ParseOptions{})
		require.True(t, result.Success, "input %q: %s", input, result.Error)
		assert.Equal(t, 1, result.Data.Count)
	}
}

func TestParse_TrailingCommasAndComments(t *testing.T) {
	input := `{
		// today's plan
		"date": "2026-03-10",
		"count": 3, /* swaps */
	}`
	result := Parse[testDoc](input, ParseOptions{})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, 3, result.Data.Count)
}

func TestParse_UnquotedKeys(t *testing.T) {
	result := Parse[testDoc](`{date: "2026-03-10", count: 4}`, ParseOptions{})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, 4, result.Data.Count)
}

func TestParse_ExtractsFromProse(t *testing.T) {
	input := `Here is the plan you asked for:

{"date": "2026-03-10", "count": 2}

Let me know if anything needs adjusting.`
	result := Parse[testDoc](input, ParseOptions{})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, 2, result.Data.Count)
}

func TestParse_Array(t *testing.T) {
	result := Parse[[]int]("Values: [1, 2, 3]", ParseOptions{})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, []int{1, 2, 3}, result.Data)
}

func TestParse_EmptyInput(t *testing.T) {
	result := Parse[testDoc]("   ", ParseOptions{Context: "plan"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "empty input")
	assert.Contains(t, result.Error, "plan")
}

func TestParse_Garbage(t *testing.T) {
	result := Parse[testDoc]("not json at all", ParseOptions{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "all JSON parsing strategies failed")
	assert.Equal(t, "not json at all", result.OriginalText)
}

func TestParse_SizeLimit(t *testing.T) {
	big := `{"date": "` + strings.Repeat("x", 100) + `"}`
	result := Parse[testDoc](big, ParseOptions{MaxInputSize: 50})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "size limit")
}

func TestParse_PlanDocument(t *testing.T) {
	input := "```json\n" + `{
		"date": "2026-03-10",
		"missions": [
			{
				"title": "Read one chapter",
				"category": "study",
				"difficulty": "easy",
				"duration_minutes": 15,
				"reward": 15,
				"why_this": "Keeps the reading habit alive.",
				"micro": {"title": "Open the book", "duration_minutes": 2}
			}
		]
	}` + "\n```"

	result := Parse[types.PlanDocument](input, ParseOptions{Context: "plan proposal"})
	require.True(t, result.Success, result.Error)
	require.Len(t, result.Data.Missions, 1)

	m := result.Data.Missions[0]
	assert.Equal(t, types.CategoryStudy, m.Category)
	assert.Equal(t, 15, m.DurationMinutes)
	assert.Equal(t, "Keeps the reading habit alive.", m.Why)
	require.NotNil(t, m.Micro)
	assert.Equal(t, 2, m.Micro.DurationMinutes)
}

func TestParse_SwapDocument(t *testing.T) {
	input := `{
		"date": "2026-03-10",
		"swap_count": 0,
		"replacements": [],
		"no_swap_reason": "plan still fits the evening"
	}`
	result := Parse[types.SwapDocument](input, ParseOptions{Context: "swap proposal"})
	require.True(t, result.Success, result.Error)
	assert.Equal(t, 0, result.Data.SwapCount)
	assert.Equal(t, "plan still fits the evening", result.Data.NoSwapReason)
}
