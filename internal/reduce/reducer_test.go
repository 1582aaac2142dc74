package reduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notewire/pkg/models"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		prev     string
		fragment string
		want     string
	}{
		{"simple overlap", "ab", "bc", "abc"},
		{"empty prev", "", "x", "x"},
		{"empty fragment", "x", "", "x"},
		{"both empty", "", "", ""},
		{"no overlap concatenates", "abc", "xyz", "abcxyz"},
		{"word boundary overlap", "hello wor", "world!", "hello world!"},
		{"full duplicate", "abc", "abc", "abc"},
		{"fragment extends duplicate", "abc", "abcdef", "abcdef"},
		{"largest overlap wins", "aba", "aba", "aba"},
		{"multi char overlap", "The cache is ", "is now faster.", "The cache is now faster."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.prev, tt.fragment))
		})
	}
}

func TestMergeIsLeftBiased(t *testing.T) {
	// Not commutative: the overlap is a suffix of the left argument only.
	assert.Equal(t, "abc", Merge("ab", "bc"))
	assert.Equal(t, "bcab", Merge("bc", "ab"))
}

func TestApplyContentFramesAccumulate(t *testing.T) {
	state := NewState()

	state, err := Apply(state, models.ContentFrame("42", models.ChannelMarketing, "The cache is "))
	require.NoError(t, err)
	state, err = Apply(state, models.ContentFrame("42", models.ChannelMarketing, "is now faster."))
	require.NoError(t, err)

	assert.Equal(t, "The cache is now faster.", state["42"].Marketing)
	assert.Empty(t, state["42"].Developer)
}

func TestApplyTwoFragmentsEqualsPreMergedSingleFragment(t *testing.T) {
	two := NewState()
	two, _ = Apply(two, models.ContentFrame("1", models.ChannelDeveloper, "hello wor"))
	two, _ = Apply(two, models.ContentFrame("1", models.ChannelDeveloper, "world!"))

	one := NewState()
	one, _ = Apply(one, models.ContentFrame("1", models.ChannelDeveloper, Merge("hello wor", "world!")))

	assert.Equal(t, one["1"].Developer, two["1"].Developer)
}

func TestApplyCompletionNeverChangesText(t *testing.T) {
	state := NewState()
	state, _ = Apply(state, models.ContentFrame("42", models.ChannelMarketing, "All done."))

	state, err := Apply(state, models.DoneFrame("42", models.ChannelMarketing))
	require.NoError(t, err)
	assert.Equal(t, "All done.", state["42"].Marketing)
}

func TestApplyToolsFrameAttachesWithoutTouchingText(t *testing.T) {
	state := NewState()
	state, _ = Apply(state, models.ContentFrame("42", models.ChannelMarketing, "The cache is "))
	state, _ = Apply(state, models.ContentFrame("42", models.ChannelMarketing, "is now faster."))
	state, _ = Apply(state, models.DoneFrame("42", models.ChannelMarketing))

	tools := models.ToolsInfo{
		RelatedIssues: []string{"#7 cache misses"},
		Contributors:  []models.Contributor{{Name: "ada", Contributions: 120}},
	}
	state, err := Apply(state, models.ToolsFrame("42", tools))
	require.NoError(t, err)

	assert.Equal(t, "The cache is now faster.", state["42"].Marketing)
	require.NotNil(t, state["42"].Tools)
	assert.Equal(t, tools, *state["42"].Tools)
}

func TestApplyToolsFrameReplacesWholesale(t *testing.T) {
	state := NewState()
	state, _ = Apply(state, models.ToolsFrame("1", models.ToolsInfo{RelatedIssues: []string{"#1 old"}}))
	state, _ = Apply(state, models.ToolsFrame("1", models.ToolsInfo{RelatedIssues: []string{"#2 new"}}))

	assert.Equal(t, []string{"#2 new"}, state["1"].Tools.RelatedIssues)
}

func TestApplyErrorFrameIsTerminalButRetainsState(t *testing.T) {
	state := NewState()
	state, _ = Apply(state, models.ContentFrame("42", models.ChannelDeveloper, "partial"))

	state, err := Apply(state, models.ErrorFrame("generation failed for 43"))
	require.ErrorIs(t, err, ErrStream)
	assert.Contains(t, err.Error(), "generation failed for 43")
	assert.Equal(t, "partial", state["42"].Developer)
}

func TestApplyCreatesStateOnFirstFrame(t *testing.T) {
	state := NewState()
	state, _ = Apply(state, models.ContentFrame("new-item", models.ChannelDeveloper, ""))

	require.Contains(t, state, "new-item")
	assert.Empty(t, state["new-item"].Developer)
}
