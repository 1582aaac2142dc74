package filter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notewire/pkg/models"
)

func makeDiff(meaningful, filler int) string {
	var lines []string
	for i := 0; i < meaningful; i++ {
		lines = append(lines, fmt.Sprintf("+result = compute(%d)", i))
	}
	for i := 0; i < filler; i++ {
		lines = append(lines, " unchanged context line")
	}
	return strings.Join(lines, "\n")
}

func TestIsRelevantExcludePatternsWinRegardlessOfDiff(t *testing.T) {
	policy := models.FilterPolicy{
		MinDiffSize:     1,
		MinCodeChanges:  1,
		ExcludePatterns: []string{"typo", "readme"},
	}

	tests := []struct {
		name        string
		description string
	}{
		{"lowercase match", "fix typo in parser"},
		{"uppercase match", "Update README with details"},
		{"embedded match", "megaTYPOfix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := models.DiffItem{
				ID:          "1",
				Description: tt.description,
				Diff:        makeDiff(50, 0),
			}
			assert.False(t, IsRelevant(item, policy))
		})
	}
}

func TestIsRelevantMinDiffSizeRejectsEvenAllMeaningful(t *testing.T) {
	policy := models.FilterPolicy{MinDiffSize: 10, MinCodeChanges: 1}

	item := models.DiffItem{
		ID:          "1",
		Description: "real feature work",
		Diff:        makeDiff(5, 0), // 5 lines, all meaningful
	}
	assert.False(t, IsRelevant(item, policy))
}

func TestIsRelevantRuleOrder(t *testing.T) {
	item := models.DiffItem{
		ID:          "42",
		Description: "Fix: null pointer in parser",
		Diff: strings.Join([]string{
			"+if parser == nil {",
			"+\treturn nil, ErrNilParser",
			"+}",
			"+checked := true",
			"-unchecked()",
			"+// guard against nil",
			"-",
			"+",
			" context line",
			" context line",
			" context line",
			" context line",
		}, "\n"),
	}

	conservative := models.FilterPolicy{MinDiffSize: 10, MinCodeChanges: 3, StrictCounting: true}
	assert.True(t, IsRelevant(item, conservative))

	demanding := conservative
	demanding.MinCodeChanges = 10
	assert.False(t, IsRelevant(item, demanding))
}

func TestIsRelevantLabels(t *testing.T) {
	base := models.FilterPolicy{MinDiffSize: 1, MinCodeChanges: 1}

	item := models.DiffItem{
		ID:          "1",
		Description: "feature: faster cache [internal-only]",
		Diff:        makeDiff(5, 0),
	}

	withExclude := base
	withExclude.ExcludeLabels = []string{"internal-only"}
	assert.False(t, IsRelevant(item, withExclude))

	withInclude := base
	withInclude.IncludeLabels = []string{"feature"}
	assert.True(t, IsRelevant(item, withInclude))

	withInclude.IncludeLabels = []string{"breaking-change"}
	assert.False(t, IsRelevant(item, withInclude))
}

func TestFilterAllPreservesOrderAndCaps(t *testing.T) {
	policy := models.FilterPolicy{MinDiffSize: 1, MinCodeChanges: 1, MaxItems: 2}

	var items []models.DiffItem
	for i := 0; i < 5; i++ {
		items = append(items, models.DiffItem{
			ID:          fmt.Sprintf("pr-%d", i),
			Description: "substantial work",
			Diff:        makeDiff(3, 0),
		})
	}
	// Make pr-1 irrelevant so the cap selects pr-0 and pr-2.
	items[1].Diff = ""

	accepted := FilterAll(items, policy)
	require.Len(t, accepted, 2)
	assert.Equal(t, "pr-0", accepted[0].ID)
	assert.Equal(t, "pr-2", accepted[1].ID)
}

func TestFilterAllUncappedWhenMaxItemsZero(t *testing.T) {
	policy := models.FilterPolicy{MinDiffSize: 1, MinCodeChanges: 1}

	var items []models.DiffItem
	for i := 0; i < 8; i++ {
		items = append(items, models.DiffItem{
			ID:          fmt.Sprintf("pr-%d", i),
			Description: "substantial work",
			Diff:        makeDiff(3, 0),
		})
	}

	assert.Len(t, FilterAll(items, policy), 8)
}

func TestIsRelevantIsPure(t *testing.T) {
	item := models.DiffItem{ID: "1", Description: "feature work", Diff: makeDiff(4, 8)}
	policy := ConservativePolicy

	first := IsRelevant(item, policy)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, IsRelevant(item, policy))
	}
}

func TestPolicyByName(t *testing.T) {
	assert.Equal(t, PermissivePolicy, PolicyByName("permissive"))
	assert.Equal(t, PermissivePolicy, PolicyByName("Permissive"))
	assert.Equal(t, ConservativePolicy, PolicyByName("conservative"))
	assert.Equal(t, ConservativePolicy, PolicyByName("anything-else"))
}
