// Package filter decides which diff items are substantive enough to warrant
// release notes. The decision is a pure function of the item and a policy,
// with no I/O, so the same batch always filters the same way.
package filter

import (
	"strings"

	"github.com/notewire/pkg/models"
)

// ConservativePolicy is the default preset: higher thresholds, strict
// change counting, and a hard cap on the number of accepted items.
var ConservativePolicy = models.FilterPolicy{
	MinDiffSize:    10,
	MinCodeChanges: 3,
	ExcludePatterns: []string{
		"typo", "readme", "changelog", "merge branch", "merge pull request",
		"bump version", "version bump", "ci:", "docs:", "chore:",
	},
	ExcludeLabels:  []string{"dependencies", "internal-only", "no-release-note"},
	IncludeLabels:  nil,
	MaxItems:       5,
	StrictCounting: true,
}

// PermissivePolicy accepts everything that carries any real code change,
// uncapped. Intended for changelog-style deployments that want completeness
// over curation.
var PermissivePolicy = models.FilterPolicy{
	MinDiffSize:    3,
	MinCodeChanges: 1,
	ExcludePatterns: []string{
		"merge branch", "merge pull request",
	},
	StrictCounting: false,
}

// PolicyByName resolves a preset name. Unknown names fall back to the
// conservative preset.
func PolicyByName(name string) models.FilterPolicy {
	if strings.EqualFold(name, "permissive") {
		return PermissivePolicy
	}
	return ConservativePolicy
}

// IsRelevant reports whether a single item warrants a release note under the
// given policy. Rules are evaluated in a fixed order and short-circuit on
// the first rejection:
//
//  1. description contains an excluded pattern
//  2. diff shorter than the minimum line count
//  3. fewer meaningful changed lines than required
//  4. description contains an excluded label
//  5. include labels are set and none match
func IsRelevant(item models.DiffItem, policy models.FilterPolicy) bool {
	desc := strings.ToLower(item.Description)

	for _, pattern := range policy.ExcludePatterns {
		if pattern != "" && strings.Contains(desc, strings.ToLower(pattern)) {
			return false
		}
	}

	if len(strings.Split(item.Diff, "\n")) < policy.MinDiffSize {
		return false
	}

	if CountMeaningfulChanges(item.Diff, policy.StrictCounting) < policy.MinCodeChanges {
		return false
	}

	for _, label := range policy.ExcludeLabels {
		if label != "" && strings.Contains(desc, strings.ToLower(label)) {
			return false
		}
	}

	if len(policy.IncludeLabels) > 0 {
		matched := false
		for _, label := range policy.IncludeLabels {
			if label != "" && strings.Contains(desc, strings.ToLower(label)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// FilterAll returns the relevant subset of items in input order, capped at
// the policy's MaxItems when set.
func FilterAll(items []models.DiffItem, policy models.FilterPolicy) []models.DiffItem {
	accepted := make([]models.DiffItem, 0, len(items))
	for _, item := range items {
		if !IsRelevant(item, policy) {
			continue
		}
		accepted = append(accepted, item)
		if policy.MaxItems > 0 && len(accepted) >= policy.MaxItems {
			break
		}
	}
	return accepted
}
