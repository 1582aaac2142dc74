// Package enrich resolves the per-item enrichment payload: related issues
// and top contributors for the repository a diff item came from. Every
// failure at this boundary degrades to an empty payload; enrichment is
// decoration, never a reason to abort a note stream.
package enrich

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/notewire/pkg/models"
)

const (
	maxRelatedIssues = 3
	maxContributors  = 3
)

// Coordinates locates a change inside its hosting service.
type Coordinates struct {
	Host   string // e.g. "github.com"
	Owner  string // owner or full group path
	Repo   string
	Number int // PR / MR number
}

// Lookup fetches enrichment for one set of repository coordinates.
type Lookup interface {
	ToolsInfo(ctx context.Context, coords Coordinates, description string) (models.ToolsInfo, error)
}

// Service routes items to a host-specific lookup and swallows failures.
type Service struct {
	github Lookup
	gitlab Lookup
}

// NewService builds an enrichment service. Either lookup may be nil, in
// which case items for that host get an empty payload.
func NewService(github, gitlab Lookup) *Service {
	return &Service{github: github, gitlab: gitlab}
}

// ToolsInfoFor returns the enrichment payload for an item. It never fails:
// unparseable URLs, missing lookups, and lookup errors all produce an empty
// ToolsInfo with a log line.
func (s *Service) ToolsInfoFor(ctx context.Context, item models.DiffItem) models.ToolsInfo {
	coords, err := ParseCoordinates(item.URL)
	if err != nil {
		log.Debug().Str("pr_id", item.ID).Err(err).Msg("enrichment skipped: cannot derive repository coordinates")
		return models.ToolsInfo{}
	}

	var lookup Lookup
	switch {
	case strings.Contains(coords.Host, "github"):
		lookup = s.github
	case strings.Contains(coords.Host, "gitlab"):
		lookup = s.gitlab
	}
	if lookup == nil {
		return models.ToolsInfo{}
	}

	tools, err := lookup.ToolsInfo(ctx, coords, item.Description)
	if err != nil {
		log.Warn().Str("pr_id", item.ID).Err(err).Msg("enrichment lookup failed, continuing without tools payload")
		return models.ToolsInfo{}
	}

	clampTools(&tools)
	return tools
}

// ParseCoordinates derives repository coordinates from a change URL, e.g.
// https://github.com/acme/widget/pull/42 or
// https://gitlab.example.com/group/sub/proj/-/merge_requests/7.
func ParseCoordinates(rawURL string) (Coordinates, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return Coordinates{}, fmt.Errorf("invalid change URL %q", rawURL)
	}

	path := strings.Trim(parsed.Path, "/")

	if idx := strings.Index(path, "/-/merge_requests/"); idx >= 0 {
		project := path[:idx]
		number, err := strconv.Atoi(strings.Split(path[idx+len("/-/merge_requests/"):], "/")[0])
		if err != nil {
			return Coordinates{}, fmt.Errorf("invalid merge request number in %q", rawURL)
		}
		slash := strings.LastIndex(project, "/")
		if slash < 0 {
			return Coordinates{}, fmt.Errorf("invalid project path in %q", rawURL)
		}
		return Coordinates{
			Host:   parsed.Host,
			Owner:  project[:slash],
			Repo:   project[slash+1:],
			Number: number,
		}, nil
	}

	parts := strings.Split(path, "/")
	if len(parts) >= 4 && (parts[2] == "pull" || parts[2] == "merge_requests") {
		number, err := strconv.Atoi(parts[3])
		if err != nil {
			return Coordinates{}, fmt.Errorf("invalid change number in %q", rawURL)
		}
		return Coordinates{
			Host:   parsed.Host,
			Owner:  parts[0],
			Repo:   parts[1],
			Number: number,
		}, nil
	}

	return Coordinates{}, fmt.Errorf("unrecognized change URL %q", rawURL)
}

var issueRefPattern = regexp.MustCompile(`#(\d+)`)

// issueRefs extracts distinct issue numbers referenced in text, in order of
// first appearance.
func issueRefs(text string, limit int) []int {
	seen := map[int]bool{}
	var refs []int
	for _, match := range issueRefPattern.FindAllStringSubmatch(text, -1) {
		number, err := strconv.Atoi(match[1])
		if err != nil || seen[number] {
			continue
		}
		seen[number] = true
		refs = append(refs, number)
		if len(refs) >= limit {
			break
		}
	}
	return refs
}

func clampTools(tools *models.ToolsInfo) {
	if len(tools.RelatedIssues) > maxRelatedIssues {
		tools.RelatedIssues = tools.RelatedIssues[:maxRelatedIssues]
	}
	if len(tools.Contributors) > maxContributors {
		tools.Contributors = tools.Contributors[:maxContributors]
	}
}
