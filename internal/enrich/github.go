package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/notewire/internal/retry"
	"github.com/notewire/pkg/models"
)

// GitHubLookup fetches enrichment from the GitHub REST API.
type GitHubLookup struct {
	BaseURL string // defaults to https://api.github.com
	Token   string
	client  *http.Client
	retry   retry.Config
}

// NewGitHubLookup builds a lookup using token for authentication. An empty
// token works against public repositories at reduced rate limits.
func NewGitHubLookup(token string) *GitHubLookup {
	return &GitHubLookup{
		BaseURL: "https://api.github.com",
		Token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
		retry:   retry.DefaultConfig(),
	}
}

type githubContributor struct {
	Login         string `json:"login"`
	AvatarURL     string `json:"avatar_url"`
	Contributions int    `json:"contributions"`
}

type githubIssue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// ToolsInfo fetches the repository's top contributors and resolves issue
// references found in the change description to issue titles.
func (g *GitHubLookup) ToolsInfo(ctx context.Context, coords Coordinates, description string) (models.ToolsInfo, error) {
	var tools models.ToolsInfo

	var contributors []githubContributor
	contribURL := fmt.Sprintf("%s/repos/%s/%s/contributors?per_page=%d", g.BaseURL, coords.Owner, coords.Repo, maxContributors)
	if err := g.getJSON(ctx, contribURL, &contributors); err != nil {
		return tools, fmt.Errorf("fetch contributors: %w", err)
	}

	sort.Slice(contributors, func(i, j int) bool {
		return contributors[i].Contributions > contributors[j].Contributions
	})
	for _, c := range contributors {
		tools.Contributors = append(tools.Contributors, models.Contributor{
			Name:          c.Login,
			Avatar:        c.AvatarURL,
			Contributions: c.Contributions,
		})
	}

	// Issue refs come from the description; a ref that does not resolve is
	// dropped rather than failing the whole payload.
	for _, number := range issueRefs(description, maxRelatedIssues) {
		var issue githubIssue
		issueURL := fmt.Sprintf("%s/repos/%s/%s/issues/%d", g.BaseURL, coords.Owner, coords.Repo, number)
		if err := g.getJSON(ctx, issueURL, &issue); err != nil {
			continue
		}
		tools.RelatedIssues = append(tools.RelatedIssues, fmt.Sprintf("#%d %s", issue.Number, issue.Title))
	}

	return tools, nil
}

func (g *GitHubLookup) getJSON(ctx context.Context, url string, target interface{}) error {
	return retry.Do(ctx, g.retry, "github_lookup", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if g.Token != "" {
			req.Header.Set("Authorization", "token "+g.Token)
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		req.Header.Set("User-Agent", "Notewire-Bot")

		resp, err := g.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("GitHub API request failed with status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(target)
	})
}
