package enrich

import (
	"context"
	"fmt"
	"sort"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/notewire/pkg/models"
)

// GitLabLookup fetches enrichment through the GitLab API client.
type GitLabLookup struct {
	client *gitlab.Client
}

// NewGitLabLookup builds a lookup against baseURL (empty for gitlab.com).
func NewGitLabLookup(baseURL, token string) (*GitLabLookup, error) {
	var opts []gitlab.ClientOptionFunc
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(fmt.Sprintf("%s/api/v4", baseURL)))
	}

	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gitlab client: %w", err)
	}
	return &GitLabLookup{client: client}, nil
}

// ToolsInfo fetches the project's top contributors and the issues the merge
// request closes.
func (g *GitLabLookup) ToolsInfo(ctx context.Context, coords Coordinates, description string) (models.ToolsInfo, error) {
	var tools models.ToolsInfo
	project := coords.Owner + "/" + coords.Repo

	contributors, _, err := g.client.Repositories.Contributors(project, &gitlab.ListContributorsOptions{
		ListOptions: gitlab.ListOptions{PerPage: maxContributors},
	}, gitlab.WithContext(ctx))
	if err != nil {
		return tools, fmt.Errorf("fetch contributors: %w", err)
	}

	sort.Slice(contributors, func(i, j int) bool {
		return contributors[i].Commits > contributors[j].Commits
	})
	for _, c := range contributors {
		tools.Contributors = append(tools.Contributors, models.Contributor{
			Name:          c.Name,
			Contributions: c.Commits,
		})
	}

	issues, _, err := g.client.MergeRequests.GetIssuesClosedOnMerge(project, coords.Number, &gitlab.GetIssuesClosedOnMergeOptions{
		PerPage: maxRelatedIssues,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return tools, fmt.Errorf("fetch closed issues: %w", err)
	}
	for _, issue := range issues {
		tools.RelatedIssues = append(tools.RelatedIssues, fmt.Sprintf("#%d %s", issue.IID, issue.Title))
	}

	return tools, nil
}
