package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notewire/pkg/models"
)

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    Coordinates
		wantErr bool
	}{
		{
			name: "github pull request",
			url:  "https://github.com/acme/widget/pull/42",
			want: Coordinates{Host: "github.com", Owner: "acme", Repo: "widget", Number: 42},
		},
		{
			name: "gitlab merge request",
			url:  "https://gitlab.com/acme/widget/-/merge_requests/7",
			want: Coordinates{Host: "gitlab.com", Owner: "acme", Repo: "widget", Number: 7},
		},
		{
			name: "gitlab nested group",
			url:  "https://gitlab.example.com/org/team/widget/-/merge_requests/19",
			want: Coordinates{Host: "gitlab.example.com", Owner: "org/team", Repo: "widget", Number: 19},
		},
		{
			name:    "not a change url",
			url:     "https://example.com/blog/post",
			wantErr: true,
		},
		{
			name:    "non numeric id",
			url:     "https://github.com/acme/widget/pull/abc",
			wantErr: true,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoordinates(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIssueRefs(t *testing.T) {
	refs := issueRefs("Fixes #12 and closes #7, relates to #12 and #99 and #100", 3)
	assert.Equal(t, []int{12, 7, 99}, refs)

	assert.Empty(t, issueRefs("no references here", 3))
}

type failingLookup struct{}

func (f failingLookup) ToolsInfo(ctx context.Context, coords Coordinates, description string) (models.ToolsInfo, error) {
	return models.ToolsInfo{}, errors.New("upstream exploded")
}

func TestServiceSwallowsLookupFailures(t *testing.T) {
	service := NewService(failingLookup{}, nil)

	tools := service.ToolsInfoFor(context.Background(), models.DiffItem{
		ID:  "1",
		URL: "https://github.com/acme/widget/pull/42",
	})
	assert.Equal(t, models.ToolsInfo{}, tools)
}

func TestServiceSwallowsUnparseableURLs(t *testing.T) {
	service := NewService(failingLookup{}, nil)

	tools := service.ToolsInfoFor(context.Background(), models.DiffItem{ID: "1", URL: ":not a url:"})
	assert.Equal(t, models.ToolsInfo{}, tools)
}

func TestServiceWithoutLookupForHost(t *testing.T) {
	service := NewService(nil, nil)

	tools := service.ToolsInfoFor(context.Background(), models.DiffItem{
		ID:  "1",
		URL: "https://gitlab.com/acme/widget/-/merge_requests/7",
	})
	assert.Equal(t, models.ToolsInfo{}, tools)
}

func TestGitHubLookupToolsInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/widget/contributors":
			w.Write([]byte(`[
				{"login":"bob","avatar_url":"https://example.com/b.png","contributions":3},
				{"login":"ada","avatar_url":"https://example.com/a.png","contributions":120}
			]`))
		case "/repos/acme/widget/issues/7":
			w.Write([]byte(`{"number":7,"title":"crash on empty input"}`))
		case "/repos/acme/widget/issues/999":
			http.NotFound(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	lookup := NewGitHubLookup("")
	lookup.BaseURL = server.URL

	coords := Coordinates{Host: "github.com", Owner: "acme", Repo: "widget", Number: 42}
	tools, err := lookup.ToolsInfo(context.Background(), coords, "Fixes #7, maybe #999 too")
	require.NoError(t, err)

	// Sorted by contributions descending.
	require.Len(t, tools.Contributors, 2)
	assert.Equal(t, "ada", tools.Contributors[0].Name)
	assert.Equal(t, 120, tools.Contributors[0].Contributions)

	// The unresolvable ref is dropped, not fatal.
	assert.Equal(t, []string{"#7 crash on empty input"}, tools.RelatedIssues)
}
