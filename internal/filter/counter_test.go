package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountMeaningfulChanges(t *testing.T) {
	tests := []struct {
		name   string
		diff   string
		strict bool
		want   int
	}{
		{
			name: "whitespace only changes count zero",
			diff: strings.Join([]string{
				"+",
				"-",
				"+   ",
				"-\t\t",
			}, "\n"),
			want: 0,
		},
		{
			name: "comment lines excluded",
			diff: strings.Join([]string{
				"+// a comment",
				"+# shell comment",
				"+/* block start",
				"+ * block middle",
				"+real(code)",
			}, "\n"),
			want: 1,
		},
		{
			name: "context lines never counted",
			diff: strings.Join([]string{
				" unchanged := 1",
				" alsoUnchanged := 2",
				"+added := 3",
			}, "\n"),
			want: 1,
		},
		{
			name: "file headers are not changes",
			diff: strings.Join([]string{
				"--- a/main.go",
				"+++ b/main.go",
				"+x := 1",
			}, "\n"),
			want: 1,
		},
		{
			name: "version bump excluded in strict mode",
			diff: strings.Join([]string{
				`+  "version": "1.2.3"`,
				`-  "version": "1.2.2"`,
				`+"lodash": "^4.17.21"`,
				"+real(code)",
			}, "\n"),
			strict: true,
			want:   1,
		},
		{
			name: "version bump counted in lenient mode",
			diff: strings.Join([]string{
				`+  "version": "1.2.3"`,
				"+real(code)",
			}, "\n"),
			strict: false,
			want:   2,
		},
		{
			name: "empty diff",
			diff: "",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountMeaningfulChanges(tt.diff, tt.strict))
		})
	}
}

func TestCountMeaningfulChangesDoesNotMistakeAssignments(t *testing.T) {
	// := assignments with numeric literals are code, not version bumps.
	diff := "+threshold := 1.5"
	assert.Equal(t, 1, CountMeaningfulChanges(diff, true))
}
