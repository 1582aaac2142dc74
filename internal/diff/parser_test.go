package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoFileDiff = `diff --git a/parser.go b/parser.go
--- a/parser.go
+++ b/parser.go
@@ -10,3 +10,5 @@
 func parse(input []byte) error {
+	if input == nil {
+		return errEmptyInput
+	}
-	_ = input
 	return nil
 }
diff --git a/README.md b/README.md
--- a/README.md
+++ b/README.md
@@ -1,1 +1,2 @@
 # widget
+Parsing now rejects nil input.
`

func TestSummarizeTwoFiles(t *testing.T) {
	stats := Summarize(twoFileDiff)
	require.Len(t, stats, 2)

	assert.Equal(t, "parser.go", stats[0].Path)
	assert.Equal(t, "go", stats[0].FileType)
	assert.Equal(t, 3, stats[0].Additions)
	assert.Equal(t, 1, stats[0].Deletions)

	assert.Equal(t, "README.md", stats[1].Path)
	assert.Equal(t, "md", stats[1].FileType)
	assert.Equal(t, 1, stats[1].Additions)
	assert.Equal(t, 0, stats[1].Deletions)
}

func TestSummarizeBareHunk(t *testing.T) {
	stats := Summarize("@@ -1,1 +1,2 @@\n context\n+added line\n")
	require.Len(t, stats, 1)

	assert.Empty(t, stats[0].Path)
	assert.Equal(t, 1, stats[0].Additions)
	assert.Equal(t, 0, stats[0].Deletions)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Nil(t, Summarize(""))
	assert.Nil(t, Summarize("   \n"))
}

func TestSummarizeFileWithoutExtension(t *testing.T) {
	stats := Summarize("diff --git a/Makefile b/Makefile\n+build:\n")
	require.Len(t, stats, 1)
	assert.Equal(t, "Makefile", stats[0].Path)
	assert.Empty(t, stats[0].FileType)
}
