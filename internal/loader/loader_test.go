package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corekb/corekb/internal/config"
)

func testChunking() config.Chunking {
	return config.Chunking{ChunkSize: 1000, Overlap: 200, MinChunkSize: 10}
}

func TestCleanSourceStripsCopyright(t *testing.T) {
	content := "/* \n * Copyright (C) 2016+ AzerothCore\n */\n\nvoid Foo() {}\n"
	cleaned := Clean(content, "cpp")
	assert.NotContains(t, cleaned, "Copyright")
	assert.Contains(t, cleaned, "void Foo() {}")
}

func TestCleanSourceTrimsTrailingWhitespace(t *testing.T) {
	cleaned := Clean("int x;   \nint y;\t\n", "h")
	assert.Equal(t, "int x;\nint y;", cleaned)
}

func TestCleanMarkdownKeepsImageAltText(t *testing.T) {
	cleaned := Clean("See ![setup diagram](img/setup.png) for details", "md")
	assert.Equal(t, "See setup diagram for details", cleaned)
}

func TestCleanMarkdownNormalizesHeadings(t *testing.T) {
	cleaned := Clean("##   Commands\ntext", "md")
	assert.Equal(t, "## Commands\ntext", cleaned)
}

func TestCleanConfigDropsBlankAndDoubleHash(t *testing.T) {
	content := "## section banner\n\n# keep this comment\nAiPlayerbot.Enabled = 1\n"
	cleaned := Clean(content, "conf")
	assert.Equal(t, "# keep this comment\nAiPlayerbot.Enabled = 1", cleaned)
}

func TestCleanCollapsesBlankRuns(t *testing.T) {
	cleaned := Clean("a\n\n\n\n\nb", "txt")
	assert.Equal(t, "a\n\nb", cleaned)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "PlayerbotAI.cpp", "void PlayerbotAI::UpdateAI(uint32 diff) { DoNextAction(); }\n")
	writeFile(t, dir, "README.md", "# Playerbots\nBot module documentation.\n")
	writeFile(t, dir, "notes.xyz", "unsupported extension\n")
	writeFile(t, dir, "empty.cpp", "   \n")
	writeFile(t, filepath.Join(dir, ".git"), "config.cpp", "not source\n")
	writeFile(t, filepath.Join(dir, "build"), "gen.cpp", "not source\n")

	l := New(testChunking())
	docs, err := l.LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	for _, doc := range docs {
		assert.NotEmpty(t, doc.Content)
		assert.NotEmpty(t, doc.Metadata.Filename)
	}
}

func TestLoadFileTagsMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mod-playerbots", "src", "strategy", "FollowAction.cpp")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("class FollowAction {\n    void Execute();\n};\n"), 0o644))

	l := New(testChunking())
	doc, ok := l.LoadFile(path)
	require.True(t, ok)

	assert.Equal(t, "FollowAction.cpp", doc.Metadata.Filename)
	assert.Equal(t, "playerbots", doc.Metadata.Module)
	assert.Equal(t, "strategy", doc.Metadata.Subsystem)
	assert.Equal(t, "cpp", doc.Metadata.Type)
}

func TestLoadFileMissing(t *testing.T) {
	l := New(testChunking())
	_, ok := l.LoadFile(filepath.Join(t.TempDir(), "nope.cpp"))
	assert.False(t, ok)
}

func TestChunkDocuments(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	for i := 0; i < 80; i++ {
		b.WriteString("AiPlayerbot.RandomBotCount controls how many random bots spawn.\n")
	}
	writeFile(t, dir, "guide.txt", b.String())

	l := New(testChunking())
	docs, err := l.LoadDirectory(dir)
	require.NoError(t, err)

	chunks := l.ChunkDocuments(docs)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, "guide.txt", c.Metadata.Filename)
		assert.GreaterOrEqual(t, len(strings.TrimSpace(c.Content)), 10)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
