package packager

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, path := range paths {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(path), 0o644))
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "docker-image", want: FormatDockerImage},
		{input: "lambda-zip", want: FormatLambdaZip},
		{input: "dataset", want: FormatDataset},
		{input: "static-site", want: FormatStaticSite},
		{input: "jar", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewCoversEveryFormat(t *testing.T) {
	for _, format := range []Format{FormatDockerImage, FormatLambdaZip, FormatDataset, FormatStaticSite} {
		pkgr, err := New(format)
		require.NoError(t, err)
		assert.Equal(t, format, pkgr.Format())
	}

	_, err := New(Format("tarball"))
	assert.Error(t, err)
}

func TestLambdaZipPackager(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "handler.py", "lib/helpers.py")
	out := t.TempDir()

	pkgr, err := New(FormatLambdaZip)
	require.NoError(t, err)

	artifact, err := pkgr.Package(context.Background(), Job{
		Name:      "checkout",
		Version:   "abc123",
		SourceDir: src,
		OutputDir: out,
	})
	require.NoError(t, err)

	assert.Equal(t, ModeCopy, artifact.Mode)
	assert.Equal(t, "lambda/checkout/abc123", artifact.KeyPrefix)
	require.Len(t, artifact.Files, 1)

	reader, err := zip.OpenReader(artifact.Files[0])
	require.NoError(t, err)
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, entry := range reader.File {
		names = append(names, entry.Name)
	}
	assert.ElementsMatch(t, []string{"handler.py", "lib/helpers.py"}, names)
}

func TestLambdaZipPackagerExcludesPatterns(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "handler.py", "handler_test.py", "lib/helpers.py", "lib/helpers_test.py")
	out := t.TempDir()

	pkgr, err := New(FormatLambdaZip)
	require.NoError(t, err)

	artifact, err := pkgr.Package(context.Background(), Job{
		Name:      "checkout",
		Version:   "abc123",
		SourceDir: src,
		OutputDir: out,
		Excludes:  []string{"**/*_test.py"},
	})
	require.NoError(t, err)
	require.Len(t, artifact.Files, 1)

	reader, err := zip.OpenReader(artifact.Files[0])
	require.NoError(t, err)
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, entry := range reader.File {
		names = append(names, entry.Name)
	}
	assert.ElementsMatch(t, []string{"handler.py", "lib/helpers.py"}, names)
}

func TestStaticSitePackagerExcludesPatterns(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "index.html", "drafts/wip.html")

	pkgr, err := New(FormatStaticSite)
	require.NoError(t, err)

	artifact, err := pkgr.Package(context.Background(), Job{
		Name:      "docs",
		Version:   "main",
		SourceDir: src,
		Excludes:  []string{"drafts/**"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(src, "index.html")}, artifact.Files)
}

func TestLambdaZipPackagerNoSources(t *testing.T) {
	pkgr, err := New(FormatLambdaZip)
	require.NoError(t, err)

	_, err = pkgr.Package(context.Background(), Job{
		Name:      "checkout",
		Version:   "abc123",
		SourceDir: t.TempDir(),
	})
	assert.Error(t, err)
}

func TestDockerImagePackagerFindsTarballs(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "out/api.tar", "out/worker.tar.gz", "notes.txt")

	pkgr, err := New(FormatDockerImage)
	require.NoError(t, err)

	artifact, err := pkgr.Package(context.Background(), Job{
		Name:      "api",
		Version:   "v2",
		SourceDir: src,
	})
	require.NoError(t, err)

	assert.Equal(t, ModeCopy, artifact.Mode)
	assert.Equal(t, "images/api/v2", artifact.KeyPrefix)
	assert.ElementsMatch(t, []string{
		filepath.Join(src, "out/api.tar"),
		filepath.Join(src, "out/worker.tar.gz"),
	}, artifact.Files)
}

func TestDatasetPackagerUsesSyncMode(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "base.zip", "extra.csv")

	pkgr, err := New(FormatDataset)
	require.NoError(t, err)

	artifact, err := pkgr.Package(context.Background(), Job{
		Name:      "geo",
		Version:   "2026-08",
		SourceDir: src,
	})
	require.NoError(t, err)

	assert.Equal(t, ModeSync, artifact.Mode)
	assert.Equal(t, "datasets/geo/2026-08", artifact.KeyPrefix)
	assert.False(t, artifact.DeleteExtraneous)
	assert.Len(t, artifact.Files, 2)
}

func TestStaticSitePackagerDeletesExtraneous(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "index.html")

	pkgr, err := New(FormatStaticSite)
	require.NoError(t, err)

	artifact, err := pkgr.Package(context.Background(), Job{
		Name:      "docs",
		Version:   "main",
		SourceDir: src,
	})
	require.NoError(t, err)

	assert.Equal(t, ModeSync, artifact.Mode)
	assert.True(t, artifact.DeleteExtraneous)
	assert.Equal(t, "sites/docs/main", artifact.KeyPrefix)
}
