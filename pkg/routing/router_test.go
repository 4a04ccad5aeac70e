package routing

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filebutler/filebutler/pkg/domain"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = ioutil.Discard

	return logger
}

type routerFixture struct {
	dropZone string
	admin    string
	field    string
	fallback string

	router *Router
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	base := t.TempDir()

	f := &routerFixture{
		dropZone: filepath.Join(base, "DropZone"),
		admin:    filepath.Join(base, "Admin"),
		field:    filepath.Join(base, "FieldProjects"),
		fallback: filepath.Join(base, "Unclassified"),
	}

	require.NoError(t, os.MkdirAll(f.dropZone, 0o755))

	classifier := NewClassifier(map[string]string{
		".pdf": "admin",
		".tif": "field_projects",
	}, "unclassified")

	f.router = NewRouter(discardLogger(), classifier, f.dropZone, map[string]string{
		"admin":          f.admin,
		"field_projects": f.field,
	}, f.fallback)

	return f
}

func (f *routerFixture) drop(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.dropZone, name), []byte(content), 0o644))
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

func TestRouter_RoutesByExtension(t *testing.T) {
	f := newRouterFixture(t)

	f.drop(t, "report.pdf", "quarterly numbers")
	f.drop(t, "field.tif", "raster bytes")

	report, err := f.router.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Moved)
	assert.Equal(t, 0, report.Failed)

	assert.Empty(t, listNames(t, f.dropZone))
	assert.Equal(t, []string{"report.pdf"}, listNames(t, f.admin))
	assert.Equal(t, []string{"field.tif"}, listNames(t, f.field))
}

func TestRouter_UnmappedExtensionGoesToFallback(t *testing.T) {
	f := newRouterFixture(t)

	f.drop(t, "mystery.xyz", "who knows")

	report, err := f.router.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Moved)
	assert.Equal(t, []string{"mystery.xyz"}, listNames(t, f.fallback))
}

func TestRouter_DuplicateContentIsDropped(t *testing.T) {
	f := newRouterFixture(t)

	f.drop(t, "original.pdf", "same bytes")
	f.drop(t, "copy.pdf", "same bytes")

	report, err := f.router.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Moved)
	assert.Equal(t, 1, report.Duplicates)

	// Exactly one copy survives at the destination, none in the drop zone.
	assert.Empty(t, listNames(t, f.dropZone))
	assert.Len(t, listNames(t, f.admin), 1)
}

func TestRouter_DuplicateOfExistingDestinationFile(t *testing.T) {
	f := newRouterFixture(t)

	require.NoError(t, os.MkdirAll(f.admin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.admin, "already_there.pdf"), []byte("same bytes"), 0o644))

	f.drop(t, "incoming.pdf", "same bytes")

	report, err := f.router.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Duplicates)
	assert.Empty(t, listNames(t, f.dropZone))
	assert.Equal(t, []string{"already_there.pdf"}, listNames(t, f.admin))
}

func TestRouter_NameCollisionGetsDeterministicSuffix(t *testing.T) {
	f := newRouterFixture(t)

	require.NoError(t, os.MkdirAll(f.admin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.admin, "report.pdf"), []byte("old content"), 0o644))

	f.drop(t, "report.pdf", "new content")

	report, err := f.router.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Moved)

	// Both versions exist; the original is untouched.
	names := listNames(t, f.admin)
	assert.Len(t, names, 2)

	old, err := os.ReadFile(filepath.Join(f.admin, "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "old content", string(old))

	outcome := report.Outcomes[0]
	assert.Equal(t, domain.StatusMoved, outcome.Status)
	assert.Contains(t, outcome.Destination, "report_"+outcome.Record.Fingerprint[:8]+".pdf")
}

func TestRouter_ZeroLengthFileLeftInPlace(t *testing.T) {
	f := newRouterFixture(t)

	f.drop(t, "empty.pdf", "")

	report, err := f.router.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, domain.StatusSkippedInvalid, report.Outcomes[0].Status)
	assert.Equal(t, domain.ReasonInvalidContent, report.Outcomes[0].Reason)

	// Invalid files stay where they were dropped.
	assert.Equal(t, []string{"empty.pdf"}, listNames(t, f.dropZone))
}

func TestRouter_SkipsHiddenFilesAndSubdirectories(t *testing.T) {
	f := newRouterFixture(t)

	f.drop(t, ".DS_Store", "metadata")
	require.NoError(t, os.MkdirAll(filepath.Join(f.dropZone, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.dropZone, "nested", "inner.pdf"), []byte("x"), 0o644))

	report, err := f.router.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
}

func TestRouter_SecondRunWithCollisionNeverOverwrites(t *testing.T) {
	f := newRouterFixture(t)

	f.drop(t, "report.pdf", "version one")
	_, err := f.router.Run(context.Background())
	require.NoError(t, err)

	f.drop(t, "report.pdf", "version two")
	report, err := f.router.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Moved)
	assert.Len(t, listNames(t, f.admin), 2)
}
