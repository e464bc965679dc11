package collect

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elm-pipeline/internal/diagnostic"
	"elm-pipeline/internal/fixture"
	"elm-pipeline/internal/manifest"
	"elm-pipeline/internal/readme"
	"elm-pipeline/internal/transform"
)

var (
	widgets = fixture.Dep{Name: "acme/widgets", Version: "1.0.0"}
	gadgets = fixture.Dep{Name: "acme-labs/gadgets", Version: "3.2.1"}
	core    = fixture.Dep{Name: "elm/core", Version: "1.0.5"}
	testDep = fixture.Dep{Name: "elm-explorations/test", Version: "2.2.0"}
)

func setup(t *testing.T) (root, home string) {
	t.Helper()

	root = t.TempDir()
	home = t.TempDir()

	fixture.Write(t, filepath.Join(root, "elm.json"),
		fixture.Manifest([]fixture.Dep{widgets, core}, []fixture.Dep{gadgets}, []fixture.Dep{testDep}))

	return root, home
}

func TestReadmePath(t *testing.T) {
	got := ReadmePath("/home/u/.elm", "0.19.1", manifest.Package{Name: "elm/core", Version: "1.0.5"})
	assert.Equal(t, filepath.FromSlash("/home/u/.elm/0.19.1/packages/elm/core/1.0.5/README.md"), got)
}

func TestCollectOrder(t *testing.T) {
	root, home := setup(t)

	fixture.Write(t, filepath.Join(root, "README.md"),
		fixture.Readme("app", [2]string{"own();", "ownFast();"}))
	fixture.InstallPackage(t, home, gadgets,
		fixture.Readme("gadgets", [2]string{"var $acme_labs$gadgets$G$slow = 1;", "var $acme_labs$gadgets$G$slow = 2;"}))
	fixture.InstallPackage(t, home, widgets,
		fixture.Readme("widgets", [2]string{"$acme$widgets$W$a", "$acme$widgets$W$b"}))

	var diags diagnostic.Diagnostics

	got, err := Collect(Options{ProjectRoot: root, ElmHome: home, Diagnostics: &diags})
	require.NoError(t, err)

	assert.Equal(t, []transform.Transform{
		{Find: "own();", Replace: "ownFast();"},
		{Find: "$author$project$W$a", Replace: "$author$project$W$b"},
		{Find: "var $author$project$G$slow = 1;", Replace: "var $author$project$G$slow = 2;"},
	}, got)

	// elm/core has no README installed.
	require.Len(t, diags.Infos, 4)
	assert.Equal(t, diagnostic.CodeReadmeMissing, diags.Infos[2].Code)
	assert.Equal(t, "elm/core", diags.Infos[2].Package)
}

func TestCollectTestDependencies(t *testing.T) {
	root, home := setup(t)

	fixture.InstallPackage(t, home, widgets, fixture.Readme("widgets", [2]string{"w", "W"}))
	fixture.InstallPackage(t, home, testDep, fixture.Readme("test", [2]string{"t", "T"}))

	normal, err := Collect(Options{ProjectRoot: root, ElmHome: home})
	require.NoError(t, err)
	assert.Equal(t, []transform.Transform{{Find: "w", Replace: "W"}}, normal)

	test, err := Collect(Options{ProjectRoot: root, ElmHome: home, Test: true})
	require.NoError(t, err)
	assert.Equal(t, []transform.Transform{{Find: "t", Replace: "T"}}, test)
}

func TestCollectNoReadmes(t *testing.T) {
	root, home := setup(t)

	got, err := Collect(Options{ProjectRoot: root, ElmHome: home})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCollectErrors(t *testing.T) {
	t.Run("manifest missing", func(t *testing.T) {
		_, err := Collect(Options{ProjectRoot: t.TempDir(), ElmHome: t.TempDir()})
		require.ErrorIs(t, err, manifest.ErrManifestNotFound)
	})

	t.Run("version missing", func(t *testing.T) {
		root := t.TempDir()
		fixture.Write(t, filepath.Join(root, "elm.json"), `{"type": "application"}`)

		_, err := Collect(Options{ProjectRoot: root, ElmHome: t.TempDir()})
		require.ErrorIs(t, err, manifest.ErrManifestFieldMissing)
	})

	t.Run("malformed dependency README", func(t *testing.T) {
		root, home := setup(t)
		fixture.InstallPackage(t, home, core, "[x]("+fixture.Anchor+")\n\n```js\nlonely\n```\n")

		_, err := Collect(Options{ProjectRoot: root, ElmHome: home})
		require.ErrorIs(t, err, readme.ErrMalformedDoc)
	})
}

func TestWalkerMemoizesDependencyScans(t *testing.T) {
	root, home := setup(t)
	path := fixture.InstallPackage(t, home, widgets, fixture.Readme("widgets", [2]string{"a", "b"}))

	w := NewWalker(nil)

	first, err := w.Collect(Options{ProjectRoot: root, ElmHome: home})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, w.memo.Len())

	// Rewrite with the same mtime: the memoized scan is returned.
	info, err := os.Stat(path)
	require.NoError(t, err)
	fixture.Write(t, path, fixture.Readme("widgets", [2]string{"c", "d"}))
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	second, err := w.Collect(Options{ProjectRoot: root, ElmHome: home})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A newer mtime invalidates the memo.
	later := info.ModTime().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := w.Collect(Options{ProjectRoot: root, ElmHome: home})
	require.NoError(t, err)
	assert.Equal(t, []transform.Transform{{Find: "c", Replace: "d"}}, third)
}
