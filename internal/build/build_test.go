package build

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aellingwood/skygen/internal/config"
	"github.com/aellingwood/skygen/internal/observability"
	"github.com/aellingwood/skygen/internal/sky"
)

var (
	night = sky.RGB(10, 10, 40)
	noon  = sky.RGB(135, 206, 235)
)

// testConfig is a three-stop day palette with a small raster so the
// tests stay fast.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.SkyColours = map[int]sky.Colour{0: night, 12: noon, 23: night}
	cfg.Name = "Test"
	cfg.Timezone = "UTC"
	cfg.Output.Folder = "blobs"
	cfg.Image.Width = 150
	cfg.Image.Height = 50
	return cfg
}

func allHours() []int {
	hours := make([]int, HoursPerDay)
	for i := range hours {
		hours[i] = i
	}
	return hours
}

// countingFs counts files opened for writing.
type countingFs struct {
	afero.Fs
	mu     sync.Mutex
	writes int
}

func (c *countingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) != 0 {
		c.mu.Lock()
		c.writes++
		c.mu.Unlock()
	}
	return c.Fs.OpenFile(name, flag, perm)
}

func (c *countingFs) Create(name string) (afero.File, error) {
	return c.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

// failingFs refuses to write files whose base name is in deny.
type failingFs struct {
	afero.Fs
	deny map[string]bool
}

func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) != 0 && f.deny[filepath.Base(name)] {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f *failingFs) Create(name string) (afero.File, error) {
	return f.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

// --- Writer utility tests ---

func TestEnsureDir(t *testing.T) {
	fsys := afero.NewMemMapFs()

	created, err := EnsureDir(fsys, "a/b")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureDir(fsys, "a/b")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = EnsureDir(afero.NewReadOnlyFs(afero.NewMemMapFs()), "c")
	var dirErr *DirError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "c", dirErr.Dir)
}

func TestWriteFile_RequiresParent(t *testing.T) {
	fsys := afero.NewOsFs()
	dir := t.TempDir()

	require.NoError(t, WriteFile(fsys, filepath.Join(dir, "00.png"), []byte("x")))
	assert.True(t, Exists(fsys, filepath.Join(dir, "00.png")))

	err := WriteFile(fsys, filepath.Join(dir, "missing", "00.png"), []byte("x"))
	require.Error(t, err)
}

func TestDirSize(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "out/a", []byte("12345"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "out/sub/b", []byte("123"), 0o644))

	size, err := DirSize(fsys, "out")
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)

	size, err = DirSize(fsys, "nowhere")
	require.NoError(t, err)
	assert.Zero(t, size)
}

// --- Builder tests ---

func TestTargets(t *testing.T) {
	cfg := testConfig()
	cfg.Output.Formats = []string{"png", "webp"}
	b := NewBuilder(cfg, BuildOptions{Fs: afero.NewMemMapFs()})

	assert.Equal(t, []string{"blobs/05.png", "blobs/05.webp"}, b.Targets(5))
}

func TestBuild_EmptyFolder(t *testing.T) {
	fsys := afero.NewMemMapFs()
	b := NewBuilder(testConfig(), BuildOptions{Fs: fsys})

	result, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, allHours(), result.Generated)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.Failed)
	assert.True(t, result.Regenerated())
	assert.NotEmpty(t, result.RunID)

	for hour := range HoursPerDay {
		path := fmt.Sprintf("blobs/%02d.png", hour)
		assert.True(t, Exists(fsys, path), "missing %s", path)
	}
}

func TestBuild_MidpointColour(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, err := NewBuilder(testConfig(), BuildOptions{Fs: fsys}).Build()
	require.NoError(t, err)

	data, err := afero.ReadFile(fsys, "blobs/06.png")
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 150, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	// Right of the label, above the gradient.
	r, g, b, _ := img.At(140, 5).RGBA()
	want := sky.Lerp(night, noon, 0.5).NRGBA()
	assert.Equal(t, []uint32{uint32(want.R), uint32(want.G), uint32(want.B)}, []uint32{r >> 8, g >> 8, b >> 8})

	// Bottom row is white.
	r, g, b, _ = img.At(75, 49).RGBA()
	assert.Equal(t, []uint32{255, 255, 255}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestBuild_Idempotent(t *testing.T) {
	fsys := &countingFs{Fs: afero.NewMemMapFs()}
	cfg := testConfig()

	first, err := NewBuilder(cfg, BuildOptions{Fs: fsys}).Build()
	require.NoError(t, err)
	require.Len(t, first.Generated, HoursPerDay)
	require.Equal(t, HoursPerDay, fsys.writes)

	fsys.writes = 0
	second, err := NewBuilder(cfg, BuildOptions{Fs: fsys}).Build()
	require.NoError(t, err)

	assert.Zero(t, fsys.writes, "second run must not write")
	assert.Empty(t, second.Generated)
	assert.Equal(t, allHours(), second.Skipped)
	assert.False(t, second.Regenerated())
}

func TestBuild_OnlyMissingHours(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("blobs", 0o755))
	// An existing file is trusted whatever it contains.
	for _, h := range []int{0, 1, 2, 23} {
		require.NoError(t, afero.WriteFile(fsys, fmt.Sprintf("blobs/%02d.png", h), []byte("stale"), 0o644))
	}

	result, err := NewBuilder(testConfig(), BuildOptions{Fs: fsys}).Build()
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 23}, result.Skipped)
	assert.Len(t, result.Generated, 20)
	assert.NotContains(t, result.Generated, 0)

	data, err := afero.ReadFile(fsys, "blobs/01.png")
	require.NoError(t, err)
	assert.Equal(t, "stale", string(data))
}

func TestBuild_Force(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "blobs/00.png", []byte("stale"), 0o644))

	result, err := NewBuilder(testConfig(), BuildOptions{Fs: fsys, Force: true}).Build()
	require.NoError(t, err)
	assert.Len(t, result.Generated, HoursPerDay)

	data, err := afero.ReadFile(fsys, "blobs/00.png")
	require.NoError(t, err)
	assert.NotEqual(t, "stale", string(data))
}

func TestBuild_WriteFailureIsolated(t *testing.T) {
	fsys := &failingFs{Fs: afero.NewMemMapFs(), deny: map[string]bool{"05.png": true}}

	result, err := NewBuilder(testConfig(), BuildOptions{Fs: fsys}).Build()
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	var writeErr *WriteError
	require.ErrorAs(t, result.Failed[5], &writeErr)
	assert.Equal(t, 5, writeErr.Hour)
	assert.True(t, errors.Is(writeErr, os.ErrPermission))

	assert.Len(t, result.Generated, HoursPerDay-1)
	for hour := range HoursPerDay {
		path := fmt.Sprintf("blobs/%02d.png", hour)
		assert.Equal(t, hour != 5, Exists(fsys, path), path)
	}
}

func TestBuild_DirectoryCreationFailureCascades(t *testing.T) {
	fsys := afero.NewReadOnlyFs(afero.NewMemMapFs())
	core, logs := observer.New(zap.InfoLevel)

	result, err := NewBuilder(testConfig(), BuildOptions{Fs: fsys, Logger: zap.New(core)}).Build()
	require.NoError(t, err, "a missing folder is not fatal")

	assert.Empty(t, result.Generated)
	assert.Len(t, result.Failed, HoursPerDay)
	assert.False(t, result.Regenerated())
	assert.Equal(t, 1, logs.FilterMessage("could not create output folder").Len())
	assert.Equal(t, HoursPerDay, logs.FilterMessage("error saving image").Len())
}

func TestBuild_LookupErrorStopsRun(t *testing.T) {
	cfg := testConfig()
	cfg.SkyColours = map[int]sky.Colour{0: night, 12: noon}
	fsys := afero.NewMemMapFs()

	result, err := NewBuilder(cfg, BuildOptions{Fs: fsys}).Build()
	var lookupErr *sky.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, 13, lookupErr.Hour)

	// Hours before the gap were written, the rest were never attempted.
	assert.Equal(t, allHours()[:13], result.Generated)
	assert.False(t, Exists(fsys, "blobs/13.png"))
	assert.False(t, Exists(fsys, "blobs/14.png"))
}

func TestBuild_WraparoundKeyCoversLateHours(t *testing.T) {
	cfg := testConfig()
	cfg.SkyColours = map[int]sky.Colour{0: night, 12: noon, 24: night}
	fsys := afero.NewMemMapFs()

	result, err := NewBuilder(cfg, BuildOptions{Fs: fsys}).Build()
	require.NoError(t, err)
	assert.Equal(t, allHours(), result.Generated)
	assert.False(t, Exists(fsys, "blobs/24.png"))
}

func TestBuild_MultipleFormats(t *testing.T) {
	cfg := testConfig()
	cfg.Output.Formats = []string{"png", "webp"}
	fsys := afero.NewMemMapFs()
	// Only the png exists, so hour 3 is still pending.
	require.NoError(t, afero.WriteFile(fsys, "blobs/03.png", []byte("x"), 0o644))

	result, err := NewBuilder(cfg, BuildOptions{Fs: fsys}).Build()
	require.NoError(t, err)
	assert.Contains(t, result.Generated, 3)
	assert.True(t, Exists(fsys, "blobs/03.webp"))
	assert.True(t, Exists(fsys, "blobs/23.webp"))
}

func TestBuild_Metrics(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "skygen.prom")
	fsys := &failingFs{Fs: afero.NewMemMapFs(), deny: map[string]bool{"05.png": true}}
	m := observability.NewMetrics()

	_, err := NewBuilder(cfg, BuildOptions{Fs: fsys, Metrics: m}).Build()
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `skygen_images_total{outcome="generated"} 23`)
	assert.Contains(t, out, `skygen_images_total{outcome="failed"} 1`)
	assert.Contains(t, out, `skygen_images_total{outcome="skipped"} 0`)
}

func TestBuild_LogsSummary(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	fsys := afero.NewMemMapFs()
	b := NewBuilder(testConfig(), BuildOptions{Fs: fsys, Logger: zap.New(core), RunID: "run-1"})

	_, err := b.Build()
	require.NoError(t, err)

	done := logs.FilterMessage("generator completed").All()
	require.Len(t, done, 1)
	assert.Equal(t, "run-1", done[0].ContextMap()["run_id"])
	assert.Equal(t, true, done[0].ContextMap()["regenerated"])

	// Font fallback is reported once, at construction.
	assert.Equal(t, 1, logs.FilterMessage("font unavailable, using built-in face").Len())
	assert.Equal(t, HoursPerDay, logs.FilterMessage("rendered").Len())

	logs.TakeAll()
	_, err = b.Build()
	require.NoError(t, err)
	var sawAllExist bool
	for _, e := range logs.All() {
		if strings.Contains(e.Message, "no regeneration needed") {
			sawAllExist = true
		}
	}
	assert.True(t, sawAllExist)
}
