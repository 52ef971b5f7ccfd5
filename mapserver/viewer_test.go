package mapserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"go.viam.com/octoserve/octomap"
)

func TestRenderTopDown(t *testing.T) {
	logger := golog.NewTestLogger(t)
	snap, err := BuildSnapshot(makeThreeVolumeTree(t), DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)

	img, err := RenderTopDown(snap, 100)
	test.That(t, err, test.ShouldBeNil)
	bounds := img.Bounds()
	test.That(t, bounds.Dx(), test.ShouldBeGreaterThan, 0)
	test.That(t, bounds.Dy(), test.ShouldBeGreaterThan, 0)
	test.That(t, bounds.Dx(), test.ShouldBeLessThanOrEqualTo, 101)
	test.That(t, bounds.Dy(), test.ShouldBeLessThanOrEqualTo, 101)

	_, err = RenderTopDown(snap, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRenderTopDownEmpty(t *testing.T) {
	logger := golog.NewTestLogger(t)
	tree, err := octomap.NewEmpty(testResolution, logger)
	test.That(t, err, test.ShouldBeNil)
	snap, err := BuildSnapshot(tree, DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)

	_, err = RenderTopDown(snap, 100)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no occupied cells")
}

func TestWritePreviewPNG(t *testing.T) {
	logger := golog.NewTestLogger(t)
	snap, err := BuildSnapshot(makeThreeVolumeTree(t), DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)

	fn := filepath.Join(t.TempDir(), "preview.png")
	test.That(t, WritePreviewPNG(fn, snap, 100), test.ShouldBeNil)

	info, err := os.Stat(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}
