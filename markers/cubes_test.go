package markers

import (
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestNewCubeListBuilder(t *testing.T) {
	_, err := NewCubeListBuilder(0, 10, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid resolution")

	_, err = NewCubeListBuilder(0.05, 10, nil)
	test.That(t, err, test.ShouldBeNil)
}

func TestLevelRoundTrip(t *testing.T) {
	res := 0.05
	b, err := NewCubeListBuilder(res, 0, nil)
	test.That(t, err, test.ShouldBeNil)

	for k := 0; k < NumLevels; k++ {
		size := res * float64(uint(1)<<k)
		test.That(t, b.LevelFor(size), test.ShouldEqual, k)
		test.That(t, b.Add(r3.Vector{X: float64(k)}, size), test.ShouldBeNil)
	}

	arr := b.Finalize("/map", time.Now(), ColorRGBA{B: 1, A: 1})
	for k := 0; k < NumLevels; k++ {
		test.That(t, arr[k].Points, test.ShouldHaveLength, 1)
		test.That(t, arr[k].Points[0].X, test.ShouldEqual, float64(k))
	}
}

func TestAddOutOfRange(t *testing.T) {
	res := 0.05
	b, err := NewCubeListBuilder(res, 0, nil)
	test.That(t, err, test.ShouldBeNil)

	err = b.Add(r3.Vector{}, res*float64(uint(1)<<NumLevels))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "outside [0, 16)")

	err = b.Add(r3.Vector{}, res/2)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestColorsParallelToPoints(t *testing.T) {
	res := 0.05
	colorFn := func(z float64) ColorRGBA { return HeightMapColor(z) }
	b, err := NewCubeListBuilder(res, 4, colorFn)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, b.Add(r3.Vector{Z: 0.1}, res), test.ShouldBeNil)
	test.That(t, b.Add(r3.Vector{Z: 0.2}, res), test.ShouldBeNil)
	test.That(t, b.Add(r3.Vector{Z: 0.3}, 2*res), test.ShouldBeNil)

	arr := b.Finalize("/map", time.Now(), ColorRGBA{B: 1, A: 1})
	test.That(t, arr[0].Points, test.ShouldHaveLength, 2)
	test.That(t, arr[0].Colors, test.ShouldHaveLength, 2)
	test.That(t, arr[0].Colors[0], test.ShouldResemble, HeightMapColor(0.1))
	test.That(t, arr[0].Colors[1], test.ShouldResemble, HeightMapColor(0.2))
	test.That(t, arr[1].Points, test.ShouldHaveLength, 1)
	test.That(t, arr[1].Colors, test.ShouldHaveLength, 1)
}

func TestNoColorFn(t *testing.T) {
	b, err := NewCubeListBuilder(0.05, 4, nil)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, b.Add(r3.Vector{Z: 0.1}, 0.05), test.ShouldBeNil)
	arr := b.Finalize("/map", time.Now(), ColorRGBA{B: 1, A: 1})
	test.That(t, arr[0].Points, test.ShouldHaveLength, 1)
	test.That(t, arr[0].Colors, test.ShouldHaveLength, 0)
}

func TestFinalizeMetadata(t *testing.T) {
	res := 0.05
	b, err := NewCubeListBuilder(res, 1, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Add(r3.Vector{X: 0.025}, res), test.ShouldBeNil)

	stamp := time.Now()
	base := ColorRGBA{B: 1, A: 1}
	arr := b.Finalize("/map", stamp, base)
	test.That(t, arr, test.ShouldHaveLength, NumLevels)

	for i, m := range arr {
		test.That(t, m.FrameID, test.ShouldEqual, "/map")
		test.That(t, m.Stamp, test.ShouldResemble, stamp)
		test.That(t, m.Namespace, test.ShouldEqual, Namespace)
		test.That(t, m.ID, test.ShouldEqual, i)
		test.That(t, m.Scale, test.ShouldEqual, res*float64(uint(1)<<i))
		test.That(t, m.Color, test.ShouldResemble, base)
		if i == 0 {
			test.That(t, m.Action, test.ShouldEqual, ActionAdd)
		} else {
			test.That(t, m.Action, test.ShouldEqual, ActionDelete)
		}
	}
}
