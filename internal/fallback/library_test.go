package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-studio/internal/scene"
	"scene-studio/internal/script"
)

func TestEveryEntryRenders(t *testing.T) {
	lib := Default()
	require.GreaterOrEqual(t, lib.Len(), 3)

	for i, e := range lib.Entries() {
		assert.NotEmpty(t, e.Explanation, "entry %d", i)

		root := scene.NewRoot()
		root.Add(scene.NewMesh("leftover", scene.NewGeometry(scene.ShapeBox, 1, 1, 1), scene.NewMaterial(scene.White)))
		cam := scene.NewPerspectiveCamera(75, 1, 0.1, 1000)
		require.NoError(t, e.Unit.Run(script.NewEngine(nil, nil), root, cam, nil), "entry %d", i)

		assert.Nil(t, root.Find("leftover"), "entry %d starts from an empty scene", i)
		assert.Positive(t, scene.Count(root).Meshes, "entry %d", i)
		assert.Positive(t, scene.Count(root).Lights, "entry %d", i)
	}
}

func TestCodeIsSerializedUnit(t *testing.T) {
	for _, e := range Default().Entries() {
		p, err := script.Parse(e.Code)
		require.NoError(t, err)
		assert.Equal(t, e.Code, p.Source())
		assert.Equal(t, script.CanonicalName, p.Name)
	}
}

func TestPickUsesInjectedRandomness(t *testing.T) {
	lib := Default()
	var asked []int
	for want := 0; want < lib.Len(); want++ {
		picked := lib.With(func(n int) int {
			asked = append(asked, n)
			return want
		}).Pick()
		assert.Equal(t, lib.Entries()[want].Explanation, picked.Explanation)
	}
	for _, n := range asked {
		assert.Equal(t, lib.Len(), n)
	}
}

func TestPickClampsOutOfRange(t *testing.T) {
	lib := Default().With(func(int) int { return 99 })
	assert.Equal(t, Default().Entries()[0].Explanation, lib.Pick().Explanation)
}

func TestPickCoversEveryEntry(t *testing.T) {
	seen := make(map[string]bool)
	lib := Default()
	for i := 0; i < 500 && len(seen) < lib.Len(); i++ {
		seen[lib.Pick().Explanation] = true
	}
	assert.Len(t, seen, lib.Len())
}

func TestLoadRejects(t *testing.T) {
	_, err := Load([]byte("[]"))
	assert.ErrorContains(t, err, "no entries")

	_, err = Load([]byte("- explanation: hi\n  code: explode cube\n"))
	assert.ErrorIs(t, err, script.ErrSyntax)

	_, err = Load([]byte("- code: clear\n"))
	assert.ErrorContains(t, err, "missing explanation")
}
