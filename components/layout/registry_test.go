package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistrySeedsBuiltins(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"clock", "search", "vitals", "apps", "logs"} {
		assert.True(t, reg.Has(id), "builtin %s missing", id)
	}
	d, ok := reg.Descriptor("vitals")
	require.True(t, ok)
	assert.Equal(t, "system.vitals", d.LiveKey)
	assert.False(t, d.Static)
}

func TestRegisterRequiresID(t *testing.T) {
	reg := NewEmptyRegistry()
	require.Error(t, reg.Register(Descriptor{Label: "No ID"}))
	require.NoError(t, reg.Register(Descriptor{ID: "docker", Label: "Docker"}))
	assert.True(t, reg.Has("docker"))
}

func TestRegisterReplacesExisting(t *testing.T) {
	reg := NewEmptyRegistry()
	require.NoError(t, reg.Register(Descriptor{ID: "docker", Label: "Old"}))
	require.NoError(t, reg.Register(Descriptor{ID: "docker", Label: "New"}))
	d, _ := reg.Descriptor("docker")
	assert.Equal(t, "New", d.Label)
}

func TestDescriptorsSortedByID(t *testing.T) {
	reg := NewEmptyRegistry()
	require.NoError(t, reg.Register(Descriptor{ID: "zeta", Label: "Z"}))
	require.NoError(t, reg.Register(Descriptor{ID: "alpha", Label: "A"}))
	require.NoError(t, reg.Register(Descriptor{ID: "mid", Label: "M"}))

	got := reg.Descriptors()
	require.Len(t, got, 3)
	assert.Equal(t, "alpha", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Equal(t, "zeta", got[2].ID)
}

func TestApplyHooksExtendsRegistry(t *testing.T) {
	RegisterHook(func(r *Registry) error {
		return r.Register(Descriptor{ID: "hooked", Label: "Hooked"})
	})
	reg := NewRegistry()
	assert.True(t, reg.Has("hooked"))
}
