package aluapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	p := NewPool[int]()
	require.Equal(t, 0, p.Allocated())

	ptrs := make([]*int, 0, poolPageSize*3)
	for i := 0; i < poolPageSize*3; i++ {
		v, idx := p.Allocate()
		require.Equal(t, i, idx)
		*v = i
		ptrs = append(ptrs, v)
	}
	require.Equal(t, poolPageSize*3, p.Allocated())
	require.Equal(t, 3, len(p.pages))

	for i, ptr := range ptrs {
		// Pointers stay valid across page growth.
		require.Equal(t, i, *ptr)
		require.Equal(t, ptr, p.View(i))
	}

	p.Reset()
	require.Equal(t, 0, p.Allocated())
	require.Equal(t, 0, len(p.pages))

	// Pages are reused and zeroed after Reset.
	v, idx := p.Allocate()
	require.Equal(t, 0, idx)
	require.Equal(t, 0, *v)
	require.Panics(t, func() { p.View(1) })
}

func TestValidationRequested(t *testing.T) {
	for _, tc := range []struct {
		env string
		exp bool
	}{
		{env: "", exp: ValidationEnabled},
		{env: "0", exp: ValidationEnabled},
		{env: "1", exp: true},
		{env: "yes", exp: true},
	} {
		t.Run(tc.env, func(t *testing.T) {
			t.Setenv(ValidationEnvVar, tc.env)
			require.Equal(t, tc.exp, ValidationRequested())
		})
	}
}
