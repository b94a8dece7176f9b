package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoexContractResolverLongForm(t *testing.T) {
	r := MoexContractResolver{}

	tests := map[string]string{
		"Si-6.21":   "SiM1",
		"RTS-12.20": "RTZ0",
		"BR-1.22":   "BRF2",
		"Eu-9.21":   "EuU1",
	}
	for in, want := range tests {
		got, ok := r.Resolve(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
}

func TestMoexContractResolverShortFormPassesThrough(t *testing.T) {
	r := MoexContractResolver{}
	got, ok := r.Resolve("SiM1")
	assert.True(t, ok)
	assert.Equal(t, "SiM1", got)
}

func TestMoexContractResolverUnresolvable(t *testing.T) {
	r := MoexContractResolver{}
	for _, code := range []string{"", "Si-13.21", "просто текст", "Si-6"} {
		_, ok := r.Resolve(code)
		assert.False(t, ok, code)
	}
}

type fakeResolver struct {
	calls int
}

func (f *fakeResolver) Resolve(code string) (string, bool) {
	f.calls++
	if code == "Si-6.21" {
		return "SiM1", true
	}
	return "", false
}

func TestCachingResolverMemoizes(t *testing.T) {
	inner := &fakeResolver{}
	r := NewCachingResolver(inner)

	for i := 0; i < 3; i++ {
		got, ok := r.Resolve("Si-6.21")
		assert.True(t, ok)
		assert.Equal(t, "SiM1", got)
	}
	assert.Equal(t, 1, inner.calls)

	// negative results are memoized too
	for i := 0; i < 3; i++ {
		_, ok := r.Resolve("нет такого")
		assert.False(t, ok)
	}
	assert.Equal(t, 2, inner.calls)
}
