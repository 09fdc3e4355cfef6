package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"literal", Lit("abc"), `{"lit":"abc"}`},
		{"no html escaping", Lit("<&>"), `{"lit":"<&>"}`},
		{"invalid utf8 literal", Lit("\xff\x00"), `{"hex":"ff00"}`},
		{"empty alternation", Alt(), `{"alt":[]}`},
		{"empty concatenation", Concat(), `{"cat":[]}`},
		{
			"nested",
			Concat(Lit("a"), Star(Alt(Lit("b"), Lit("c")))),
			`{"cat":[{"lit":"a"},{"star":{"alt":[{"lit":"b"},{"lit":"c"}]}}]}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MarshalCanonical(tc.node)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestMarshalCanonical_NilNode(t *testing.T) {
	_, err := MarshalCanonical(Star(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported pattern node")
}

func TestUnmarshalCanonical_RoundTrip(t *testing.T) {
	original := Alt(Concat(Lit("a"), Lit("\xfe")), Star(Lit("")), Alt(), Concat())

	data := MustMarshalCanonical(original)
	decoded, err := UnmarshalCanonical(data)
	require.NoError(t, err)

	assert.Equal(t, original, decoded)
}

func TestFingerprint(t *testing.T) {
	a := Concat(Lit("a"), Star(Lit("b")))
	b := Concat(Lit("a"), Star(Lit("b")))
	c := Concat(Lit("a"), Star(Lit("c")))

	fpA := MustFingerprint(a)
	assert.Len(t, fpA, 64, "hex-encoded SHA-256")
	assert.Equal(t, fpA, MustFingerprint(b), "structurally equal patterns share a fingerprint")
	assert.NotEqual(t, fpA, MustFingerprint(c))
}

func TestFingerprint_DistinguishesStructure(t *testing.T) {
	// Same literals, different shape
	flat := Concat(Lit("a"), Lit("b"))
	merged := Lit("ab")

	assert.NotEqual(t, MustFingerprint(flat), MustFingerprint(merged))
}

func TestHashWithDomain_Separator(t *testing.T) {
	// Domain/data boundary must be unambiguous
	assert.NotEqual(t,
		hashWithDomain("minrx/a", []byte("b")),
		hashWithDomain("minrx/", []byte("ab")))
}
