package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Query string `json:"query" yaml:"query"`
	Count int    `json:"count" yaml:"count"`
}

func TestGetCodec(t *testing.T) {
	for _, name := range []string{"json", "yaml"} {
		c, err := GetCodec(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}

	c, err := GetCodec("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	_, err = GetCodec("gob")
	assert.Error(t, err)
}

func TestJSONCodecShape(t *testing.T) {
	data, err := NewJSONCodec(false).Marshal(sample{Query: "acacia", Count: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"acacia","count":2}`, string(data))

	pretty, err := NewJSONCodec(true).Marshal(sample{Query: "acacia"})
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  ")
}

func TestCodecsRejectGarbage(t *testing.T) {
	var s sample
	assert.Error(t, DefaultCodec().Unmarshal([]byte("{not json"), &s))
	assert.Error(t, NewYAMLCodec().Unmarshal([]byte("query: [unterminated"), &s))
}

func TestYAMLCodecDecodes(t *testing.T) {
	var s sample
	require.NoError(t, NewYAMLCodec().Unmarshal([]byte("query: tajonal\ncount: 3\n"), &s))
	assert.Equal(t, sample{Query: "tajonal", Count: 3}, s)
}
