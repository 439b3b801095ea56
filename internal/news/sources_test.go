package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourcesRequiredFields(t *testing.T) {
	sources, err := Sources()
	require.NoError(t, err)
	require.NotEmpty(t, sources)

	for _, s := range sources {
		assert.NotEmpty(t, s.Source)
		assert.NotEmpty(t, s.Name, s.Source)
		assert.NotEmpty(t, s.URL, s.Source)
		assert.NotEmpty(t, s.Bias, s.Source)
		assert.NotEmpty(t, s.Owner, s.Source)
		assert.NotEmpty(t, s.Based, s.Source)
	}
}

func TestSourcesContainExpectedOutlets(t *testing.T) {
	sources, err := Sources()
	require.NoError(t, err)

	names := make(map[string]bool, len(sources))
	for _, s := range sources {
		names[s.Source] = true
	}
	for _, want := range []string{"BBC", "CNN", "The Guardian"} {
		assert.True(t, names[want], want)
	}
}

func TestSourcesHaveUniqueURLs(t *testing.T) {
	sources, err := Sources()
	require.NoError(t, err)

	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		assert.False(t, seen[s.URL], "duplicate url %s", s.URL)
		seen[s.URL] = true
	}
}
