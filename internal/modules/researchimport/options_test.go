package researchimport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptionsOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.yaml")
	require.NoError(t, os.WriteFile(path, []byte("link_batch_size: 50\norganism_delimiter: \";\"\n"), 0o600))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 50, opts.LinkBatchSize)
	assert.Equal(t, ";", opts.OrganismDelimiter)
	assert.Equal(t, DefaultOptions().LookupBatchSize, opts.LookupBatchSize)
	assert.Equal(t, ",", opts.StageDelimiter)
}

func TestLoadOptionsRejectsUnknownOrganismType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_organism_type: mineral\n"), 0o600))

	_, err := LoadOptions(path)
	assert.Error(t, err)
}

func TestLoadOptionsAcceptsProcessedOrganismType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_organism_type: processed\n"), 0o600))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, "processed", opts.DefaultOrganismType)
}

func TestLoadOptionsEmptyPathIsDefaults(t *testing.T) {
	opts, err := LoadOptions("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
}
