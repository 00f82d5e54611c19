package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseBuildAction(t *testing.T) {
	for _, action := range AllBuildActions() {
		parsed, err := ParseBuildAction(action.String())
		require.NoError(t, err)
		assert.Equal(t, action, parsed)
	}

	parsed, err := ParseBuildAction(" embeddedresource ")
	require.NoError(t, err)
	assert.Equal(t, BuildActionEmbeddedResource, parsed)

	_, err = ParseBuildAction("Resource")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBuildAction_Validity(t *testing.T) {
	assert.False(t, BuildAction(0).IsValid())
	assert.Equal(t, "Unknown", BuildAction(42).String())
	assert.NotContains(t, SelectableBuildActions(), BuildActionFolder)
	assert.Len(t, SelectableBuildActions(), len(AllBuildActions())-1)
}

func TestBuildAction_YAML(t *testing.T) {
	var cfg struct {
		Actions map[string]BuildAction `yaml:"actions"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("actions:\n  .xaml: page\n  .resw: PRIResource\n"), &cfg))
	assert.Equal(t, BuildActionPage, cfg.Actions[".xaml"])
	assert.Equal(t, BuildActionPRIResource, cfg.Actions[".resw"])

	err := yaml.Unmarshal([]byte("actions:\n  .x: Bogus\n"), &cfg)
	assert.Error(t, err)
}
