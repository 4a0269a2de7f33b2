package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("SQLBRIDGE_ACTIVE_CONNECTION", "mysql")
	t.Setenv("SQLBRIDGE_TEMPLATE_FILE", "templates.xml")
	t.Setenv("SQLBRIDGE_MAPPING_FILE", "mappings.xml")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mysql", s.ActiveConnection)
	assert.Equal(t, ".", s.ConfigFolder)
	assert.Equal(t, 2*time.Second, s.ConnAcquireTimeout)
	assert.False(t, s.LintTemplates)
}

func TestLoadMissingRequiredKey(t *testing.T) {
	setRequired(t)
	t.Setenv("SQLBRIDGE_TEMPLATE_FILE", "")

	_, err := Load()
	require.Error(t, err)

	var missing *MissingSettingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "SQLBRIDGE_TEMPLATE_FILE", missing.Key)
	assert.Equal(t, "SETTINGS_MISSING", missing.Code())
}

func TestLoadAcquireTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("SQLBRIDGE_CONN_ACQUIRE_TIMEOUT_MS", "250")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, s.ConnAcquireTimeout)

	t.Setenv("SQLBRIDGE_CONN_ACQUIRE_TIMEOUT_MS", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadLintFlag(t *testing.T) {
	setRequired(t)
	t.Setenv("SQLBRIDGE_LINT_TEMPLATES", "true")

	s, err := Load()
	require.NoError(t, err)
	assert.True(t, s.LintTemplates)
}

func TestPaths(t *testing.T) {
	setRequired(t)
	t.Setenv("SQLBRIDGE_CONFIG_FOLDER", "/etc/sqlbridge")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/etc/sqlbridge/templates.xml", s.TemplatePath())
	assert.Equal(t, "/etc/sqlbridge/mappings.xml", s.MappingPath())
}
