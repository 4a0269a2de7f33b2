package errcat

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownCode(t *testing.T) {
	e, err := Lookup("DUPLICATE_TEMPLATE_NAME")
	require.NoError(t, err)
	assert.Equal(t, "DUPLICATE_TEMPLATE_NAME", e.Code)
	assert.NotEmpty(t, e.Status)
	assert.NotEmpty(t, e.Description)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	lower, err := Lookup("duplicate_template_name")
	require.NoError(t, err)
	upper, err := Lookup("DUPLICATE_TEMPLATE_NAME")
	require.NoError(t, err)
	assert.Equal(t, upper, lower)
}

func TestLookupUnknownCodeReturnsPlaceholder(t *testing.T) {
	e, err := Lookup("NO_SUCH_CODE")
	require.NoError(t, err)
	assert.Equal(t, "NO_SUCH_CODE", e.Code)
	assert.Equal(t, "error code not found", e.Description)
}

func TestParseShippedCatalog(t *testing.T) {
	table, err := parse(rawCatalog)
	require.NoError(t, err)
	assert.Contains(t, table, "connection_failed")
}

func TestParseRejectsShortRow(t *testing.T) {
	_, err := parse("\"status\";\"code\";\"description\"\n\"0x1\";\"HALF_ROW\"\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fields")
}

func TestParseRejectsEmptyCatalog(t *testing.T) {
	_, err := parse("")
	require.Error(t, err)
}

func TestFormatContainsParts(t *testing.T) {
	msg := Format("CONNECTION_FAILED", "server unreachable")
	assert.Contains(t, msg, "CONNECTION_FAILED")
	assert.Contains(t, msg, "server unreachable")
	assert.Contains(t, msg, "0x80004005")
	// leading token is a timestamp
	assert.True(t, strings.Contains(msg, "T"), "expected RFC3339 timestamp in %q", msg)
}

func TestErrorMessageAndCode(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap("CONNECTION_FAILED", "mysql", cause)
	assert.Equal(t, "CONNECTION_FAILED", err.Code())
	assert.Contains(t, err.Error(), "mysql")
	assert.Contains(t, err.Error(), "refused")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, New("CONNECTION_FAILED", "other detail"))
}

func TestNotify(t *testing.T) {
	var gotSource, gotMessage string
	n := NotifierFunc(func(source, message string) {
		gotSource = source
		gotMessage = message
	})

	Notify(n, "sqlbridge", "POOL_EXHAUSTED", "42 waiters")
	assert.Equal(t, "sqlbridge", gotSource)
	assert.Contains(t, gotMessage, "POOL_EXHAUSTED")
	assert.Contains(t, gotMessage, "42 waiters")

	// nil notifier must not panic
	Notify(nil, "sqlbridge", "POOL_EXHAUSTED", "")
}
