package output

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]string{"target": "properties.<name>"}))
	assert.Equal(t, "{\n  \"target\": \"properties.<name>\"\n}\n", buf.String())
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tw := Table(&buf)
	fmt.Fprintln(tw, "SOURCE\tTARGET")
	fmt.Fprintln(tw, "first_name\tproperties.firstname")
	require.NoError(t, tw.Flush())
	assert.Equal(t, "SOURCE      TARGET\nfirst_name  properties.firstname\n", buf.String())
}

func TestWarn(t *testing.T) {
	var buf bytes.Buffer
	Warn(&buf, "%d issues", 2)
	assert.Equal(t, "Warning: 2 issues\n", buf.String())
}
