package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huimingz/commitflow/internal/config"
)

func TestListModels(t *testing.T) {
	var buf bytes.Buffer
	listModels(&buf, testConfig())

	out := buf.String()
	assert.Contains(t, out, "router (default)")
	assert.Contains(t, out, "Provider: ollama")
	assert.Contains(t, out, "sk-o***1234")
	assert.NotContains(t, out, "sk-or-v1-abcdefgh1234")
	assert.Less(t, strings.Index(out, "local"), strings.Index(out, "router"))
}

func TestListModels_Empty(t *testing.T) {
	var buf bytes.Buffer
	listModels(&buf, &config.Config{})
	assert.Contains(t, buf.String(), "No models configured.")
}
