package statsd

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"  gatekeeper.web  ": "gatekeeper.web",
		"..foo..":            "foo",
		".":                  "",
		"":                   "",
	}

	for input, want := range tests {
		assert.Equal(t, want, sanitizePrefix(input), "sanitizePrefix(%q)", input)
	}
}

func TestNormalizeMetricName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		" gate/check ":  "gate_check",
		"foo..bar":      "foo.bar",
		"multi  space":  "multi__space",
		"slash/name/id": "slash_name_id",
	}

	for input, want := range tests {
		assert.Equal(t, want, normalizeMetricName(input), "normalizeMetricName(%q)", input)
	}
}

func TestFormatTags(t *testing.T) {
	t.Parallel()

	global := map[string]string{
		"env":       "prod",
		" service ": " gatekeeper ",
	}
	local := map[string]string{
		"outcome": " allowed ",
		"":        "ignored",
		"env":     "stage",
	}

	assert.Equal(t, "|#env:stage,outcome:allowed,service:gatekeeper", formatTags(global, local))
	assert.Empty(t, formatTags(nil, nil))
}

func TestCleanTagsReturnsCopy(t *testing.T) {
	t.Parallel()

	original := map[string]string{"env": "prod", "": "ignored"}

	cleaned := cleanTags(original)
	cleaned["env"] = "stage"

	assert.Equal(t, "prod", original["env"])
	assert.NotContains(t, cleaned, "")
}

func TestClientEnabledAndClose(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	client := &Client{conn: clientConn}
	assert.True(t, client.Enabled())

	require.NoError(t, client.Close())
	assert.False(t, client.Enabled())
	require.NoError(t, client.Close())

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
	require.NoError(t, nilClient.Close())
	nilClient.Count("ignored", 1, nil)
}

func TestClientWritesLines(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	client := &Client{prefix: "gatekeeper", conn: clientConn, globalTags: map[string]string{"env": "test"}}
	defer client.Close()

	lines := make(chan string, 1)
	go func() {
		buf := make([]byte, 256)
		n, _ := bufio.NewReader(peerConn).Read(buf)
		lines <- string(buf[:n])
	}()

	client.Count("gate.check", 1, map[string]string{"outcome": "created"})

	select {
	case line := <-lines:
		assert.Equal(t, "gatekeeper.gate.check:1|c|#env:test,outcome:created", line)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for metric line")
	}
}

func TestNewClientDisabledWithoutAddress(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{Enabled: true, Address: "   "})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
}

func TestNewClientDialError(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Enabled: true, Address: "bad address"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "statsd dial"))
}
