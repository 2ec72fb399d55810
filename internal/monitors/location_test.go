package monitors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNmcliSSID(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected string
	}{
		{"active network", "no:Neighbor\nyes:HomeNet\nno:Cafe", "HomeNet"},
		{"no active network", "no:Neighbor\nno:Cafe", ""},
		{"empty output", "", ""},
		{"ssid with spaces", "yes:My Home Network", "My Home Network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseNmcliSSID(tt.output))
		})
	}
}

func TestParseIwSSID(t *testing.T) {
	out := `Connected to aa:bb:cc:dd:ee:ff (on wlan0)
	SSID: OfficeNet
	freq: 5180
	signal: -55 dBm`
	assert.Equal(t, "OfficeNet", parseIwSSID(out))

	assert.Equal(t, "", parseIwSSID("Not connected."))
}

func TestLocationDetectorFallsBackToIw(t *testing.T) {
	calls := []string{}
	d := &LocationDetector{runner: func(command string) (string, error) {
		calls = append(calls, command)
		if len(calls) == 1 {
			return "", fmt.Errorf("nmcli not installed")
		}
		return "SSID: FallbackNet", nil
	}}

	ssid, err := d.Sample()
	require.NoError(t, err)
	assert.Equal(t, "FallbackNet", ssid)
	assert.Len(t, calls, 2)
}

func TestLocationDetectorReportsFailure(t *testing.T) {
	d := &LocationDetector{runner: func(command string) (string, error) {
		return "", fmt.Errorf("no wireless tools")
	}}

	_, err := d.Sample()
	require.Error(t, err)
}
