package hardware

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/errors"
	"github.com/frostdev-ops/kbd-backlight-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockDevice(t *testing.T, current, max string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte(current), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte(max), 0o644))
	return dir
}

func TestNewReadsMaxBrightness(t *testing.T) {
	dir := mockDevice(t, "1\n", "3\n")

	c, err := New(dir, logger.NewQuiet())
	require.NoError(t, err)
	assert.Equal(t, 3, c.Max())

	current, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, current)
}

func TestNewFailsOnMissingDevice(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nonexistent"), logger.NewQuiet())
	require.Error(t, err)
	assert.Equal(t, errors.KindStartup, errors.KindOf(err))
}

func TestSetWritesValue(t *testing.T) {
	dir := mockDevice(t, "0", "3")

	c, err := New(dir, logger.NewQuiet())
	require.NoError(t, err)

	require.NoError(t, c.Set(2))
	data, err := os.ReadFile(filepath.Join(dir, "brightness"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))
}

func TestSetRejectsOutOfRange(t *testing.T) {
	dir := mockDevice(t, "0", "3")

	c, err := New(dir, logger.NewQuiet())
	require.NoError(t, err)

	err = c.Set(4)
	require.Error(t, err)
	assert.Equal(t, errors.KindConfig, errors.KindOf(err))

	err = c.Set(-1)
	require.Error(t, err)
	assert.Equal(t, errors.KindConfig, errors.KindOf(err))
}

func TestSetZeroIsValid(t *testing.T) {
	dir := mockDevice(t, "2", "3")

	c, err := New(dir, logger.NewQuiet())
	require.NoError(t, err)

	require.NoError(t, c.Set(0))
	current, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, current)
}
