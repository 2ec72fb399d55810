package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/errors"
	"github.com/frostdev-ops/kbd-backlight-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeProfileFile(t *testing.T, dir string, p *Profile) {
	t.Helper()
	data, err := yaml.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "profiles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles", p.Name+".yaml"), data, 0o644))
}

func TestLoadBootstrapsDefaultProfile(t *testing.T) {
	dir := t.TempDir()

	s, err := Load(dir, logger.NewQuiet())
	require.NoError(t, err)

	name, p := s.Active()
	assert.Equal(t, "home", name)
	assert.Equal(t, uint64(30), p.IdleTimeoutSecs)
	assert.Len(t, p.TimeSchedules, 2)

	// Both the profile body and the selection survive on disk.
	assert.FileExists(t, filepath.Join(dir, "profiles", "home.yaml"))
	assert.FileExists(t, filepath.Join(dir, "state.yaml"))
}

func TestLoadReadsExistingProfiles(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, &Profile{Name: "office", IdleTimeoutSecs: 60})

	s, err := Load(dir, logger.NewQuiet())
	require.NoError(t, err)

	assert.Equal(t, []string{"office"}, s.Names())
	name, _ := s.Active()
	assert.Equal(t, "office", name)
}

func TestLoadRejectsNameMismatch(t *testing.T) {
	dir := t.TempDir()
	data, err := yaml.Marshal(&Profile{Name: "office", IdleTimeoutSecs: 60})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "profiles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles", "other.yaml"), data, 0o644))

	_, err = Load(dir, logger.NewQuiet())
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestLoadRejectsDuplicateSSIDs(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, &Profile{Name: "home", IdleTimeoutSecs: 30, WiFiNetworks: []string{"Net"}})
	writeProfileFile(t, dir, &Profile{Name: "office", IdleTimeoutSecs: 60, WiFiNetworks: []string{"Net"}})

	_, err := Load(dir, logger.NewQuiet())
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestLoadRejectsZeroIdleTimeout(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, &Profile{Name: "home", IdleTimeoutSecs: 0})

	_, err := Load(dir, logger.NewQuiet())
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestLoadRejectsInvalidScheduleTime(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, &Profile{
		Name:            "home",
		IdleTimeoutSecs: 30,
		TimeSchedules:   []TimeSchedule{{Hour: 24, Minute: 0, Brightness: 1}},
	})

	_, err := Load(dir, logger.NewQuiet())
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestSetActivePersistsSelection(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, &Profile{Name: "home", IdleTimeoutSecs: 30})
	writeProfileFile(t, dir, &Profile{Name: "office", IdleTimeoutSecs: 60})

	s, err := Load(dir, logger.NewQuiet())
	require.NoError(t, err)
	require.NoError(t, s.SetActive("office"))

	// A fresh load sees the persisted selection.
	s2, err := Load(dir, logger.NewQuiet())
	require.NoError(t, err)
	name, _ := s2.Active()
	assert.Equal(t, "office", name)
}

func TestSetActiveUnknownProfile(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir, logger.NewQuiet())
	require.NoError(t, err)

	err = s.SetActive("nope")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.Contains(t, err.Error(), "Available profiles")

	name, _ := s.Active()
	assert.Equal(t, "home", name)
}

func TestSetActiveRollsBackOnPersistenceFailure(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, &Profile{Name: "home", IdleTimeoutSecs: 30})
	writeProfileFile(t, dir, &Profile{Name: "office", IdleTimeoutSecs: 60})

	s, err := Load(dir, logger.NewQuiet())
	require.NoError(t, err)

	// Replace the state file location with a directory so the rename
	// fails after the in-memory swap.
	require.NoError(t, os.Remove(s.statePath()))
	require.NoError(t, os.Mkdir(s.statePath(), 0o755))

	err = s.SetActive("office")
	require.Error(t, err)
	assert.Equal(t, errors.KindPersistence, errors.KindOf(err))

	name, _ := s.Active()
	assert.Equal(t, "home", name, "in-memory swap must be rolled back")
}

func TestAppendScheduleValidatesBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir, logger.NewQuiet())
	require.NoError(t, err)

	err = s.AppendSchedule("home", TimeSchedule{Hour: 24, Minute: 0, Brightness: 1})
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))

	err = s.AppendSchedule("home", TimeSchedule{Hour: 0, Minute: 60, Brightness: 1})
	require.Error(t, err)

	p, _ := s.Get("home")
	assert.Len(t, p.TimeSchedules, 2)
}

func TestAppendSchedulePersists(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir, logger.NewQuiet())
	require.NoError(t, err)

	require.NoError(t, s.AppendSchedule("home", TimeSchedule{Hour: 23, Minute: 59, Brightness: 3}))

	s2, err := Load(dir, logger.NewQuiet())
	require.NoError(t, err)
	p, ok := s2.Get("home")
	require.True(t, ok)
	assert.Contains(t, p.TimeSchedules, TimeSchedule{Hour: 23, Minute: 59, Brightness: 3})
}

func TestSSIDMap(t *testing.T) {
	dir := t.TempDir()
	writeProfileFile(t, dir, &Profile{Name: "home", IdleTimeoutSecs: 30, WiFiNetworks: []string{"HomeNet"}})
	writeProfileFile(t, dir, &Profile{Name: "office", IdleTimeoutSecs: 60, WiFiNetworks: []string{"OfficeNet", "OfficeGuest"}})

	s, err := Load(dir, logger.NewQuiet())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"HomeNet":     "home",
		"OfficeNet":   "office",
		"OfficeGuest": "office",
	}, s.SSIDMap())
}

func TestGetReturnsCopy(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(dir, logger.NewQuiet())
	require.NoError(t, err)

	p, ok := s.Get("home")
	require.True(t, ok)
	p.TimeSchedules[0].Brightness = 99

	fresh, _ := s.Get("home")
	assert.NotEqual(t, 99, fresh.TimeSchedules[0].Brightness)
}
