package profiles

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/frostdev-ops/kbd-backlight-go/pkg/errors"
	"github.com/frostdev-ops/kbd-backlight-go/pkg/logger"
	"gopkg.in/yaml.v3"
)

// storeState is the persisted daemon selection, kept separate from the
// profile bodies so switching profiles never rewrites them.
type storeState struct {
	ActiveProfile      string `yaml:"active_profile"`
	AutoSwitchLocation bool   `yaml:"auto_switch_location"`
}

// Store holds the named profiles and the active selection. Profile bodies
// live in <dir>/profiles/<name>.yaml, the selection in <dir>/state.yaml.
type Store struct {
	mu       sync.RWMutex
	dir      string
	logger   *logger.Logger
	profiles map[string]*Profile
	state    storeState
}

// Load reads the store from dir, creating it with a default profile on
// first run.
func Load(dir string, log *logger.Logger) (*Store, error) {
	s := &Store{
		dir:      dir,
		logger:   log,
		profiles: make(map[string]*Profile),
	}

	if err := os.MkdirAll(s.profilesDir(), 0o755); err != nil {
		return nil, errors.Newf(errors.KindStartup, "failed to create profiles directory: %v", err)
	}

	if err := s.loadProfiles(); err != nil {
		return nil, err
	}

	if len(s.profiles) == 0 {
		def := DefaultProfile()
		s.profiles[def.Name] = def
		if err := s.saveProfileLocked(def); err != nil {
			return nil, err
		}
		log.WithField("profile", def.Name).Info("Created default profile")
	}

	if err := s.loadState(); err != nil {
		return nil, err
	}

	if err := s.validateLocked(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) profilesDir() string { return filepath.Join(s.dir, "profiles") }
func (s *Store) statePath() string   { return filepath.Join(s.dir, "state.yaml") }

func (s *Store) loadProfiles() error {
	entries, err := os.ReadDir(s.profilesDir())
	if err != nil {
		return errors.Newf(errors.KindStartup, "failed to read profiles directory: %v", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(s.profilesDir(), e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Newf(errors.KindStartup, "failed to read profile file %s: %v", path, err)
		}
		var p Profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return errors.Newf(errors.KindConfig, "failed to parse profile file %s: %v", path, err)
		}
		key := strings.TrimSuffix(e.Name(), ".yaml")
		if p.Name != key {
			return errors.Newf(errors.KindConfig,
				"profile file %s declares name '%s', expected '%s'", e.Name(), p.Name, key)
		}
		s.profiles[p.Name] = &p
	}
	return nil
}

func (s *Store) loadState() error {
	data, err := os.ReadFile(s.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			s.state = storeState{ActiveProfile: s.firstProfileName(), AutoSwitchLocation: true}
			return s.saveStateLocked()
		}
		return errors.Newf(errors.KindStartup, "failed to read state file: %v", err)
	}
	if err := yaml.Unmarshal(data, &s.state); err != nil {
		return errors.Newf(errors.KindConfig, "failed to parse state file: %v", err)
	}
	return nil
}

func (s *Store) firstProfileName() string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// validateLocked checks the cross-profile invariants
func (s *Store) validateLocked() error {
	if len(s.profiles) == 0 {
		return errors.New(errors.KindConfig, "at least one profile must exist")
	}
	if _, ok := s.profiles[s.state.ActiveProfile]; !ok {
		return errors.Newf(errors.KindConfig, "active profile '%s' does not exist", s.state.ActiveProfile)
	}
	seen := make(map[string]string)
	for _, p := range s.profiles {
		if err := p.Validate(); err != nil {
			return errors.New(errors.KindConfig, err.Error())
		}
		for _, ssid := range p.WiFiNetworks {
			if owner, dup := seen[ssid]; dup && owner != p.Name {
				return errors.Newf(errors.KindConfig,
					"WiFi network '%s' is mapped to both '%s' and '%s'", ssid, owner, p.Name)
			}
			seen[ssid] = p.Name
		}
	}
	return nil
}

// Active returns the active profile name and a copy of its body
func (s *Store) Active() (string, *Profile) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActiveProfile, s.profiles[s.state.ActiveProfile].Clone()
}

// Get returns a copy of the named profile
func (s *Store) Get(name string) (*Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[name]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Names returns the profile names in sorted order
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AutoSwitchLocation reports whether WiFi-based profile switching is enabled
func (s *Store) AutoSwitchLocation() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AutoSwitchLocation
}

// SetActive swaps the active profile and persists the selection. If
// persistence fails the in-memory swap is rolled back so state and
// storage never diverge.
func (s *Store) SetActive(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[name]; !ok {
		return errors.Newf(errors.KindConfig,
			"profile '%s' not found. Available profiles: %s", name, strings.Join(s.namesLocked(), ", "))
	}

	previous := s.state.ActiveProfile
	s.state.ActiveProfile = name
	if err := s.saveStateLocked(); err != nil {
		s.state.ActiveProfile = previous
		return err
	}
	return nil
}

func (s *Store) namesLocked() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AppendSchedule validates and appends a time schedule to the named
// profile, then persists the profile body.
func (s *Store) AppendSchedule(name string, schedule TimeSchedule) error {
	if err := schedule.Validate(); err != nil {
		return errors.New(errors.KindConfig, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[name]
	if !ok {
		return errors.Newf(errors.KindConfig, "profile '%s' not found", name)
	}

	p.TimeSchedules = append(p.TimeSchedules, schedule)
	if err := s.saveProfileLocked(p); err != nil {
		p.TimeSchedules = p.TimeSchedules[:len(p.TimeSchedules)-1]
		return err
	}
	return nil
}

// SSIDMap returns the WiFi network to profile name mapping
func (s *Store) SSIDMap() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := make(map[string]string)
	for name, p := range s.profiles {
		for _, ssid := range p.WiFiNetworks {
			m[ssid] = name
		}
	}
	return m
}

// saveProfileLocked writes a profile body atomically via temp file + rename
func (s *Store) saveProfileLocked(p *Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return errors.Newf(errors.KindPersistence, "failed to serialize profile '%s': %v", p.Name, err)
	}
	return s.atomicWrite(filepath.Join(s.profilesDir(), p.Name+".yaml"), data)
}

// saveStateLocked writes the selection atomically via temp file + rename
func (s *Store) saveStateLocked() error {
	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return errors.Newf(errors.KindPersistence, "failed to serialize state: %v", err)
	}
	return s.atomicWrite(s.statePath(), data)
}

func (s *Store) atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Newf(errors.KindPersistence, "failed to write %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Newf(errors.KindPersistence, "failed to rename %s: %v", tmp, err)
	}
	return nil
}
