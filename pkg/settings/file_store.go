/*
 * iptv-player is a project to browse and play IPTV playlists from the terminal.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lucasduport/iptv-player/pkg/utils"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	keyPlaylists = "playlists"
	keyLastIndex = "last_selected_index"
)

// DefaultPath returns ~/.iptv-player/settings.yaml.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".iptv-player", "settings.yaml"), nil
}

// FileStore keeps settings in a YAML file.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path, or at DefaultPath when empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve settings path: %w", err)
		}
		path = p
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{path: expanded}, nil
}

// Path returns the settings file location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(f.path)
	v.SetConfigType("yaml")
	return v
}

// Load reads the file. A missing file yields Default.
func (f *FileStore) Load() (*Settings, error) {
	if _, err := os.Stat(f.path); errors.Is(err, os.ErrNotExist) {
		utils.DebugLog("No settings file at %s, using defaults", f.path)
		return Default(), nil
	}

	v := f.newViper()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read settings %s: %w", f.path, err)
	}

	s := &Settings{
		Playlists:         v.GetStringSlice(keyPlaylists),
		LastSelectedIndex: v.GetInt(keyLastIndex),
	}
	if !v.IsSet(keyPlaylists) {
		s.Playlists = Default().Playlists
	}
	s.Normalize()
	return s, nil
}

// Save writes s to the file, creating its directory.
func (f *FileStore) Save(s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	playlists := s.Playlists
	if playlists == nil {
		// a nil list is written as null, which would read back as unset
		playlists = []string{}
	}

	v := f.newViper()
	v.Set(keyPlaylists, playlists)
	v.Set(keyLastIndex, s.LastSelectedIndex)
	if err := v.WriteConfigAs(f.path); err != nil {
		return fmt.Errorf("write settings %s: %w", f.path, err)
	}
	utils.DebugLog("Saved %d playlists to %s", len(s.Playlists), f.path)
	return nil
}
