// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package common holds the locations of pantomime's files.
package common

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const FilePermissions = 0755

var (
	ConfigDirectory = filepath.Join(xdg.ConfigHome, "pantomime")
	DataDirectory   = filepath.Join(xdg.DataHome, "pantomime")

	// ConfigFile is read when no configuration file is given.
	ConfigFile = filepath.Join(ConfigDirectory, "config.yaml")

	// BookDirectory is searched for opening books when the configuration
	// doesn't name a directory.
	BookDirectory = filepath.Join(DataDirectory, "books")
)

// Setup creates pantomime's directories if they don't exist.
func Setup() {
	TryMkdir(ConfigDirectory)
	TryMkdir(DataDirectory)
	TryMkdir(BookDirectory)
}

func TryMkdir(dir string) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		_ = os.MkdirAll(dir, FilePermissions)
	}
}

// TryCreate writes the given data to a file, unless it already exists. It
// reports whether the file was created.
func TryCreate(file string, data []byte) bool {
	if _, err := os.Stat(file); !errors.Is(err, fs.ErrNotExist) {
		return false
	}

	return os.WriteFile(file, data, FilePermissions) == nil
}

// Exists reports whether the given file exists.
func Exists(file string) bool {
	_, err := os.Stat(file)
	return err == nil
}
