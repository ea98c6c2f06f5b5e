/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds go-manta tool settings. The design itself (interface and
// cores) lives in a separate Manta configuration file.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	MantaConfig string `yaml:"manta_config"`
	DBPath      string `yaml:"db_path"`
	ApiAddress  string `yaml:"api_address"`
	ApiPort     int    `yaml:"api_port"`
	// Server is the URL of a running go-manta API server. When set the
	// CLI talks to the server instead of opening the link itself.
	Server   string `yaml:"server,omitempty"`
	filepath string
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	err = ioutil.WriteFile(c.filepath, data, 0644)
	if err != nil {
		return err
	}

	return nil
}

func (c *Config) Load() error {
	data, err := ioutil.ReadFile(c.filepath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Path returns the location of the settings file
func (c *Config) Path() string {
	return c.filepath
}

// SetPath changes the location of the settings file
func (c *Config) SetPath(path string) {
	c.filepath = path
}

// LoadManta reads and decodes the design configuration referenced by the settings.
func (c *Config) LoadManta() (*Manta, error) {
	data, err := ioutil.ReadFile(c.MantaConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manta config %s", c.MantaConfig)
	}
	return ParseManta(data)
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, DefaultDBFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:    DefaultLogLevel,
		MantaConfig: DefaultMantaConfig,
		DBPath:      DefaultDBPath(),
		ApiAddress:  DefaultApiAddress,
		ApiPort:     DefaultApiPort,
		filepath:    DefaultConfigPath(),
	}
}
