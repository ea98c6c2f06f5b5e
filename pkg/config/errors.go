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

import "fmt"

// ErrConfig is returned for malformed configuration, unknown probes, values
// out of range and any other problem detected before touching the link.
type ErrConfig struct {
	What string
}

func (e ErrConfig) Error() string {
	return fmt.Sprintf("configuration error: %s", e.What)
}

// NewErrConfig builds ErrConfig from a format string
func NewErrConfig(format string, v ...interface{}) ErrConfig {
	return ErrConfig{What: fmt.Sprintf(format, v...)}
}

type ErrConfigFileExists struct {
	Path string
}

func (e ErrConfigFileExists) Error() string {
	return fmt.Sprintf("config file %s already exists, use overwrite to replace it", e.Path)
}
