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

package manta

import "fmt"

type ErrUnknownCore struct {
	Name string
}

func (e ErrUnknownCore) Error() string {
	return fmt.Sprintf("no core named %s", e.Name)
}

// ErrCoreType is returned when a core is accessed as the wrong kind
type ErrCoreType struct {
	Name     string
	Type     string
	Expected string
}

func (e ErrCoreType) Error() string {
	return fmt.Sprintf("core %s is %s, not %s", e.Name, e.Type, e.Expected)
}
