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

package la

import "fmt"

// ErrLogicAnalyzer is returned when the device does not behave as the
// capture procedure expects.
type ErrLogicAnalyzer struct {
	What string
	Err  error
}

func (e ErrLogicAnalyzer) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("logic analyzer error: %s: %s", e.What, e.Err)
	}
	return fmt.Sprintf("logic analyzer error: %s", e.What)
}

func (e ErrLogicAnalyzer) Unwrap() error {
	return e.Err
}
