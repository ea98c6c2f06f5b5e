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

const (
	ConfigDir          = ".go-manta"
	ConfigFile         = "config"
	DefaultLogLevel    = "info"
	DefaultMantaConfig = "manta.yaml"
	DefaultDBFile      = "captures.db"
	DefaultApiAddress  = "127.0.0.1"
	DefaultApiPort     = 8003

	DefaultChunkSize     = 256
	DefaultStallInterval = 16
	// DefaultTimeout is the per-read link timeout in seconds
	DefaultTimeout = 1.0
	AutoPort       = "auto"
)

const (
	CoreTypeIO            = "io"
	CoreTypeMemory        = "memory"
	CoreTypeLogicAnalyzer = "logic_analyzer"

	ModeHostToFPGA    = "host_to_fpga"
	ModeFPGAToHost    = "fpga_to_host"
	ModeBidirectional = "bidirectional"

	TriggerModeSingleShot  = "single_shot"
	TriggerModeIncremental = "incremental"
	TriggerModeImmediate   = "immediate"
)
