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

// Package log is a leveled printf logger shared by all go-manta packages.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
)

type LogLevel int

const (
	LogPrefix     = "[go-manta] "
	ErrorPrefix   = "[error] "
	WarningPrefix = "[warn] "
	InfoPrefix    = "[info] "
	DebugPrefix   = "[debug] "
	HelpLevels    = "Must be one of: error, warning, info, debug."
)

const (
	ErrorLevel LogLevel = iota
	WarningLevel
	InfoLevel
	DebugLevel
)

var levelMapping = map[string]LogLevel{
	"error":   ErrorLevel,
	"warning": WarningLevel,
	"warn":    WarningLevel,
	"info":    InfoLevel,
	"debug":   DebugLevel,
}

type Logger struct {
	level LogLevel
	*log.Logger
}

var logger = &Logger{
	level:  InfoLevel,
	Logger: log.New(os.Stderr, LogPrefix, log.LstdFlags),
}

func ParseLevel(strLevel string) (LogLevel, error) {
	level, ok := levelMapping[strings.ToLower(strLevel)]
	if !ok {
		return 0, errors.Errorf("wrong log level %q. %s", strLevel, HelpLevels)
	}
	return level, nil
}

func SetLevel(strLevel string) error {
	level, err := ParseLevel(strLevel)
	if err != nil {
		return err
	}
	logger.level = level
	return nil
}

// Init directs output to out. An unknown level leaves the current one and
// is reported as a warning.
func Init(out io.Writer, strLevel string) {
	logger.SetOutput(out)
	if err := SetLevel(strLevel); err != nil {
		Warning("%s", err)
	}
}

// Enabled reports whether messages of the level are printed
func Enabled(level LogLevel) bool {
	return logger.level >= level
}

func Error(format string, v ...interface{}) {
	if Enabled(ErrorLevel) {
		logger.Println(fmt.Sprintf(ErrorPrefix+format, v...))
	}
}

func Warning(format string, v ...interface{}) {
	if Enabled(WarningLevel) {
		logger.Println(fmt.Sprintf(WarningPrefix+format, v...))
	}
}

func Info(format string, v ...interface{}) {
	if Enabled(InfoLevel) {
		logger.Println(fmt.Sprintf(InfoPrefix+format, v...))
	}
}

func Debug(format string, v ...interface{}) {
	if Enabled(DebugLevel) {
		logger.Println(fmt.Sprintf(DebugPrefix+format, v...))
	}
}

type levelWriter LogLevel

func (w levelWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	switch LogLevel(w) {
	case ErrorLevel:
		Error("%s", line)
	case WarningLevel:
		Warning("%s", line)
	case DebugLevel:
		Debug("%s", line)
	default:
		Info("%s", line)
	}
	return len(p), nil
}

// Writer returns a writer logging every line at the given level. It is
// used to hand the logger to HTTP middleware.
func Writer(level LogLevel) io.Writer {
	return levelWriter(level)
}
