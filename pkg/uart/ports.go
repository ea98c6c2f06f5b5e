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

package uart

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"jinr.ru/greenlab/go-manta/pkg/log"
)

const (
	// FT2232 vendor and product ids
	FTDIVendorID    = 0x0403
	FT2232ProductID = 0x6010

	SysfsTTYDir = "/sys/class/tty"
)

// PortInfo describes a serial port backed by a USB device.
type PortInfo struct {
	Name         string
	VID          uint16
	PID          uint16
	SerialNumber string
	// Location identifies the USB interface, e.g. 1-2:1.1
	Location string
}

// PortLister enumerates serial ports available on the host
type PortLister interface {
	ListPorts() ([]*PortInfo, error)
}

// SysfsLister finds USB serial ports through the Linux sysfs tree
type SysfsLister struct {
	Root string
}

func NewSysfsLister() *SysfsLister {
	return &SysfsLister{Root: SysfsTTYDir}
}

func (l *SysfsLister) ListPorts() ([]*PortInfo, error) {
	entries, err := ioutil.ReadDir(l.Root)
	if err != nil {
		return nil, err
	}
	var result []*PortInfo
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "ttyUSB") && !strings.HasPrefix(name, "ttyACM") {
			continue
		}
		devPath, err := filepath.EvalSymlinks(filepath.Join(l.Root, name, "device"))
		if err != nil {
			log.Debug("Skipping %s: %s", name, err)
			continue
		}
		info, err := usbInfo(devPath)
		if err != nil {
			log.Debug("Skipping %s: %s", name, err)
			continue
		}
		info.Name = filepath.Join("/dev", name)
		result = append(result, info)
	}
	return result, nil
}

// usbInfo walks up from the tty device to the USB device that owns it.
// The directory just below the USB device is the interface, its name is
// used as the location.
func usbInfo(devPath string) (*PortInfo, error) {
	location := ""
	dir := devPath
	for dir != "/" && dir != "." {
		if _, err := os.Stat(filepath.Join(dir, "idVendor")); err == nil {
			vid, err := readHexFile(filepath.Join(dir, "idVendor"))
			if err != nil {
				return nil, err
			}
			pid, err := readHexFile(filepath.Join(dir, "idProduct"))
			if err != nil {
				return nil, err
			}
			serial, _ := ioutil.ReadFile(filepath.Join(dir, "serial"))
			return &PortInfo{
				VID:          vid,
				PID:          pid,
				SerialNumber: strings.TrimSpace(string(serial)),
				Location:     location,
			}, nil
		}
		location = filepath.Base(dir)
		dir = filepath.Dir(dir)
	}
	return nil, fmt.Errorf("%s is not a USB device", devPath)
}

func readHexFile(path string) (uint16, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// SelectPort picks the UART channel of an FT2232: exactly two ports with
// the FTDI ids and one serial number must be present, the one with the
// larger location wins.
func SelectPort(lister PortLister) (string, error) {
	ports, err := lister.ListPorts()
	if err != nil {
		return "", ErrPort{What: fmt.Sprintf("listing serial ports: %s", err)}
	}
	var candidates []*PortInfo
	for _, p := range ports {
		if p.VID == FTDIVendorID && p.PID == FT2232ProductID {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) != 2 {
		return "", ErrPort{What: fmt.Sprintf("expected 2 FT2232 ports, found %d", len(candidates))}
	}
	if candidates[0].SerialNumber != candidates[1].SerialNumber {
		return "", ErrPort{What: fmt.Sprintf("FT2232 ports belong to different devices: %s and %s",
			candidates[0].SerialNumber, candidates[1].SerialNumber)}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Location < candidates[j].Location
	})
	log.Info("Selected serial port %s (serial %s, location %s)",
		candidates[1].Name, candidates[1].SerialNumber, candidates[1].Location)
	return candidates[1].Name, nil
}
