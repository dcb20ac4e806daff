package evdev

import (
	"fmt"
	"os"
	"strings"
)

const procInputDevices = "/proc/bus/input/devices"

// DeviceInfo describes one input device known to the kernel.
type DeviceInfo struct {
	Name     string
	Handlers []string
	// Path is the /dev/input node of the event handler, empty when the
	// device has none.
	Path string
}

// ListDevices enumerates the kernel's input device table.
func ListDevices() ([]DeviceInfo, error) {
	b, err := os.ReadFile(procInputDevices)
	if err != nil {
		return nil, fmt.Errorf("listing input devices: %w", err)
	}
	return parseDeviceList(b), nil
}

func parseDeviceList(b []byte) []DeviceInfo {
	blocks := strings.Split(string(b), "\n\n")
	var out []DeviceInfo
	for _, blk := range blocks {
		info := DeviceInfo{}
		for _, line := range strings.Split(blk, "\n") {
			if strings.HasPrefix(line, "N: Name=") {
				parts := strings.SplitN(line, "=", 2)
				if len(parts) == 2 {
					info.Name = strings.Trim(parts[1], " \"")
				}
			}
			if strings.HasPrefix(line, "H: Handlers=") {
				parts := strings.SplitN(line, "=", 2)
				if len(parts) == 2 {
					info.Handlers = strings.Fields(parts[1])
				}
			}
		}
		if info.Name == "" && len(info.Handlers) == 0 {
			continue
		}
		for _, h := range info.Handlers {
			if strings.HasPrefix(h, "event") {
				info.Path = "/dev/input/" + h
				break
			}
		}
		out = append(out, info)
	}
	return out
}
