// Package evdev streams multi-touch updates from Linux /dev/input event
// nodes.
//
// It owns the raw side of the pipeline: ioctl interrogation of the device,
// reassembly of kernel input_event records, and their translation into the
// slot updates the tracker consumes.
package evdev

import (
	"bytes"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Minimal Linux input constants
const (
	EV_SYN = 0x00
	EV_KEY = 0x01
	EV_ABS = 0x03
)

// Multi-touch ABS axes
const (
	ABS_MT_SLOT        = 0x2f
	ABS_MT_POSITION_X  = 0x35
	ABS_MT_POSITION_Y  = 0x36
	ABS_MT_TRACKING_ID = 0x39
)

// SYN codes
const (
	SYN_REPORT  = 0x00
	SYN_DROPPED = 0x03
)

type absInfo struct {
	Value      int32
	Min        int32
	Max        int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// ioctl request encoding (Linux _IOC macro)
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocWrite = 1
	iocRead  = 2
)

func ioc(dir uint32, typ uint32, nr uint32, size uint32) uintptr {
	return uintptr((dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift))
}

func evioCGAbs(absCode int) uintptr {
	// EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo)
	return ioc(iocRead, uint32('E'), uint32(0x40+absCode), uint32(unsafe.Sizeof(absInfo{})))
}

func evioCGrab() uintptr {
	// EVIOCGRAB = _IOW('E', 0x90, int)
	return ioc(iocWrite, uint32('E'), uint32(0x90), uint32(unsafe.Sizeof(int32(0))))
}

func evioCGName(length int) uintptr {
	// EVIOCGNAME(len) = _IOC(_IOC_READ, 'E', 0x06, len)
	return ioc(iocRead, uint32('E'), 0x06, uint32(length))
}

func getAbsInfo(fd int, absCode int) (absInfo, error) {
	var info absInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), evioCGAbs(absCode), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return absInfo{}, errno
	}
	return info, nil
}

// tryGrab requests exclusive access. Best effort; listeners that cannot
// grab still see events, they just share them with everyone else.
func tryGrab(fd int) {
	var one int32 = 1
	_, _, _ = unix.Syscall(unix.SYS_IOCTL, uintptr(fd), evioCGrab(), uintptr(unsafe.Pointer(&one)))
}

const maxNameLen = 256

// deviceName reads the kernel-reported device name, empty when the ioctl
// is unsupported.
func deviceName(fd int) string {
	buf := make([]byte, maxNameLen)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), evioCGName(len(buf)), uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return ""
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return strings.TrimSpace(string(buf))
}
