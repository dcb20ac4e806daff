package evdev

import (
	"encoding/binary"
	"time"

	"github.com/gestured/gestured/internal/domain/touch"
)

// rawEvent is one decoded input_event record.
type rawEvent struct {
	time  time.Time
	typ   uint16
	code  uint16
	value int32
}

// recordParser reassembles input_event records from a byte stream.
// Kernel uses different struct size depending on timeval size (32-bit vs 64-bit).
type recordParser struct {
	buf []byte
	sz  int // 0 unknown, else 16 or 24
}

func (p *recordParser) feed(chunk []byte, cb func(rawEvent)) {
	p.buf = append(p.buf, chunk...)
	if p.sz == 0 {
		switch {
		case len(p.buf) >= 48 && len(p.buf)%24 == 0:
			p.sz = 24
		case len(p.buf) >= 32 && len(p.buf)%16 == 0:
			p.sz = 16
		case len(p.buf) >= 24:
			// fallback: assume the 64-bit layout
			p.sz = 24
		}
	}
	for p.sz != 0 && len(p.buf) >= p.sz {
		ev := p.buf[:p.sz]
		p.buf = p.buf[p.sz:]

		var e rawEvent
		if p.sz == 24 {
			sec := int64(binary.LittleEndian.Uint64(ev[0:8]))
			usec := int64(binary.LittleEndian.Uint64(ev[8:16]))
			e.time = time.Unix(sec, usec*1000)
			e.typ = binary.LittleEndian.Uint16(ev[16:18])
			e.code = binary.LittleEndian.Uint16(ev[18:20])
			e.value = int32(binary.LittleEndian.Uint32(ev[20:24]))
		} else {
			sec := int64(binary.LittleEndian.Uint32(ev[0:4]))
			usec := int64(binary.LittleEndian.Uint32(ev[4:8]))
			e.time = time.Unix(sec, usec*1000)
			e.typ = binary.LittleEndian.Uint16(ev[8:10])
			e.code = binary.LittleEndian.Uint16(ev[10:12])
			e.value = int32(binary.LittleEndian.Uint32(ev[12:16]))
		}
		cb(e)
	}
}

// translate maps one raw record to a touch update. Records the tracker has
// no use for report ok == false and are skipped.
func translate(e rawEvent) (u touch.Update, ok bool) {
	switch e.typ {
	case EV_ABS:
		switch e.code {
		case ABS_MT_SLOT:
			return touch.Update{Op: touch.OpSelect, Value: e.value, Time: e.time}, true
		case ABS_MT_TRACKING_ID:
			return touch.Update{Op: touch.OpTrackingID, Value: e.value, Time: e.time}, true
		case ABS_MT_POSITION_X:
			return touch.Update{Op: touch.OpPositionX, Value: e.value, Time: e.time}, true
		case ABS_MT_POSITION_Y:
			return touch.Update{Op: touch.OpPositionY, Value: e.value, Time: e.time}, true
		}
	case EV_SYN:
		switch e.code {
		case SYN_REPORT:
			return touch.Update{Op: touch.OpSync, Time: e.time}, true
		case SYN_DROPPED:
			// The kernel dropped records; whatever state we assembled
			// from this burst can no longer be trusted.
			return touch.Update{Op: touch.OpReset, Time: e.time}, true
		}
	}
	return touch.Update{}, false
}
