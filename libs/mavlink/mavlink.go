// Package mavlink implements the subset of the MAVLink 1/2 wire protocol
// the bridge needs: frame parsing with checksum validation and the typed
// common-dialect messages that carry vehicle state.
package mavlink

import (
	"errors"
	"fmt"
)

// Recoverable decoder errors. The decoder stays usable after either and
// resynchronizes on the next magic byte.
var (
	ErrChecksum       = errors.New("checksum mismatch")
	ErrUnknownMessage = errors.New("unknown message id")
)

// Message IDs of the common dialect understood by this package.
const (
	MsgIDHeartbeat         uint32 = 0
	MsgIDSysStatus         uint32 = 1
	MsgIDGpsRawInt         uint32 = 24
	MsgIDAttitude          uint32 = 30
	MsgIDGlobalPositionInt uint32 = 33
	MsgIDBatteryStatus     uint32 = 147
)

// HEARTBEAT base_mode flags.
const (
	ModeFlagCustomModeEnabled = 0x01
	ModeFlagSafetyArmed       = 0x80
)

// Message is a typed MAVLink message body.
type Message interface {
	Decode(content []byte) error
	Encode() ([]byte, error)
	Length() uint8
	ID() uint32
}

// crcExtra is the per-message byte appended to the checksum input, fixed
// by the message definition.
var crcExtra = map[uint32]uint8{
	MsgIDHeartbeat:         50,
	MsgIDSysStatus:         124,
	MsgIDGpsRawInt:         24,
	MsgIDAttitude:          39,
	MsgIDGlobalPositionInt: 104,
	MsgIDBatteryStatus:     154,
}

func newMessage(id uint32) (Message, error) {
	switch id {
	case MsgIDHeartbeat:
		return &Heartbeat{}, nil
	case MsgIDSysStatus:
		return &SysStatus{}, nil
	case MsgIDGpsRawInt:
		return &GpsRawInt{}, nil
	case MsgIDAttitude:
		return &Attitude{}, nil
	case MsgIDGlobalPositionInt:
		return &GlobalPositionInt{}, nil
	case MsgIDBatteryStatus:
		return &BatteryStatus{}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownMessage, id)
}

// extendPayload restores the trailing zero bytes a version 2 sender is
// allowed to truncate.
func extendPayload(content []byte, length int) []byte {
	if len(content) >= length {
		return content
	}
	full := make([]byte, length)
	copy(full, content)
	return full
}
