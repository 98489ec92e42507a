package mavlink

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Heartbeat (HEARTBEAT, id 0) announces the sender and its flight mode.
// The armed flag lives in BaseMode, the autopilot-specific flight mode
// number in CustomMode.
type Heartbeat struct {
	CustomMode     uint32
	Type           uint8
	Autopilot      uint8
	BaseMode       uint8
	SystemStatus   uint8
	MavlinkVersion uint8
}

func (m *Heartbeat) Decode(content []byte) error {
	if len(content) < int(m.Length()) {
		return fmt.Errorf("invalid heartbeat payload length: %d", len(content))
	}
	return binary.Read(bytes.NewReader(content), binary.LittleEndian, m)
}

func (m *Heartbeat) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := binary.Write(buf, binary.LittleEndian, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Heartbeat) Length() uint8 { return 9 }

func (m *Heartbeat) ID() uint32 { return MsgIDHeartbeat }
