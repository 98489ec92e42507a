package mavlink

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// BatteryStatus (BATTERY_STATUS, id 147) is the per-battery report.
// BatteryRemaining is percent with -1 meaning not estimated.
type BatteryStatus struct {
	CurrentConsumed  int32
	EnergyConsumed   int32
	Temperature      int16
	Voltages         [10]uint16
	CurrentBattery   int16
	BatteryID        uint8
	BatteryFunction  uint8
	Type             uint8
	BatteryRemaining int8
}

func (m *BatteryStatus) Decode(content []byte) error {
	if len(content) < int(m.Length()) {
		return fmt.Errorf("invalid battery_status payload length: %d", len(content))
	}
	return binary.Read(bytes.NewReader(content), binary.LittleEndian, m)
}

func (m *BatteryStatus) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := binary.Write(buf, binary.LittleEndian, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *BatteryStatus) Length() uint8 { return 36 }

func (m *BatteryStatus) ID() uint32 { return MsgIDBatteryStatus }
