package mavlink

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// SysStatus (SYS_STATUS, id 1) is the battery and sensor health summary.
// VoltageBattery is in mV with 0xffff meaning not measured, CurrentBattery
// in units of 10 mA with -1 meaning not measured, BatteryRemaining in
// percent with -1 meaning not estimated.
type SysStatus struct {
	SensorsPresent   uint32
	SensorsEnabled   uint32
	SensorsHealth    uint32
	Load             uint16
	VoltageBattery   uint16
	CurrentBattery   int16
	DropRateComm     uint16
	ErrorsComm       uint16
	ErrorsCount1     uint16
	ErrorsCount2     uint16
	ErrorsCount3     uint16
	ErrorsCount4     uint16
	BatteryRemaining int8
}

func (m *SysStatus) Decode(content []byte) error {
	if len(content) < int(m.Length()) {
		return fmt.Errorf("invalid sys_status payload length: %d", len(content))
	}
	return binary.Read(bytes.NewReader(content), binary.LittleEndian, m)
}

func (m *SysStatus) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := binary.Write(buf, binary.LittleEndian, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *SysStatus) Length() uint8 { return 31 }

func (m *SysStatus) ID() uint32 { return MsgIDSysStatus }
