package mavlink

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// GlobalPositionInt (GLOBAL_POSITION_INT, id 33) is the filtered global
// position. Lat and Lon are degrees scaled by 1e7, Alt and RelativeAlt
// millimeters, Hdg centidegrees.
type GlobalPositionInt struct {
	TimeBootMs  uint32
	Lat         int32
	Lon         int32
	Alt         int32
	RelativeAlt int32
	Vx          int16
	Vy          int16
	Vz          int16
	Hdg         uint16
}

func (m *GlobalPositionInt) Decode(content []byte) error {
	if len(content) < int(m.Length()) {
		return fmt.Errorf("invalid global_position_int payload length: %d", len(content))
	}
	return binary.Read(bytes.NewReader(content), binary.LittleEndian, m)
}

func (m *GlobalPositionInt) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := binary.Write(buf, binary.LittleEndian, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *GlobalPositionInt) Length() uint8 { return 28 }

func (m *GlobalPositionInt) ID() uint32 { return MsgIDGlobalPositionInt }
