package mavlink

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Attitude (ATTITUDE, id 30) carries the vehicle orientation in radians
// and the angular rates in rad/s.
type Attitude struct {
	TimeBootMs uint32
	Roll       float32
	Pitch      float32
	Yaw        float32
	Rollspeed  float32
	Pitchspeed float32
	Yawspeed   float32
}

func (m *Attitude) Decode(content []byte) error {
	if len(content) < int(m.Length()) {
		return fmt.Errorf("invalid attitude payload length: %d", len(content))
	}
	return binary.Read(bytes.NewReader(content), binary.LittleEndian, m)
}

func (m *Attitude) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := binary.Write(buf, binary.LittleEndian, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Attitude) Length() uint8 { return 28 }

func (m *Attitude) ID() uint32 { return MsgIDAttitude }
