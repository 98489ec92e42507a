package mavlink

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// GpsRawInt (GPS_RAW_INT, id 24) is the raw GNSS solution. FixType 0-1 is
// no fix, 2 is 2D, 3 and above 3D or better. SatellitesVisible is 255 when
// unknown.
type GpsRawInt struct {
	TimeUsec          uint64
	Lat               int32
	Lon               int32
	Alt               int32
	Eph               uint16
	Epv               uint16
	Vel               uint16
	Cog               uint16
	FixType           uint8
	SatellitesVisible uint8
}

func (m *GpsRawInt) Decode(content []byte) error {
	if len(content) < int(m.Length()) {
		return fmt.Errorf("invalid gps_raw_int payload length: %d", len(content))
	}
	return binary.Read(bytes.NewReader(content), binary.LittleEndian, m)
}

func (m *GpsRawInt) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := binary.Write(buf, binary.LittleEndian, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *GpsRawInt) Length() uint8 { return 30 }

func (m *GpsRawInt) ID() uint32 { return MsgIDGpsRawInt }
