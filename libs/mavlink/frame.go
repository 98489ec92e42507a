package mavlink

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	MagicV1 = 0xfe
	MagicV2 = 0xfd

	headerLenV1 = 5 // after the magic byte
	headerLenV2 = 9

	incompatFlagSigned = 0x01
	signatureLen       = 13
)

// Frame is one decoded MAVLink frame together with its typed message body.
type Frame struct {
	Version     uint8
	Seq         uint8
	SystemID    uint8
	ComponentID uint8
	MsgID       uint32
	Payload     []byte
	Message     Message
}

// Decoder extracts frames from a byte stream. Bytes that do not belong to
// a valid frame are skipped until the next magic byte.
type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 4096)}
}

// Next returns the next decodable frame. ErrChecksum and ErrUnknownMessage
// report a single skipped frame and leave the decoder usable; any other
// error comes from the underlying reader.
func (d *Decoder) Next() (*Frame, error) {
	for {
		magic, err := d.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if magic != MagicV1 && magic != MagicV2 {
			continue
		}
		return d.readFrame(magic)
	}
}

func (d *Decoder) readFrame(magic byte) (*Frame, error) {
	headerLen := headerLenV1
	if magic == MagicV2 {
		headerLen = headerLenV2
	}
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(d.r, header); err != nil {
		return nil, err
	}

	f := &Frame{}
	payloadLen := int(header[0])
	trailerLen := 2
	if magic == MagicV1 {
		f.Version = 1
		f.Seq = header[1]
		f.SystemID = header[2]
		f.ComponentID = header[3]
		f.MsgID = uint32(header[4])
	} else {
		f.Version = 2
		f.Seq = header[3]
		f.SystemID = header[4]
		f.ComponentID = header[5]
		f.MsgID = uint32(header[6]) | uint32(header[7])<<8 | uint32(header[8])<<16
		if header[1]&incompatFlagSigned != 0 {
			trailerLen += signatureLen
		}
	}

	rest := make([]byte, payloadLen+trailerLen)
	if _, err := io.ReadFull(d.r, rest); err != nil {
		return nil, err
	}
	f.Payload = rest[:payloadLen]
	checksum := binary.LittleEndian.Uint16(rest[payloadLen : payloadLen+2])

	extra, ok := crcExtra[f.MsgID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessage, f.MsgID)
	}

	seed := make([]byte, 0, headerLen+payloadLen)
	seed = append(seed, header...)
	seed = append(seed, f.Payload...)
	if crcCalculate(seed, extra) != checksum {
		return nil, fmt.Errorf("msg id %d: %w", f.MsgID, ErrChecksum)
	}

	msg, err := newMessage(f.MsgID)
	if err != nil {
		return nil, err
	}
	if err := msg.Decode(extendPayload(f.Payload, int(msg.Length()))); err != nil {
		return nil, err
	}
	f.Message = msg
	return f, nil
}

// EncodeFrame wraps m into a wire frame. Version 2 frames use the
// trailing-zero payload truncation the protocol allows.
func EncodeFrame(version, seq, systemID, componentID uint8, m Message) ([]byte, error) {
	extra, ok := crcExtra[m.ID()]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessage, m.ID())
	}
	payload, err := m.Encode()
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(nil)
	switch version {
	case 1:
		if m.ID() > 0xff {
			return nil, fmt.Errorf("msg id %d does not fit a version 1 frame", m.ID())
		}
		buf.WriteByte(MagicV1)
		buf.WriteByte(uint8(len(payload)))
		buf.WriteByte(seq)
		buf.WriteByte(systemID)
		buf.WriteByte(componentID)
		buf.WriteByte(uint8(m.ID()))
	case 2:
		for len(payload) > 1 && payload[len(payload)-1] == 0 {
			payload = payload[:len(payload)-1]
		}
		buf.WriteByte(MagicV2)
		buf.WriteByte(uint8(len(payload)))
		buf.WriteByte(0) // incompat flags
		buf.WriteByte(0) // compat flags
		buf.WriteByte(seq)
		buf.WriteByte(systemID)
		buf.WriteByte(componentID)
		buf.WriteByte(uint8(m.ID()))
		buf.WriteByte(uint8(m.ID() >> 8))
		buf.WriteByte(uint8(m.ID() >> 16))
	default:
		return nil, fmt.Errorf("unsupported frame version: %d", version)
	}
	buf.Write(payload)

	crc := crcCalculate(buf.Bytes()[1:], extra)
	ck := make([]byte, 2)
	binary.LittleEndian.PutUint16(ck, crc)
	buf.Write(ck)
	return buf.Bytes(), nil
}
