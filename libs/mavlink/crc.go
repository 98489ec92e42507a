package mavlink

// X.25 checksum (CRC-16/MCRF4XX) over everything after the magic byte,
// seeded with the per-message extra byte.

const crcInit uint16 = 0xffff

func crcAccumulate(b byte, crc uint16) uint16 {
	tmp := b ^ byte(crc)
	tmp ^= tmp << 4
	return (crc >> 8) ^ uint16(tmp)<<8 ^ uint16(tmp)<<3 ^ uint16(tmp)>>4
}

func crcCalculate(data []byte, extra byte) uint16 {
	crc := crcInit
	for _, b := range data {
		crc = crcAccumulate(b, crc)
	}
	return crcAccumulate(extra, crc)
}
