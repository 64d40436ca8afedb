package pktview

import (
	"encoding/binary"
)

// CRC791 accumulates the Internet checksum defined by RFC 791: the 16-bit
// ones' complement of the ones' complement sum of all 16-bit words written.
// A trailing odd octet is padded with a zero LSB.
//
// The zero value of CRC791 is ready to use.
type CRC791 struct {
	sum uint32
}

func fold16(sum uint32) uint16 {
	sum = (sum & 0xffff) + sum>>16
	// at most 0x1fffe here, one more fold is enough.
	return ^uint16(sum + sum>>16)
}

func sumEven(sum uint32, buf []byte) uint32 {
	for i := 0; i+1 < len(buf); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(buf[i:]))
	}
	return sum
}

// Write adds the 16-bit words in buf to the running checksum. buf must be of even length;
// use [CRC791.PayloadSum16] to finish off odd-length data.
func (c *CRC791) Write(buf []byte) {
	if len(buf)%2 != 0 {
		panic("pktview: odd length CRC791 write")
	}
	c.sum = sumEven(c.sum, buf)
}

// AddUint16 adds a 16 bit value to the running checksum.
func (c *CRC791) AddUint16(value uint16) {
	c.sum += uint32(value)
}

// AddUint32 adds a 32 bit value to the running checksum interpreted as big endian.
func (c *CRC791) AddUint32(value uint32) {
	c.AddUint16(uint16(value >> 16))
	c.AddUint16(uint16(value))
}

// Sum16 returns the checksum of the data written so far.
func (c *CRC791) Sum16() uint16 {
	return fold16(c.sum)
}

// PayloadSum16 returns the checksum resulting from adding buf to the running sum.
// buf may be of odd length. c is not modified.
func (c *CRC791) PayloadSum16(buf []byte) uint16 {
	odd := len(buf) & 1
	sum := sumEven(c.sum, buf[:len(buf)-odd])
	if odd > 0 {
		sum += uint32(buf[len(buf)-1]) << 8
	}
	return fold16(sum)
}

// Reset zeros out c.
func (c *CRC791) Reset() { *c = CRC791{} }
