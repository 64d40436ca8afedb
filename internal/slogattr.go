package internal

import (
	"encoding/binary"
	"log/slog"
)

// SlogAddr4 returns a slog.Attr for a 4-byte IPv4 address
// packed into a uint64 without allocating a string.
func SlogAddr4(key string, addr *[4]byte) slog.Attr {
	return slog.Uint64(key, uint64(binary.BigEndian.Uint32(addr[:])))
}
