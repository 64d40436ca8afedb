package ipv4

import (
	"slices"
	"strings"

	"github.com/soypat/pktview/packed"
)

const (
	sizeHeader = 20
)

// header is the layout marker of the fixed IPv4 header. See [RFC791]:
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|Version|  IHL  |   DSCP    |ECN|          Total Length         |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|         Identification        |Flags|      Fragment Offset    |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|  Time to Live |    Protocol   |         Header Checksum       |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                       Source Address                          |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                    Destination Address                        |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//
// [RFC791]: https://tools.ietf.org/html/rfc791
type header struct{}

func (header) MinLen() int { return sizeHeader }

var (
	fieldVersion        = packed.Field{Class: packed.FieldClassVersion, Off: 0, Width: 8, Shift: 4, Bits: 4}
	fieldHeaderLength   = packed.Field{Name: "IHL", Class: packed.FieldClassSize, Off: 0, Width: 8, Shift: 0, Bits: 4}
	fieldDSCP           = packed.Field{Name: "DSCP", Off: 1, Width: 8, Shift: 2, Bits: 6}
	fieldECN            = packed.Field{Name: "ECN", Off: 1, Width: 8, Shift: 0, Bits: 2}
	fieldTotalLength    = packed.Field{Name: "Total Length", Class: packed.FieldClassSize, Off: 2, Width: 16, Shift: 0, Bits: 16}
	fieldIdentification = packed.Field{Class: packed.FieldClassID, Off: 4, Width: 16, Shift: 0, Bits: 16}
	fieldFlags          = packed.Field{Class: packed.FieldClassFlags, Off: 6, Width: 8, Shift: 5, Bits: 3}
	fieldFragmentOffset = packed.Field{Name: "Fragment Offset", Class: packed.FieldClassOffset, Off: 6, Width: 16, Shift: 0, Bits: 13}
	fieldTTL            = packed.Field{Class: packed.FieldClassTTL, Off: 8, Width: 8, Shift: 0, Bits: 8}
	fieldProtocol       = packed.Field{Class: packed.FieldClassProtocol, Off: 9, Width: 8, Shift: 0, Bits: 8}
	fieldChecksum       = packed.Field{Class: packed.FieldClassChecksum, Off: 10, Width: 16, Shift: 0, Bits: 16}
	fieldSource         = packed.Field{Class: packed.FieldClassSrc, Off: 12, Width: 32, Shift: 0, Bits: 32}
	fieldDestination    = packed.Field{Class: packed.FieldClassDst, Off: 16, Width: 32, Shift: 0, Bits: 32}

	fields = [...]packed.Field{
		fieldVersion, fieldHeaderLength, fieldDSCP, fieldECN, fieldTotalLength,
		fieldIdentification, fieldFlags, fieldFragmentOffset, fieldTTL, fieldProtocol,
		fieldChecksum, fieldSource, fieldDestination,
	}
)

// Fields returns the field table of the fixed IPv4 header in wire order.
// The returned slice is a copy and may be modified.
func Fields() []packed.Field { return slices.Clone(fields[:]) }

// Flags is the 3-bit control flags field of the IPv4 header, right aligned.
type Flags uint8

const (
	// FlagMoreFragments is cleared for unfragmented packets.
	// For fragmented packets, all fragments except the last have the MF flag set.
	// The last fragment has a non-zero Fragment Offset field, so it can still be
	// differentiated from an unfragmented packet.
	FlagMoreFragments Flags = 1 << iota
	// FlagDontFragment specifies the datagram must not be fragmented.
	// If DF is set and fragmentation is required to route the packet, the packet is dropped.
	FlagDontFragment
	// FlagReserved must be zero. Also known as the evil bit, see [RFC3514].
	//
	// [RFC3514]: https://datatracker.ietf.org/doc/html/rfc3514
	FlagReserved

	flagsMask = FlagReserved | FlagDontFragment | FlagMoreFragments
)

// FlagsFromBits returns the flags held in the low 3 bits of b. Higher bits are discarded.
func FlagsFromBits(b uint8) Flags { return Flags(b) & flagsMask }

// AllFlags returns the set with every flag set.
func AllFlags() Flags { return flagsMask }

// Bits returns the raw 3-bit value of the flags.
func (f Flags) Bits() uint8 { return uint8(f & flagsMask) }

// Has returns true if every flag set in other is also set in f.
func (f Flags) Has(other Flags) bool { return f&other == other }

// Intersects returns true if f and other share at least one flag.
func (f Flags) Intersects(other Flags) bool { return f&other != 0 }

// Union returns the flags set in either f or other.
func (f Flags) Union(other Flags) Flags { return (f | other) & flagsMask }

// Intersect returns the flags set in both f and other.
func (f Flags) Intersect(other Flags) Flags { return f & other & flagsMask }

// Without returns f with the flags of other cleared.
func (f Flags) Without(other Flags) Flags { return f &^ other & flagsMask }

// Complement returns the flags not set in f.
func (f Flags) Complement() Flags { return ^f & flagsMask }

// IsEmpty returns true if no flag is set.
func (f Flags) IsEmpty() bool { return f&flagsMask == 0 }

// DontFragment returns true if the DF flag is set. See [FlagDontFragment].
func (f Flags) DontFragment() bool { return f.Has(FlagDontFragment) }

// MoreFragments returns true if the MF flag is set. See [FlagMoreFragments].
func (f Flags) MoreFragments() bool { return f.Has(FlagMoreFragments) }

// String returns the set flags joined with '|', i.e: "RESERVED|MF". An empty set is "0".
func (f Flags) String() string {
	if f.IsEmpty() {
		return "0"
	}
	var sb strings.Builder
	for _, flag := range [...]struct {
		f    Flags
		name string
	}{
		{FlagReserved, "RESERVED"},
		{FlagDontFragment, "DF"},
		{FlagMoreFragments, "MF"},
	} {
		if !f.Has(flag.f) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(flag.name)
	}
	return sb.String()
}
