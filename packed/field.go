package packed

import (
	"encoding/binary"
	"errors"
)

var (
	errFieldWidth   = errors.New("packed: invalid field storage width")
	errFieldBits    = errors.New("packed: invalid field bit length")
	errFieldShift   = errors.New("packed: field does not fit storage unit")
	errFieldBounds  = errors.New("packed: field exceeds layout length")
	errFieldOverlap = errors.New("packed: fields overlap")
)

// Unsigned is the set of types a [Field] value may be exposed as.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32
}

// Field describes where a named header field lives inside a buffer. A field
// is read by loading the Width-bit storage unit at byte offset Off (big endian
// when wider than a byte), shifting right by Shift and keeping the low Bits bits.
//
// Fields that share a storage unit, such as the IPv4 flags and fragment offset,
// are written with a read-modify-write of the whole unit so the bits of
// neighbouring fields are left untouched.
type Field struct {
	Name  string
	Class FieldClass
	// Off is the byte offset of the storage unit from the start of the header.
	Off uint8
	// Width is the storage unit size in bits: 8, 16 or 32.
	Width uint8
	// Shift is the position of the field's least significant bit within the storage unit.
	Shift uint8
	// Bits is the logical width of the field.
	Bits uint8
}

// Validate checks the descriptor is self consistent.
func (f Field) Validate() error {
	switch {
	case f.Width != 8 && f.Width != 16 && f.Width != 32:
		return errFieldWidth
	case f.Bits == 0 || f.Bits > f.Width:
		return errFieldBits
	case int(f.Shift)+int(f.Bits) > int(f.Width):
		return errFieldShift
	}
	return nil
}

// Size returns the number of octets of the storage unit.
func (f Field) Size() int { return int(f.Width) / 8 }

// End returns the offset one past the last octet of the storage unit.
func (f Field) End() int { return int(f.Off) + f.Size() }

// BitOffset returns the offset of the field's most significant bit counting from
// the most significant bit of the header's first octet, as drawn in RFC diagrams.
func (f Field) BitOffset() int {
	return int(f.Off)*8 + int(f.Width) - int(f.Shift) - int(f.Bits)
}

// Mask returns the mask of the field's bits after shifting to the low bits.
func (f Field) Mask() uint32 {
	return uint32(uint64(1)<<f.Bits - 1)
}

// Get reads the field's value from buf. buf must hold at least f.End() bytes.
func (f Field) Get(buf []byte) uint32 {
	return f.load(buf) >> f.Shift & f.Mask()
}

// Put writes v into the field's bits of buf. Bits of v beyond the field's width are
// discarded. All bits of the storage unit outside the field are preserved.
func (f Field) Put(buf []byte, v uint32) {
	mask := f.Mask()
	unit := f.load(buf)&^(mask<<f.Shift) | (v&mask)<<f.Shift
	f.store(buf, unit)
}

func (f Field) load(buf []byte) uint32 {
	switch f.Width {
	case 8:
		return uint32(buf[f.Off])
	case 16:
		return uint32(binary.BigEndian.Uint16(buf[f.Off:]))
	case 32:
		return binary.BigEndian.Uint32(buf[f.Off:])
	}
	panic(errFieldWidth)
}

func (f Field) store(buf []byte, unit uint32) {
	switch f.Width {
	case 8:
		buf[f.Off] = uint8(unit)
	case 16:
		binary.BigEndian.PutUint16(buf[f.Off:], uint16(unit))
	case 32:
		binary.BigEndian.PutUint32(buf[f.Off:], unit)
	default:
		panic(errFieldWidth)
	}
}

// CheckLayout validates every field descriptor and checks no storage unit
// extends past minLen and no two fields claim the same bit.
func CheckLayout(minLen int, fields ...Field) error {
	for i := range fields {
		if err := fields[i].Validate(); err != nil {
			return err
		}
		if fields[i].End() > minLen {
			return errFieldBounds
		}
		start, end := fields[i].bitRange()
		for _, other := range fields[:i] {
			ostart, oend := other.bitRange()
			if start < oend && ostart < end {
				return errFieldOverlap
			}
		}
	}
	return nil
}

func (f Field) bitRange() (start, end int) {
	start = f.BitOffset()
	return start, start + int(f.Bits)
}

// FieldClass categorizes a field. It decides how [Formatter] prints its value.
type FieldClass uint8

const (
	FieldClassUndefined FieldClass = iota // undefined
	FieldClassVersion                     // version
	FieldClassSize                        // size
	FieldClassFlags                       // flags
	FieldClassID                          // id
	FieldClassChecksum                    // checksum
	FieldClassTTL                         // ttl
	FieldClassProtocol                    // proto
	FieldClassSrc                         // src
	FieldClassDst                         // dst
	FieldClassOffset                      // offset
	FieldClassPort                        // port
)

var fieldClassNames = [...]string{
	FieldClassUndefined: "undefined",
	FieldClassVersion:   "version",
	FieldClassSize:      "size",
	FieldClassFlags:     "flags",
	FieldClassID:        "id",
	FieldClassChecksum:  "checksum",
	FieldClassTTL:       "ttl",
	FieldClassProtocol:  "proto",
	FieldClassSrc:       "src",
	FieldClassDst:       "dst",
	FieldClassOffset:    "offset",
	FieldClassPort:      "port",
}

func (fc FieldClass) String() string {
	if int(fc) < len(fieldClassNames) {
		return fieldClassNames[fc]
	}
	return "FieldClass(?)"
}
