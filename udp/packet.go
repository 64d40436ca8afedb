// Package udp provides zero-copy views over UDP datagram headers. See [RFC768].
//
// [RFC768]: https://tools.ietf.org/html/rfc768
package udp

import (
	"slices"

	"github.com/soypat/pktview/packed"
)

const sizeHeader = 8

type header struct{}

func (header) MinLen() int { return sizeHeader }

var (
	fieldSourcePort      = packed.Field{Name: "Source Port", Class: packed.FieldClassPort, Off: 0, Width: 16, Bits: 16}
	fieldDestinationPort = packed.Field{Name: "Destination Port", Class: packed.FieldClassPort, Off: 2, Width: 16, Bits: 16}
	fieldLength          = packed.Field{Name: "len", Class: packed.FieldClassSize, Off: 4, Width: 16, Bits: 16}
	fieldChecksum        = packed.Field{Class: packed.FieldClassChecksum, Off: 6, Width: 16, Bits: 16}

	fields = [...]packed.Field{fieldSourcePort, fieldDestinationPort, fieldLength, fieldChecksum}
)

// Fields returns the field table of the UDP header in wire order. The returned slice is a copy.
func Fields() []packed.Field { return slices.Clone(fields[:]) }

// NewPacket returns a read-only Packet over buf.
// [pktview.ErrShortBuffer] is returned if buf is shorter than 8 bytes.
func NewPacket(buf []byte) (Packet, error) {
	v, err := packed.NewView[header](buf)
	return Packet{v: v}, err
}

// Packet is a read-only view over a UDP datagram.
type Packet struct {
	v packed.View[header]
}

// Data returns the underlying slice with which the packet was created.
func (p Packet) Data() []byte { return p.v.Data() }

// Header returns the 8 byte UDP header.
func (p Packet) Header() []byte { return p.v.Header() }

// Payload returns all data following the header. It is not bounded by [Packet.Length].
func (p Packet) Payload() []byte { return p.v.Payload() }

// SourcePort identifies the sending port. Zero if unused.
func (p Packet) SourcePort() uint16 { return packed.Get[uint16](p.v, fieldSourcePort) }

// DestinationPort identifies the receiving port.
func (p Packet) DestinationPort() uint16 {
	return packed.Get[uint16](p.v, fieldDestinationPort)
}

// Length specifies length in bytes of UDP header and UDP payload. Minimum valid value is 8.
func (p Packet) Length() uint16 { return packed.Get[uint16](p.v, fieldLength) }

// Checksum returns the stored checksum. Zero means no checksum was computed by the sender.
func (p Packet) Checksum() uint16 { return packed.Get[uint16](p.v, fieldChecksum) }

// AppendFormat appends a single line description of the header to dst.
func (p Packet) AppendFormat(dst []byte) []byte {
	var f packed.Formatter
	dst = append(dst, "UDP "...)
	return f.AppendFields(dst, p.v.Data(), fields[:])
}

func (p Packet) String() string { return string(p.AppendFormat(nil)) }

// NewMutPacket returns a MutPacket over buf.
// [pktview.ErrShortBuffer] is returned if buf is shorter than 8 bytes.
func NewMutPacket(buf []byte) (MutPacket, error) {
	v, err := packed.NewMutView[header](buf)
	return MutPacket{Packet: Packet{v: v.ReadOnly()}, mv: v}, err
}

// MutPacket is a read-write view over a UDP datagram. It must be the only view in
// use over its buffer while written to.
type MutPacket struct {
	Packet
	mv packed.MutView[header]
}

// ReadOnly returns a read-only view over the same buffer.
func (p MutPacket) ReadOnly() Packet { return p.Packet }

// SetSourcePort sets the source port field.
func (p MutPacket) SetSourcePort(port uint16) { packed.Put(p.mv, fieldSourcePort, port) }

// SetDestinationPort sets the destination port field.
func (p MutPacket) SetDestinationPort(port uint16) {
	packed.Put(p.mv, fieldDestinationPort, port)
}

// SetLength sets the length field. See [Packet.Length].
func (p MutPacket) SetLength(length uint16) { packed.Put(p.mv, fieldLength, length) }

// SetChecksum sets the checksum field.
func (p MutPacket) SetChecksum(sum uint16) { packed.Put(p.mv, fieldChecksum, sum) }

// ClearHeader zeros out the header contents.
func (p MutPacket) ClearHeader() { p.mv.Zero() }
