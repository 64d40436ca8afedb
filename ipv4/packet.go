// Package ipv4 provides zero-copy views over IPv4 packet headers.
package ipv4

import (
	"encoding/binary"
	"net/netip"

	"github.com/soypat/pktview"
	"github.com/soypat/pktview/packed"
)

// NewPacket returns a read-only Packet over buf.
// [pktview.ErrShortBuffer] is returned if buf is shorter than 20 bytes.
func NewPacket(buf []byte) (Packet, error) {
	v, err := packed.NewView[header](buf)
	return Packet{v: v}, err
}

// Packet is a read-only view over the raw data of an IPv4 packet. It
// exposes the fields of the fixed 20 byte header. Options, if IHL>5, are
// not decoded and lie at the start of [Packet.Payload]. See [RFC791].
//
// Any number of Packets may read the same buffer concurrently.
//
// [RFC791]: https://tools.ietf.org/html/rfc791
type Packet struct {
	v packed.View[header]
}

// Data returns the underlying slice with which the packet was created.
func (p Packet) Data() []byte { return p.v.Data() }

// Header returns the fixed 20 byte header.
func (p Packet) Header() []byte { return p.v.Header() }

// Payload returns all data following the fixed 20 byte header, options included. May be empty.
func (p Packet) Payload() []byte { return p.v.Payload() }

// Version returns the 4-bit version field. Should be 4 for IPv4.
func (p Packet) Version() uint8 { return packed.Get[uint8](p.v, fieldVersion) }

// HeaderLength returns the 4-bit Internet Header Length (IHL) field: the
// length of the header including options in 32-bit words. Minimum valid value is 5.
func (p Packet) HeaderLength() uint8 { return packed.Get[uint8](p.v, fieldHeaderLength) }

// DSCP returns the 6-bit Differentiated Services Code Point field as per RFC 2474,
// which is used to classify packets.
func (p Packet) DSCP() uint8 { return packed.Get[uint8](p.v, fieldDSCP) }

// ECN returns the 2-bit Explicit Congestion Notification field as per RFC 3168.
func (p Packet) ECN() uint8 { return packed.Get[uint8](p.v, fieldECN) }

// TotalLength defines the entire packet size in bytes, including IP header and data.
func (p Packet) TotalLength() uint16 { return packed.Get[uint16](p.v, fieldTotalLength) }

// Identification is primarily used for uniquely identifying the group of
// fragments of a single IP datagram.
func (p Packet) Identification() uint16 {
	return packed.Get[uint16](p.v, fieldIdentification)
}

// Flags returns the 3-bit control flags. See [Flags].
func (p Packet) Flags() Flags { return Flags(packed.Get[uint8](p.v, fieldFlags)) }

// DontFragment returns true if the DF flag is set.
func (p Packet) DontFragment() bool { return p.Flags().DontFragment() }

// MoreFragments returns true if the MF flag is set.
func (p Packet) MoreFragments() bool { return p.Flags().MoreFragments() }

// FragmentOffset returns the 13-bit offset of this fragment relative to the start of
// the unfragmented datagram in units of 8 bytes.
func (p Packet) FragmentOffset() uint16 {
	return packed.Get[uint16](p.v, fieldFragmentOffset)
}

// TTL is the time to live field. Routers decrement it by one and drop the
// datagram when it reaches zero.
func (p Packet) TTL() uint8 { return packed.Get[uint8](p.v, fieldTTL) }

// Protocol returns the protocol of the data portion of the datagram. TCP is 6, UDP is 17.
func (p Packet) Protocol() pktview.IPProto {
	return packed.Get[pktview.IPProto](p.v, fieldProtocol)
}

// HeaderChecksum returns the stored header checksum. It is not verified;
// see [Packet.CalculateHeaderChecksum].
func (p Packet) HeaderChecksum() uint16 { return packed.Get[uint16](p.v, fieldChecksum) }

// Source returns the source address.
func (p Packet) Source() netip.Addr { return netip.AddrFrom4(*p.SourceAddr()) }

// Destination returns the destination address.
func (p Packet) Destination() netip.Addr { return netip.AddrFrom4(*p.DestinationAddr()) }

// SourceAddr returns a pointer to the source address octets in the header.
func (p Packet) SourceAddr() *[4]byte {
	return (*[4]byte)(p.v.Data()[fieldSource.Off:fieldSource.End()])
}

// DestinationAddr returns a pointer to the destination address octets in the header.
func (p Packet) DestinationAddr() *[4]byte {
	return (*[4]byte)(p.v.Data()[fieldDestination.Off:fieldDestination.End()])
}

// CalculateHeaderChecksum calculates the RFC 791 checksum of the fixed header,
// skipping the stored checksum field. Options are not included. A packet is
// consistent when the result equals [Packet.HeaderChecksum].
func (p Packet) CalculateHeaderChecksum() uint16 {
	var crc pktview.CRC791
	hdr := p.v.Header()
	crc.Write(hdr[:fieldChecksum.Off])
	crc.Write(hdr[fieldChecksum.End():])
	return crc.Sum16()
}

// AppendFormat appends a single line description of the header fields to dst.
func (p Packet) AppendFormat(dst []byte) []byte {
	var f packed.Formatter
	dst = append(dst, "IPv4 "...)
	return f.AppendFields(dst, p.v.Data(), fields[:])
}

func (p Packet) String() string {
	return string(p.AppendFormat(make([]byte, 0, 192)))
}

// NewMutPacket returns a MutPacket over buf.
// [pktview.ErrShortBuffer] is returned if buf is shorter than 20 bytes.
func NewMutPacket(buf []byte) (MutPacket, error) {
	v, err := packed.NewMutView[header](buf)
	return MutPacket{Packet: Packet{v: v.ReadOnly()}, mv: v}, err
}

// MutPacket is a read-write view over the raw data of an IPv4 packet.
// Setters rewrite only the bits of their own field, preserving neighbouring
// fields that share an octet. Values wider than the field are truncated.
//
// A MutPacket must be the only view in use over its buffer while it is
// being written to; derive readers with [MutPacket.ReadOnly] once writing is done.
type MutPacket struct {
	Packet
	mv packed.MutView[header]
}

// ReadOnly returns a read-only view over the same buffer.
func (p MutPacket) ReadOnly() Packet { return p.Packet }

// SetVersion sets the version field. See [Packet.Version].
func (p MutPacket) SetVersion(version uint8) { packed.Put(p.mv, fieldVersion, version) }

// SetHeaderLength sets the IHL field. See [Packet.HeaderLength].
func (p MutPacket) SetHeaderLength(ihl uint8) { packed.Put(p.mv, fieldHeaderLength, ihl) }

// SetDSCP sets the DSCP field. See [Packet.DSCP].
func (p MutPacket) SetDSCP(dscp uint8) { packed.Put(p.mv, fieldDSCP, dscp) }

// SetECN sets the ECN field. See [Packet.ECN].
func (p MutPacket) SetECN(ecn uint8) { packed.Put(p.mv, fieldECN, ecn) }

// SetTotalLength sets the total length field. See [Packet.TotalLength].
func (p MutPacket) SetTotalLength(tl uint16) { packed.Put(p.mv, fieldTotalLength, tl) }

// SetIdentification sets the identification field. See [Packet.Identification].
func (p MutPacket) SetIdentification(id uint16) {
	packed.Put(p.mv, fieldIdentification, id)
}

// SetFlags sets the 3 flag bits. The fragment offset is preserved.
func (p MutPacket) SetFlags(flags Flags) { packed.Put(p.mv, fieldFlags, flags.Bits()) }

// SetFragmentOffset sets the 13-bit fragment offset. The flags are preserved.
func (p MutPacket) SetFragmentOffset(off uint16) {
	packed.Put(p.mv, fieldFragmentOffset, off)
}

// SetTTL sets the time to live field. See [Packet.TTL].
func (p MutPacket) SetTTL(ttl uint8) { packed.Put(p.mv, fieldTTL, ttl) }

// SetProtocol sets the protocol field. See [Packet.Protocol].
func (p MutPacket) SetProtocol(proto pktview.IPProto) {
	packed.Put(p.mv, fieldProtocol, proto)
}

// SetHeaderChecksum sets the stored header checksum. Nothing is computed;
// see [Packet.CalculateHeaderChecksum].
func (p MutPacket) SetHeaderChecksum(sum uint16) { packed.Put(p.mv, fieldChecksum, sum) }

// SetSource sets the source address. addr must be an IPv4 or IPv4-mapped IPv6 address,
// SetSource panics otherwise.
func (p MutPacket) SetSource(addr netip.Addr) {
	packed.Put(p.mv, fieldSource, addr4(addr))
}

// SetDestination sets the destination address. See [MutPacket.SetSource].
func (p MutPacket) SetDestination(addr netip.Addr) {
	packed.Put(p.mv, fieldDestination, addr4(addr))
}

// ClearHeader zeros out the fixed header. The payload is not modified.
func (p MutPacket) ClearHeader() { p.mv.Zero() }

func addr4(addr netip.Addr) uint32 {
	a4 := addr.As4()
	return binary.BigEndian.Uint32(a4[:])
}
