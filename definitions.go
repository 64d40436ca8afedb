package pktview

import "strconv"

// IPProto represents the IP protocol number carried in the IPv4 Protocol
// field (and the IPv6 Next Header field). Header views treat it as an opaque byte.
type IPProto uint8

// IP protocol numbers. See the IANA "Assigned Internet Protocol Numbers" registry.
const (
	IPProtoHopByHop IPProto = 0   // HOPOPT
	IPProtoICMP     IPProto = 1   // ICMP
	IPProtoIGMP     IPProto = 2   // IGMP
	IPProtoIPv4     IPProto = 4   // IPv4
	IPProtoTCP      IPProto = 6   // TCP
	IPProtoEGP      IPProto = 8   // EGP
	IPProtoUDP      IPProto = 17  // UDP
	IPProtoDCCP     IPProto = 33  // DCCP
	IPProtoIPv6     IPProto = 41  // IPv6
	IPProtoRSVP     IPProto = 46  // RSVP
	IPProtoGRE      IPProto = 47  // GRE
	IPProtoESP      IPProto = 50  // ESP
	IPProtoAH       IPProto = 51  // AH
	IPProtoIPv6ICMP IPProto = 58  // ICMPv6
	IPProtoEIGRP    IPProto = 88  // EIGRP
	IPProtoOSPF     IPProto = 89  // OSPF
	IPProtoPIM      IPProto = 103 // PIM
	IPProtoVRRP     IPProto = 112 // VRRP
	IPProtoL2TP     IPProto = 115 // L2TP
	IPProtoSCTP     IPProto = 132 // SCTP
	IPProtoUDPLite  IPProto = 136 // UDPLite
	IPProtoEthernet IPProto = 143 // Ethernet
)

// String returns the protocol's short name, or "IPProto(n)" for numbers without one.
func (p IPProto) String() string {
	switch p {
	case IPProtoHopByHop:
		return "HOPOPT"
	case IPProtoICMP:
		return "ICMP"
	case IPProtoIGMP:
		return "IGMP"
	case IPProtoIPv4:
		return "IPv4"
	case IPProtoTCP:
		return "TCP"
	case IPProtoEGP:
		return "EGP"
	case IPProtoUDP:
		return "UDP"
	case IPProtoDCCP:
		return "DCCP"
	case IPProtoIPv6:
		return "IPv6"
	case IPProtoRSVP:
		return "RSVP"
	case IPProtoGRE:
		return "GRE"
	case IPProtoESP:
		return "ESP"
	case IPProtoAH:
		return "AH"
	case IPProtoIPv6ICMP:
		return "ICMPv6"
	case IPProtoEIGRP:
		return "EIGRP"
	case IPProtoOSPF:
		return "OSPF"
	case IPProtoPIM:
		return "PIM"
	case IPProtoVRRP:
		return "VRRP"
	case IPProtoL2TP:
		return "L2TP"
	case IPProtoSCTP:
		return "SCTP"
	case IPProtoUDPLite:
		return "UDPLite"
	case IPProtoEthernet:
		return "Ethernet"
	}
	return "IPProto(" + strconv.Itoa(int(p)) + ")"
}
