package main

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/netip"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/soypat/pktview"
	"github.com/soypat/pktview/internal"
	"github.com/soypat/pktview/ipv4"
)

// editFlags are applied in header order. Integer values wider than their
// field are truncated by the setter, as the header views do.
var editFlags = []struct {
	name  string
	usage string
	apply func(p ipv4.MutPacket, fs *pflag.FlagSet, name string) error
}{
	{"ip-version", "version field (4 bits)", applyUint8(ipv4.MutPacket.SetVersion)},
	{"ihl", "header length in 32-bit words (4 bits)", applyUint8(ipv4.MutPacket.SetHeaderLength)},
	{"dscp", "differentiated services code point (6 bits)", applyUint8(ipv4.MutPacket.SetDSCP)},
	{"ecn", "explicit congestion notification (2 bits)", applyUint8(ipv4.MutPacket.SetECN)},
	{"total-length", "total length", applyUint16(ipv4.MutPacket.SetTotalLength)},
	{"id", "identification", applyUint16(ipv4.MutPacket.SetIdentification)},
	{"flags", `flags, i.e: "DF", "RESERVED|MF" or a number`, applyFlags},
	{"frag-offset", "fragment offset (13 bits)", applyUint16(ipv4.MutPacket.SetFragmentOffset)},
	{"ttl", "time to live", applyUint8(ipv4.MutPacket.SetTTL)},
	{"proto", "protocol number", applyUint8(func(p ipv4.MutPacket, v uint8) { p.SetProtocol(pktview.IPProto(v)) })},
	{"checksum", "stored header checksum", applyUint16(ipv4.MutPacket.SetHeaderChecksum)},
	{"src", "source address", applyAddr(ipv4.MutPacket.SetSource)},
	{"dst", "destination address", applyAddr(ipv4.MutPacket.SetDestination)},
}

func newEditCmd(a *app) *cobra.Command {
	var fixChecksum bool
	cmd := &cobra.Command{
		Use:   "edit <hex>",
		Short: "Set fields of a hex encoded IPv4 header and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := parseHex(args[0])
			if err != nil {
				return err
			}
			if err := a.edit(buf, cmd.Flags(), fixChecksum); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(buf))
			return err
		},
	}
	fs := cmd.Flags()
	for _, ef := range editFlags {
		fs.String(ef.name, "", ef.usage)
	}
	fs.BoolVar(&fixChecksum, "fix-checksum", false, "recalculate the header checksum after applying edits")
	return cmd
}

// edit applies the changed edit flags of fs to the IPv4 header in buf.
func (a *app) edit(buf []byte, fs *pflag.FlagSet, fixChecksum bool) error {
	p, err := ipv4.NewMutPacket(buf)
	if err != nil {
		return fmt.Errorf("decoding IPv4 header: %w", err)
	}
	for _, ef := range editFlags {
		if !fs.Changed(ef.name) {
			continue
		}
		if err := ef.apply(p, fs, ef.name); err != nil {
			return fmt.Errorf("--%s: %w", ef.name, err)
		}
		internal.LogAttrs(a.log, slog.LevelDebug, "field set", slog.String("field", ef.name))
	}
	if fixChecksum {
		p.SetHeaderChecksum(p.CalculateHeaderChecksum())
	}
	return nil
}

func applyUint8(set func(ipv4.MutPacket, uint8)) func(ipv4.MutPacket, *pflag.FlagSet, string) error {
	return func(p ipv4.MutPacket, fs *pflag.FlagSet, name string) error {
		v, err := parseFlagUint(fs, name, 8)
		if err != nil {
			return err
		}
		set(p, uint8(v))
		return nil
	}
}

func applyUint16(set func(ipv4.MutPacket, uint16)) func(ipv4.MutPacket, *pflag.FlagSet, string) error {
	return func(p ipv4.MutPacket, fs *pflag.FlagSet, name string) error {
		v, err := parseFlagUint(fs, name, 16)
		if err != nil {
			return err
		}
		set(p, uint16(v))
		return nil
	}
}

func applyAddr(set func(ipv4.MutPacket, netip.Addr)) func(ipv4.MutPacket, *pflag.FlagSet, string) error {
	return func(p ipv4.MutPacket, fs *pflag.FlagSet, name string) error {
		s, _ := fs.GetString(name)
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return err
		}
		if !addr.Unmap().Is4() {
			return fmt.Errorf("%s is not an IPv4 address", addr)
		}
		set(p, addr)
		return nil
	}
}

func applyFlags(p ipv4.MutPacket, fs *pflag.FlagSet, name string) error {
	s, _ := fs.GetString(name)
	flags, err := parseFlags(s)
	if err != nil {
		return err
	}
	p.SetFlags(flags)
	return nil
}

func parseFlagUint(fs *pflag.FlagSet, name string, bitSize int) (uint64, error) {
	s, _ := fs.GetString(name)
	return strconv.ParseUint(s, 0, bitSize)
}

// parseFlags parses '|' or ',' separated flag names or a number holding the raw flag bits.
func parseFlags(s string) (ipv4.Flags, error) {
	if n, err := strconv.ParseUint(s, 0, 8); err == nil {
		return ipv4.FlagsFromBits(uint8(n)), nil
	}
	var flags ipv4.Flags
	for _, name := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "RESERVED", "EVIL":
			flags = flags.Union(ipv4.FlagReserved)
		case "DF":
			flags = flags.Union(ipv4.FlagDontFragment)
		case "MF":
			flags = flags.Union(ipv4.FlagMoreFragments)
		case "", "0":
		default:
			return 0, fmt.Errorf("unknown IPv4 flag %q", name)
		}
	}
	return flags, nil
}
