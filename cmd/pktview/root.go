package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soypat/pktview"
	"github.com/soypat/pktview/internal"
	"github.com/soypat/pktview/ipv4"
	"github.com/soypat/pktview/packed"
	"github.com/soypat/pktview/udp"
)

var errNotIPv4 = errors.New("not an IPv4 packet")

// app holds the state shared by all subcommands once flags are parsed.
type app struct {
	configPath string
	cfg        *config
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pktview",
		Short: "Inspect and modify IPv4 headers in place",
		Long: `pktview overlays typed field views on raw IPv4 headers.
Headers are given as hexadecimal strings or read from pcap files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path")
	root.PersistentFlags().String("log-level", "info", "log level: trace, debug, info, warn, error")
	root.PersistentFlags().String("field-sep", "; ", "separator printed between header fields")

	root.AddCommand(newDecodeCmd(a))
	root.AddCommand(newEditCmd(a))
	root.AddCommand(newDumpCmd(a))
	root.AddCommand(newLayoutCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	lvl, _ := cfg.Log.level() // validated by loadConfig.
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
	internal.LogAttrs(a.log, slog.LevelDebug, "config loaded",
		slog.String("path", a.configPath),
		slog.String("level", lvl.String()),
	)
	return nil
}

// describe appends a description of the IPv4 header at the start of buf to dst,
// followed by the UDP header when the IPv4 payload carries one.
func (a *app) describe(dst, buf []byte) ([]byte, error) {
	ip, err := ipv4.NewPacket(buf)
	if err != nil {
		return dst, fmt.Errorf("decoding IPv4 header: %w", err)
	}
	if ip.Version() != 4 {
		return dst, errNotIPv4
	}
	f := packed.Formatter{FieldSep: a.cfg.Format.FieldSep}
	dst = append(dst, "IPv4 "...)
	dst = f.AppendFields(dst, buf, ipv4.Fields())
	if ip.CalculateHeaderChecksum() != ip.HeaderChecksum() {
		dst = append(dst, " errs=("...)
		dst = append(dst, pktview.ErrBadCRC.Error()...)
		dst = append(dst, ')')
	}
	if internal.LogEnabled(a.log, internal.LevelTrace) {
		internal.LogAttrs(a.log, internal.LevelTrace, "ipv4",
			internal.SlogAddr4("src", ip.SourceAddr()),
			internal.SlogAddr4("dst", ip.DestinationAddr()),
			slog.Int("plen", len(ip.Payload())),
		)
	}
	if ip.Protocol() != pktview.IPProtoUDP {
		return dst, nil
	}
	if off := ip.FragmentOffset(); off != 0 {
		// Only the first fragment starts with the transport header.
		internal.LogAttrs(a.log, slog.LevelDebug, "non-first fragment, skipping transport", slog.Int("fragoff", int(off)))
		return dst, nil
	}
	hl := 4 * int(ip.HeaderLength())
	if hl < len(ip.Header()) || hl > len(buf) {
		internal.LogAttrs(a.log, slog.LevelDebug, "bad IHL, skipping transport", slog.Int("ihl", hl/4))
		return dst, nil
	}
	u, err := udp.NewPacket(buf[hl:])
	if err != nil {
		internal.LogAttrs(a.log, slog.LevelDebug, "short UDP header", slog.Int("len", len(buf)-hl))
		return dst, nil
	}
	dst = append(dst, a.cfg.Format.FrameSep...)
	dst = append(dst, "UDP "...)
	return f.AppendFields(dst, u.Data(), udp.Fields()), nil
}

// parseHex decodes hexadecimal input. Whitespace, colons and a leading "0x" or "0X" are ignored.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', ':':
			return -1
		}
		return r
	}, s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return b, nil
}
