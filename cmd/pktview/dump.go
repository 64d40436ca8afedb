package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/spf13/cobra"

	"github.com/soypat/pktview/internal"
)

var errLinkType = errors.New("unsupported link type")

// etherTypeQinQ is the 802.1ad service VLAN tag.
const etherTypeQinQ layers.EthernetType = 0x88a8

func newDumpCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file.pcap>",
		Short: "Print the IPv4 headers found in a pcap capture file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer fp.Close()
			return a.dump(cmd.OutOrStdout(), fp, a.cfg.Dump.Limit)
		},
	}
	cmd.Flags().Int("limit", 0, "maximum number of IPv4 packets to print, 0 for no limit")
	return cmd
}

// dump prints one line per IPv4 packet read from the pcap stream r.
// Packets which do not carry IPv4 are skipped.
func (a *app) dump(w io.Writer, r io.Reader, limit int) error {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return fmt.Errorf("reading pcap header: %w", err)
	}
	lt := pr.LinkType()
	internal.LogAttrs(a.log, slog.LevelDebug, "pcap opened", slog.String("linktype", lt.String()))
	var line []byte
	var n, skipped int
	for i := 0; limit <= 0 || n < limit; i++ {
		data, ci, err := pr.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return fmt.Errorf("reading packet %d: %w", i, err)
		}
		buf, err := networkLayer(lt, data)
		if err == nil {
			line = append(line[:0], ci.Timestamp.UTC().Format(time.RFC3339Nano)...)
			line = append(line, ' ')
			line, err = a.describe(line, buf)
		}
		if err != nil {
			skipped++
			internal.LogAttrs(a.log, slog.LevelDebug, "packet skipped", slog.Int("index", i), slog.String("err", err.Error()))
			if errors.Is(err, errLinkType) {
				return err
			}
			continue
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
		n++
	}
	internal.LogAttrs(a.log, slog.LevelInfo, "dump done", slog.Int("printed", n), slog.Int("skipped", skipped))
	return nil
}

// networkLayer returns the network layer bytes of a captured frame.
// 802.1Q and 802.1ad VLAN tags are stripped.
func networkLayer(lt layers.LinkType, data []byte) ([]byte, error) {
	var et layers.EthernetType
	switch lt {
	case layers.LinkTypeRaw, layers.LinkTypeIPv4:
		return data, nil
	case layers.LinkTypeEthernet:
		var eth layers.Ethernet
		if err := eth.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
			return nil, err
		}
		et, data = eth.EthernetType, eth.Payload
	case layers.LinkTypeLinuxSLL:
		var sll layers.LinuxSLL
		if err := sll.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
			return nil, err
		}
		et, data = sll.EthernetType, sll.Payload
	default:
		return nil, fmt.Errorf("%w %s", errLinkType, lt)
	}
	for et == layers.EthernetTypeDot1Q || et == etherTypeQinQ {
		var tag layers.Dot1Q
		if err := tag.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
			return nil, err
		}
		et, data = tag.Type, tag.Payload
	}
	if et != layers.EthernetTypeIPv4 {
		return nil, errNotIPv4
	}
	return data, nil
}
