package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/soypat/pktview/ipv4"
	"github.com/soypat/pktview/packed"
	"github.com/soypat/pktview/udp"
)

var layouts = map[string]struct {
	minLen int
	fields func() []packed.Field
}{
	"ipv4": {20, ipv4.Fields},
	"udp":  {8, udp.Fields},
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "layout [ipv4|udp]",
		Short:     "Print the bit layout of a header",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"ipv4", "udp"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "ipv4"
			if len(args) == 1 {
				name = args[0]
			}
			l := layouts[name]
			return printLayout(cmd.OutOrStdout(), l.minLen, l.fields())
		},
	}
}

// printLayout writes one line per field with its RFC diagram bit offset and length.
func printLayout(w io.Writer, minLen int, fields []packed.Field) error {
	if err := packed.CheckLayout(minLen, fields...); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%3s %4s %-8s %s\n", "bit", "len", "class", "name"); err != nil {
		return err
	}
	for _, f := range fields {
		name := f.Name
		if name == "" {
			name = f.Class.String()
		}
		if _, err := fmt.Fprintf(w, "%3d %4d %-8s %s\n", f.BitOffset(), f.Bits, f.Class, name); err != nil {
			return err
		}
	}
	return nil
}
