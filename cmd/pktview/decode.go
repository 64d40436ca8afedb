package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex>",
		Short: "Print the fields of a hex encoded IPv4 header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := parseHex(args[0])
			if err != nil {
				return err
			}
			line, err := a.describe(nil, buf)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(line))
			return err
		},
	}
}
