package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zoobzio/replica"
	"go.uber.org/zap"
)

func newFingerprintCmd(a *app) *cobra.Command {
	var in, from string

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the content fingerprint of a record file",
		Long: `Decode a record and print its BLAKE2b-256 fingerprint. Records with
equal values and key order share a fingerprint regardless of file format.

Example:
  replica fingerprint --in user.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.decodeInput(cmd, in, from)
			if err != nil {
				return err
			}
			sum, err := replica.Fingerprint(r)
			if err != nil {
				a.logger.Error("fingerprint failed", zap.String("in", in), zap.Error(err))
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sum)
			return err
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "input file (- for stdin)")
	cmd.Flags().StringVar(&from, "from", "", "input format: json, yaml, msgpack or bson")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}
