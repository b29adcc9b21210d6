package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aalemi-dev/sockettrace/propagation"
	"github.com/aalemi-dev/sockettrace/tracecontext"
	"github.com/spf13/cobra"
)

func init() {
	encodeCmd.Flags().Bool("unsampled", false, "encode the unsampled sentinel instead of a new root")
	rootCmd.AddCommand(decodeCmd, encodeCmd)
}

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a 32-byte context block captured from the wire",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Print the wire block of a fresh root context",
	Args:  cobra.NoArgs,
	RunE:  runEncode,
}

// blockView is the JSON form of a decoded block.
type blockView struct {
	TraceID      string `json:"trace_id"`
	SpanID       string `json:"span_id"`
	ParentSpanID string `json:"parent_span_id"`
	Sampled      bool   `json:"sampled"`
	Root         bool   `json:"root"`
	Block        string `json:"block"`
}

func viewOf(c tracecontext.Context) blockView {
	b := propagation.Encode(c)
	return blockView{
		TraceID:      c.TraceID.String(),
		SpanID:       c.SpanID.String(),
		ParentSpanID: c.ParentSpanID.String(),
		Sampled:      !c.IsZero(),
		Root:         c.IsRoot(),
		Block:        hex.EncodeToString(b[:]),
	}
}

func runDecode(cmd *cobra.Command, args []string) error {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(args[0]), "0x"))
	if err != nil {
		return fmt.Errorf("block is not hex: %w", err)
	}
	c, err := propagation.Decode(raw)
	if err != nil {
		return err
	}
	return printJSON(cmd, viewOf(c))
}

func runEncode(cmd *cobra.Command, args []string) error {
	unsampled, _ := cmd.Flags().GetBool("unsampled")
	c := tracecontext.NewRoot()
	if unsampled {
		c = tracecontext.Zero()
	}
	return printJSON(cmd, viewOf(c))
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
