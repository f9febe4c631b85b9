package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/spf13/cobra"
)

// block is a block as the node stores it.
type block = chain.Block[json.RawMessage]

// readBlock reads a block from the named file. A name of "-" reads from
// the command input.
func readBlock(cmd *cobra.Command, name string) (block, error) {
	var data []byte
	var err error

	switch name {
	case "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	default:
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return block{}, fmt.Errorf("reading block: %w", err)
	}

	var b block
	if err := json.Unmarshal(data, &b); err != nil {
		return block{}, fmt.Errorf("decoding block: %w", err)
	}

	return b, nil
}

// printJSON writes the JSON document indented to the command output.
func printJSON(cmd *cobra.Command, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("formatting response: %w", err)
	}
	buf.WriteByte('\n')

	_, err := cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
