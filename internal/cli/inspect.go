package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/core/label"
)

// inspectCommand creates the inspect command for browsing a placed batch.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		plain  bool
		fromID bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [batch.json | batch-id]",
		Short: "Browse the annotations of a batch",
		Long: `Browse the annotations of a batch interactively.

The argument is a batch file written by 'redline annotate -f json', or with
--id a batch id looked up in the configured store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.loadBatch(cmd.Context(), args[0], fromID)
			if err != nil {
				return err
			}
			if plain {
				printBatch(b)
				return nil
			}
			_, err = tea.NewProgram(NewBatchModel(b), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print a summary instead of the interactive view")
	cmd.Flags().BoolVar(&fromID, "id", false, "treat the argument as a batch id in the configured store")
	return cmd
}

func (c *CLI) loadBatch(ctx context.Context, arg string, fromID bool) (*batch.Batch, error) {
	if !fromID {
		b, err := batch.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("load batch %s: %w", arg, err)
		}
		return b, nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("no batch store configured (store.backend = %q)", cfg.Store.Backend)
	}
	defer st.Close()
	return st.Get(ctx, arg)
}

// printBatch writes a non-interactive summary of b.
func printBatch(b *batch.Batch) {
	printKeyValue("batch", b.ID)
	printKeyValue("created", b.CreatedAt.Format("2006-01-02 15:04:05"))
	printStats(b, false)
	for _, f := range b.Frames {
		printNewline()
		fmt.Fprintln(out, StyleTitle.Render(frameName(b, f.ID))+" "+StyleDim.Render(fmt.Sprintf("%s × %s", label.Number(f.Width), label.Number(f.Height))))
		for _, a := range b.InFrame(f.ID) {
			printKeyValue(string(a.Kind), kindStyle(a.Kind).Render(a.Label)+StyleDim.Render(fmt.Sprintf("  %s  %s", formatBox(a.Placed.Box), a.Placed.Side)))
		}
	}
	if len(b.Skipped) > 0 {
		printNewline()
		printWarning("%d skipped", len(b.Skipped))
		printSkipped(b.Skipped)
	}
}
