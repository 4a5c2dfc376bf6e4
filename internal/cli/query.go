package cli

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"autosearch/internal/eventbus"
)

const queryTimeout = 30 * time.Second

func newQueryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "query TEXT",
		Short: "Run one query and print the suggestions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runQuery(cmd, strings.Join(args, " "))
		},
	}
}

func (o *options) runQuery(cmd *cobra.Command, text string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
	defer cancel()

	exec, err := buildExecutor(ctx, o.cfg, eventbus.NullBus{}, log.Default())
	if err != nil {
		return err
	}
	defer exec.Close()

	items, err := runQuery(ctx, exec, text, o.cfg.Widget.SuggestionsLimit)
	if err != nil {
		return fmt.Errorf("query %q: %w", text, err)
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No results")
		return nil
	}

	var data [][]string
	for _, s := range items {
		data = append(data, []string{s.ID, s.Text})
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "TEXT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoWrapText(false)
	table.AppendBulk(data)
	table.Render()
	return nil
}
