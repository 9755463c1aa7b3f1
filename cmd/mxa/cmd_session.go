package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the session with a native or legacy session file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		if err := store.Import(f); err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}
		sess := store.Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "imported %q: %d artists, %d instruments, %d FX units -> %s\n",
			sess.Name, len(sess.Routing.Artists), len(sess.Routing.Instruments), len(sess.Routing.FXUnits), store.Path())
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the session as JSON to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		return store.Export(cmd.OutOrStdout())
	},
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Print the dB to level mapping table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadLevels()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "dB\tlevel")
		for _, k := range t.Keys() {
			v, _ := t.Map(float64(k))
			fmt.Fprintf(tw, "%d\t%g\n", k, v)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d entries from %s\n", t.Len(), cfg.Paths.Mapping)
		return nil
	},
}
