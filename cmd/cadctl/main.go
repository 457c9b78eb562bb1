// Command cadctl drives a cad.Engine from the outside, for smoke-testing
// a command buffer or snapshot file without embedding the engine in a
// larger host.
package main

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/spf13/cobra"

	"github.com/rafaself/simplecad"
)

func mapFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.Size() == 0 {
		f.Close()
		return nil, func() {}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return m, func() { m.Unmap(); f.Close() }, nil
}

func newApplyCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "apply <commands-file>",
		Short: "apply a command buffer to a fresh engine and optionally write the resulting snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, release, err := mapFile(args[0])
			if err != nil {
				return err
			}
			defer release()

			eng := cad.NewEngine()
			if derr := eng.ApplyCommandBuffer(buf); derr != nil {
				return derr
			}
			meta := eng.GetRenderBufferMeta()
			fmt.Fprintf(cmd.OutOrStdout(), "applied ok: %d vertices, generation %d\n", meta.VertexCount, meta.Generation)

			if outPath != "" {
				snap := eng.BuildSnapshotBytes()
				if err := os.WriteFile(outPath, snap, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote snapshot: %s (%d bytes)\n", outPath, len(snap))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "write the resulting snapshot to this path")
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <commands-file>",
		Short: "apply a command buffer and print engine timing stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, release, err := mapFile(args[0])
			if err != nil {
				return err
			}
			defer release()

			eng := cad.NewEngine()
			if derr := eng.ApplyCommandBuffer(buf); derr != nil {
				return derr
			}
			eng.GetRenderBufferMeta() // force a rebuild so RebuildMillis is populated
			stats := eng.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "apply=%.3fms rebuild=%.3fms load=%.3fms\n",
				stats.ApplyMillis, stats.RebuildMillis, stats.LoadMillis)
			return nil
		},
	}
	return cmd
}

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <snapshot-file>",
		Short: "load a snapshot and print a summary of its contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, release, err := mapFile(args[0])
			if err != nil {
				return err
			}
			defer release()

			eng := cad.NewEngine()
			if derr := eng.LoadSnapshot(buf); derr != nil {
				return derr
			}
			meta := eng.GetRenderBufferMeta()
			fmt.Fprintf(cmd.OutOrStdout(), "loaded ok: %d draw-order entries, %d vertices\n",
				len(eng.Store().DrawOrder()), meta.VertexCount)
			return nil
		},
	}
	return cmd
}

func main() {
	root := &cobra.Command{
		Use:   "cadctl",
		Short: "drive a simplecad engine from a command-line file",
	}
	root.AddCommand(newApplyCmd(), newStatsCmd(), newLoadCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
