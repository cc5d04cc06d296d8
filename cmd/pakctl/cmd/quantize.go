package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/jpfielding/spritepak/pkg/pak"
	"github.com/jpfielding/spritepak/pkg/quantize"
	"github.com/spf13/cobra"
)

// NewQuantizeCmd re-encodes sprites as 8bpp bitmaps
func NewQuantizeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quantize FILE",
		Short: "reduce sprite colors to an 8bpp bitmap",
		Long:  "Replaces sprite images with 8bpp BMPs of at most --colors palette entries. Rectangles are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := keyFlag(cmd)
			colors, _ := cmd.Flags().GetInt("colors")
			method, _ := cmd.Flags().GetString("method")
			only, _ := cmd.Flags().GetInt("sprite")

			q, err := quantize.ByName(method)
			if err != nil {
				return err
			}
			a, err := pak.Open(args[0], key)
			if err != nil {
				return err
			}
			targets := make([]int, 0, a.Len())
			if only >= 0 {
				if _, err := a.Sprite(only); err != nil {
					return err
				}
				targets = append(targets, only)
			} else {
				for i := range a.Sprites {
					targets = append(targets, i)
				}
			}

			out := cmd.OutOrStdout()
			for _, i := range targets {
				s := a.Sprites[i]
				before := len(s.Data)
				if err := s.ReduceColors(q, colors); err != nil {
					return fmt.Errorf("sprite %d: %w", i, err)
				}
				fmt.Fprintf(out, "%4d  %9s -> %9s\n", i, humanize.Bytes(uint64(before)), humanize.Bytes(uint64(len(s.Data))))
			}
			slog.InfoContext(ctx, "quantized", "sprites", len(targets), "colors", colors, "method", method)
			return pak.Save(a, args[0], key)
		},
	}
	cmd.Flags().IntP("colors", "c", quantize.MaxColors, "palette size (1-256)")
	cmd.Flags().StringP("method", "m", "octree", "quantizer (octree|median)")
	cmd.Flags().Int("sprite", -1, "only this sprite index (default all)")
	return cmd
}
