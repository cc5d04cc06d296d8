package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jpfielding/spritepak/pkg/atlas"
	"github.com/jpfielding/spritepak/pkg/pak"
	"github.com/spf13/cobra"
)

// NewPackCmd repacks every frame of an archive into sprite sheets
func NewPackCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack FILE OUT",
		Short: "repack frames into sprite sheets",
		Long:  "Packs every rectangle of FILE (whole images for sprites without rectangles) into as many sheets as needed and writes them as the sprites of the archive OUT.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := keyFlag(cmd)
			name, _ := cmd.Flags().GetString("strategy")
			strategy, err := atlas.ParseStrategy(name)
			if err != nil {
				return err
			}
			cfg := atlas.Config{Strategy: strategy}
			cfg.Spacing, _ = cmd.Flags().GetInt("spacing")
			cfg.MaxWidth, _ = cmd.Flags().GetInt("max-width")
			cfg.MaxHeight, _ = cmd.Flags().GetInt("max-height")
			cfg.Columns, _ = cmd.Flags().GetInt("columns")
			cfg.Rows, _ = cmd.Flags().GetInt("rows")

			a, err := pak.Open(args[0], key)
			if err != nil {
				return err
			}
			items, err := atlas.Items(a)
			if err != nil {
				return err
			}
			sheets, err := atlas.PackAll(items, cfg)
			if err != nil {
				return err
			}

			packed := pak.New()
			for i, s := range sheets {
				sp, err := s.Sprite()
				if err != nil {
					return fmt.Errorf("sheet %d: %w", i, err)
				}
				packed.Sprites = append(packed.Sprites, sp)
				b := s.Image.Bounds()
				fmt.Fprintf(cmd.OutOrStdout(), "sheet %d: %dx%d, %d frames\n", i, b.Dx(), b.Dy(), len(s.Rects))
			}
			slog.InfoContext(ctx, "packed", "frames", len(items), "sheets", len(sheets), "strategy", strategy)
			return pak.Save(packed, args[1], key)
		},
	}
	f := cmd.Flags()
	f.StringP("strategy", "s", "shelf", "grid|shelf|tight")
	f.Int("spacing", 0, "pixels between frames")
	f.Int("max-width", 0, fmt.Sprintf("sheet width limit for shelf and tight (default %d)", atlas.DefaultMaxSize))
	f.Int("max-height", 0, fmt.Sprintf("sheet height limit for shelf and tight (default %d)", atlas.DefaultMaxSize))
	f.Int("columns", 0, "grid columns (default square-ish)")
	f.Int("rows", 0, "grid rows per sheet (default unlimited)")
	return cmd
}
