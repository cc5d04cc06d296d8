package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/jpfielding/spritepak/pkg/pak"
	"github.com/spf13/cobra"
)

// NewRectsCmd groups the rectangle interchange commands
func NewRectsCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rects",
		Short: "export or import sprite rectangles as json",
		Long:  "Rectangles are exchanged as a JSON array of {x,y,width,height,pivotX,pivotY} objects.",
	}
	cmd.AddCommand(
		NewRectsExportCmd(ctx),
		NewRectsImportCmd(ctx),
	)
	return cmd
}

func NewRectsExportCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export FILE INDEX",
		Short: "print a sprite's rectangles as json",
		Long:  "print a sprite's rectangles as json",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, si, err := openSprite(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			return pak.WriteRectanglesJSON(cmd.OutOrStdout(), a.Sprites[si].Rects)
		},
	}
	return cmd
}

func NewRectsImportCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE INDEX JSON",
		Short: "replace a sprite's rectangles from a json file (- for stdin)",
		Long:  "replace a sprite's rectangles from a json file (- for stdin)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, si, err := openSprite(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			var in io.Reader = cmd.InOrStdin()
			if args[2] != "-" {
				f, err := os.Open(args[2])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			rects, err := pak.ReadRectanglesJSON(in)
			if err != nil {
				return fmt.Errorf("%s: %w", args[2], err)
			}
			a.Sprites[si].Rects = rects
			slog.InfoContext(ctx, "imported rectangles", "sprite", si, "rects", len(rects))
			return pak.Save(a, args[0], keyFlag(cmd))
		},
	}
	return cmd
}

// openSprite opens path and checks that index names one of its sprites
func openSprite(cmd *cobra.Command, path, index string) (*pak.Archive, int, error) {
	si, err := strconv.Atoi(index)
	if err != nil {
		return nil, 0, fmt.Errorf("bad sprite index %q: %w", index, err)
	}
	a, err := pak.Open(path, keyFlag(cmd))
	if err != nil {
		return nil, 0, err
	}
	if _, err := a.Sprite(si); err != nil {
		return nil, 0, err
	}
	return a, si, nil
}
