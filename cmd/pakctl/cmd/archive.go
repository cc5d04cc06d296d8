package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jpfielding/spritepak/pkg/pak"
	"github.com/jpfielding/spritepak/pkg/util"
	"github.com/spf13/cobra"
)

// NewInfoCmd lists the sprites of an archive
func NewInfoCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "list the sprites in an archive",
		Long:  "Prints the format, size, dimensions, rectangle count and content id of every sprite.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			a, err := pak.Open(path, keyFlag(cmd))
			if err != nil {
				return err
			}
			fi, err := os.Stat(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d sprites, %s\n", path, a.Len(), humanize.Bytes(uint64(fi.Size())))
			for i, s := range a.Sprites {
				dims := "?"
				if cfg, err := s.Config(); err == nil {
					dims = fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)
				} else {
					slog.DebugContext(ctx, "sprite config", "sprite", i, "error", err)
				}
				fmt.Fprintf(out, "%4d  %-7s %9s %9s  rects=%-3d id=%s\n",
					i, s.Format(), humanize.Bytes(uint64(len(s.Data))), dims, len(s.Rects), util.ContentID(s.Data))
			}
			return nil
		},
	}
	return cmd
}

// NewNewCmd creates an empty archive
func NewNewCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new FILE",
		Short: "create an empty archive",
		Long:  "Creates an empty archive. Use the .epak extension and --key for an encrypted one.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := pak.Save(pak.New(), path, keyFlag(cmd)); err != nil {
				return err
			}
			slog.InfoContext(ctx, "created archive", "path", path)
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
	return cmd
}

// NewAddCmd appends image files as new sprites
func NewAddCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add FILE IMAGE...",
		Short: "append images as sprites",
		Long:  "Appends PNG, BMP, JPEG or GIF files as new sprites. With --frame each sprite gets one rectangle covering the whole image.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := keyFlag(cmd)
			frame, _ := cmd.Flags().GetBool("frame")
			a, err := pak.Open(args[0], key)
			if err != nil {
				return err
			}
			for _, img := range args[1:] {
				b, err := os.ReadFile(img)
				if err != nil {
					return err
				}
				i, err := a.AddSprite(b)
				if err != nil {
					return fmt.Errorf("%s: %w", img, err)
				}
				if frame {
					cfg, err := a.Sprites[i].Config()
					if err != nil {
						return fmt.Errorf("%s: %w", img, err)
					}
					if cfg.Width > math.MaxInt16 || cfg.Height > math.MaxInt16 {
						return fmt.Errorf("%s: %w: %dx%d does not fit a frame", img, pak.ErrInvalidRectangle, cfg.Width, cfg.Height)
					}
					if _, err := a.AddRectangle(i, pak.Rectangle{Width: int16(cfg.Width), Height: int16(cfg.Height)}); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, img)
			}
			return pak.Save(a, args[0], key)
		},
	}
	cmd.Flags().Bool("frame", false, "add a rectangle covering each whole image")
	return cmd
}

// NewRemoveCmd deletes a sprite
func NewRemoveCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove FILE INDEX",
		Short: "remove a sprite",
		Long:  "Removes the sprite at INDEX; later sprites move down by one.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := keyFlag(cmd)
			i, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("bad sprite index %q: %w", args[1], err)
			}
			a, err := pak.Open(args[0], key)
			if err != nil {
				return err
			}
			if err := a.RemoveSprite(i); err != nil {
				return err
			}
			slog.InfoContext(ctx, "removed sprite", "path", args[0], "sprite", i, "left", a.Len())
			return pak.Save(a, args[0], key)
		},
	}
	return cmd
}
