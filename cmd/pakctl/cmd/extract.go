package cmd

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/gift"
	"github.com/jpfielding/spritepak/pkg/pak"
	"github.com/spf13/cobra"
)

// NewExtractCmd writes sprite images, and optionally their frames, to a directory
func NewExtractCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract FILE DIR",
		Short: "write sprite images to a directory",
		Long:  "Writes every sprite's image bytes unchanged as sprite-NNN.<ext>. With --frames each rectangle is also cropped to sprite-NNN-frame-MMM.png, enlarged --scale times without smoothing.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, _ := cmd.Flags().GetBool("frames")
			scale, _ := cmd.Flags().GetInt("scale")
			if scale < 1 {
				return fmt.Errorf("scale must be at least 1, got %d", scale)
			}
			a, err := pak.Open(args[0], keyFlag(cmd))
			if err != nil {
				return err
			}
			dir := args[1]
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			for i, s := range a.Sprites {
				name := filepath.Join(dir, fmt.Sprintf("sprite-%03d%s", i, s.Format().Ext()))
				if err := os.WriteFile(name, s.Data, 0o644); err != nil {
					return err
				}
				if !frames || len(s.Rects) == 0 {
					continue
				}
				if err := extractFrames(ctx, dir, i, s, scale); err != nil {
					return fmt.Errorf("sprite %d: %w", i, err)
				}
			}
			slog.InfoContext(ctx, "extracted", "sprites", a.Len(), "dir", dir)
			return nil
		},
	}
	cmd.Flags().Bool("frames", false, "also write every rectangle as its own png")
	cmd.Flags().Int("scale", 1, "integer enlargement of extracted frames")
	return cmd
}

func extractFrames(ctx context.Context, dir string, si int, s *pak.Sprite, scale int) error {
	img, err := s.Image()
	if err != nil {
		return err
	}
	b := img.Bounds()
	for ri, r := range s.Rects {
		crop := r.Bounds().Add(b.Min).Intersect(b)
		if crop.Empty() {
			slog.WarnContext(ctx, "frame outside image", "sprite", si, "rect", ri, "bounds", r.Bounds())
			continue
		}
		var frame image.Image = cropNRGBA(img, crop)
		if scale > 1 {
			g := gift.New(gift.Resize(crop.Dx()*scale, crop.Dy()*scale, gift.NearestNeighborResampling))
			dst := image.NewNRGBA(g.Bounds(frame.Bounds()))
			g.Draw(dst, frame)
			frame = dst
		}
		if err := writePNG(filepath.Join(dir, fmt.Sprintf("sprite-%03d-frame-%03d.png", si, ri)), frame); err != nil {
			return err
		}
	}
	return nil
}

func cropNRGBA(img image.Image, r image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
