package atlas

import "image"

// grid fills rows of cfg.Columns items; each row is as tall as its tallest item.
func grid(items []Item, idx []int, cfg Config) []placement {
	n := len(idx)
	if cfg.Rows > 0 {
		n = min(n, cfg.Columns*cfg.Rows)
	}
	ps := make([]placement, 0, n)
	x, y, rowH := 0, 0, 0
	for k, i := range idx[:n] {
		if k > 0 && k%cfg.Columns == 0 {
			x, y, rowH = 0, y+rowH+cfg.Spacing, 0
		}
		sz := items[i].size()
		ps = append(ps, placement{item: i, at: image.Pt(x, y)})
		x += sz.X + cfg.Spacing
		rowH = max(rowH, sz.Y)
	}
	return ps
}

// shelf fills rows left to right, wrapping before an item would cross MaxWidth
// and stopping at the first item whose row would cross MaxHeight.
func shelf(items []Item, idx []int, cfg Config) []placement {
	var ps []placement
	x, y, rowH := 0, 0, 0
	for _, i := range idx {
		sz := items[i].size()
		if sz.X > cfg.MaxWidth || sz.Y > cfg.MaxHeight {
			break
		}
		if x > 0 && x+sz.X > cfg.MaxWidth {
			x, y, rowH = 0, y+rowH+cfg.Spacing, 0
		}
		if y+sz.Y > cfg.MaxHeight {
			break
		}
		ps = append(ps, placement{item: i, at: image.Pt(x, y)})
		x += sz.X + cfg.Spacing
		rowH = max(rowH, sz.Y)
	}
	return ps
}

// tight tries the origin and the top-right, bottom-left and bottom-right corners
// of every placed box, taking the lowest then leftmost spot where the item,
// grown by the spacing, stays inside the sheet and clear of all placed boxes.
// It stops at the first item with no such spot.
func tight(items []Item, idx []int, cfg Config) []placement {
	sheet := image.Rect(0, 0, cfg.MaxWidth, cfg.MaxHeight)
	pad := image.Pt(cfg.Spacing, cfg.Spacing)
	candidates := []image.Point{{}}
	var (
		placed []image.Rectangle
		ps     []placement
	)
	for _, i := range idx {
		sz := items[i].size().Add(pad)
		var best image.Point
		found := false
		for _, c := range candidates {
			if found && (c.Y > best.Y || c.Y == best.Y && c.X >= best.X) {
				continue
			}
			r := image.Rectangle{Min: c, Max: c.Add(sz)}
			if !r.In(sheet) || overlapsAny(r, placed) {
				continue
			}
			best, found = c, true
		}
		if !found {
			break
		}
		r := image.Rectangle{Min: best, Max: best.Add(sz)}
		placed = append(placed, r)
		candidates = append(candidates, image.Pt(r.Max.X, r.Min.Y), image.Pt(r.Min.X, r.Max.Y), r.Max)
		ps = append(ps, placement{item: i, at: best})
	}
	return ps
}

// overlapsAny is a linear scan; fine for the tens to hundreds of frames on a sheet.
func overlapsAny(r image.Rectangle, placed []image.Rectangle) bool {
	for _, p := range placed {
		if r.Overlaps(p) {
			return true
		}
	}
	return false
}
