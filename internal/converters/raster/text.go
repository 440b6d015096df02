package raster

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// textScale is how much the bitmap font is enlarged on the final page.
	textScale = 3

	textMargin  = 12
	lineSpacing = 2
)

// TextLayout returns how many characters fit on a line and how many lines
// fit on a page.
func TextLayout(page Page) (cols, rows int) {
	face := basicfont.Face7x13
	w, h := page.Width/textScale, page.Height/textScale
	cols = max(1, (w-2*textMargin)/face.Advance)
	rows = max(1, (h-2*textMargin-face.Ascent)/(face.Height+lineSpacing)+1)
	return cols, rows
}

// TextPage draws lines top-down on a white page. Lines longer than the page
// are wrapped at word boundaries. Text that does not fit is cut off.
func TextPage(lines []string, page Page) *image.RGBA {
	face := basicfont.Face7x13
	small := image.NewRGBA(image.Rect(0, 0, page.Width/textScale, page.Height/textScale))
	draw.Draw(small, small.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	cols, _ := TextLayout(page)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	y := textMargin + face.Ascent
	for _, line := range lines {
		for _, wrapped := range Wrap(line, cols) {
			if y > small.Bounds().Dy()-textMargin {
				break
			}
			d.Dot = fixed.P(textMargin, y)
			d.DrawString(wrapped)
			y += face.Height + lineSpacing
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, page.Width, page.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.NearestNeighbor.Scale(dst, image.Rect(0, 0, small.Bounds().Dx()*textScale, small.Bounds().Dy()*textScale), small, small.Bounds(), draw.Over, nil)
	return dst
}

// TextPages wraps lines and spreads them over as many pages as needed.
// At least one page is returned.
func TextPages(lines []string, page Page) []*image.RGBA {
	cols, rows := TextLayout(page)
	var wrapped []string
	for _, l := range lines {
		wrapped = append(wrapped, Wrap(l, cols)...)
	}

	var pages []*image.RGBA
	for start := 0; start < len(wrapped) || len(pages) == 0; start += rows {
		end := min(start+rows, len(wrapped))
		pages = append(pages, TextPage(wrapped[start:end], page))
	}
	return pages
}

// Wrap splits text into lines of at most width characters, breaking at
// spaces where possible. An empty string yields one empty line.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	for _, w := range words {
		for len(w) > width {
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
			}
			lines = append(lines, w[:width])
			w = w[width:]
		}
		switch {
		case cur.Len() == 0:
			cur.WriteString(w)
		case cur.Len()+1+len(w) <= width:
			cur.WriteByte(' ')
			cur.WriteString(w)
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(w)
		}
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
