package artifact

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/verte-zerg/spiauthor/internal/stats"
)

const (
	svgWidth   = 800
	svgHeight  = 480
	svgMargin  = 56
	svgXTicks  = 8
	svgYTicks  = 4
	svgMarkerR = 4
)

// WriteSVG draws the density plot as a standalone SVG image.
func WriteSVG(w io.Writer, d stats.Density) error {
	xmin, xmax, ymax := d.Bounds()
	plotW := float64(svgWidth - 2*svgMargin)
	plotH := float64(svgHeight - 2*svgMargin)
	sx := func(x float64) float64 {
		return svgMargin + (x-xmin)/(xmax-xmin)*plotW
	}
	sy := func(y float64) float64 {
		return svgMargin + (1-y/ymax)*plotH
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="12">`+"\n", svgWidth, svgHeight, svgWidth, svgHeight)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="white"/>`+"\n", svgWidth, svgHeight)
	fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-size="15">%s</text>`+"\n", svgWidth/2, svgMargin/2, html.EscapeString(d.Title))

	left, right := float64(svgMargin), float64(svgWidth-svgMargin)
	top, bottom := float64(svgMargin), float64(svgHeight-svgMargin)
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black"/>`+"\n", left, bottom, right, bottom)
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black"/>`+"\n", left, top, left, bottom)
	for i := 0; i <= svgXTicks; i++ {
		x := xmin + float64(i)*(xmax-xmin)/svgXTicks
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle">%.2f</text>`+"\n", sx(x), bottom+18, x)
	}
	for i := 0; i <= svgYTicks; i++ {
		y := float64(i) * ymax / svgYTicks
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="end">%.2f</text>`+"\n", left-6, sy(y)+4, y)
	}
	fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle">SPI normalized (z)</text>`+"\n", svgWidth/2, svgHeight-12)
	fmt.Fprintf(&b, `<text x="14" y="%d" text-anchor="middle" transform="rotate(-90 14 %d)">Density</text>`+"\n", svgHeight/2, svgHeight/2)

	if xmin <= 0 && xmax >= 0 {
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="gray" stroke-dasharray="6 4"/>`+"\n", sx(0), top, sx(0), bottom)
	}

	points := make([]string, len(d.Curve))
	for i, p := range d.Curve {
		points[i] = fmt.Sprintf("%.2f,%.2f", sx(p.X), sy(p.Y))
	}
	fmt.Fprintf(&b, `<polyline fill="none" stroke="steelblue" stroke-width="2" points="%s"/>`+"\n", strings.Join(points, " "))

	for _, p := range d.Fragments {
		fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="%d" fill="black"/>`+"\n", sx(p.X), sy(p.Y), svgMarkerR)
	}
	fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="%d" fill="red"/>`+"\n", sx(d.Disputed.X), sy(d.Disputed.Y), svgMarkerR+2)

	legendX := right - 180
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="steelblue" stroke-width="2"/>`+"\n", legendX, top+10, legendX+20, top+10)
	fmt.Fprintf(&b, `<text x="%.1f" y="%.1f">%s</text>`+"\n", legendX+26, top+14, html.EscapeString(d.Distribution.Label()))
	fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%d" fill="black"/>`+"\n", legendX+10, top+28, svgMarkerR)
	fmt.Fprintf(&b, `<text x="%.1f" y="%.1f">Known fragments</text>`+"\n", legendX+26, top+32)
	fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%d" fill="red"/>`+"\n", legendX+10, top+46, svgMarkerR+2)
	fmt.Fprintf(&b, `<text x="%.1f" y="%.1f">Disputed text</text>`+"\n", legendX+26, top+50)
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}
