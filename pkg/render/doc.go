// Package render turns search trees into pictures.
//
// # Overview
//
// The [dot] subpackage writes a tree as a Graphviz DOT document and renders
// it to SVG. This package converts an SVG into PDF or PNG with the external
// rsvg-convert tool (from librsvg):
//
//	doc := dot.ToDOT(ex, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, doc)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [dot]: github.com/matzehuels/cptree/pkg/render/dot
package render
