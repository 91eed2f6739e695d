/*
Package image renders Xiangqi board states from the chessnote package as SVG.
It draws the 9x10 grid with river and palaces, circular pieces labelled with
Chinese glyphs, optional corner-bracket highlights and numbered move arrows,
and can emit an animated SVG from a sequence of board states.
Example usage:

	rec := chessnote.NewRecorder()
	rec.Exec("炮二平五 马8进7", false)

	f, _ := os.Create("board.svg")
	defer f.Close()
	image.SVG(f, rec.Last(), image.MarkArrows(rec.Moves()...))
*/
package image

import (
	"fmt"
	"io"
	"sort"
	"time"

	svg "github.com/ajstarks/svgo"

	"github.com/fenglielie/chessnote"
)

const (
	cellSize = 60
	margin   = 60

	canvasWidth  = 2*margin + (chessnote.ColsNum-1)*cellSize
	canvasHeight = 2*margin + (chessnote.RowsNum-1)*cellSize

	pieceRadius = 24
	gridStyle   = "stroke:brown;stroke-width:2;fill:none"
	pieceStyle  = "fill:lightyellow;stroke:black;stroke-width:2"
	textStyle   = "text-anchor:middle;dominant-baseline:central;font-size:26px;font-weight:bold"
	labelStyle  = "text-anchor:middle;dominant-baseline:central;font-size:20px;fill:black"
	markStyle   = "stroke:red;stroke-width:3"
	arrowStyle  = "stroke:green;stroke-width:3"
)

// defaultGlyphs maps internal piece symbols to the traditional glyphs drawn
// on the pieces.
var defaultGlyphs = map[chessnote.Piece]string{
	'R': "车", 'H': "马", 'E': "相", 'A': "仕", 'K': "帅", 'C': "炮", 'P': "兵",
	'r': "車", 'h': "馬", 'e': "象", 'a': "士", 'k': "将", 'c': "砲", 'p': "卒",
}

var (
	redLabels   = []string{"一", "二", "三", "四", "五", "六", "七", "八", "九"}
	blackLabels = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}
	riverLabels = []string{"楚 河", "汉 界"}
)

// An encoder holds the rendering configuration for one drawing.
type encoder struct {
	highlights []chessnote.Pos
	arrows     []chessnote.Move
	rotated    bool
	glyphs     map[chessnote.Piece]string
}

// An Option configures the rendering.
type Option func(*encoder)

// MarkSquares highlights the given positions with corner brackets.
func MarkSquares(squares ...chessnote.Pos) Option {
	return func(e *encoder) {
		e.highlights = append(e.highlights, squares...)
	}
}

// MarkArrows draws the given moves as arrows, numbered when more than one.
func MarkArrows(moves ...chessnote.Move) Option {
	return func(e *encoder) {
		e.arrows = append(e.arrows, moves...)
	}
}

// Rotated lays out the side labels for a board whose near side is black.
func Rotated() Option {
	return func(e *encoder) {
		e.rotated = true
	}
}

// PieceGlyphs overrides the glyphs drawn on pieces, keyed by internal symbol.
// Symbols absent from the map keep their default glyph.
func PieceGlyphs(glyphs map[chessnote.Piece]string) Option {
	return func(e *encoder) {
		for piece, glyph := range glyphs {
			e.glyphs[piece] = glyph
		}
	}
}

func newEncoder(opts []Option) *encoder {
	e := &encoder{glyphs: make(map[chessnote.Piece]string, len(defaultGlyphs))}
	for piece, glyph := range defaultGlyphs {
		e.glyphs[piece] = glyph
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// SVG writes a static rendering of the board to w.
func SVG(w io.Writer, b *chessnote.Board, opts ...Option) error {
	if b == nil {
		return fmt.Errorf("image: nil board")
	}
	e := newEncoder(opts)

	canvas := svg.New(w)
	canvas.Start(canvasWidth, canvasHeight)
	e.drawBoard(canvas)
	e.drawPieces(canvas, b)
	e.drawHighlights(canvas, e.highlights)
	e.drawArrows(canvas, e.arrows)
	canvas.End()
	return nil
}

// A Frame is one animation step: a board state with optional highlights and
// arrows shown during that step.
type Frame struct {
	Board      *chessnote.Board
	Highlights []chessnote.Pos
	Arrows     []chessnote.Move
}

// Animation writes an animated SVG cycling through the frames, each shown for
// delay. The grid is drawn once; pieces and marks are swapped per frame with
// SMIL timing.
func Animation(w io.Writer, frames []Frame, delay time.Duration, opts ...Option) error {
	if len(frames) == 0 {
		return fmt.Errorf("image: no frames")
	}
	for i, frame := range frames {
		if frame.Board == nil {
			return fmt.Errorf("image: nil board in frame %d", i)
		}
	}
	e := newEncoder(opts)

	canvas := svg.New(w)
	canvas.Start(canvasWidth, canvasHeight)
	e.drawBoard(canvas)

	total := delay * time.Duration(len(frames))
	for i, frame := range frames {
		canvas.Group(`display="none"`)
		writeFrameTiming(canvas.Writer, i, len(frames), total)
		e.drawPieces(canvas, frame.Board)
		e.drawHighlights(canvas, frame.Highlights)
		e.drawArrows(canvas, frame.Arrows)
		canvas.Gend()
	}
	canvas.End()
	return nil
}

// writeFrameTiming emits a discrete SMIL animation making frame i of n
// visible during its slot of the repeating cycle.
func writeFrameTiming(w io.Writer, i, n int, total time.Duration) {
	from := float64(i) / float64(n)
	to := float64(i+1) / float64(n)
	values, keyTimes := "inline;none", fmt.Sprintf("0;%.4f", to)
	if i > 0 {
		values = "none;inline;none"
		keyTimes = fmt.Sprintf("0;%.4f;%.4f", from, to)
	}
	fmt.Fprintf(w,
		`<animate attributeName="display" values="%s" keyTimes="%s" calcMode="discrete" dur="%.2fs" repeatCount="indefinite"/>`+"\n",
		values, keyTimes, total.Seconds())
}

// pointX and pointY map board coordinates to canvas pixels. The board's
// y-axis grows upward while SVG's grows downward.
func pointX(x int) int {
	return margin + x*cellSize
}

func pointY(y int) int {
	return margin + (chessnote.RowsNum-1-y)*cellSize
}

func (e *encoder) drawBoard(canvas *svg.SVG) {
	// Outer frame, slightly outside the grid.
	const inset = 6
	canvas.Rect(pointX(0)-inset, pointY(chessnote.RowsNum-1)-inset,
		(chessnote.ColsNum-1)*cellSize+2*inset, (chessnote.RowsNum-1)*cellSize+2*inset, gridStyle)

	// Vertical files: the edge files run through the river, inner ones break.
	for x := 0; x < chessnote.ColsNum; x++ {
		if x == 0 || x == chessnote.ColsNum-1 {
			canvas.Line(pointX(x), pointY(0), pointX(x), pointY(9), gridStyle)
			continue
		}
		canvas.Line(pointX(x), pointY(0), pointX(x), pointY(4), gridStyle)
		canvas.Line(pointX(x), pointY(5), pointX(x), pointY(9), gridStyle)
	}
	for y := 0; y < chessnote.RowsNum; y++ {
		canvas.Line(pointX(0), pointY(y), pointX(8), pointY(y), gridStyle)
	}

	// Palace diagonals.
	palaces := [][4]int{
		{3, 0, 5, 2}, {5, 0, 3, 2},
		{3, 7, 5, 9}, {5, 7, 3, 9},
	}
	for _, p := range palaces {
		canvas.Line(pointX(p[0]), pointY(p[1]), pointX(p[2]), pointY(p[3]), gridStyle)
	}

	e.drawLabels(canvas)
}

func (e *encoder) drawLabels(canvas *svg.SVG) {
	downLabels, upLabels := redLabels, blackLabels
	river := riverLabels
	if e.rotated {
		downLabels, upLabels = blackLabels, redLabels
		river = []string{riverLabels[1], riverLabels[0]}
	}

	// The near side reads its columns right to left.
	for i := 0; i < chessnote.ColsNum; i++ {
		canvas.Text(pointX(i), pointY(0)+(cellSize*3)/5, downLabels[chessnote.ColsNum-1-i], labelStyle)
		canvas.Text(pointX(i), pointY(9)-(cellSize*3)/5, upLabels[i], labelStyle)
	}

	riverY := pointY(4) - cellSize/2
	canvas.Text(pointX(2), riverY, river[0], labelStyle)
	canvas.Text(pointX(6), riverY, river[1], labelStyle)
}

func (e *encoder) drawPieces(canvas *svg.SVG, b *chessnote.Board) {
	pieces := b.Pieces()
	positions := make([]chessnote.Pos, 0, len(pieces))
	for pos := range pieces {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Y != positions[j].Y {
			return positions[i].Y < positions[j].Y
		}
		return positions[i].X < positions[j].X
	})

	for _, pos := range positions {
		piece := pieces[pos]
		glyph, ok := e.glyphs[piece]
		if !ok {
			glyph = "?"
		}
		fill := "red"
		if piece.Color() == chessnote.Black {
			fill = "black"
		}
		canvas.Circle(pointX(pos.X), pointY(pos.Y), pieceRadius, pieceStyle)
		canvas.Text(pointX(pos.X), pointY(pos.Y), glyph, textStyle+";fill:"+fill)
	}
}

// drawHighlights draws corner brackets slightly outside the piece circle.
func (e *encoder) drawHighlights(canvas *svg.SVG, highlights []chessnote.Pos) {
	const r = pieceRadius + 5
	const arm = r / 3

	for _, pos := range highlights {
		cx, cy := pointX(pos.X), pointY(pos.Y)
		left, right := cx-r, cx+r
		top, bottom := cy-r, cy+r

		corners := [][4]int{
			{left, top, left + arm, top}, {left, top, left, top + arm},
			{right, top, right - arm, top}, {right, top, right, top + arm},
			{left, bottom, left + arm, bottom}, {left, bottom, left, bottom - arm},
			{right, bottom, right - arm, bottom}, {right, bottom, right, bottom - arm},
		}
		for _, c := range corners {
			canvas.Line(c[0], c[1], c[2], c[3], markStyle)
		}
	}
}

func (e *encoder) drawArrows(canvas *svg.SVG, arrows []chessnote.Move) {
	for i, mv := range arrows {
		x1, y1 := pointX(mv.Start.X), pointY(mv.Start.Y)
		x2, y2 := pointX(mv.End.X), pointY(mv.End.Y)
		canvas.Line(x1, y1, x2, y2, arrowStyle)
		drawArrowHead(canvas, x1, y1, x2, y2)

		if len(arrows) == 1 {
			continue
		}
		midX, midY := (x1+x2)/2, (y1+y2)/2
		canvas.Circle(midX, midY, 12, "fill:green")
		canvas.Text(midX, midY, fmt.Sprintf("%d", i+1),
			"text-anchor:middle;dominant-baseline:central;font-size:14px;fill:white")
	}
}

func drawArrowHead(canvas *svg.SVG, x1, y1, x2, y2 int) {
	const size = 10
	dx, dy := x2-x1, y2-y1
	length := intSqrt(dx*dx + dy*dy)
	if length == 0 {
		return
	}
	// Unit direction scaled to the head size, plus its perpendicular.
	ux, uy := dx*size/length, dy*size/length
	px, py := -uy, ux
	canvas.Polygon(
		[]int{x2, x2 - ux + px/2, x2 - ux - px/2},
		[]int{y2, y2 - uy + py/2, y2 - uy - py/2},
		"fill:green")
}

func intSqrt(v int) int {
	if v <= 0 {
		return 0
	}
	r := v
	for r*r > v {
		r = (r + v/r) / 2
	}
	return r
}
