package image

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fenglielie/chessnote"
)

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	err := SVG(&buf, chessnote.NewBoard())
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "<svg")
	require.Contains(t, out, "</svg>")
	require.Contains(t, out, "楚 河")
	require.Contains(t, out, "汉 界")
	// Both kings plus a sample of each side's pieces.
	for _, glyph := range []string{"帅", "将", "车", "馬", "炮", "卒"} {
		require.Contains(t, out, glyph)
	}
	// 32 pieces, one circle each.
	require.Equal(t, 32, strings.Count(out, "<circle"))
}

func TestSVGNilBoard(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, SVG(&buf, nil))
	require.Zero(t, buf.Len())
}

func TestSVGEmptyBoard(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, chessnote.NewEmptyBoard()))
	require.NotContains(t, buf.String(), "<circle")
}

func TestSVGMarks(t *testing.T) {
	var buf bytes.Buffer
	err := SVG(&buf, chessnote.NewBoard(),
		MarkSquares(chessnote.Pos{X: 4, Y: 0}),
		MarkArrows(chessnote.Move{
			Start: chessnote.Pos{X: 7, Y: 2},
			End:   chessnote.Pos{X: 4, Y: 2},
		}))
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, markStyle)
	require.Contains(t, out, arrowStyle)
	require.Contains(t, out, "<polygon")
	// A single arrow is not numbered.
	require.NotContains(t, out, "fill:white")
}

func TestSVGNumbersMultipleArrows(t *testing.T) {
	var buf bytes.Buffer
	err := SVG(&buf, chessnote.NewBoard(), MarkArrows(
		chessnote.Move{Start: chessnote.Pos{X: 7, Y: 2}, End: chessnote.Pos{X: 4, Y: 2}},
		chessnote.Move{Start: chessnote.Pos{X: 7, Y: 0}, End: chessnote.Pos{X: 6, Y: 2}},
	))
	require.NoError(t, err)

	// One numbered badge per arrow.
	require.Equal(t, 2, strings.Count(buf.String(), "fill:white"))
}

func TestSVGRotatedLabels(t *testing.T) {
	var plain, rotated bytes.Buffer
	require.NoError(t, SVG(&plain, chessnote.NewBoard()))
	require.NoError(t, SVG(&rotated, chessnote.NewBoard(chessnote.WithRotation()), Rotated()))
	require.NotEqual(t, plain.String(), rotated.String())
	require.Contains(t, rotated.String(), "一")
}

func TestSVGCustomGlyphs(t *testing.T) {
	var buf bytes.Buffer
	err := SVG(&buf, chessnote.NewBoard(), PieceGlyphs(map[chessnote.Piece]string{
		'E': "象",
	}))
	require.NoError(t, err)

	out := buf.String()
	require.NotContains(t, out, "相")
	// The override must not leak into the other side's defaults.
	require.Contains(t, out, "帅")
}

func TestAnimation(t *testing.T) {
	rec := chessnote.NewRecorder()
	require.NoError(t, rec.Exec("炮二平五 马8进7", false))

	states := rec.States()
	moves := rec.Moves()
	frames := make([]Frame, len(states))
	for i, state := range states {
		frames[i] = Frame{Board: state}
		if i > 0 {
			frames[i].Arrows = []chessnote.Move{moves[i-1]}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, Animation(&buf, frames, time.Second, Rotated()))

	out := buf.String()
	require.Contains(t, out, "<svg")
	require.Equal(t, len(frames), strings.Count(out, "<animate"))
	require.Contains(t, out, `dur="3.00s"`)
	require.Contains(t, out, `repeatCount="indefinite"`)
	require.Contains(t, out, `display="none"`)
}

func TestAnimationRejectsBadFrames(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, Animation(&buf, nil, time.Second))
	require.Error(t, Animation(&buf, []Frame{
		{Board: chessnote.NewBoard()},
		{},
	}, time.Second))
}
