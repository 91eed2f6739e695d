package chessnote

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitialLayout(t *testing.T) {
	b := NewBoard()
	if b.Len() != 32 {
		t.Fatalf("expected 32 pieces but got %d", b.Len())
	}
	for pos, want := range map[Pos]Piece{{0, 0}: 'R', {4, 0}: 'K', {0, 9}: 'r'} {
		piece, err := b.Piece(pos)
		if err != nil {
			t.Fatal(err)
		}
		if piece != want {
			t.Fatalf("expected %v at %v but got %v", want, pos, piece)
		}
	}
}

func TestInitialLayoutRotated(t *testing.T) {
	b := NewBoard(WithRotation())
	if b.Len() != 32 {
		t.Fatalf("expected 32 pieces but got %d", b.Len())
	}
	for pos, want := range map[Pos]Piece{{0, 0}: 'r', {4, 0}: 'k', {0, 9}: 'R'} {
		piece, err := b.Piece(pos)
		if err != nil {
			t.Fatal(err)
		}
		if piece != want {
			t.Fatalf("expected %v at %v but got %v", want, pos, piece)
		}
	}
}

func TestSetGetRemove(t *testing.T) {
	b := NewEmptyBoard()
	pos := Pos{4, 4}
	if err := b.SetPiece(pos, 'P'); err != nil {
		t.Fatal(err)
	}
	piece, err := b.Piece(pos)
	if err != nil {
		t.Fatal(err)
	}
	if piece != 'P' {
		t.Fatalf("expected P but got %v", piece)
	}
	if err := b.Remove(pos); err != nil {
		t.Fatal(err)
	}
	if b.Occupied(pos) {
		t.Fatal("expected position to be empty after Remove")
	}
	if err := b.Remove(pos); err == nil {
		t.Fatal("expected error removing from an empty position")
	}
}

func TestBoundsAndAlphabetValidation(t *testing.T) {
	b := NewBoard()

	if _, err := b.Piece(Pos{10, 10}); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition but got %v", err)
	}
	if err := b.SetPiece(Pos{9, 0}, 'R'); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition but got %v", err)
	}
	if err := b.SetPiece(Pos{0, 0}, 'X'); !errors.Is(err, ErrInvalidPiece) {
		t.Fatalf("expected ErrInvalidPiece but got %v", err)
	}

	// Empty but in-bounds positions fail distinctly from bounds failures.
	_, err := NewEmptyBoard().Piece(Pos{1, 1})
	if err == nil || errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("expected a plain not-found error but got %v", err)
	}
}

func TestMovePiece(t *testing.T) {
	b := NewBoard()
	piece, _ := b.Piece(Pos{0, 0})
	if err := b.MovePiece(Pos{0, 0}, Pos{0, 1}); err != nil {
		t.Fatal(err)
	}
	got, err := b.Piece(Pos{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if got != piece {
		t.Fatalf("expected %v at destination but got %v", piece, got)
	}
	if b.Occupied(Pos{0, 0}) {
		t.Fatal("expected start position to be empty after move")
	}

	if err := b.MovePiece(Pos{1, 1}, Pos{2, 1}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove moving from empty start but got %v", err)
	}
}

func TestMovePieceCaptures(t *testing.T) {
	b := NewEmptyBoard()
	b.SetPiece(Pos{0, 0}, 'R')
	b.SetPiece(Pos{0, 5}, 'p')
	if err := b.MovePiece(Pos{0, 0}, Pos{0, 5}); err != nil {
		t.Fatal(err)
	}
	piece, _ := b.Piece(Pos{0, 5})
	if piece != 'R' {
		t.Fatalf("expected capture to leave R at destination but got %v", piece)
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1 piece after capture but got %d", b.Len())
	}
}

func TestRotateIsInvolution(t *testing.T) {
	b := NewBoard()
	orig := b.Copy()

	b.Rotate()
	piece, _ := b.Piece(Pos{8, 9})
	if piece != 'R' {
		t.Fatalf("expected R at (8,9) after rotation but got %v", piece)
	}

	b.Rotate()
	if !b.Equal(orig) {
		t.Fatal("expected double rotation to restore the original state")
	}
}

func TestSwapColors(t *testing.T) {
	b := NewBoard()
	b.SwapColors()
	piece, _ := b.Piece(Pos{0, 0})
	if piece != 'r' {
		t.Fatalf("expected r at (0,0) after color swap but got %v", piece)
	}
	piece, _ = b.Piece(Pos{0, 9})
	if piece != 'R' {
		t.Fatalf("expected R at (0,9) after color swap but got %v", piece)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	b := NewBoard()
	c := b.Copy()
	if !b.Equal(c) {
		t.Fatal("expected copy to equal the source")
	}
	c.SetPiece(Pos{0, 0}, 'P')
	piece, _ := b.Piece(Pos{0, 0})
	if piece != 'R' {
		t.Fatalf("expected source to be unaffected by copy mutation, got %v", piece)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	boards := []*Board{NewBoard(), NewEmptyBoard(), NewBoard(WithRotation())}
	boards[1].SetPiece(Pos{4, 4}, 'C')

	for _, b := range boards {
		data, err := json.Marshal(b)
		require.NoError(t, err)

		var loaded Board
		require.NoError(t, json.Unmarshal(data, &loaded))
		require.True(t, b.Equal(&loaded), "round-trip must reproduce occupancy")
	}
}

func TestJSONAcceptsLegacySpacedTokens(t *testing.T) {
	var b Board
	require.NoError(t, json.Unmarshal([]byte(`{"(0, 3)": "P"}`), &b))
	piece, err := b.Piece(Pos{0, 3})
	require.NoError(t, err)
	require.Equal(t, Piece('P'), piece)
}

func TestJSONRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad token", `{"(0)": "R"}`},
		{"non-numeric token", `{"(a,b)": "R"}`},
		{"three coordinates", `{"(1,2,3)": "R"}`},
		{"trailing garbage in y", `{"(0,0x)": "R"}`},
		{"trailing garbage in x", `{"(0x,0)": "R"}`},
		{"out of range", `{"(9,9)": "R"}`},
		{"invalid piece", `{"(0,0)": "X"}`},
		{"multi-char piece", `{"(0,0)": "RR"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b Board
			require.Error(t, json.Unmarshal([]byte(tc.data), &b))
		})
	}
}

func TestBoardString(t *testing.T) {
	s := NewBoard().String()
	if !strings.Contains(s, "r h e a k a e h r") {
		t.Fatalf("expected back rank in rendering:\n%s", s)
	}
	if !strings.Contains(s, "R H E A K A E H R") {
		t.Fatalf("expected red back rank in rendering:\n%s", s)
	}
}

func TestPieceProperties(t *testing.T) {
	if Piece('R').Color() != Red || Piece('r').Color() != Black {
		t.Fatal("piece case must encode color")
	}
	if Piece('r').Kind() != 'R' {
		t.Fatal("Kind must strip case")
	}
	if Piece('X').Valid() {
		t.Fatal("X is not a valid piece")
	}
}
