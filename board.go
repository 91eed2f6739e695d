/*
Package chessnote models Xiangqi (Chinese Chess) board states, validates moves
by piece rules, translates Chinese move notation into coordinates, and keeps a
branchable, checkpointable history of board snapshots.
The package uses first-quadrant coordinates: the bottom-left point is (0,0),
the x-axis grows rightward and the y-axis grows upward, for a fixed 9x10 grid.
Example usage:

	// Standard opening setup
	rec := NewRecorder()

	// Play notation commands
	if err := rec.Exec("炮二平五 马8进7", false); err != nil {
		log.Fatal(err)
	}

	fmt.Println(rec.Last())
*/
package chessnote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
)

// Board geometry.
const (
	ColsNum = 9
	RowsNum = 10
)

var (
	// ErrInvalidPosition indicates a position outside the 9x10 grid or a
	// malformed coordinate token.
	ErrInvalidPosition = errors.New("chessnote: invalid position")
	// ErrInvalidPiece indicates a symbol outside the piece alphabet.
	ErrInvalidPiece = errors.New("chessnote: invalid piece")
	// ErrIllegalMove indicates a move rejected by board or piece rules.
	ErrIllegalMove = errors.New("chessnote: illegal move")
	// ErrCheckpointNotFound indicates an unknown checkpoint name.
	ErrCheckpointNotFound = errors.New("chessnote: checkpoint not found")
	// ErrInvalidArgument indicates a malformed argument such as a negative
	// rollback count.
	ErrInvalidArgument = errors.New("chessnote: invalid argument")
)

// A Color identifies the owning side of a piece.
type Color int8

const (
	NoColor Color = iota
	// Red owns the uppercase pieces.
	Red
	// Black owns the lowercase pieces.
	Black
)

// String implements the fmt.Stringer interface.
func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Black:
		return "black"
	}
	return ""
}

// Other returns the opposing color.
func (c Color) Other() Color {
	switch c {
	case Red:
		return Black
	case Black:
		return Red
	}
	return NoColor
}

// validPieces is the 14-symbol piece alphabet. Case encodes color:
// uppercase is red, lowercase is black.
const validPieces = "RrHhEeAaCcPpKk"

// A Piece is a single symbol from the piece alphabet: Rook, Horse, Elephant,
// Advisor, Cannon, Pawn, King.
type Piece byte

// Valid reports whether p belongs to the piece alphabet.
func (p Piece) Valid() bool {
	return strings.IndexByte(validPieces, byte(p)) >= 0
}

// Color returns the owning side encoded by the symbol case.
func (p Piece) Color() Color {
	switch {
	case p >= 'A' && p <= 'Z':
		return Red
	case p >= 'a' && p <= 'z':
		return Black
	}
	return NoColor
}

// Kind returns the uppercase symbol identifying the piece kind regardless of
// color.
func (p Piece) Kind() Piece {
	if p >= 'a' && p <= 'z' {
		return p - 'a' + 'A'
	}
	return p
}

// swap returns the same piece kind in the other color.
func (p Piece) swap() Piece {
	switch {
	case p >= 'A' && p <= 'Z':
		return p - 'A' + 'a'
	case p >= 'a' && p <= 'z':
		return p - 'a' + 'A'
	}
	return p
}

// String implements the fmt.Stringer interface.
func (p Piece) String() string {
	return string(byte(p))
}

// A Pos is a board intersection: column X in 0..8, row Y in 0..9.
type Pos struct {
	X int
	Y int
}

// Valid reports whether the position lies on the board.
func (p Pos) Valid() bool {
	return p.X >= 0 && p.X < ColsNum && p.Y >= 0 && p.Y < RowsNum
}

// String implements the fmt.Stringer interface and returns the canonical
// serialization token "(x,y)".
func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// parsePos parses a serialization token back into a position. A space after
// the comma is tolerated since older files were written as "(x, y)".
func parsePos(s string) (Pos, error) {
	var p Pos
	inner, ok := strings.CutPrefix(strings.TrimSpace(s), "(")
	if !ok {
		return p, fmt.Errorf("%w: bad token %q", ErrInvalidPosition, s)
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return p, fmt.Errorf("%w: bad token %q", ErrInvalidPosition, s)
	}
	xs, ys, ok := strings.Cut(inner, ",")
	if !ok {
		return p, fmt.Errorf("%w: bad token %q", ErrInvalidPosition, s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return p, fmt.Errorf("%w: bad token %q", ErrInvalidPosition, s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return p, fmt.Errorf("%w: bad token %q", ErrInvalidPosition, s)
	}
	p.X, p.Y = x, y
	return p, nil
}

// defaultLayout is the canonical 32-piece opening setup with red on the
// bottom rows.
var defaultLayout = map[Pos]Piece{
	// red
	{0, 0}: 'R', {1, 0}: 'H', {2, 0}: 'E', {3, 0}: 'A', {4, 0}: 'K',
	{5, 0}: 'A', {6, 0}: 'E', {7, 0}: 'H', {8, 0}: 'R',
	{1, 2}: 'C', {7, 2}: 'C',
	{0, 3}: 'P', {2, 3}: 'P', {4, 3}: 'P', {6, 3}: 'P', {8, 3}: 'P',
	// black
	{0, 6}: 'p', {2, 6}: 'p', {4, 6}: 'p', {6, 6}: 'p', {8, 6}: 'p',
	{1, 7}: 'c', {7, 7}: 'c',
	{0, 9}: 'r', {1, 9}: 'h', {2, 9}: 'e', {3, 9}: 'a', {4, 9}: 'k',
	{5, 9}: 'a', {6, 9}: 'e', {7, 9}: 'h', {8, 9}: 'r',
}

// A Board is a validated mapping from positions to pieces.
type Board struct {
	pieces map[Pos]Piece
}

// WithRotation returns a Board option that rotates the layout 180 degrees at
// construction, representing the board as seen from the opposite side. Piece
// colors are unchanged.
func WithRotation() func(*Board) {
	return func(b *Board) {
		b.Rotate()
	}
}

// NewBoard returns a board with the standard opening layout. Optional
// functions can be provided to configure the initial state.
//
// Example:
//
//	// Standard layout
//	b := NewBoard()
//
//	// Standard layout viewed from black's side
//	b := NewBoard(WithRotation())
func NewBoard(options ...func(*Board)) *Board {
	b := &Board{pieces: maps.Clone(defaultLayout)}
	for _, f := range options {
		if f != nil {
			f(b)
		}
	}
	return b
}

// NewEmptyBoard returns a board with no pieces.
func NewEmptyBoard(options ...func(*Board)) *Board {
	b := &Board{pieces: make(map[Pos]Piece)}
	for _, f := range options {
		if f != nil {
			f(b)
		}
	}
	return b
}

// Len returns the number of pieces on the board.
func (b *Board) Len() int {
	return len(b.pieces)
}

// Occupied reports whether a piece stands at pos.
func (b *Board) Occupied(pos Pos) bool {
	_, ok := b.pieces[pos]
	return ok
}

// Piece returns the piece at pos. It fails with ErrInvalidPosition when pos is
// off the board and with a "no piece" error when the position is empty.
func (b *Board) Piece(pos Pos) (Piece, error) {
	if !pos.Valid() {
		return 0, fmt.Errorf("%w: %v out of board range", ErrInvalidPosition, pos)
	}
	piece, ok := b.pieces[pos]
	if !ok {
		return 0, fmt.Errorf("chessnote: no piece at %v", pos)
	}
	return piece, nil
}

// SetPiece places a piece at pos, replacing any existing occupant.
func (b *Board) SetPiece(pos Pos, piece Piece) error {
	if !pos.Valid() {
		return fmt.Errorf("%w: %v out of board range", ErrInvalidPosition, pos)
	}
	if !piece.Valid() {
		return fmt.Errorf("%w: %q must be one of %s", ErrInvalidPiece, piece.String(), validPieces)
	}
	b.pieces[pos] = piece
	return nil
}

// Remove clears the piece at pos. It fails when pos is off the board or empty.
func (b *Board) Remove(pos Pos) error {
	if !pos.Valid() {
		return fmt.Errorf("%w: %v out of board range", ErrInvalidPosition, pos)
	}
	if _, ok := b.pieces[pos]; !ok {
		return fmt.Errorf("chessnote: no piece at %v", pos)
	}
	delete(b.pieces, pos)
	return nil
}

// MovePiece relocates the piece at start to end, capturing whatever occupied
// end. Captures need no separate operation.
func (b *Board) MovePiece(start, end Pos) error {
	piece, ok := b.pieces[start]
	if !ok {
		return fmt.Errorf("%w: no piece at start %v", ErrIllegalMove, start)
	}
	if err := b.SetPiece(end, piece); err != nil {
		return err
	}
	delete(b.pieces, start)
	return nil
}

// Rotate relabels every occupied position (x,y) as (8-x,9-y) in place.
// Applying it twice restores the original state.
func (b *Board) Rotate() {
	rotated := make(map[Pos]Piece, len(b.pieces))
	for pos, piece := range b.pieces {
		rotated[Pos{ColsNum - 1 - pos.X, RowsNum - 1 - pos.Y}] = piece
	}
	b.pieces = rotated
}

// SwapColors flips the case of every piece symbol in place, changing logical
// colors without moving pieces.
func (b *Board) SwapColors() {
	for pos, piece := range b.pieces {
		b.pieces[pos] = piece.swap()
	}
}

// Copy returns an independent deep copy of the board.
func (b *Board) Copy() *Board {
	return &Board{pieces: maps.Clone(b.pieces)}
}

// Equal reports whether both boards hold identical pieces on identical
// positions.
func (b *Board) Equal(other *Board) bool {
	return maps.Equal(b.pieces, other.pieces)
}

// Pieces returns a snapshot of the occupied positions and their pieces.
func (b *Board) Pieces() map[Pos]Piece {
	return maps.Clone(b.pieces)
}

// String implements the fmt.Stringer interface and renders the board as an
// ASCII diagram with row and column indices, top row first.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString(" +-------------------+\n")
	for y := RowsNum - 1; y >= 0; y-- {
		fmt.Fprintf(&sb, "%d| ", y)
		for x := 0; x < ColsNum; x++ {
			if piece, ok := b.pieces[Pos{x, y}]; ok {
				sb.WriteByte(byte(piece))
			} else {
				sb.WriteByte('.')
			}
			sb.WriteByte(' ')
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(" +-------------------+\n  ")
	for x := 0; x < ColsNum; x++ {
		fmt.Fprintf(&sb, " %d", x)
	}
	return sb.String()
}

// MarshalJSON implements the json.Marshaler interface. The board serializes as
// an object mapping "(x,y)" tokens to one-character piece symbols.
func (b *Board) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(b.pieces))
	for pos, piece := range b.pieces {
		m[pos.String()] = piece.String()
	}
	return json.Marshal(m)
}

// UnmarshalJSON implements the json.Unmarshaler interface. It rejects
// malformed position tokens and symbols outside the piece alphabet.
func (b *Board) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(bytes.TrimSpace(data), &m); err != nil {
		return fmt.Errorf("chessnote: decoding board: %w", err)
	}
	pieces := make(map[Pos]Piece, len(m))
	for token, s := range m {
		pos, err := parsePos(token)
		if err != nil {
			return err
		}
		if !pos.Valid() {
			return fmt.Errorf("%w: %v out of board range", ErrInvalidPosition, pos)
		}
		if len(s) != 1 {
			return fmt.Errorf("%w: %q must be a single symbol", ErrInvalidPiece, s)
		}
		piece := Piece(s[0])
		if !piece.Valid() {
			return fmt.Errorf("%w: %q must be one of %s", ErrInvalidPiece, s, validPieces)
		}
		pieces[pos] = piece
	}
	b.pieces = pieces
	return nil
}
