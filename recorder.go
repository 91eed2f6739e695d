package chessnote

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
)

// A Node is one history snapshot: a board state, the move trace that produced
// it, and the mover's metadata. Nodes are never mutated after creation.
type Node struct {
	state *Board
	move  *Move
	color Color
	desc  string
}

// Board returns an independent copy of the node's board state.
func (n *Node) Board() *Board {
	return n.state.Copy()
}

// Move returns the (start, end) trace that produced this node. The root node
// has no trace.
func (n *Node) Move() (Move, bool) {
	if n.move == nil {
		return Move{}, false
	}
	return *n.move, true
}

// Color returns the mover's color, or NoColor for the root node.
func (n *Node) Color() Color {
	return n.color
}

// Desc returns the human-readable description attached to the move, usually
// the notation command that produced it.
func (n *Node) Desc() string {
	return n.desc
}

// String implements the fmt.Stringer interface.
func (n *Node) String() string {
	var sb strings.Builder
	if n.move != nil {
		fmt.Fprintf(&sb, "%v ", *n.move)
	}
	fmt.Fprintf(&sb, "desc=%s color=%v\n%s", n.desc, n.color, n.state)
	return sb.String()
}

// A Recorder owns an append-only history of board snapshots together with
// named checkpoints, and drives the parser and checker to apply notation
// commands or coordinate moves. A Recorder is not safe for concurrent use.
type Recorder struct {
	history     []*Node
	checkpoints map[string]int
	rotated     bool
}

// FromBoard returns a Recorder option seeding the history root from a copy of
// the given board.
func FromBoard(b *Board) func(*Recorder) {
	return func(r *Recorder) {
		r.history = []*Node{{state: b.Copy()}}
	}
}

// Rotated returns a Recorder option that assigns black the down side of the
// board, both for notation semantics and for the default layout.
func Rotated() func(*Recorder) {
	return func(r *Recorder) {
		r.rotated = true
	}
}

// NewRecorder returns a recorder whose root is the standard opening layout.
// Optional functions can be provided to configure the initial state.
//
// Example:
//
//	// Standard game
//	rec := NewRecorder()
//
//	// Branch from an existing board, black on the near side
//	rec := NewRecorder(FromBoard(b), Rotated())
func NewRecorder(options ...func(*Recorder)) *Recorder {
	r := &Recorder{checkpoints: make(map[string]int)}
	for _, f := range options {
		if f != nil {
			f(r)
		}
	}
	if len(r.history) == 0 {
		b := NewBoard()
		if r.rotated {
			b.Rotate()
		}
		r.history = []*Node{{state: b}}
	}
	return r
}

// Rotate toggles the rotation flag for subsequent moves and parses. The
// recorded history is left untouched.
func (r *Recorder) Rotate() *Recorder {
	r.rotated = !r.rotated
	return r
}

// IsRotated reports the current rotation flag.
func (r *Recorder) IsRotated() bool {
	return r.rotated
}

// Len returns the number of history nodes, including the root.
func (r *Recorder) Len() int {
	return len(r.history)
}

// Nodes returns the history sequence, root first.
func (r *Recorder) Nodes() []*Node {
	return append([]*Node(nil), r.history...)
}

func (r *Recorder) lastNode() *Node {
	return r.history[len(r.history)-1]
}

// Last returns an independent copy of the most recent board state.
func (r *Recorder) Last() *Board {
	return r.lastNode().state.Copy()
}

// States returns independent copies of every board state in history order,
// as consumed by animation rendering.
func (r *Recorder) States() []*Board {
	states := make([]*Board, len(r.history))
	for i, node := range r.history {
		states[i] = node.state.Copy()
	}
	return states
}

// Moves returns the move traces in history order. The root contributes none.
func (r *Recorder) Moves() []Move {
	moves := make([]Move, 0, len(r.history)-1)
	for _, node := range r.history {
		if node.move != nil {
			moves = append(moves, *node.move)
		}
	}
	return moves
}

// Move validates and applies a single move against the latest state, then
// appends a new snapshot. Beyond piece rules it rejects two consecutive moves
// by the same color. The error message carries enough context to diagnose a
// failure without replaying: the piece, coordinates, rotation flag, and a
// rendering of the current state.
func (r *Recorder) Move(start, end Pos, desc string) error {
	last := r.lastNode()

	if err := CheckMove(last.state, start, end, r.rotated); err != nil {
		return r.moveError(start, end, desc, err)
	}

	color := last.state.pieces[start].Color()
	if last.color == color {
		return r.moveError(start, end, desc,
			fmt.Errorf("%w: %v cannot move twice in a row", ErrIllegalMove, color))
	}

	next := last.state.Copy()
	if err := next.MovePiece(start, end); err != nil {
		return r.moveError(start, end, desc, err)
	}

	r.history = append(r.history, &Node{
		state: next,
		move:  &Move{Start: start, End: end},
		color: color,
		desc:  desc,
	})
	return nil
}

func (r *Recorder) moveError(start, end Pos, desc string, err error) error {
	state := r.lastNode().state
	pieceStr := "?"
	if piece, ok := state.pieces[start]; ok {
		pieceStr = piece.String()
	}
	return fmt.Errorf(
		"chessnote: invalid move: piece=%s start=%v end=%v rotated=%t desc=%q\ncurrent state:\n%s\n%w",
		pieceStr, start, end, r.rotated, desc, state, err)
}

// Exec normalizes raw game text into commands and applies them in order. See
// ExecCommands for the commit semantics.
func (r *Recorder) Exec(text string, strict bool) error {
	cmds, err := NormalizeCommands(text)
	if err != nil {
		return err
	}
	return r.ExecCommands(cmds, strict)
}

// ExecCommands parses each command against the current latest state and
// applies it. A failure on command k stops the batch but leaves commands
// 1..k-1 committed; callers needing atomic batches should set a checkpoint
// first and roll back on failure.
func (r *Recorder) ExecCommands(cmds []string, strict bool) error {
	for _, cmd := range cmds {
		if cmd == "" {
			continue
		}
		state := r.lastNode().state
		mv, err := ParseCommand(state, cmd, r.rotated, strict)
		if err != nil {
			return fmt.Errorf(
				"chessnote: invalid command %q (strict=%t)\ncurrent state:\n%s\n%w",
				cmd, strict, state, err)
		}
		if err := r.Move(mv.Start, mv.End, cmd); err != nil {
			return err
		}
	}
	return nil
}

// DryRun parses the commands against the current latest state and returns the
// resolved moves without committing anything, e.g. to hand arrow lists to a
// renderer. Every command is resolved against the same state.
func (r *Recorder) DryRun(cmds []string, strict bool) ([]Move, error) {
	state := r.lastNode().state
	moves := make([]Move, 0, len(cmds))
	for _, cmd := range cmds {
		mv, err := ParseCommand(state, cmd, r.rotated, strict)
		if err != nil {
			return nil, err
		}
		moves = append(moves, mv)
	}
	return moves, nil
}

// SetCheckpoint records the current history length under the given name,
// overwriting any prior entry.
func (r *Recorder) SetCheckpoint(name string) {
	r.checkpoints[name] = len(r.history)
}

// RollbackToCheckpoint truncates history back to the length recorded under
// the given name.
func (r *Recorder) RollbackToCheckpoint(name string) error {
	target, ok := r.checkpoints[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCheckpointNotFound, name)
	}
	for len(r.history) > target {
		r.pop()
	}
	r.pruneCheckpoints()
	return nil
}

// Rollback pops up to steps nodes from the tail. The root is never removed:
// popping an exhausted history is a no-op, not a failure.
func (r *Recorder) Rollback(steps int) error {
	if steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidArgument, steps)
	}
	for i := 0; i < steps; i++ {
		if !r.pop() {
			break
		}
	}
	r.pruneCheckpoints()
	return nil
}

func (r *Recorder) pop() bool {
	if len(r.history) <= 1 {
		return false
	}
	r.history[len(r.history)-1] = nil
	r.history = r.history[:len(r.history)-1]
	return true
}

// pruneCheckpoints drops checkpoints whose recorded length was rolled past.
// Were they kept, a later regrown history would resolve them to nodes other
// than the ones originally checkpointed.
func (r *Recorder) pruneCheckpoints() {
	for name, length := range r.checkpoints {
		if length > len(r.history) {
			delete(r.checkpoints, name)
		}
	}
}

// Derive returns a new, independent recorder whose root is a copy of this
// recorder's latest state: a branch point sharing no mutable structure.
func (r *Recorder) Derive() *Recorder {
	derived := NewRecorder(FromBoard(r.lastNode().state))
	derived.rotated = r.rotated
	return derived
}

// Clone returns a deep copy of the recorder with identical history and
// checkpoints.
func (r *Recorder) Clone() *Recorder {
	history := make([]*Node, len(r.history))
	for i, node := range r.history {
		clone := &Node{state: node.state.Copy(), color: node.color, desc: node.desc}
		if node.move != nil {
			mv := *node.move
			clone.move = &mv
		}
		history[i] = clone
	}
	return &Recorder{
		history:     history,
		checkpoints: maps.Clone(r.checkpoints),
		rotated:     r.rotated,
	}
}

// String implements the fmt.Stringer interface.
func (r *Recorder) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Recorder: %d states, rotated=%t\n", len(r.history), r.rotated)
	for i, node := range r.history {
		fmt.Fprintf(&sb, "state %d: %s\n", i, node)
	}
	return sb.String()
}
