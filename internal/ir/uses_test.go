package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeUses(t *testing.T) {
	b := NewBuilder(Target{Gen: GenGFX10, WaveSize: 64})
	in := b.Startpgm(RegClassV1, RegClassV1)
	a, x := OperandTemp(in[0]), OperandTemp(in[1])

	live := b.Def(OpcodeVAddF32, RegClassV1, a, x)
	// A chain only read by dead instructions is dead as well.
	deadMul := b.Def(OpcodeVMulF32, RegClassV1, a, a)
	deadAdd := b.Def(OpcodeVAddF32, RegClassV1, OperandTemp(deadMul), x)
	b.Def(OpcodeVSubF32, RegClassV1, OperandTemp(deadAdd), OperandTemp(deadAdd))
	b.Sink(OperandTemp(live), OperandTemp(live))

	uses := ComputeUses(b.Program())
	require.Equal(t, 1, uses[in[0].ID()])
	require.Equal(t, 1, uses[in[1].ID()])
	require.Equal(t, 2, uses[live.ID()])
	require.Equal(t, 0, uses[deadMul.ID()])
	require.Equal(t, 0, uses[deadAdd.ID()])
}

func TestComputeUses_loop(t *testing.T) {
	b := NewBuilder(Target{Gen: GenGFX10, WaveSize: 64})
	in := b.Startpgm(RegClassV1)
	b.Insert(OpcodePBranch, nil)

	b.AddBlock(0, BlockKindLoopHeader)
	phi := b.Program().AllocateTemp(RegClassV1)
	next := b.Program().AllocateTemp(RegClassV1)
	b.Insert(OpcodePPhi, []Definition{NewDefinition(phi)}, OperandTemp(in[0]), OperandTemp(next))
	b.Insert(OpcodeVAddF32, []Definition{NewDefinition(next)}, OperandTemp(phi), OperandTemp(in[0]))

	// The values of a cycle keep each other alive.
	uses := ComputeUses(b.Program())
	require.Equal(t, 1, uses[phi.ID()])
	require.Equal(t, 1, uses[next.ID()])
	require.Equal(t, 2, uses[in[0].ID()])

	b.Sink(OperandTemp(next))
	uses = ComputeUses(b.Program())
	require.Equal(t, 1, uses[phi.ID()])
	require.Equal(t, 2, uses[next.ID()])
	require.Equal(t, 2, uses[in[0].ID()])
}

func TestIsDead(t *testing.T) {
	b := NewBuilder(Target{Gen: GenGFX10, WaveSize: 64})
	in := b.Startpgm(RegClassV1)
	x := b.Def(OpcodeVMovB32, RegClassV1, OperandTemp(in[0]))
	mov := b.Last()
	sink := b.Sink(OperandTemp(x))

	uses := make([]int, b.Program().PeekAllocationID())
	require.True(t, IsDead(uses, mov))
	// Side effects and instructions without definitions are never dead.
	require.False(t, IsDead(uses, b.Program().Blocks[0].Instructions[0]))
	require.False(t, IsDead(uses, sink))
	uses[x.ID()] = 1
	require.False(t, IsDead(uses, mov))
}
