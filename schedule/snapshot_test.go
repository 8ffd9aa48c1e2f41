package schedule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestSnapshot_BinaryRoundTrip(t *testing.T) {
	snap := Snapshot{
		Schedule: "sgdr",
		State:    State{Epoch: 40, Iteration: 15600, CycleIndex: 2, CycleLength: 48},
	}
	data, err := snap.MarshalBinary()
	require.NoError(t, err)

	var got Snapshot
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, snap, got)
}

func TestSnapshot_UnmarshalSkipsUnknownFields(t *testing.T) {
	snap := Snapshot{Schedule: "clr", State: State{Iteration: 7, CycleIndex: 1, CycleLength: 20}}
	data, err := snap.MarshalBinary()
	require.NoError(t, err)
	data = protowire.AppendTag(data, 99, protowire.BytesType)
	data = protowire.AppendString(data, "written by a newer version")

	var got Snapshot
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, snap, got)
}

func TestSnapshot_UnmarshalRejectsCorruptData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated tag", []byte{0xff}},
		{"truncated varint", []byte{0x08}},
		{"truncated double", []byte{0x21, 0x00, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Snapshot
			assert.ErrorIs(t, got.UnmarshalBinary(tt.data), ErrInvalidState)
		})
	}
}

func TestSnapshot_MarshalRejectsInvalidState(t *testing.T) {
	_, err := Snapshot{Schedule: "sgd", State: State{Epoch: -1, CycleLength: 1}}.MarshalBinary()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSaveLoadSnapshot_BothEncodings(t *testing.T) {
	dir := t.TempDir()
	snap := Snapshot{Schedule: "sgd", State: State{Epoch: 12, Iteration: 120, CycleIndex: 1, CycleLength: 10}}

	for _, name := range []string{"state.bin", "state.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveSnapshot(path, snap))
		got, err := LoadSnapshot(path)
		require.NoError(t, err, name)
		assert.Equal(t, snap, got, name)
	}
}

func TestLoadSnapshot_YAMLUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yml")
	content := "schedule: sgd\nstate:\n  epoch: 1\n  cycle_length: 10\n  t_cur: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	_, err := LoadSnapshot(path)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestResume_ContinuesIdenticalCyclicSequence(t *testing.T) {
	// GIVEN a cyclic schedule 137 iterations into training
	original, _, err := Build("clr", 100, 10, Overrides{StepLen: intPtr(2)})
	require.NoError(t, err)
	for i := 0; i < 137; i++ {
		original.OnIterationEnd()
	}
	data, err := TakeSnapshot(original).MarshalBinary()
	require.NoError(t, err)

	// WHEN a new run resumes from the encoded snapshot
	var snap Snapshot
	require.NoError(t, snap.UnmarshalBinary(data))
	resumed, _, err := Build("CLR", 100, 10, Overrides{StepLen: intPtr(2)})
	require.NoError(t, err)
	require.NoError(t, Resume(resumed, snap))

	// THEN both runs agree on every following rate
	for i := 0; i < 200; i++ {
		require.Equal(t, original.NextRate(), resumed.NextRate(), "iteration %d", 137+i)
		original.OnIterationEnd()
		resumed.OnIterationEnd()
	}
}

func TestResume_RejectsOtherVariant(t *testing.T) {
	s := NewStepDecay()
	err := Resume(s, Snapshot{Schedule: "sgdr", State: State{CycleLength: 12}})
	assert.ErrorIs(t, err, ErrInvalidState)
}
