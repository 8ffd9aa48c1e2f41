package schedule

import (
	"fmt"
	"math"
	"os"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
	"gopkg.in/yaml.v3"
)

// Snapshot pairs a schedule's state with the schedule name it belongs to so
// a resumed run cannot feed one variant's counters into another.
type Snapshot struct {
	Schedule string `yaml:"schedule"`
	State    State  `yaml:"state"`
}

// Field numbers of the binary snapshot. Encoded with the protobuf wire format
// so other tooling can read it with a matching message definition.
const (
	fieldEpoch       protowire.Number = 1
	fieldIteration   protowire.Number = 2
	fieldCycleIndex  protowire.Number = 3
	fieldCycleLength protowire.Number = 4
	fieldSchedule    protowire.Number = 5
)

// TakeSnapshot captures the current state of s.
func TakeSnapshot(s RateSchedule) Snapshot {
	return Snapshot{Schedule: s.Name(), State: s.State()}
}

// Resume restores snap into s after checking that it was taken from the same variant.
func Resume(s RateSchedule, snap Snapshot) error {
	if !strings.EqualFold(snap.Schedule, s.Name()) {
		return fmt.Errorf("%w: snapshot of %q cannot resume %q", ErrInvalidState, snap.Schedule, s.Name())
	}
	return s.Restore(snap.State)
}

// MarshalBinary encodes the snapshot in protobuf wire format.
func (snap Snapshot) MarshalBinary() ([]byte, error) {
	if err := snap.State.Validate(); err != nil {
		return nil, err
	}
	var b []byte
	b = protowire.AppendTag(b, fieldEpoch, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(snap.State.Epoch))
	b = protowire.AppendTag(b, fieldIteration, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(snap.State.Iteration))
	b = protowire.AppendTag(b, fieldCycleIndex, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(snap.State.CycleIndex))
	b = protowire.AppendTag(b, fieldCycleLength, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(snap.State.CycleLength))
	b = protowire.AppendTag(b, fieldSchedule, protowire.BytesType)
	b = protowire.AppendString(b, snap.Schedule)
	return b, nil
}

// UnmarshalBinary decodes a snapshot produced by MarshalBinary.
// Unknown fields are skipped.
func (snap *Snapshot) UnmarshalBinary(data []byte) error {
	var out Snapshot
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrInvalidState, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case typ == protowire.VarintType && (num == fieldEpoch || num == fieldIteration || num == fieldCycleIndex):
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrInvalidState, protowire.ParseError(n))
			}
			if v > math.MaxInt32 {
				return fmt.Errorf("%w: field %d out of range: %d", ErrInvalidState, num, v)
			}
			switch num {
			case fieldEpoch:
				out.State.Epoch = int(v)
			case fieldIteration:
				out.State.Iteration = int(v)
			case fieldCycleIndex:
				out.State.CycleIndex = int(v)
			}
			data = data[n:]
		case typ == protowire.Fixed64Type && num == fieldCycleLength:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrInvalidState, protowire.ParseError(n))
			}
			out.State.CycleLength = math.Float64frombits(v)
			data = data[n:]
		case typ == protowire.BytesType && num == fieldSchedule:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrInvalidState, protowire.ParseError(n))
			}
			out.Schedule = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrInvalidState, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	if err := out.State.Validate(); err != nil {
		return err
	}
	*snap = out
	return nil
}

// SaveSnapshot writes snap to path. A ".yaml" or ".yml" suffix selects the
// YAML encoding; anything else is written in binary form.
func SaveSnapshot(path string, snap Snapshot) error {
	var data []byte
	var err error
	if isYAMLPath(path) {
		data, err = yaml.Marshal(snap)
	} else {
		data, err = snap.MarshalBinary()
	}
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}
	var snap Snapshot
	if isYAMLPath(path) {
		if err := decodeStrict(data, &snap); err != nil {
			return Snapshot{}, fmt.Errorf("%w: parsing snapshot: %v", ErrInvalidState, err)
		}
		if err := snap.State.Validate(); err != nil {
			return Snapshot{}, err
		}
		return snap, nil
	}
	if err := snap.UnmarshalBinary(data); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func isYAMLPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
