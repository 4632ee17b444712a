package simulation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/flock"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Messages understood by the WorldActor, all well-known protobuf types:
//
//	*durationpb.Duration     advance one tick (Tell)
//	*structpb.Struct         replace the parameter snapshot
//	*wrapperspb.UInt64Value  advance n ticks and reply with the tick counter (Ask)

// NewTick builds the message that advances the world by one step.
func NewTick(dt time.Duration) *durationpb.Duration {
	return durationpb.New(dt)
}

// NewStep builds the message that advances the world by n steps and replies.
func NewStep(n uint64) *wrapperspb.UInt64Value {
	return wrapperspb.UInt64(n)
}

// EncodeParams packs a snapshot into a protobuf Struct through its JSON form.
func EncodeParams(snap flock.Snapshot) (*structpb.Struct, error) {
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("failed to build params message: %w", err)
	}
	return st, nil
}

// DecodeParams is the inverse of EncodeParams.
func DecodeParams(st *structpb.Struct) (flock.Snapshot, error) {
	var snap flock.Snapshot
	b, err := protojson.Marshal(st)
	if err != nil {
		return snap, fmt.Errorf("failed to read params message: %w", err)
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return snap, fmt.Errorf("failed to unmarshal params: %w", err)
	}
	return snap, nil
}
