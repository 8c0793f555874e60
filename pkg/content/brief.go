// ABOUTME: Frozen input snapshot that produced a version set
// ABOUTME: Backed by a protobuf Struct so copies never alias the caller's data

package content

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Brief is an immutable copy of the form inputs for one generation.
// The zero value is an empty brief.
type Brief struct {
	s *structpb.Struct
}

// NewBrief freezes the given fields. Values must be JSON-compatible
// (string, bool, numbers, nil, []any, map[string]any).
func NewBrief(fields map[string]any) (Brief, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return Brief{}, fmt.Errorf("invalid brief: %w", err)
	}
	return Brief{s: s}, nil
}

// BriefFromProto copies a wire struct into a brief
func BriefFromProto(s *structpb.Struct) Brief {
	if s == nil {
		return Brief{}
	}
	return Brief{s: proto.Clone(s).(*structpb.Struct)}
}

// Snapshot returns an independent copy of the brief
func (b Brief) Snapshot() Brief {
	return BriefFromProto(b.s)
}

// Proto returns a copy of the brief as a protobuf Struct
func (b Brief) Proto() *structpb.Struct {
	if b.s == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	return proto.Clone(b.s).(*structpb.Struct)
}

// AsMap returns a fresh map of the brief's fields
func (b Brief) AsMap() map[string]any {
	if b.s == nil {
		return map[string]any{}
	}
	return b.s.AsMap()
}

// String returns a string field, or "" when absent or not a string
func (b Brief) String(key string) string {
	if b.s == nil {
		return ""
	}
	v, ok := b.s.Fields[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

// Len returns the number of fields in the brief
func (b Brief) Len() int {
	if b.s == nil {
		return 0
	}
	return len(b.s.Fields)
}

// MarshalJSON encodes the brief as a plain JSON object
func (b Brief) MarshalJSON() ([]byte, error) {
	return protojson.Marshal(b.Proto())
}

// UnmarshalJSON decodes a plain JSON object into the brief
func (b *Brief) UnmarshalJSON(data []byte) error {
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return fmt.Errorf("decode brief: %w", err)
	}
	b.s = s
	return nil
}
