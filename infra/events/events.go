// Package events builds the messages published for deliveries and ETA
// changes. Events are google.protobuf.Struct values so consumers need no
// generated schema; the wire form is either binary protobuf or protojson.
package events

import (
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"gator/domain/schedule"
)

const version = 1

const (
	TypeDelivered  = "order.delivered"
	TypeETAUpdated = "order.eta_updated"
)

// Encoder turns an event into bytes for the wire.
type Encoder interface {
	Encode(*structpb.Struct) ([]byte, error)
	Decode([]byte) (*structpb.Struct, error)
	ContentType() string
}

// NewEncoder returns the encoder for format ("proto" or "json").
func NewEncoder(format string) (Encoder, error) {
	switch format {
	case "proto":
		return ProtoEncoder{}, nil
	case "json":
		return JSONEncoder{}, nil
	default:
		return nil, errors.Newf("unknown event format %q", format)
	}
}

type ProtoEncoder struct{}

func (ProtoEncoder) Encode(s *structpb.Struct) ([]byte, error) {
	return proto.Marshal(s)
}

func (ProtoEncoder) Decode(b []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(b, s); err != nil {
		return nil, errors.Wrap(err, "decode proto event")
	}
	return s, nil
}

func (ProtoEncoder) ContentType() string { return "application/x-protobuf" }

type JSONEncoder struct{}

func (JSONEncoder) Encode(s *structpb.Struct) ([]byte, error) {
	return protojson.Marshal(s)
}

func (JSONEncoder) Decode(b []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, errors.Wrap(err, "decode json event")
	}
	return s, nil
}

func (JSONEncoder) ContentType() string { return "application/json" }

// Delivered describes an order that reached its ETA. seq is the outbox
// sequence number.
func Delivered(seq uint64, d schedule.Delivery) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"v":        structpb.NewNumberValue(version),
		"type":     structpb.NewStringValue(TypeDelivered),
		"seq":      structpb.NewNumberValue(float64(seq)),
		"id":       structpb.NewNumberValue(float64(d.ID)),
		"eta":      structpb.NewNumberValue(float64(d.ETA)),
		"duration": structpb.NewNumberValue(float64(d.Duration)),
	}}
}

// ETAUpdated describes a batch of ETA changes caused by one command.
func ETAUpdated(command string, at int64, updates []schedule.ETAUpdate) *structpb.Struct {
	list := make([]*structpb.Value, 0, len(updates))
	for _, u := range updates {
		list = append(list, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"id":  structpb.NewNumberValue(float64(u.ID)),
			"eta": structpb.NewNumberValue(float64(u.ETA)),
		}}))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"v":       structpb.NewNumberValue(version),
		"type":    structpb.NewStringValue(TypeETAUpdated),
		"command": structpb.NewStringValue(command),
		"time":    structpb.NewNumberValue(float64(at)),
		"updates": structpb.NewListValue(&structpb.ListValue{Values: list}),
	}}
}

// OrderView renders an order for lookups.
func OrderView(o schedule.Order) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":         structpb.NewNumberValue(float64(o.ID)),
		"created_at": structpb.NewNumberValue(float64(o.CreatedAt)),
		"value":      structpb.NewNumberValue(float64(o.Value)),
		"duration":   structpb.NewNumberValue(float64(o.Duration)),
		"priority":   structpb.NewNumberValue(o.Priority),
		"eta":        structpb.NewNumberValue(float64(o.ETA)),
	}}
}
