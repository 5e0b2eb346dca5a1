package replica

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for replica events.
var (
	SignalCloneStart    = capitan.NewSignal("replica.clone.start", "Clone operation beginning")
	SignalCloneComplete = capitan.NewSignal("replica.clone.complete", "Clone operation finished")
	SignalStructScanned = capitan.NewSignal("replica.struct.scanned", "Struct field plan built")
	SignalEncode        = capitan.NewSignal("replica.codec.encode", "Record encoded")
	SignalDecode        = capitan.NewSignal("replica.codec.decode", "Record decoded")
)

// Keys for typed event data.
var (
	KeyContentType   = capitan.NewStringKey("content_type")
	KeyTypeName      = capitan.NewStringKey("type_name")
	KeySize          = capitan.NewIntKey("size")
	KeyDuration      = capitan.NewDurationKey("duration")
	KeyError         = capitan.NewErrorKey("error")
	KeyKeyCount      = capitan.NewIntKey("key_count")
	KeyExcludedCount = capitan.NewIntKey("excluded_count")
	KeyNodeCount     = capitan.NewIntKey("node_count")
	KeyFieldCount    = capitan.NewIntKey("field_count")
)

// emitCloneStart emits an event when a clone begins.
func emitCloneStart(ctx context.Context, keys int) {
	capitan.Emit(ctx, SignalCloneStart,
		KeyKeyCount.Field(keys),
	)
}

// emitCloneComplete emits an event when a clone finishes.
func emitCloneComplete(ctx context.Context, keys, excluded, nodes int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyKeyCount.Field(keys),
		KeyExcludedCount.Field(excluded),
		KeyNodeCount.Field(nodes),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalCloneComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalCloneComplete, fields...)
	}
}

// emitStructScanned emits an event when a struct plan is built.
func emitStructScanned(ctx context.Context, typeName string, fields int) {
	capitan.Emit(ctx, SignalStructScanned,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fields),
	)
}

// emitEncode emits an event when a record is encoded.
func emitEncode(ctx context.Context, contentType string, size int, duration time.Duration, err error) {
	fields := codecFields(contentType, size, duration)
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncode, fields...)
	} else {
		capitan.Emit(ctx, SignalEncode, fields...)
	}
}

// emitDecode emits an event when a record is decoded.
func emitDecode(ctx context.Context, contentType string, size int, duration time.Duration, err error) {
	fields := codecFields(contentType, size, duration)
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecode, fields...)
	} else {
		capitan.Emit(ctx, SignalDecode, fields...)
	}
}

func codecFields(contentType string, size int, duration time.Duration) []capitan.Field {
	return []capitan.Field{
		KeyContentType.Field(contentType),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
}
