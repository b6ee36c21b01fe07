package ctxutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type contextKey string

const (
	requestIDKey   contextKey = "request_id"
	requestTypeKey contextKey = "request_type"
	sourceTypeKey  contextKey = "source_type"
	channelNameKey contextKey = "channel_name"
	streamIDKey    contextKey = "stream_id"
)

func WithRequestID(ctx context.Context) context.Context {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return context.WithValue(ctx, requestIDKey, hex.EncodeToString(b))
}

func WithRequestType(ctx context.Context, reqType string) context.Context {
	return context.WithValue(ctx, requestTypeKey, reqType)
}

func WithSourceType(ctx context.Context, sourceType string) context.Context {
	return context.WithValue(ctx, sourceTypeKey, sourceType)
}

func WithChannelName(ctx context.Context, channelName string) context.Context {
	return context.WithValue(ctx, channelNameKey, channelName)
}

func WithStreamID(ctx context.Context, streamID string) context.Context {
	return context.WithValue(ctx, streamIDKey, streamID)
}

func RequestID(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func RequestType(ctx context.Context) string {
	if v := ctx.Value(requestTypeKey); v != nil {
		return v.(string)
	}
	return ""
}

func SourceType(ctx context.Context) string {
	if v := ctx.Value(sourceTypeKey); v != nil {
		return v.(string)
	}
	return ""
}

func ChannelName(ctx context.Context) string {
	if v := ctx.Value(channelNameKey); v != nil {
		return v.(string)
	}
	return ""
}

func StreamID(ctx context.Context) string {
	if v := ctx.Value(streamIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func LogFields(ctx context.Context) []any {
	fields := make([]any, 0, 10)

	if id := RequestID(ctx); id != "" {
		fields = append(fields, "request_id", id)
	}
	if rt := RequestType(ctx); rt != "" {
		fields = append(fields, "request_type", rt)
	}
	if st := SourceType(ctx); st != "" {
		fields = append(fields, "source_type", st)
	}
	if id := StreamID(ctx); id != "" {
		fields = append(fields, "stream_id", id)
	}
	if name := ChannelName(ctx); name != "" {
		fields = append(fields, "channel", name)
	}

	return fields
}
