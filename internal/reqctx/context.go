package reqctx

import "context"

type ctxKey string

const (
	keyRID    ctxKey = "request_id"
	keyItemID ctxKey = "item_id"
)

// WithRID stores the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns the correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// WithItemID stores the found item id once it is known.
func WithItemID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, keyItemID, id)
}

// ItemID returns the item id if present.
func ItemID(ctx context.Context) uint64 {
	v, _ := ctx.Value(keyItemID).(uint64)
	return v
}
