package rawfeed

import "context"

type Repository interface {
	Upsert(ctx context.Context, payload Payload) error
}
