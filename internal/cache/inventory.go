package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ItemKeyPrefix     = "item:%d"
	PublicListingsKey = "items:public:first"
)

const (
	ItemTTL           = 10 * time.Minute
	PublicListingsTTL = 1 * time.Minute
)

func ItemKey(itemID uint) string {
	return fmt.Sprintf(ItemKeyPrefix, itemID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateItem(ctx context.Context, itemID uint) {
	Invalidate(ctx, ItemKey(itemID))
}

// InvalidatePublicListings drops the cached storefront page. Called on every
// listing mutation that can change public visibility.
func InvalidatePublicListings(ctx context.Context) {
	Invalidate(ctx, PublicListingsKey)
}
