package lang

import (
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// descriptorCache stores parsed descriptors keyed by (token_hash:ambient).
// Repeated invocations over the same argument vectors, common for callers
// templating their tokens, skip the grammar pass entirely.
//
//nolint:gochecknoglobals
var descriptorCache sync.Map

// cacheKey derives the cache key for one token under one ambient type.
// xxhash3 keeps hashing off the profile even for long tokens.
func cacheKey(token string, ambient Type) string {
	hash := xxh3.HashString(token)

	return strconv.FormatUint(hash, 36) + ":" + strconv.Itoa(int(ambient))
}

// parseCached parses one token through the descriptor cache. Cached
// descriptors are shared: callers receive a copy so preset application
// cannot leak between encode calls.
func parseCached(token string, ambient Type) (*Descriptor, error) {
	key := cacheKey(token, ambient)

	if value, ok := descriptorCache.Load(key); ok {
		d := *value.(*Descriptor)

		return &d, nil
	}

	d, err := ParseToken(token, ambient)
	if err != nil {
		return nil, err
	}

	descriptorCache.Store(key, d)

	copied := *d

	return &copied, nil
}
