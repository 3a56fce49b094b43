package instrument

import (
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// Cache holds one exchange's instrument metadata — the result of an
// InstrumentInfo() call — with a TTL, so the ingestion task doesn't have to
// re-fetch it on every reconnect.
type Cache struct {
	exchange Exchange
	c        *cache.Cache
}

// NewCache builds a cache for exchange with the given TTL and cleanup
// interval.
func NewCache(exchange Exchange, ttl, cleanupInterval time.Duration) *Cache {
	return &Cache{
		exchange: exchange,
		c:        cache.New(ttl, cleanupInterval),
	}
}

// Put stores an instrument keyed by its raw wire symbol and feed.
func (c *Cache) Put(inst Instrument) {
	c.c.Set(c.key(inst.RawSymbol, inst.Feed), inst, cache.DefaultExpiration)
}

// PutAll stores every instrument in insts.
func (c *Cache) PutAll(insts []Instrument) {
	for _, inst := range insts {
		c.Put(inst)
	}
}

// Get looks up an instrument by raw symbol and feed.
func (c *Cache) Get(rawSymbol string, feed Feed) (Instrument, bool) {
	v, found := c.c.Get(c.key(rawSymbol, feed))
	if !found {
		return Instrument{}, false
	}
	return v.(Instrument), true
}

// AliasMap snapshots the cache into the wire-symbol -> Instrument map that
// StreamApi.HandleResponse expects. Spot is assumed when more than one feed
// shares a raw symbol; exchanges without that ambiguity can ignore it.
func (c *Cache) AliasMap() map[string]Instrument {
	items := c.c.Items()
	out := make(map[string]Instrument, len(items))
	for _, item := range items {
		inst := item.Object.(Instrument)
		if prev, ok := out[inst.RawSymbol]; ok && prev.Feed == Spot {
			continue
		}
		out[inst.RawSymbol] = inst
	}
	return out
}

func (c *Cache) key(rawSymbol string, feed Feed) string {
	return fmt.Sprintf("%s:%s:%d", c.exchange, rawSymbol, feed)
}
