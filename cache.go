/*
Copyright 2025 eatmoreapple

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pgcursor

// cacheSlot holds one lazily decoded column value. The provider flag
// records which decoding flavor the slot holds; a request for the other
// flavor re-decodes and overwrites.
type cacheSlot struct {
	value    any
	set      bool
	provider bool
}

// columnCache is the per-row decode cache used in cached access mode.
// Sequential mode never allocates one. The slot slice is reused across
// rows to keep row advancement allocation-free.
type columnCache struct {
	slots []cacheSlot
}

func newColumnCache(fieldCount int) *columnCache {
	return &columnCache{slots: make([]cacheSlot, fieldCount)}
}

// reset clears all slots and resizes for the next row's field count.
func (c *columnCache) reset(fieldCount int) {
	if cap(c.slots) < fieldCount {
		c.slots = make([]cacheSlot, fieldCount)
		return
	}
	c.slots = c.slots[:fieldCount]
	for i := range c.slots {
		c.slots[i] = cacheSlot{}
	}
}

// get returns the cached value for the ordinal if a value of the
// requested flavor is present.
func (c *columnCache) get(ordinal int, provider bool) (any, bool) {
	s := c.slots[ordinal]
	if !s.set || s.provider != provider {
		return nil, false
	}
	return s.value, true
}

// put stores a decoded value for the ordinal.
func (c *columnCache) put(ordinal int, value any, provider bool) {
	c.slots[ordinal] = cacheSlot{value: value, set: true, provider: provider}
}
