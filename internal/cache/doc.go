// Package cache holds engine-wide shared resources such as decoded images
// and parsed fonts.
//
// Entries are reference counted. A resource stays alive while any holder
// has it acquired; once the last holder releases it, it moves to an idle
// list and is evicted least recently released first when the idle list
// grows past the cache's soft limit.
//
//	c := cache.New[string, *Image](16)
//	img, err := c.Acquire(path, func() (*Image, error) { return decode(path) })
//	...
//	c.Release(path)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
