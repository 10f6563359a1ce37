package system

import (
	"image"
	"sync"
)

// ImagePool recycles *image.RGBA canvases to keep GC pressure down. Every
// tile of one slide shares a single size, so the pool hit rate during
// export is near total.
type ImagePool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &ImagePool{
	pools: make(map[string]*sync.Pool),
}

// GetImage returns an *image.RGBA for rect, reusing a pooled canvas when
// one of the same size is available.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage hands a canvas back for reuse.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
