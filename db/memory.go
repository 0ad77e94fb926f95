package db

import (
	"sync"
	"time"
)

// mapStore backs the resolver when the on-disk cache is disabled. It
// still saves us repeat lookups within a run but nothing survives a
// restart.
type mapStore struct {
	m    *sync.Mutex
	data map[string]ArtworkEntry
}

func NewMemoryStore() Store {
	return newMapStore()
}

func newMapStore() *mapStore {
	return &mapStore{
		m:    new(sync.Mutex),
		data: map[string]ArtworkEntry{},
	}
}

func (ms *mapStore) GetArtwork(albumID string) (ArtworkEntry, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	e, ok := ms.data[ArtworkKey(albumID)]
	if !ok {
		return ArtworkEntry{}, ErrNotFound
	}
	return e, nil
}

func (ms *mapStore) UpsertArtwork(albumID, url string, at time.Time) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	key := ArtworkKey(albumID)
	ms.data[key] = ArtworkEntry{
		Key:       key,
		AlbumID:   albumID,
		URL:       url,
		CreatedAt: at.Unix(),
	}
	return nil
}

func (ms *mapStore) PruneNegative(before time.Time) (int64, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	var pruned int64
	for key, e := range ms.data {
		if e.Negative() && e.CreatedAt < before.Unix() {
			delete(ms.data, key)
			pruned++
		}
	}
	return pruned, nil
}

func (ms *mapStore) Close() error {
	return nil
}
