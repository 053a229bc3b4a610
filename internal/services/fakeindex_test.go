package services

import (
	"context"
	"sync"
)

// fakeIndex records index operations so tests can assert on the calls the
// services make against the search mirror.
type fakeIndex struct {
	mu             sync.Mutex
	createdIndexes []uint64
	deletedIndexes []uint64
	docs           map[uint64]map[uint64]map[string]interface{}
	deletedDocs    map[uint64][]uint64
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		docs:        make(map[uint64]map[uint64]map[string]interface{}),
		deletedDocs: make(map[uint64][]uint64),
	}
}

func (f *fakeIndex) Enabled() bool { return true }

func (f *fakeIndex) CreateIndex(_ context.Context, channelID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdIndexes = append(f.createdIndexes, channelID)
	return nil
}

func (f *fakeIndex) DeleteIndex(_ context.Context, channelID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedIndexes = append(f.deletedIndexes, channelID)
	return nil
}

func (f *fakeIndex) IndexDoc(_ context.Context, channelID, feedbackID uint64, doc map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[channelID] == nil {
		f.docs[channelID] = make(map[uint64]map[string]interface{})
	}
	f.docs[channelID][feedbackID] = doc
	return nil
}

func (f *fakeIndex) DeleteDocs(_ context.Context, channelID uint64, feedbackIDs []uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedDocs[channelID] = append(f.deletedDocs[channelID], feedbackIDs...)
	for _, id := range feedbackIDs {
		delete(f.docs[channelID], id)
	}
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ uint64, _ map[string]interface{}, _, _ int) ([]uint64, int64, error) {
	return nil, 0, nil
}
