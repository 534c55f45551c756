package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/copa-listings/internal/blob"
	"github.com/a3tai/copa-listings/internal/extract"
	"github.com/a3tai/copa-listings/internal/geo"
	"github.com/a3tai/copa-listings/internal/listing"
	"github.com/a3tai/copa-listings/internal/store"
)

type storedListing struct {
	id     uuid.UUID
	record listing.Record
}

type fakeStore struct {
	mu              sync.Mutex
	emails          []store.Email
	attachments     map[uuid.UUID][]store.Attachment
	attachmentsErr  map[uuid.UUID]error
	listings        []storedListing
	processed       map[uuid.UUID]*uuid.UUID
	saved           map[uuid.UUID]string
	oldPaths        []string
	oldEmailsPurged bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		attachments:    map[uuid.UUID][]store.Attachment{},
		attachmentsErr: map[uuid.UUID]error{},
		processed:      map[uuid.UUID]*uuid.UUID{},
		saved:          map[uuid.UUID]string{},
	}
}

func (f *fakeStore) UnprocessedEmails(_ context.Context, limit int) ([]store.Email, error) {
	var out []store.Email
	for _, e := range f.emails {
		if !e.Processed && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) EmailByID(_ context.Context, id uuid.UUID) (store.Email, error) {
	for _, e := range f.emails {
		if e.ID == id {
			return e, nil
		}
	}
	return store.Email{}, store.ErrNotFound
}

func (f *fakeStore) Attachments(_ context.Context, emailID uuid.UUID) ([]store.Attachment, error) {
	if err := f.attachmentsErr[emailID]; err != nil {
		return nil, err
	}
	return f.attachments[emailID], nil
}

func (f *fakeStore) SaveExtractedText(_ context.Context, attachmentID uuid.UUID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[attachmentID] = text
	return nil
}

func (f *fakeStore) FindListingByKey(_ context.Context, key string) (uuid.UUID, bool, error) {
	for _, l := range f.listings {
		if key != "" && listing.DedupKey(l.record.FullAddress) == key {
			return l.id, true, nil
		}
	}
	return uuid.Nil, false, nil
}

func (f *fakeStore) InsertListing(_ context.Context, rec listing.Record) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.listings = append(f.listings, storedListing{id: id, record: rec})
	return id, nil
}

func (f *fakeStore) MarkProcessed(_ context.Context, emailID uuid.UUID, listingID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed[emailID] = listingID
	return nil
}

func (f *fakeStore) OldEmailAttachments(_ context.Context, _ time.Time) ([]string, error) {
	return f.oldPaths, nil
}

func (f *fakeStore) DeleteOldEmails(_ context.Context) error {
	f.oldEmailsPurged = true
	return nil
}

type fakeBlobs struct {
	files      map[string][]byte
	failDelete map[string]bool
	deleted    []string
}

func (b *fakeBlobs) Download(_ context.Context, path string) (io.ReadCloser, error) {
	data, ok := b.files[path]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *fakeBlobs) Delete(_ context.Context, path string) error {
	if b.failDelete[path] {
		return errors.New("permission denied")
	}
	b.deleted = append(b.deleted, path)
	return nil
}

type fakeLocator struct {
	point *geo.Point
	calls []extract.AddressRecord
}

func (l *fakeLocator) Resolve(_ context.Context, addr extract.AddressRecord) *geo.Point {
	l.calls = append(l.calls, addr)
	return l.point
}

type fakeFallback struct {
	draft listing.Draft
	err   error
	calls int
}

func (f *fakeFallback) Parse(_ context.Context, _, _ string, _ []string) (listing.Draft, error) {
	f.calls++
	return f.draft, f.err
}

type fakeLoader struct {
	set *geo.NeighborhoodSet
	err error
}

func (l fakeLoader) Load(context.Context) (*geo.NeighborhoodSet, error) {
	return l.set, l.err
}
