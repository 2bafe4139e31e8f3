package catalog

import (
	"context"

	"github.com/lucasveenman/trace/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	data  map[string][]byte
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte) error
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string][]byte{}}
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	m.data[key] = value
	return nil
}

const sampleYAML = `
entities:
  - id: ent-apple
    name: Apple
    type: company
    verified: true
    subtitle: apple.com
    meta:
      hq: Cupertino, CA
      founded: 1976
  - id: ent-iso
    name: ISO
    type: organisation
records:
  - id: prd-iphone15
    title: iPhone 15 Pro
    subtitle: Smartphone
    scope: product
    entity: ent-apple
    updated_at: 2025-01-10
    stars: 42
    images: [/img/iphone.png]
    specs:
      - label: Chip
        value: A17 Pro
  - id: std-iso14001
    title: ISO 14001
    scope: standard
    entity: ent-iso
    code: "14001"
    updated_at: 2024-11-02T09:30:00Z
  - id: prd-a17
    title: A17 Pro
    scope: product
    role: component
`
