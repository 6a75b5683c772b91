package docstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryLoadMissing(t *testing.T) {
	m := NewMemory()
	_, err := m.Load(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryPutOverwrites(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Put(ctx, "a", []byte(`{"v":1}`))
	m.Put(ctx, "a", []byte(`{"v":2}`))

	doc, err := m.Load(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(doc) != `{"v":2}` {
		t.Errorf("doc = %s, want second write", doc)
	}
}

func TestMemoryScanOrderedByKey(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Put(ctx, "b", []byte("2"))
	m.Put(ctx, "a", []byte("1"))
	m.Put(ctx, "c", []byte("3"))

	docs, err := m.Scan(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("len = %d, want 3", len(docs))
	}
	for i, want := range []string{"1", "2", "3"} {
		if string(docs[i]) != want {
			t.Errorf("docs[%d] = %s, want %s", i, docs[i], want)
		}
	}
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.Put(ctx, "a", []byte("1"))

	existed, err := m.Delete(ctx, "a")
	if err != nil || !existed {
		t.Fatalf("Delete = %v, %v; want true, nil", existed, err)
	}
	existed, err = m.Delete(ctx, "a")
	if err != nil || existed {
		t.Fatalf("second Delete = %v, %v; want false, nil", existed, err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.Put(ctx, "a", []byte("abc"))

	doc, _ := m.Load(ctx, "a")
	doc[0] = 'X'

	again, _ := m.Load(ctx, "a")
	if string(again) != "abc" {
		t.Errorf("stored doc mutated through returned slice: %s", again)
	}
}
