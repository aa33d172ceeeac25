package storage

import (
	"context"
	"errors"
	"testing"

	"storefront/pkg/kvstore/memory"
)

type entry struct {
	ID  string `json:"id"`
	Qty int    `json:"quantity"`
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingStore) Set(context.Context, string, []byte) error         { return f.err }
func (f failingStore) Delete(context.Context, string) error              { return f.err }

func TestGetAbsentIsEmpty(t *testing.T) {
	a := New(memory.New(), nil)
	got := Get[entry](context.Background(), a, CartList)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSetThenGet(t *testing.T) {
	ctx := context.Background()
	a := New(memory.New(), nil)
	in := []entry{{ID: "a", Qty: 1}, {ID: "b", Qty: 3}}
	if err := Set(ctx, a, CartList, in); err != nil {
		t.Fatalf("set: %v", err)
	}
	got := Get[entry](ctx, a, CartList)
	if len(got) != 2 || got[1] != in[1] {
		t.Fatalf("unexpected list: %#v", got)
	}

	if err := Set(ctx, a, CartList, in[:1]); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := Get[entry](ctx, a, CartList); len(got) != 1 {
		t.Fatalf("set should overwrite, got %#v", got)
	}
}

func TestGetMalformedIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	a := New(s, nil)
	for _, raw := range []string{"{not json", `{"id":"a"}`, "null"} {
		if err := s.Set(ctx, FavouritesList, []byte(raw)); err != nil {
			t.Fatal(err)
		}
		if got := Get[entry](ctx, a, FavouritesList); got == nil || len(got) != 0 {
			t.Fatalf("raw %q: expected empty list, got %#v", raw, got)
		}
	}
}

func TestBackendErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("quota exceeded")
	a := New(failingStore{err: boom}, nil)

	if got := Get[entry](ctx, a, CartList); len(got) != 0 {
		t.Fatalf("expected soft failure on read, got %#v", got)
	}
	if err := Set(ctx, a, CartList, []entry{{ID: "a"}}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}
