package valuestore

import (
	"context"
	"testing"
)

// exerciseStore runs the same contract checks against any Store.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) ok=%v err=%v, want false,nil", ok, err)
	}

	if err := s.Set(ctx, "temp_ret", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Set() err=%v", err)
	}
	got, ok, err := s.Get(ctx, "temp_ret")
	if err != nil || !ok {
		t.Fatalf("Get(temp_ret) ok=%v err=%v", ok, err)
	}
	if string(got) != `{"v":1}` {
		t.Fatalf("Get(temp_ret) = %s", got)
	}

	// overwrite
	if err := s.Set(ctx, "temp_ret", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("Set() err=%v", err)
	}
	got, _, _ = s.Get(ctx, "temp_ret")
	if string(got) != `{"v":2}` {
		t.Fatalf("after overwrite Get(temp_ret) = %s", got)
	}
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemory_CopiesData(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	_ = m.Set(context.Background(), "k", buf)
	buf[0] = 'x'

	got, _, _ := m.Get(context.Background(), "k")
	if string(got) != "abc" {
		t.Fatalf("stored value mutated: %s", got)
	}
}

func TestSQLite(t *testing.T) {
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite() err=%v", err)
	}
	t.Cleanup(func() { s.Close() })

	exerciseStore(t, s)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := t.TempDir() + "/values.db"
	ctx := context.Background()

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite() err=%v", err)
	}
	if err := s.Set(ctx, "temp_sup", []byte("42")); err != nil {
		t.Fatalf("Set() err=%v", err)
	}
	s.Close()

	s, err = NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen err=%v", err)
	}
	defer s.Close()

	got, ok, err := s.Get(ctx, "temp_sup")
	if err != nil || !ok || string(got) != "42" {
		t.Fatalf("Get after reopen = %q,%v,%v", got, ok, err)
	}
}

func TestPrefixed(t *testing.T) {
	inner := NewMemory()
	a := Prefixed(inner, "boss-a")
	b := Prefixed(inner, "boss-b")
	ctx := context.Background()

	_ = a.Set(ctx, "temp_ret", []byte("1"))
	if _, ok, _ := b.Get(ctx, "temp_ret"); ok {
		t.Fatalf("prefixes must not share keys")
	}
	if _, ok, _ := inner.Get(ctx, "boss-a/temp_ret"); !ok {
		t.Fatalf("expected key boss-a/temp_ret in backing store")
	}
	if Prefixed(inner, "") != Store(inner) {
		t.Fatalf("empty prefix should return the store unchanged")
	}
}
