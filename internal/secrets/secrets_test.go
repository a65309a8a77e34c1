package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"

	"github.com/orendrasingh/video-transcription/internal/domain"
)

// fakeKeyRecords is an in-memory KeyRecords for tests.
type fakeKeyRecords struct {
	rows map[string]*domain.APIKey
}

func newFakeKeyRecords() *fakeKeyRecords {
	return &fakeKeyRecords{rows: make(map[string]*domain.APIKey)}
}

func recordKey(ownerID string, p domain.Provider) string {
	return ownerID + "/" + string(p)
}

func (f *fakeKeyRecords) Upsert(_ context.Context, key *domain.APIKey) error {
	cp := *key
	f.rows[recordKey(key.OwnerID, key.Provider)] = &cp
	return nil
}

func (f *fakeKeyRecords) Get(_ context.Context, ownerID string, p domain.Provider) (*domain.APIKey, error) {
	rec, ok := f.rows[recordKey(ownerID, p)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeKeyRecords) Delete(_ context.Context, ownerID string, p domain.Provider) error {
	k := recordKey(ownerID, p)
	if _, ok := f.rows[k]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.rows, k)
	return nil
}

func (f *fakeKeyRecords) ListByOwner(_ context.Context, ownerID string) ([]domain.APIKey, error) {
	var out []domain.APIKey
	for _, rec := range f.rows {
		if rec.OwnerID == ownerID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func TestPutGetRoundTrip(t *testing.T) {
	store, err := New("unit-test-master-key", newFakeKeyRecords())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	const plaintext = "sk-abc123def456"
	if err := store.Put(ctx, "owner-1", domain.ProviderOpenAI, plaintext); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "owner-1", domain.ProviderOpenAI)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != plaintext {
		t.Errorf("Get = %q, want %q", got, plaintext)
	}
}

func TestPutGetRoundTripArbitraryKeys(t *testing.T) {
	store, err := New("unit-test-master-key", newFakeKeyRecords())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	gofakeit.Seed(11)

	for i := 0; i < 20; i++ {
		owner := gofakeit.UUID()
		key := gofakeit.LetterN(uint(8 + i*4))
		if err := store.Put(ctx, owner, domain.ProviderGemini, key); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := store.Get(ctx, owner, domain.ProviderGemini)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != key {
			t.Fatalf("round trip mismatch for %q", owner)
		}
	}
}

func TestCiphertextNotPlaintext(t *testing.T) {
	records := newFakeKeyRecords()
	store, _ := New("unit-test-master-key", records)
	ctx := context.Background()

	const plaintext = "AIzaSyExample0000"
	if err := store.Put(ctx, "owner-1", domain.ProviderGemini, plaintext); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec := records.rows[recordKey("owner-1", domain.ProviderGemini)]
	if rec == nil {
		t.Fatal("record not written")
	}
	if rec.KeyCiphertext == plaintext {
		t.Error("key stored in plaintext")
	}
}

func TestGetMissingIsMissingCredential(t *testing.T) {
	store, _ := New("unit-test-master-key", newFakeKeyRecords())
	_, err := store.Get(context.Background(), "owner-1", domain.ProviderGemini)
	if !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
}

func TestWrongMasterKeyFailsOpen(t *testing.T) {
	records := newFakeKeyRecords()
	ctx := context.Background()

	store1, _ := New("master-key-one", records)
	if err := store1.Put(ctx, "owner-1", domain.ProviderOpenAI, "sk-secret"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	store2, _ := New("master-key-two", records)
	if _, err := store2.Get(ctx, "owner-1", domain.ProviderOpenAI); err == nil {
		t.Fatal("expected decryption failure under a different master key")
	}
}

func TestOwnerBindsCiphertext(t *testing.T) {
	// The owner ID is authenticated data: a record reattributed to another
	// owner must not decrypt.
	records := newFakeKeyRecords()
	store, _ := New("unit-test-master-key", records)
	ctx := context.Background()

	if err := store.Put(ctx, "owner-1", domain.ProviderOpenAI, "sk-secret"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rec := records.rows[recordKey("owner-1", domain.ProviderOpenAI)]
	stolen := *rec
	stolen.OwnerID = "owner-2"
	records.rows[recordKey("owner-2", domain.ProviderOpenAI)] = &stolen

	if _, err := store.Get(ctx, "owner-2", domain.ProviderOpenAI); err == nil {
		t.Fatal("expected decryption failure for reattributed record")
	}
}

func TestListReturnsPreviewsOnly(t *testing.T) {
	store, _ := New("unit-test-master-key", newFakeKeyRecords())
	ctx := context.Background()

	const plaintext = "sk-verylongsecretapikey000"
	if err := store.Put(ctx, "owner-1", domain.ProviderOpenAI, plaintext); err != nil {
		t.Fatalf("Put: %v", err)
	}

	previews, err := store.List(ctx, "owner-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(previews) != 1 {
		t.Fatalf("got %d previews, want 1", len(previews))
	}
	p := previews[0]
	if p.Provider != domain.ProviderOpenAI {
		t.Errorf("Provider = %s", p.Provider)
	}
	if len(p.Preview) >= len(plaintext) {
		t.Errorf("preview %q is not redacted", p.Preview)
	}

	if err := store.Delete(ctx, "owner-1", domain.ProviderOpenAI); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	previews, _ = store.List(ctx, "owner-1")
	if len(previews) != 0 {
		t.Errorf("previews after delete = %d, want 0", len(previews))
	}
}
