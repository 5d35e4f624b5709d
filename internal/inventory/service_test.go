package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	nextID int
	items  map[int]Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, items: map[int]Item{}}
}

func (r *fakeRepo) List(_ context.Context, search string, _ SortOrder) ([]Item, error) {
	var out []Item
	for _, it := range r.items {
		if search == "" || strings.Contains(strings.ToLower(it.MedicineName), strings.ToLower(search)) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int) (*Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &it, nil
}

func (r *fakeRepo) FindByName(_ context.Context, name string) (*Item, error) {
	for _, it := range r.items {
		if strings.EqualFold(it.MedicineName, name) {
			return &it, nil
		}
	}
	return nil, ErrItemNotFound
}

func (r *fakeRepo) Insert(_ context.Context, name string, qty int, expiration *string) (*Item, error) {
	it := Item{ID: r.nextID, MedicineName: name, Quantity: qty, ExpirationDate: expiration}
	r.nextID++
	r.items[it.ID] = it
	return &it, nil
}

func (r *fakeRepo) SetQuantity(_ context.Context, id, qty int, expiration *string) (*Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	it.Quantity = qty
	if expiration != nil {
		it.ExpirationDate = expiration
	}
	r.items[id] = it
	return &it, nil
}

func (r *fakeRepo) AddQuantity(_ context.Context, id, delta int, expiration *string) (*Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	it.Quantity += delta
	if expiration != nil {
		it.ExpirationDate = expiration
	}
	r.items[id] = it
	return &it, nil
}

func (r *fakeRepo) Update(_ context.Context, id int, in UpdateInput) (*Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	if in.MedicineName != nil {
		it.MedicineName = *in.MedicineName
	}
	if in.Quantity != nil {
		it.Quantity = *in.Quantity
	}
	if in.ExpirationDate != nil {
		it.ExpirationDate = in.ExpirationDate
	}
	r.items[id] = it
	return &it, nil
}

func (r *fakeRepo) Delete(_ context.Context, id int) (int64, error) {
	if _, ok := r.items[id]; !ok {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}

func (r *fakeRepo) FindExpiredLots(_ context.Context, before string) ([]Item, error) {
	var out []Item
	for _, it := range r.items {
		if it.ExpirationDate != nil && *it.ExpirationDate < before && it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeRepo) InsertMovement(_ context.Context, _ Movement) error { return nil }

func TestUpsertCreatesThenAdds(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	item, err := svc.Upsert(ctx, UpsertInput{MedicineName: "Paracetamol 500mg", Quantity: 100})
	require.NoError(t, err)
	assert.Equal(t, 100, item.Quantity)

	// Same name, default mode: quantities add. Case does not matter.
	item, err = svc.Upsert(ctx, UpsertInput{MedicineName: "paracetamol 500MG", Quantity: 50})
	require.NoError(t, err)
	assert.Equal(t, 150, item.Quantity)
	assert.Equal(t, "Paracetamol 500mg", item.MedicineName)
}

func TestUpsertSetMode(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertInput{MedicineName: "Cetirizine 10mg", Quantity: 80})
	require.NoError(t, err)

	exp := "2026-12-31"
	item, err := svc.Upsert(ctx, UpsertInput{
		MedicineName: "Cetirizine 10mg", Quantity: 30, ExpirationDate: exp, Mode: ModeSet,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, item.Quantity)
	require.NotNil(t, item.ExpirationDate)
	assert.Equal(t, exp, *item.ExpirationDate)
}

func TestUpsertRequiresName(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Upsert(context.Background(), UpsertInput{MedicineName: "   ", Quantity: 10})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestUpdateRejectsBlankRename(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	item, err := svc.Upsert(ctx, UpsertInput{MedicineName: "Losartan 50mg", Quantity: 40})
	require.NoError(t, err)

	blank := "  "
	_, err = svc.Update(ctx, item.ID, UpdateInput{MedicineName: &blank})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestDeleteMissingItem(t *testing.T) {
	svc := NewService(newFakeRepo())
	assert.ErrorIs(t, svc.Delete(context.Background(), 123), ErrItemNotFound)
}

func TestExpiredLots(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	old := "2025-01-01"
	fresh := "2027-01-01"
	_, err := svc.Upsert(ctx, UpsertInput{MedicineName: "Old Lot", Quantity: 5, ExpirationDate: old})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, UpsertInput{MedicineName: "Fresh Lot", Quantity: 5, ExpirationDate: fresh})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, UpsertInput{MedicineName: "Drained Lot", Quantity: 0, ExpirationDate: old})
	require.NoError(t, err)

	lots, err := svc.ExpiredLots(ctx, "2025-06-10")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "Old Lot", lots[0].MedicineName)
}
