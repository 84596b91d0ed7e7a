package services

import (
	"context"
	"testing"

	"github.com/kalamitra/kalamitra-api/models"
	"github.com/kalamitra/kalamitra-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productIDs(products []models.Product) []uint {
	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestAddToWishlist_Idempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewWishlistService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Asha")
	artisan := testutil.CreateArtisan(t, db, "Meera")
	product := testutil.CreateProduct(t, db, artisan.ID, "Blue vase", 40)
	p := testutil.UserPrincipal(user)

	added, err := svc.AddToWishlist(ctx, p, product.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.AddToWishlist(ctx, p, product.ID)
	require.NoError(t, err)
	assert.False(t, added, "second add should report the product as already present")

	var count int64
	db.Model(&models.Wishlist{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	view, err := svc.ListWishlist(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []uint{product.ID}, productIDs(view.Products))
}

func TestAddToWishlist_Rejections(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewWishlistService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Asha")
	artisan := testutil.CreateArtisan(t, db, "Meera")
	product := testutil.CreateProduct(t, db, artisan.ID, "Blue vase", 40)

	_, err := svc.AddToWishlist(ctx, testutil.UserPrincipal(user), 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddToWishlist(ctx, testutil.ArtisanPrincipal(artisan), product.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ListWishlist(ctx, testutil.ArtisanPrincipal(artisan))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRemoveFromWishlist(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewWishlistService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Asha")
	artisan := testutil.CreateArtisan(t, db, "Meera")
	vase := testutil.CreateProduct(t, db, artisan.ID, "Blue vase", 40)
	bowl := testutil.CreateProduct(t, db, artisan.ID, "Clay bowl", 15)
	p := testutil.UserPrincipal(user)

	for _, id := range []uint{vase.ID, bowl.ID} {
		_, err := svc.AddToWishlist(ctx, p, id)
		require.NoError(t, err)
	}

	view, err := svc.RemoveFromWishlist(ctx, p, vase.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bowl.ID}, productIDs(view.Products))

	// Removing an absent entry is a no-op
	view, err = svc.RemoveFromWishlist(ctx, p, vase.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{bowl.ID}, productIDs(view.Products))

	view, err = svc.RemoveFromWishlist(ctx, p, 9999)
	require.NoError(t, err)
	assert.Len(t, view.Products, 1)
}

func TestListWishlist_IsolatedPerUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewWishlistService(db)
	ctx := context.Background()
	asha := testutil.CreateUser(t, db, "Asha")
	ravi := testutil.CreateUser(t, db, "Ravi")
	artisan := testutil.CreateArtisan(t, db, "Meera")
	product := testutil.CreateProduct(t, db, artisan.ID, "Blue vase", 40)

	_, err := svc.AddToWishlist(ctx, testutil.UserPrincipal(asha), product.ID)
	require.NoError(t, err)

	view, err := svc.ListWishlist(ctx, testutil.UserPrincipal(ravi))
	require.NoError(t, err)
	assert.NotNil(t, view.Products)
	assert.Empty(t, view.Products)
	assert.Empty(t, view.StaleProductIDs)
}

func TestListWishlist_SkipsStaleProducts(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewWishlistService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Asha")
	artisan := testutil.CreateArtisan(t, db, "Meera")
	vase := testutil.CreateProduct(t, db, artisan.ID, "Blue vase", 40)
	bowl := testutil.CreateProduct(t, db, artisan.ID, "Clay bowl", 15)
	p := testutil.UserPrincipal(user)

	for _, id := range []uint{vase.ID, bowl.ID} {
		_, err := svc.AddToWishlist(ctx, p, id)
		require.NoError(t, err)
	}

	// Remove the product row behind the service's back
	require.NoError(t, db.Exec("DELETE FROM products WHERE id = ?", vase.ID).Error)

	view, err := svc.ListWishlist(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []uint{bowl.ID}, productIDs(view.Products))
	assert.Equal(t, []uint{vase.ID}, view.StaleProductIDs)
}
