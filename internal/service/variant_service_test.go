package service

import (
	"context"
	"fmt"
	"testing"

	"go-jewelry-pos/internal/apperr"
	"go-jewelry-pos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateVariant_FlipsParentFlag(t *testing.T) {
	store := newMemStore()
	store.addProduct(model.Product{ID: 1, Code: "R1", Name: "Ring"})
	svc := newVariantServiceForTest(store)

	v := &model.Variant{ProductID: 1, Name: "Gold", Active: true}
	require.NoError(t, svc.CreateVariant(context.Background(), v))
	assert.NotZero(t, v.ID)
	assert.True(t, store.products[1].IsVariantParent)
}

func TestCreateVariant_MissingParent(t *testing.T) {
	svc := newVariantServiceForTest(newMemStore())

	err := svc.CreateVariant(context.Background(), &model.Variant{ProductID: 9, Name: "Gold"})
	assert.True(t, apperr.IsNotFound(err))
}

func TestCreateVariant_MissingName(t *testing.T) {
	store := newMemStore()
	store.addProduct(model.Product{ID: 1, Code: "R1", Name: "Ring"})
	svc := newVariantServiceForTest(store)

	err := svc.CreateVariant(context.Background(), &model.Variant{ProductID: 1})
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateVariant_LimitExceeded(t *testing.T) {
	store := newMemStore()
	store.addProduct(model.Product{ID: 1, Code: "R1", Name: "Ring"})
	for i := 0; i < model.MaxVariantsPerParent; i++ {
		store.addVariant(model.Variant{ProductID: 1, Name: fmt.Sprintf("Variant %d", i), Active: true})
	}
	svc := newVariantServiceForTest(store)

	err := svc.CreateVariant(context.Background(), &model.Variant{ProductID: 1, Name: "One Too Many"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateVariant(t *testing.T) {
	store := newMemStore()
	store.addProduct(model.Product{ID: 1, Code: "R1", Name: "Ring"})
	v := store.addVariant(model.Variant{ProductID: 1, Name: "Gold", Active: true})
	svc := newVariantServiceForTest(store)

	updated, err := svc.UpdateVariant(context.Background(), v.ID, &model.Variant{Name: "Gold 18k", Active: false})
	require.NoError(t, err)
	assert.Equal(t, "Gold 18k", updated.Name)
	assert.False(t, updated.Active)
	assert.Equal(t, uint(1), updated.ProductID, "the parent binding never changes on update")

	_, err = svc.UpdateVariant(context.Background(), v.ID, &model.Variant{})
	assert.True(t, apperr.IsValidation(err))
}

func TestRemoveVariant_ClearsFlagOnLast(t *testing.T) {
	store := newMemStore()
	store.addProduct(model.Product{ID: 1, Code: "R1", Name: "Ring"})
	first := store.addVariant(model.Variant{ProductID: 1, Name: "Gold", Active: true})
	second := store.addVariant(model.Variant{ProductID: 1, Name: "Silver", Active: true})
	svc := newVariantServiceForTest(store)

	require.NoError(t, svc.RemoveVariant(context.Background(), first.ID))
	assert.True(t, store.products[1].IsVariantParent)

	require.NoError(t, svc.RemoveVariant(context.Background(), second.ID))
	assert.False(t, store.products[1].IsVariantParent)
}

func TestRemoveVariant_NotFound(t *testing.T) {
	svc := newVariantServiceForTest(newMemStore())
	err := svc.RemoveVariant(context.Background(), 5)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListVariants(t *testing.T) {
	store := newMemStore()
	store.addProduct(model.Product{ID: 1, Code: "R1", Name: "Ring"})
	store.addVariant(model.Variant{ProductID: 1, Name: "Silver", Position: 1, Active: true})
	store.addVariant(model.Variant{ProductID: 1, Name: "Gold", Position: 0, Active: true})
	store.addVariant(model.Variant{ProductID: 1, Name: "Retired", Position: 2, Active: false})
	svc := newVariantServiceForTest(store)

	all, err := svc.ListVariants(context.Background(), 1, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Gold", all[0].Name, "position order")

	active, err := svc.ListVariants(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	_, err = svc.ListVariants(context.Background(), 42, false)
	assert.True(t, apperr.IsNotFound(err))
}
