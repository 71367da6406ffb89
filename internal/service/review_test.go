package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaumahan/harvest-market-api/internal/dto"
)

func TestReviewService_Submit(t *testing.T) {
	products := newMockProductRepo()
	reviews := newMockReviewRepo()
	svc := NewReviewService(reviews, products, nil)

	p := activeProduct(products, uuid.New(), "30")
	buyerID := uuid.New()

	resp, err := svc.Submit(context.Background(), buyerID, p.ID, dto.SubmitReviewRequest{
		Rating: 4, Comment: "Fresh and cheap",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Rating)
	assert.True(t, resp.IsApproved)
}

func TestReviewService_Submit_ReplacesExisting(t *testing.T) {
	products := newMockProductRepo()
	reviews := newMockReviewRepo()
	svc := NewReviewService(reviews, products, nil)

	p := activeProduct(products, uuid.New(), "30")
	buyerID := uuid.New()

	first, err := svc.Submit(context.Background(), buyerID, p.ID, dto.SubmitReviewRequest{Rating: 2})
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), buyerID, p.ID, dto.SubmitReviewRequest{
		Rating: 5, Comment: "Better this season",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, reviews.reviews, 1)
	assert.Equal(t, 5, reviews.reviews[second.ID].Rating)
}

func TestReviewService_Submit_InvalidRating(t *testing.T) {
	products := newMockProductRepo()
	svc := NewReviewService(newMockReviewRepo(), products, nil)

	p := activeProduct(products, uuid.New(), "30")

	_, err := svc.Submit(context.Background(), uuid.New(), p.ID, dto.SubmitReviewRequest{Rating: 0})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.Submit(context.Background(), uuid.New(), p.ID, dto.SubmitReviewRequest{Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestReviewService_Submit_InactiveProduct(t *testing.T) {
	products := newMockProductRepo()
	svc := NewReviewService(newMockReviewRepo(), products, nil)

	p := activeProduct(products, uuid.New(), "30")
	p.IsActive = false

	_, err := svc.Submit(context.Background(), uuid.New(), p.ID, dto.SubmitReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReviewService_Moderate_HidesFromListing(t *testing.T) {
	products := newMockProductRepo()
	reviews := newMockReviewRepo()
	svc := NewReviewService(reviews, products, nil)

	p := activeProduct(products, uuid.New(), "30")
	submitted, err := svc.Submit(context.Background(), uuid.New(), p.ID, dto.SubmitReviewRequest{Rating: 1})
	require.NoError(t, err)

	moderated, err := svc.Moderate(context.Background(), submitted.ID, false)
	require.NoError(t, err)
	assert.False(t, moderated.IsApproved)

	listed, err := svc.ListApproved(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// The row survives moderation; re-approval restores it.
	restored, err := svc.Moderate(context.Background(), submitted.ID, true)
	require.NoError(t, err)
	assert.True(t, restored.IsApproved)
}

func TestReviewService_Moderate_NotFound(t *testing.T) {
	svc := NewReviewService(newMockReviewRepo(), newMockProductRepo(), nil)

	_, err := svc.Moderate(context.Background(), uuid.New(), false)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestReviewService_ListApproved_UnknownProduct(t *testing.T) {
	svc := NewReviewService(newMockReviewRepo(), newMockProductRepo(), nil)

	_, err := svc.ListApproved(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}
