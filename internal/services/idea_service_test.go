package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/ifm-backend/internal/apperrors"
	"github.com/javajoker/ifm-backend/internal/models"
	"github.com/javajoker/ifm-backend/internal/testutil"
)

func TestCreateIdea(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewIdeaService(db)
	seller := testutil.CreateUser(t, db, models.RoleSeller)
	buyer := testutil.CreateUser(t, db, models.RoleBuyer)
	ctx := context.Background()

	noResale := false
	idea, err := svc.CreateIdea(ctx, buyerIdentity(seller), &CreateIdeaRequest{
		Title:                "Solar kiosk",
		Summary:              "Kiosk that runs on sunlight",
		Body:                 "Long form",
		Price:                decimal.NewFromInt(120),
		ExclusiveOptionPrice: decimal.NewNullDecimal(decimal.NewFromInt(900)),
		ResaleAllowed:        &noResale,
	})
	require.NoError(t, err)
	assert.Equal(t, models.IdeaStatusDraft, idea.Status)
	assert.Equal(t, seller.ID, idea.SellerID)

	var stored models.Idea
	require.NoError(t, db.First(&stored, idea.ID).Error)
	assert.False(t, stored.ResaleAllowed)
	assert.True(t, stored.HasExclusiveOption())
	assert.True(t, stored.ExclusiveOptionPrice.Decimal.Equal(decimal.NewFromInt(900)))

	_, err = svc.CreateIdea(ctx, buyerIdentity(buyer), &CreateIdeaRequest{Title: "x", Summary: "x", Body: "x", Price: decimal.NewFromInt(1)})
	requireCode(t, err, apperrors.CodeForbidden, MsgSellerOnly)
}

func TestCreateIdeaValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewIdeaService(db)
	seller := testutil.CreateUser(t, db, models.RoleSeller)
	ctx := context.Background()

	cases := map[string]*CreateIdeaRequest{
		"zero price":          {Title: "t", Summary: "s", Body: "b"},
		"negative exclusive":  {Title: "t", Summary: "s", Body: "b", Price: decimal.NewFromInt(1), ExclusiveOptionPrice: decimal.NewNullDecimal(decimal.NewFromInt(-1))},
		"missing title":       {Summary: "s", Body: "b", Price: decimal.NewFromInt(1)},
		"cannot start active": {Title: "t", Summary: "s", Body: "b", Price: decimal.NewFromInt(1), Status: models.IdeaStatusActive},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateIdea(ctx, buyerIdentity(seller), req)
			requireCode(t, err, apperrors.CodeValidation, "")
		})
	}
}

func TestUpdateIdeaStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewIdeaService(db)
	seller := testutil.CreateUser(t, db, models.RoleSeller)
	otherSeller := testutil.CreateUser(t, db, models.RoleSeller)
	idea := testutil.CreateIdea(t, db, seller.ID, testutil.WithStatus(models.IdeaStatusDraft))
	ctx := context.Background()

	_, err := svc.UpdateIdeaStatus(ctx, buyerIdentity(otherSeller), idea.ID, &UpdateIdeaStatusRequest{Status: models.IdeaStatusActive})
	requireCode(t, err, apperrors.CodeForbidden, MsgNotIdeaOwner)

	updated, err := svc.UpdateIdeaStatus(ctx, buyerIdentity(seller), idea.ID, &UpdateIdeaStatusRequest{Status: models.IdeaStatusActive})
	require.NoError(t, err)
	assert.Equal(t, models.IdeaStatusActive, updated.Status)

	_, err = svc.UpdateIdeaStatus(ctx, buyerIdentity(seller), idea.ID, &UpdateIdeaStatusRequest{Status: models.IdeaStatusDraft})
	requireCode(t, err, apperrors.CodeInvalidState, "")

	_, err = svc.UpdateIdeaStatus(ctx, buyerIdentity(seller), idea.ID, &UpdateIdeaStatusRequest{Status: models.IdeaStatusArchived})
	require.NoError(t, err)

	_, err = svc.UpdateIdeaStatus(ctx, buyerIdentity(seller), idea.ID, &UpdateIdeaStatusRequest{Status: models.IdeaStatusSubmitted})
	requireCode(t, err, apperrors.CodeInvalidState, "")

	_, err = svc.UpdateIdeaStatus(ctx, buyerIdentity(seller), 9999, &UpdateIdeaStatusRequest{Status: models.IdeaStatusSubmitted})
	requireCode(t, err, apperrors.CodeNotFound, MsgIdeaNotFound)
}

func TestUpdatePricingKeepsDealAmounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	ideas := NewIdeaService(db)
	deals := NewDealService(db, nil)
	seller := testutil.CreateUser(t, db, models.RoleSeller)
	buyer := testutil.CreateUser(t, db, models.RoleBuyer)
	idea := testutil.CreateIdea(t, db, seller.ID, testutil.WithPrice(100), testutil.WithExclusivePrice(400))
	ctx := context.Background()

	res, err := deals.CreateOrUpdateDeal(ctx, buyerIdentity(buyer), &CreateDealRequest{IdeaID: idea.ID})
	require.NoError(t, err)

	// Dropping the exclusive option closes the upgrade path.
	updated, err := ideas.UpdateIdeaPricing(ctx, buyerIdentity(seller), idea.ID, &UpdateIdeaPricingRequest{Price: decimal.NewFromInt(300)})
	require.NoError(t, err)
	assert.False(t, updated.HasExclusiveOption())

	var deal models.Deal
	require.NoError(t, db.First(&deal, res.DealID).Error)
	assert.True(t, deal.Amount.Equal(decimal.NewFromInt(100)))

	_, err = deals.CreateOrUpdateDeal(ctx, buyerIdentity(buyer), &CreateDealRequest{IdeaID: idea.ID, IsExclusive: true})
	requireCode(t, err, apperrors.CodeInvalidState, MsgExclusiveNotAvailable)
}

func TestIdeaPricesRoundedToCents(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewIdeaService(db)
	seller := testutil.CreateUser(t, db, models.RoleSeller)
	ctx := context.Background()
	base := func(price string) *CreateIdeaRequest {
		return &CreateIdeaRequest{Title: "t", Summary: "s", Body: "b", Price: decimal.RequireFromString(price)}
	}

	_, err := svc.CreateIdea(ctx, buyerIdentity(seller), base("0.001"))
	requireCode(t, err, apperrors.CodeInvalidState, MsgInvalidPrice)

	_, err = svc.CreateIdea(ctx, buyerIdentity(seller), base("12345678901"))
	requireCode(t, err, apperrors.CodeInvalidState, MsgPriceTooLarge)

	req := base("19.995")
	req.ExclusiveOptionPrice = decimal.NewNullDecimal(decimal.RequireFromString("0.0001"))
	_, err = svc.CreateIdea(ctx, buyerIdentity(seller), req)
	requireCode(t, err, apperrors.CodeInvalidState, MsgInvalidPrice)

	req.ExclusiveOptionPrice = decimal.NewNullDecimal(decimal.RequireFromString("250.499"))
	idea, err := svc.CreateIdea(ctx, buyerIdentity(seller), req)
	require.NoError(t, err)

	var stored models.Idea
	require.NoError(t, db.First(&stored, idea.ID).Error)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("20")), stored.Price.String())
	assert.True(t, stored.ExclusiveOptionPrice.Decimal.Equal(decimal.RequireFromString("250.5")), stored.ExclusiveOptionPrice.Decimal.String())

	_, err = svc.UpdateIdeaPricing(ctx, buyerIdentity(seller), idea.ID, &UpdateIdeaPricingRequest{
		Price:                decimal.NewFromInt(30),
		ExclusiveOptionPrice: decimal.NewNullDecimal(decimal.RequireFromString("99999999999")),
	})
	requireCode(t, err, apperrors.CodeInvalidState, MsgPriceTooLarge)

	require.NoError(t, db.First(&stored, idea.ID).Error)
	assert.True(t, stored.Price.Equal(decimal.RequireFromString("20")))
}

func TestListSellerIdeas(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewIdeaService(db)
	seller := testutil.CreateUser(t, db, models.RoleSeller)
	other := testutil.CreateUser(t, db, models.RoleSeller)
	testutil.CreateIdea(t, db, seller.ID)
	testutil.CreateIdea(t, db, seller.ID, testutil.WithStatus(models.IdeaStatusDraft))
	testutil.CreateIdea(t, db, other.ID)

	ideas, err := svc.ListSellerIdeas(context.Background(), buyerIdentity(seller))
	require.NoError(t, err)
	assert.Len(t, ideas, 2)
	for _, idea := range ideas {
		assert.Equal(t, seller.ID, idea.SellerID)
	}
}
