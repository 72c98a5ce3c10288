package tests

import (
	"net/http"

	"github.com/javajoker/ifm-backend/internal/models"
	"github.com/javajoker/ifm-backend/internal/services"
	"github.com/javajoker/ifm-backend/internal/testutil"
)

func (suite *APITestSuite) TestExclusiveWithoutOptionIsRejected() {
	seller := testutil.CreateUser(suite.T(), suite.db, models.RoleSeller)
	buyer := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	idea := testutil.CreateIdea(suite.T(), suite.db, seller.ID, testutil.WithPrice(100))

	w := suite.request(http.MethodPost, "/deals", suite.tokenFor(buyer), map[string]interface{}{
		"idea_id":      idea.ID,
		"is_exclusive": true,
	})
	suite.requireError(w, http.StatusBadRequest, "exclusive option not available")
	suite.Zero(testutil.CountDeals(suite.T(), suite.db, "idea_id = ?", idea.ID))
}

func (suite *APITestSuite) TestPurchaseUpgradeThenDowngrade() {
	seller := testutil.CreateUser(suite.T(), suite.db, models.RoleSeller)
	buyer := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	idea := testutil.CreateIdea(suite.T(), suite.db, seller.ID, testutil.WithPrice(100), testutil.WithExclusivePrice(999))
	token := suite.tokenFor(buyer)

	w := suite.request(http.MethodPost, "/deals", token, map[string]interface{}{"idea_id": idea.ID, "is_exclusive": false})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var created services.DealResult
	suite.decode(w, &created)
	suite.Equal(services.DealResult{OK: true, DealID: created.DealID}, created)

	w = suite.request(http.MethodPost, "/deals", token, map[string]interface{}{"idea_id": idea.ID, "is_exclusive": true})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var upgraded services.DealResult
	suite.decode(w, &upgraded)
	suite.Equal(services.DealResult{OK: true, DealID: created.DealID, AlreadyOwned: true, Upgraded: true}, upgraded)

	var deal models.Deal
	suite.Require().NoError(suite.db.First(&deal, created.DealID).Error)
	suite.True(deal.IsExclusive)
	suite.requireAmount("999", deal.Amount.String())

	w = suite.request(http.MethodPost, "/deals", token, map[string]interface{}{"idea_id": idea.ID, "is_exclusive": false})
	suite.requireError(w, http.StatusConflict, "cannot downgrade exclusive")

	w = suite.request(http.MethodPost, "/deals", token, map[string]interface{}{"idea_id": idea.ID, "is_exclusive": true})
	suite.Require().Equal(http.StatusOK, w.Code)
	var again services.DealResult
	suite.decode(w, &again)
	suite.True(again.AlreadyOwned)
	suite.False(again.Upgraded)
	suite.Equal(created.DealID, again.DealID)
}

func (suite *APITestSuite) TestSecondBuyerCannotTakeExclusive() {
	seller := testutil.CreateUser(suite.T(), suite.db, models.RoleSeller)
	first := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	second := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	idea := testutil.CreateIdea(suite.T(), suite.db, seller.ID, testutil.WithExclusivePrice(500))

	w := suite.request(http.MethodPost, "/deals", suite.tokenFor(first), map[string]interface{}{"idea_id": idea.ID, "is_exclusive": true})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodPost, "/deals", suite.tokenFor(second), map[string]interface{}{"idea_id": idea.ID, "is_exclusive": true})
	suite.requireError(w, http.StatusConflict, "exclusive already taken")

	w = suite.request(http.MethodPost, "/deals", suite.tokenFor(second), map[string]interface{}{"idea_id": idea.ID})
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(int64(1), testutil.CountDeals(suite.T(), suite.db, "idea_id = ? AND is_exclusive = ?", idea.ID, true))
}

func (suite *APITestSuite) TestDealAccessErrors() {
	seller := testutil.CreateUser(suite.T(), suite.db, models.RoleSeller)
	buyer := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	idea := testutil.CreateIdea(suite.T(), suite.db, seller.ID)
	draft := testutil.CreateIdea(suite.T(), suite.db, seller.ID, testutil.WithStatus(models.IdeaStatusDraft))

	suite.requireError(suite.request(http.MethodPost, "/deals", "", map[string]interface{}{"idea_id": idea.ID}), http.StatusUnauthorized, "")
	suite.requireError(suite.request(http.MethodPost, "/deals", "not-a-jwt", map[string]interface{}{"idea_id": idea.ID}), http.StatusUnauthorized, "")
	suite.requireError(suite.request(http.MethodPost, "/deals", suite.tokenFor(seller), map[string]interface{}{"idea_id": idea.ID}), http.StatusForbidden, "")
	suite.requireError(suite.request(http.MethodPost, "/deals", suite.tokenFor(buyer), map[string]interface{}{"idea_id": 424242}), http.StatusNotFound, "idea not found")
	suite.requireError(suite.request(http.MethodPost, "/deals", suite.tokenFor(buyer), map[string]interface{}{"idea_id": draft.ID}), http.StatusBadRequest, "idea not purchasable")
	suite.requireError(suite.request(http.MethodPost, "/deals", suite.tokenFor(buyer), "nonsense"), http.StatusBadRequest, "")

	w := suite.request(http.MethodPost, "/deals", suite.tokenFor(buyer), map[string]interface{}{})
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	var body struct {
		Code   string `json:"code"`
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	suite.decode(w, &body)
	suite.Equal("VALIDATION_ERROR", body.Code)
	suite.Require().Len(body.Errors, 1)
	suite.Equal("idea_id", body.Errors[0].Field)
}

func (suite *APITestSuite) TestMyDeals() {
	seller := testutil.CreateUser(suite.T(), suite.db, models.RoleSeller)
	buyer := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	idea := testutil.CreateIdea(suite.T(), suite.db, seller.ID, testutil.WithPrice(120))
	token := suite.tokenFor(buyer)

	suite.Require().Equal(http.StatusOK, suite.request(http.MethodPost, "/deals", token, map[string]interface{}{"idea_id": idea.ID}).Code)

	w := suite.request(http.MethodGet, "/me/deals", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var deals []services.OwnedDeal
	suite.decode(w, &deals)
	suite.Require().Len(deals, 1)
	suite.Equal(idea.ID, deals[0].IdeaID)
	suite.requireAmount("120", deals[0].Price.String())

	suite.requireError(suite.request(http.MethodGet, "/me/deals", suite.tokenFor(seller), nil), http.StatusForbidden, "")
}
