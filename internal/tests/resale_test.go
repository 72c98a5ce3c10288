package tests

import (
	"fmt"
	"net/http"

	"github.com/javajoker/ifm-backend/internal/models"
	"github.com/javajoker/ifm-backend/internal/services"
	"github.com/javajoker/ifm-backend/internal/testutil"
)

func (suite *APITestSuite) TestResaleRoundTrip() {
	seller := testutil.CreateUser(suite.T(), suite.db, models.RoleSeller)
	holder := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	newcomer := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	idea := testutil.CreateIdea(suite.T(), suite.db, seller.ID, testutil.WithExclusivePrice(400))
	holderToken := suite.tokenFor(holder)
	newcomerToken := suite.tokenFor(newcomer)

	w := suite.request(http.MethodPost, "/deals", holderToken, map[string]interface{}{"idea_id": idea.ID, "is_exclusive": true})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	suite.requireError(suite.request(http.MethodPost, "/resale/list", newcomerToken, map[string]interface{}{"idea_id": idea.ID, "price": 10}), http.StatusForbidden, "")
	suite.requireError(suite.request(http.MethodPost, "/resale/list", holderToken, map[string]interface{}{"idea_id": idea.ID, "price": 0}), http.StatusBadRequest, "price must be positive")

	w = suite.request(http.MethodPost, "/resale/list", holderToken, map[string]interface{}{"idea_id": idea.ID, "price": "650.50"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.JSONEq(`{"ok":true}`, w.Body.String())

	w = suite.request(http.MethodGet, "/resale/market", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var market []services.MarketListing
	suite.decode(w, &market)
	suite.Require().Len(market, 1)
	suite.Equal(idea.ID, market[0].IdeaID)
	suite.Equal(holder.ID, market[0].SellerID)
	suite.requireAmount("650.50", market[0].Price.String())

	w = suite.request(http.MethodPost, "/resale/buy", newcomerToken, map[string]interface{}{"idea_id": idea.ID})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.JSONEq(`{"ok":true}`, w.Body.String())

	var deal models.Deal
	suite.Require().NoError(suite.db.Where("idea_id = ? AND is_exclusive = ?", idea.ID, true).First(&deal).Error)
	suite.Equal(newcomer.ID, deal.BuyerID)
	suite.Equal(models.DealStatusCompleted, deal.Status)
	suite.requireAmount("650.50", deal.Amount.String())

	w = suite.request(http.MethodGet, "/resale/market", "", nil)
	suite.decode(w, &market)
	suite.Empty(market)

	suite.requireError(suite.request(http.MethodPost, "/resale/buy", newcomerToken, map[string]interface{}{"idea_id": idea.ID}), http.StatusNotFound, "exclusive not listed")
}

func (suite *APITestSuite) TestResaleWithdraw() {
	seller := testutil.CreateUser(suite.T(), suite.db, models.RoleSeller)
	holder := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	other := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	idea := testutil.CreateIdea(suite.T(), suite.db, seller.ID, testutil.WithExclusivePrice(300))
	token := suite.tokenFor(holder)
	path := fmt.Sprintf("/resale/list/%d", idea.ID)

	suite.Require().Equal(http.StatusOK, suite.request(http.MethodPost, "/deals", token, map[string]interface{}{"idea_id": idea.ID, "is_exclusive": true}).Code)
	suite.Require().Equal(http.StatusOK, suite.request(http.MethodPost, "/resale/list", token, map[string]interface{}{"idea_id": idea.ID, "price": 350}).Code)

	suite.requireError(suite.request(http.MethodDelete, path, suite.tokenFor(other), nil), http.StatusForbidden, "")
	suite.requireError(suite.request(http.MethodDelete, "/resale/list/abc", token, nil), http.StatusBadRequest, "")

	suite.Equal(http.StatusOK, suite.request(http.MethodDelete, path, token, nil).Code)
	suite.requireError(suite.request(http.MethodDelete, path, token, nil), http.StatusNotFound, "")
}

func (suite *APITestSuite) TestResaleBuyRequiresBuyer() {
	seller := testutil.CreateUser(suite.T(), suite.db, models.RoleSeller)
	suite.requireError(suite.request(http.MethodPost, "/resale/buy", "", map[string]interface{}{"idea_id": 1}), http.StatusUnauthorized, "")
	suite.requireError(suite.request(http.MethodPost, "/resale/buy", suite.tokenFor(seller), map[string]interface{}{"idea_id": 1}), http.StatusForbidden, "")
}
