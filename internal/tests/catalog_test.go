package tests

import (
	"fmt"
	"net/http"

	"github.com/javajoker/ifm-backend/internal/models"
	"github.com/javajoker/ifm-backend/internal/services"
	"github.com/javajoker/ifm-backend/internal/testutil"
)

func (suite *APITestSuite) TestRecommendedHidesOwnedByDefault() {
	seller := testutil.CreateUser(suite.T(), suite.db, models.RoleSeller)
	buyer := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	rival := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	top := testutil.CreateIdea(suite.T(), suite.db, seller.ID, testutil.WithScore(90), testutil.WithExclusivePrice(900))
	mid := testutil.CreateIdea(suite.T(), suite.db, seller.ID, testutil.WithScore(50))
	testutil.CreateIdea(suite.T(), suite.db, seller.ID, testutil.WithScore(99), testutil.WithStatus(models.IdeaStatusDraft))
	token := suite.tokenFor(buyer)

	suite.Require().Equal(http.StatusOK, suite.request(http.MethodPost, "/deals", token, map[string]interface{}{"idea_id": mid.ID}).Code)
	suite.Require().Equal(http.StatusOK, suite.request(http.MethodPost, "/deals", suite.tokenFor(rival), map[string]interface{}{"idea_id": top.ID, "is_exclusive": true}).Code)

	w := suite.request(http.MethodGet, "/ideas/recommended", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var views []services.IdeaView
	suite.decode(w, &views)
	suite.Require().Len(views, 1)
	suite.Equal(top.ID, views[0].ID)
	suite.True(views[0].ExclusiveTaken)
	suite.False(views[0].IsOwned)

	w = suite.request(http.MethodGet, "/ideas/recommended?include_owned=true", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &views)
	suite.Require().Len(views, 2)
	suite.Equal(top.ID, views[0].ID)
	suite.Equal(mid.ID, views[1].ID)
	suite.True(views[1].IsOwned)
	suite.True(views[1].AlreadyOwned)
	suite.False(views[1].OwnedIsExclusive)

	suite.requireError(suite.request(http.MethodGet, "/ideas/recommended", "", nil), http.StatusUnauthorized, "")
	suite.requireError(suite.request(http.MethodGet, "/ideas/recommended", suite.tokenFor(seller), nil), http.StatusForbidden, "")
}

func (suite *APITestSuite) TestSellerIdeaLifecycle() {
	seller := testutil.CreateUser(suite.T(), suite.db, models.RoleSeller)
	other := testutil.CreateUser(suite.T(), suite.db, models.RoleSeller)
	buyer := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	token := suite.tokenFor(seller)

	w := suite.request(http.MethodPost, "/ideas", token, map[string]interface{}{
		"title":                  "Tide-powered kiosk",
		"summary":                "Vending on piers",
		"body":                   "Full write-up",
		"price":                  "120",
		"exclusive_option_price": "1500",
		"status":                 "SUBMITTED",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var idea models.Idea
	suite.decode(w, &idea)
	suite.Equal(models.IdeaStatusSubmitted, idea.Status)
	suite.True(idea.ResaleAllowed)

	suite.requireError(suite.request(http.MethodPost, "/ideas", suite.tokenFor(buyer), map[string]interface{}{"title": "x"}), http.StatusForbidden, "")
	suite.requireError(suite.request(http.MethodPost, "/ideas", token, map[string]interface{}{"title": "x", "summary": "y", "body": "z", "price": "-1"}), http.StatusBadRequest, "")

	w = suite.request(http.MethodGet, fmt.Sprintf("/ideas/%d", idea.ID), "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.requireError(suite.request(http.MethodGet, "/ideas/999999", "", nil), http.StatusNotFound, "")

	statusPath := fmt.Sprintf("/ideas/%d/status", idea.ID)
	suite.requireError(suite.request(http.MethodPut, statusPath, suite.tokenFor(other), map[string]interface{}{"status": "ACTIVE"}), http.StatusForbidden, "")
	suite.Equal(http.StatusOK, suite.request(http.MethodPut, statusPath, token, map[string]interface{}{"status": "ARCHIVED"}).Code)
	suite.requireError(suite.request(http.MethodPut, statusPath, token, map[string]interface{}{"status": "ACTIVE"}), http.StatusBadRequest, "")

	w = suite.request(http.MethodPut, fmt.Sprintf("/ideas/%d/pricing", idea.ID), token, map[string]interface{}{"price": "80"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.decode(w, &idea)
	suite.requireAmount("80", idea.Price.String())
	suite.False(idea.ExclusiveOptionPrice.Valid)

	w = suite.request(http.MethodGet, "/ideas/mine", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var mine []models.Idea
	suite.decode(w, &mine)
	suite.Len(mine, 1)
}
