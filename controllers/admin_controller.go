// File: /controllers/admin_controller.go
package controllers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"vanlife-api/config"
	"vanlife-api/middleware"
	"vanlife-api/repositories"
	"vanlife-api/services"
	"vanlife-api/utils"
)

// AdminController serves the back-office. Every route except the login pair
// sits behind middleware.AdminSession.
type AdminController struct {
	store  repositories.Store
	tokens *services.TokenService
	media  *services.MediaStore
	cfg    *config.Config
	log    logrus.FieldLogger
}

func NewAdminController(store repositories.Store, tokens *services.TokenService, media *services.MediaStore, cfg *config.Config, log logrus.FieldLogger) *AdminController {
	return &AdminController{store: store, tokens: tokens, media: media, cfg: cfg, log: log}
}

type adminCredentials struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func (ac *AdminController) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":    "Submit username and password",
		"statusText": "Authorization required",
	})
}

func (ac *AdminController) Authorize(c *gin.Context) {
	var creds adminCredentials
	if err := c.ShouldBind(&creds); err != nil {
		utils.SendMessage(c, http.StatusBadRequest, "Required data missing", "Incomplete data")
		return
	}
	if !ac.validCredentials(creds) {
		ac.log.WithField("client_ip", c.ClientIP()).Warn("rejected back-office login")
		utils.SendMessage(c, http.StatusUnauthorized, "Invalid credentials", "Not Authorized")
		return
	}

	token, err := ac.tokens.IssueAdmin(creds.Username)
	if err != nil {
		serverError(c, ac.log, err, "Authorization failed")
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AdminCookie, token, int(ac.cfg.AdminSessionTTL.Seconds()), "/", "", ac.cfg.IsProduction(), true)
	utils.SendMessage(c, http.StatusOK, "Authorized", "Login successful")
}

// validCredentials refuses everyone while no admin account is configured.
func (ac *AdminController) validCredentials(creds adminCredentials) bool {
	if ac.cfg.AdminUsername == "" || ac.cfg.AdminPassword == "" {
		return false
	}
	user := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(ac.cfg.AdminUsername))
	pass := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(ac.cfg.AdminPassword))
	return user&pass == 1
}

func (ac *AdminController) Unauthorize(c *gin.Context) {
	c.SetCookie(middleware.AdminCookie, "", -1, "/", "", ac.cfg.IsProduction(), true)
	c.Redirect(http.StatusFound, middleware.AdminLogin)
}

// Summary reports record counts for the dashboard.
func (ac *AdminController) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	one := repositories.NewPage(1, 1)

	users, err := ac.store.Users().Count(ctx)
	if err != nil {
		serverError(c, ac.log, err, "Failed to read")
		return
	}
	_, vans, err := ac.store.Vans().ListPage(ctx, one)
	if err != nil {
		serverError(c, ac.log, err, "Failed to read")
		return
	}
	_, transactions, err := ac.store.Transactions().ListPage(ctx, one)
	if err != nil {
		serverError(c, ac.log, err, "Failed to read")
		return
	}
	_, reviews, err := ac.store.Reviews().ListPage(ctx, one)
	if err != nil {
		serverError(c, ac.log, err, "Failed to read")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":        users,
		"vans":         vans,
		"transactions": transactions,
		"reviews":      reviews,
		"statusText":   "Read successful",
	})
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	page := middleware.PageFrom(c)
	users, total, err := ac.store.Users().List(c.Request.Context(), page)
	if err != nil {
		serverError(c, ac.log, err, "Failed to read")
		return
	}
	utils.SendPaginated(c, users, page.Page, page.Limit, total)
}

func (ac *AdminController) ListVans(c *gin.Context) {
	page := middleware.PageFrom(c)
	vans, total, err := ac.store.Vans().ListPage(c.Request.Context(), page)
	if err != nil {
		serverError(c, ac.log, err, "Failed to read")
		return
	}
	utils.SendPaginated(c, vanResponses(vans), page.Page, page.Limit, total)
}

func (ac *AdminController) ListTransactions(c *gin.Context) {
	page := middleware.PageFrom(c)
	transactions, total, err := ac.store.Transactions().ListPage(c.Request.Context(), page)
	if err != nil {
		serverError(c, ac.log, err, "Failed to read")
		return
	}
	utils.SendPaginated(c, transactions, page.Page, page.Limit, total)
}

func (ac *AdminController) ListReviews(c *gin.Context) {
	page := middleware.PageFrom(c)
	reviews, total, err := ac.store.Reviews().ListPage(c.Request.Context(), page)
	if err != nil {
		serverError(c, ac.log, err, "Failed to read")
		return
	}
	utils.SendPaginated(c, reviews, page.Page, page.Limit, total)
}

func (ac *AdminController) DeleteVan(c *gin.Context) {
	van, ok := resolveVan(c, ac.store, ac.log, c.Param("uuid"), "")
	if !ok {
		return
	}
	if err := removeVan(c.Request.Context(), ac.store, ac.media, ac.log, van); err != nil {
		serverError(c, ac.log, err, "Failed to delete")
		return
	}
	ac.log.WithField("van_uuid", van.UUID).Info("van deleted from back-office")
	utils.SendSuccess(c, http.StatusOK, "Van deleted", "Delete successful")
}

func (ac *AdminController) DeleteTransaction(c *gin.Context) {
	ac.deleteRecord(c, "Transaction", func(tx repositories.Store, id string) error {
		return tx.Transactions().DeleteByUUID(c.Request.Context(), id)
	})
}

func (ac *AdminController) DeleteReview(c *gin.Context) {
	ac.deleteRecord(c, "Review", func(tx repositories.Store, id string) error {
		return tx.Reviews().DeleteByUUID(c.Request.Context(), id)
	})
}

func (ac *AdminController) deleteRecord(c *gin.Context, what string, del func(tx repositories.Store, id string) error) {
	id, ok := utils.ParseUUID(c.Param("uuid"))
	if !ok {
		utils.SendRejection(c, utils.InvalidUUID())
		return
	}
	err := ac.store.Atomic(c.Request.Context(), func(tx repositories.Store) error {
		return del(tx, id)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		utils.SendMessage(c, http.StatusNotFound, "The "+what+" does not exist", "Failed to delete")
		return
	}
	if err != nil {
		serverError(c, ac.log, err, "Failed to delete")
		return
	}
	utils.SendSuccess(c, http.StatusOK, what+" deleted", "Delete successful")
}
