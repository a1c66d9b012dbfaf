// File: /controllers/auth_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"vanlife-api/config"
	"vanlife-api/middleware"
	"vanlife-api/models"
	"vanlife-api/repositories"
	"vanlife-api/services"
	"vanlife-api/utils"
)

type AuthController struct {
	store      repositories.Store
	hasher     services.PasswordHasher
	tokens     *services.TokenService
	resets     *services.ResetService
	mailer     services.Mailer
	dispatcher services.Dispatcher
	metrics    *middleware.Metrics
	cfg        *config.Config
	log        logrus.FieldLogger
}

func NewAuthController(
	store repositories.Store,
	hasher services.PasswordHasher,
	tokens *services.TokenService,
	resets *services.ResetService,
	mailer services.Mailer,
	dispatcher services.Dispatcher,
	metrics *middleware.Metrics,
	cfg *config.Config,
	log logrus.FieldLogger,
) *AuthController {
	return &AuthController{
		store:      store,
		hasher:     hasher,
		tokens:     tokens,
		resets:     resets,
		mailer:     mailer,
		dispatcher: dispatcher,
		metrics:    metrics,
		cfg:        cfg,
		log:        log,
	}
}

func (ac *AuthController) Register(c *gin.Context) {
	p, ok := readPayload(c)
	if !ok {
		return
	}
	form, rej := utils.ValidateRegistration(p)
	if rej != nil {
		utils.SendRejection(c, rej)
		return
	}

	ctx := c.Request.Context()
	taken, err := ac.store.Users().EmailExists(ctx, form.Email)
	if err != nil {
		serverError(c, ac.log, err, "Creation failed")
		return
	}
	if taken {
		utils.SendRejection(c, utils.EmailTaken())
		return
	}
	if rej := utils.CheckPassword(form.Password, utils.FlagPassword); rej != nil {
		utils.SendRejection(c, rej)
		return
	}

	digest, err := ac.hasher.Hash(form.Password)
	if err != nil {
		ac.log.WithError(err).Warn("password could not be hashed")
		utils.SendMessage(c, http.StatusInternalServerError, "Unhashable password", "Inadmissible password", utils.FlagPassword)
		return
	}

	user := &models.User{
		UUID:     uuid.NewString(),
		Name:     form.Name,
		Surname:  form.Surname,
		Email:    form.Email,
		Password: digest,
		Avatar:   ac.cfg.DefaultUserImage,
	}
	err = ac.store.Atomic(ctx, func(tx repositories.Store) error {
		return tx.Users().Create(ctx, user)
	})
	if errors.Is(err, repositories.ErrDuplicate) {
		utils.SendRejection(c, utils.EmailTaken())
		return
	}
	if err != nil {
		serverError(c, ac.log, err, "Creation failed")
		return
	}

	ac.dispatcher.Submit(services.RegistrationMail(user.Email, user.Name, user.Surname))
	ac.metrics.Record("user_registered")
	ac.log.WithField("user_uuid", user.UUID).Info("user registered")

	utils.SendMessage(c, http.StatusCreated, "User registered", "Creation successful")
}

func (ac *AuthController) Login(c *gin.Context) {
	p, ok := readPayload(c)
	if !ok {
		return
	}
	form, rej := utils.ValidateLogin(p)
	if rej != nil {
		utils.SendRejection(c, rej)
		return
	}

	user, err := ac.store.Users().FindByEmail(c.Request.Context(), form.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		serverError(c, ac.log, err, "Login failed")
		return
	}
	if user == nil || !ac.hasher.Verify(user.Password, form.Password) {
		utils.SendMessage(c, http.StatusUnauthorized, "Wrong email or password", "Login failed")
		return
	}

	access, err := ac.tokens.IssueAccess(user.Email)
	if err != nil {
		serverError(c, ac.log, err, "Login failed")
		return
	}
	refresh, err := ac.tokens.IssueRefresh(user.Email)
	if err != nil {
		serverError(c, ac.log, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"JWToken":    access,
		"RFToken":    refresh,
		"statusText": "Login successful",
	})
}

// Refresh trades a refresh token for a new access token.
func (ac *AuthController) Refresh(c *gin.Context) {
	access, err := ac.tokens.IssueAccess(middleware.EmailFrom(c))
	if err != nil {
		serverError(c, ac.log, err, "Failed to refresh")
		return
	}
	c.JSON(http.StatusOK, gin.H{"JWToken": access})
}

func (ac *AuthController) SendReset(c *gin.Context) {
	p, ok := readPayload(c)
	if !ok {
		return
	}
	email := strings.ToLower(p.Text("email"))
	if email == "" {
		utils.SendRejection(c, utils.Missing(""))
		return
	}

	user, err := ac.store.Users().FindByEmail(c.Request.Context(), email)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.SendMessage(c, http.StatusBadRequest, "Email is not registered", "Wrong email")
		return
	}
	if err != nil {
		serverError(c, ac.log, err, "Failed to send")
		return
	}

	token, err := ac.resets.Issue(user.Email)
	if err != nil {
		serverError(c, ac.log, err, "Failed to send")
		return
	}
	link := ac.cfg.FrontendURL + "/reset-password/" + token
	if err := ac.mailer.Send(services.ResetMail(user.Email, link)); err != nil {
		serverError(c, ac.log, err, "Failed to send")
		return
	}

	utils.SendMessage(c, http.StatusOK, "Email sent", "Email sent")
}

func (ac *AuthController) ValidateToken(c *gin.Context) {
	p, ok := readPayload(c)
	if !ok {
		return
	}
	_, valid := ac.resets.Verify(c.Request.Context(), p.Text("token"))
	c.JSON(http.StatusOK, gin.H{"tokenValid": valid})
}

func (ac *AuthController) ResetPassword(c *gin.Context) {
	p, ok := readPayload(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	grant, valid := ac.resets.Verify(ctx, p.Text("token"))
	if !valid {
		utils.SendMessage(c, http.StatusUnauthorized, "Cannot update password", "Failed to update")
		return
	}
	user, err := ac.store.Users().FindByEmail(ctx, grant.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.SendMessage(c, http.StatusBadRequest, "User does not exist", "Failed to update")
		return
	}
	if err != nil {
		serverError(c, ac.log, err, "Failed to update")
		return
	}

	password, rej := utils.ValidateNewPassword(p, "")
	if rej != nil {
		utils.SendRejection(c, rej)
		return
	}
	digest, err := ac.hasher.Hash(password)
	if err != nil {
		serverError(c, ac.log, err, "Failed to update")
		return
	}

	consumed := false
	err = ac.store.Atomic(ctx, func(tx repositories.Store) error {
		if err := ac.resets.Consume(ctx, grant); err != nil {
			return err
		}
		consumed = true
		user.Password = digest
		return tx.Users().Update(ctx, user)
	})
	if err != nil && consumed {
		ac.resets.Release(ctx, grant)
	}
	if errors.Is(err, services.ErrTokenUsed) {
		utils.SendMessage(c, http.StatusUnauthorized, "Cannot update password", "Failed to update")
		return
	}
	if err != nil {
		serverError(c, ac.log, err, "Failed to update")
		return
	}

	ac.metrics.Record("password_reset")
	utils.SendMessage(c, http.StatusOK, "User password updated", "Successful update")
}
