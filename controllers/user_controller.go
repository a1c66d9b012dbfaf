// File: /controllers/user_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"vanlife-api/models"
	"vanlife-api/repositories"
	"vanlife-api/services"
	"vanlife-api/utils"
)

type UserController struct {
	store  repositories.Store
	hasher services.PasswordHasher
	media  *services.MediaStore
	log    logrus.FieldLogger
}

func NewUserController(store repositories.Store, hasher services.PasswordHasher, media *services.MediaStore, log logrus.FieldLogger) *UserController {
	return &UserController{store: store, hasher: hasher, media: media, log: log}
}

// GetUser returns the logged-in user with their vans, transactions and reviews.
func (uc *UserController) GetUser(c *gin.Context) {
	user, ok := currentUser(c, uc.store, uc.log)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	vans, err := uc.store.Vans().List(ctx, repositories.VanFilter{HostID: user.ID})
	if err != nil {
		serverError(c, uc.log, err, "Failed to read")
		return
	}
	transactions, err := uc.store.Transactions().ListByLessor(ctx, user.ID)
	if err != nil {
		serverError(c, uc.log, err, "Failed to read")
		return
	}
	reviews, err := uc.store.Reviews().ListByOwner(ctx, user.ID)
	if err != nil {
		serverError(c, uc.log, err, "Failed to read")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logged_user": models.NewUserProfile(*user, vans, transactions, reviews),
		"statusText":  "Read successful",
	})
}

func (uc *UserController) UploadAvatar(c *gin.Context) {
	user, ok := currentUser(c, uc.store, uc.log)
	if !ok {
		return
	}

	fh, _ := c.FormFile("avatar")
	ext, rej := utils.CheckImageUpload(fh)
	if rej != nil {
		utils.SendRejection(c, rej)
		return
	}
	src, err := fh.Open()
	if err != nil {
		serverError(c, uc.log, err, "Failed to update", utils.FlagImage)
		return
	}
	defer src.Close()

	ctx := c.Request.Context()
	stored, err := uc.media.Replace(services.MediaUsers, user.UUID, ext, src, user.Avatar, func(path string) error {
		return uc.store.Atomic(ctx, func(tx repositories.Store) error {
			updated := *user
			updated.Avatar = path
			return tx.Users().Update(ctx, &updated)
		})
	})
	if stored == "" {
		serverError(c, uc.log, err, "Failed to update", utils.FlagImage)
		return
	}
	if err != nil {
		uc.log.WithError(err).WithField("user_uuid", user.UUID).Warn("previous avatar was not removed")
	}

	utils.SendMessage(c, http.StatusOK, "Profile picture updated", "Update successful", utils.FlagImage)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	user, ok := currentUser(c, uc.store, uc.log)
	if !ok {
		return
	}
	p, ok := readPayload(c)
	if !ok {
		return
	}
	form, rej := utils.ValidateProfile(p, *user)
	if rej != nil {
		utils.SendRejection(c, rej)
		return
	}

	ctx := c.Request.Context()
	err := uc.store.Atomic(ctx, func(tx repositories.Store) error {
		user.Name = form.Name
		user.Surname = form.Surname
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		serverError(c, uc.log, err, "Failed to update", utils.FlagUser)
		return
	}

	utils.SendMessage(c, http.StatusOK, "User data updated", "Update successful", utils.FlagUser)
}

func (uc *UserController) UpdatePassword(c *gin.Context) {
	user, ok := currentUser(c, uc.store, uc.log)
	if !ok {
		return
	}
	p, ok := readPayload(c)
	if !ok {
		return
	}

	if !uc.hasher.Verify(user.Password, p.Verbatim("currentPassword")) {
		utils.SendMessage(c, http.StatusUnauthorized, "Current password does not match", "Password mismatch", utils.FlagPass)
		return
	}
	password, rej := utils.ValidateNewPassword(p, utils.FlagPass)
	if rej != nil {
		utils.SendRejection(c, rej)
		return
	}
	digest, err := uc.hasher.Hash(password)
	if err != nil {
		serverError(c, uc.log, err, "Failed to update", utils.FlagPass)
		return
	}

	ctx := c.Request.Context()
	err = uc.store.Atomic(ctx, func(tx repositories.Store) error {
		user.Password = digest
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		serverError(c, uc.log, err, "Failed to update", utils.FlagPass)
		return
	}

	utils.SendMessage(c, http.StatusOK, "User password updated", "Successful update", utils.FlagPass)
}
