// File: /controllers/helpers.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"vanlife-api/middleware"
	"vanlife-api/models"
	"vanlife-api/repositories"
	"vanlife-api/services"
	"vanlife-api/utils"
)

// Clock returns the current instant; the server timezone decides "today".
type Clock func() time.Time

func today(clock Clock, loc *time.Location) models.Date {
	if loc == nil {
		loc = time.UTC
	}
	return models.DateOf(clock().In(loc))
}

func readPayload(c *gin.Context) (utils.Payload, bool) {
	p, err := utils.BindPayload(c)
	if err != nil {
		utils.SendMessage(c, http.StatusBadRequest, "Invalid JSON", "Malformed request body")
		return nil, false
	}
	return p, true
}

// serverError logs err and answers with the generic 500 envelope.
func serverError(c *gin.Context, log logrus.FieldLogger, err error, statusText string, flags ...string) {
	log.WithError(err).
		WithField("method", c.Request.Method).
		WithField("path", c.Request.URL.Path).
		Error(statusText)
	utils.SendServerError(c, statusText, flags...)
}

// currentUser loads the user named by the access token.
func currentUser(c *gin.Context, store repositories.Store, log logrus.FieldLogger) (*models.User, bool) {
	user, err := store.Users().FindByEmail(c.Request.Context(), middleware.EmailFrom(c))
	switch {
	case err == nil:
		return user, true
	case errors.Is(err, repositories.ErrNotFound):
		utils.SendMessage(c, http.StatusUnauthorized, "Not Authorized", "Failed to read")
	default:
		serverError(c, log, err, "Failed to read")
	}
	return nil, false
}

// resolveVan looks up the van named by a client-supplied uuid.
func resolveVan(c *gin.Context, store repositories.Store, log logrus.FieldLogger, raw interface{}, flag string) (*models.Van, bool) {
	id, ok := utils.ParseUUID(raw)
	if !ok {
		utils.SendRejection(c, utils.InvalidUUID())
		return nil, false
	}
	van, err := store.Vans().FindByUUID(c.Request.Context(), id)
	switch {
	case err == nil:
		return van, true
	case errors.Is(err, repositories.ErrNotFound):
		utils.SendMessage(c, http.StatusNotFound, "The Van does not exist", "Failed to read", flag)
	default:
		serverError(c, log, err, "Failed to read", flag)
	}
	return nil, false
}

func ownsVan(c *gin.Context, user *models.User, van *models.Van, flag string) bool {
	if van.HostID != user.ID {
		utils.SendMessage(c, http.StatusForbidden, "Access denied", "Forbidden", flag)
		return false
	}
	return true
}

// removeVan deletes the van row and then its media folder. Reviews and
// transactions pointing at the van are kept.
func removeVan(ctx context.Context, store repositories.Store, media *services.MediaStore, log logrus.FieldLogger, van *models.Van) error {
	err := store.Atomic(ctx, func(tx repositories.Store) error {
		return tx.Vans().Delete(ctx, van)
	})
	if err != nil {
		return err
	}
	if err := media.RemoveOwner(services.MediaVans, van.UUID); err != nil {
		log.WithError(err).WithField("van_uuid", van.UUID).Warn("van deleted but its media folder was not removed")
	}
	return nil
}

func vanResponses(vans []models.Van) []models.VanResponse {
	out := make([]models.VanResponse, 0, len(vans))
	for _, v := range vans {
		out = append(out, v.Response())
	}
	return out
}
