// File: /controllers/van_controller.go
package controllers

import (
	"errors"
	"net/http"

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

type VanController struct {
	store   repositories.Store
	media   *services.MediaStore
	metrics *middleware.Metrics
	cfg     *config.Config
	log     logrus.FieldLogger
}

func NewVanController(store repositories.Store, media *services.MediaStore, metrics *middleware.Metrics, cfg *config.Config, log logrus.FieldLogger) *VanController {
	return &VanController{store: store, media: media, metrics: metrics, cfg: cfg, log: log}
}

// ListVans returns every van, optionally narrowed with ?type=.
func (vc *VanController) ListVans(c *gin.Context) {
	filter := repositories.VanFilter{Type: models.VanType(c.Query("type"))}
	vans, err := vc.store.Vans().List(c.Request.Context(), filter)
	if err != nil {
		serverError(c, vc.log, err, "Failed to read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"vans": vanResponses(vans), "statusText": "Read successful"})
}

func (vc *VanController) GetVan(c *gin.Context) {
	id, ok := utils.ParseUUID(c.Param("uuid"))
	if !ok {
		utils.SendMessage(c, http.StatusNotFound, "Not Found", "Failed to read")
		return
	}
	van, err := vc.store.Vans().FindByUUID(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.SendMessage(c, http.StatusOK, "Van does not exist", "Failed to read")
		return
	}
	if err != nil {
		serverError(c, vc.log, err, "Failed to read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"van": van.Response(), "statusText": "Read successful"})
}

func (vc *VanController) AddVan(c *gin.Context) {
	user, ok := currentUser(c, vc.store, vc.log)
	if !ok {
		return
	}
	p, ok := readPayload(c)
	if !ok {
		return
	}
	form, rej := utils.ValidateVanForm(p)
	if rej != nil {
		utils.SendRejection(c, rej)
		return
	}

	van := &models.Van{
		UUID:   uuid.NewString(),
		Image:  vc.cfg.DefaultVanImage,
		HostID: user.ID,
	}
	form.Apply(van)

	ctx := c.Request.Context()
	err := vc.store.Atomic(ctx, func(tx repositories.Store) error {
		return tx.Vans().Create(ctx, van)
	})
	if err != nil {
		serverError(c, vc.log, err, "Failed to create", utils.FlagData)
		return
	}

	vc.metrics.Record("van_created")
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Van created",
		"statusText":   "Create successful",
		"success":      true,
		"vanUUID":      van.UUID,
		utils.FlagData: true,
	})
}

// UpdateVan replaces the van's data; a rename is copied onto its reviews
// in the same transaction.
func (vc *VanController) UpdateVan(c *gin.Context) {
	user, ok := currentUser(c, vc.store, vc.log)
	if !ok {
		return
	}
	p, ok := readPayload(c)
	if !ok {
		return
	}
	van, ok := resolveVan(c, vc.store, vc.log, p.Raw("vanUUID"), utils.FlagData)
	if !ok || !ownsVan(c, user, van, utils.FlagData) {
		return
	}
	form, rej := utils.ValidateVanForm(p)
	if rej != nil {
		utils.SendRejection(c, rej)
		return
	}
	if form.SameAs(*van) {
		utils.SendMessage(c, http.StatusBadRequest, "No modifications detected", "Data not altered", utils.FlagData)
		return
	}

	ctx := c.Request.Context()
	renamed := van.Name != form.Name
	err := vc.store.Atomic(ctx, func(tx repositories.Store) error {
		form.Apply(van)
		if err := tx.Vans().Update(ctx, van); err != nil {
			return err
		}
		if renamed {
			return tx.Reviews().RenameVan(ctx, van.ID, van.Name)
		}
		return nil
	})
	if err != nil {
		serverError(c, vc.log, err, "Failed to update", utils.FlagData)
		return
	}

	utils.SendMessage(c, http.StatusOK, "Van data updated", "Update successful", utils.FlagData)
}

func (vc *VanController) DeleteVan(c *gin.Context) {
	user, ok := currentUser(c, vc.store, vc.log)
	if !ok {
		return
	}
	p, ok := readPayload(c)
	if !ok {
		return
	}
	van, ok := resolveVan(c, vc.store, vc.log, p.Raw("vanUUID"), "")
	if !ok || !ownsVan(c, user, van, "") {
		return
	}

	if err := removeVan(c.Request.Context(), vc.store, vc.media, vc.log, van); err != nil {
		serverError(c, vc.log, err, "Failed to delete")
		return
	}

	utils.SendSuccess(c, http.StatusOK, "Van deleted", "Delete successful")
}

func (vc *VanController) UploadVanImage(c *gin.Context) {
	user, ok := currentUser(c, vc.store, vc.log)
	if !ok {
		return
	}
	van, ok := resolveVan(c, vc.store, vc.log, c.PostForm("vanUUID"), utils.FlagImage)
	if !ok || !ownsVan(c, user, van, utils.FlagImage) {
		return
	}

	fh, _ := c.FormFile("image")
	ext, rej := utils.CheckImageUpload(fh)
	if rej != nil {
		utils.SendRejection(c, rej)
		return
	}
	src, err := fh.Open()
	if err != nil {
		serverError(c, vc.log, err, "Failed to update", utils.FlagImage)
		return
	}
	defer src.Close()

	ctx := c.Request.Context()
	stored, err := vc.media.Replace(services.MediaVans, van.UUID, ext, src, van.Image, func(path string) error {
		return vc.store.Atomic(ctx, func(tx repositories.Store) error {
			updated := *van
			updated.Image = path
			return tx.Vans().Update(ctx, &updated)
		})
	})
	if stored == "" {
		serverError(c, vc.log, err, "Failed to update", utils.FlagImage)
		return
	}
	if err != nil {
		vc.log.WithError(err).WithField("van_uuid", van.UUID).Warn("previous van image was not removed")
	}

	utils.SendMessage(c, http.StatusOK, "Image updated", "Update successful", utils.FlagImage)
}
