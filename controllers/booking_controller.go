// File: /controllers/booking_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"vanlife-api/config"
	"vanlife-api/middleware"
	"vanlife-api/models"
	"vanlife-api/repositories"
	"vanlife-api/utils"
)

// BookingController takes rentals and reviews from unauthenticated visitors.
type BookingController struct {
	store   repositories.Store
	metrics *middleware.Metrics
	clock   Clock
	cfg     *config.Config
	log     logrus.FieldLogger
}

func NewBookingController(store repositories.Store, metrics *middleware.Metrics, clock Clock, cfg *config.Config, log logrus.FieldLogger) *BookingController {
	return &BookingController{store: store, metrics: metrics, clock: clock, cfg: cfg, log: log}
}

func (bc *BookingController) MakeTransaction(c *gin.Context) {
	p, ok := readPayload(c)
	if !ok {
		return
	}
	van, ok := resolveVan(c, bc.store, bc.log, p.Raw("vanUUID"), "")
	if !ok {
		return
	}
	now := today(bc.clock, bc.cfg.ServerTimezone)
	form, rej := utils.ValidateBooking(p, van.PricePerDay, now)
	if rej != nil {
		utils.SendRejection(c, rej)
		return
	}

	trx := &models.Transaction{
		UUID:             uuid.NewString(),
		LesseeName:       form.LesseeName,
		LesseeSurname:    form.LesseeSurname,
		LesseeEmail:      form.LesseeEmail,
		Price:            form.Price,
		TransactionDate:  now,
		RentCommencement: form.RentCommencement,
		RentExpiration:   form.RentExpiration,
		LessorID:         van.HostID,
		VanID:            van.ID,
		VanUUID:          van.UUID,
	}
	ctx := c.Request.Context()
	err := bc.store.Atomic(ctx, func(tx repositories.Store) error {
		return tx.Transactions().Create(ctx, trx)
	})
	if err != nil {
		serverError(c, bc.log, err, "Failed to create")
		return
	}

	bc.metrics.Record("transaction_created")
	utils.SendSuccess(c, http.StatusCreated, "Transaction created", "Create successful")
}

func (bc *BookingController) MakeReview(c *gin.Context) {
	p, ok := readPayload(c)
	if !ok {
		return
	}
	van, ok := resolveVan(c, bc.store, bc.log, p.Raw("vanUUID"), "")
	if !ok {
		return
	}
	form, rej := utils.ValidateReview(p)
	if rej != nil {
		utils.SendRejection(c, rej)
		return
	}

	review := &models.Review{
		UUID:            uuid.NewString(),
		Author:          form.Author,
		Text:            form.Text,
		Rate:            form.Rate,
		PublicationDate: today(bc.clock, bc.cfg.ServerTimezone),
		OwnerID:         van.HostID,
		VanID:           van.ID,
		VanUUID:         van.UUID,
		VanName:         van.Name,
	}
	ctx := c.Request.Context()
	err := bc.store.Atomic(ctx, func(tx repositories.Store) error {
		return tx.Reviews().Create(ctx, review)
	})
	if err != nil {
		serverError(c, bc.log, err, "Failed to create")
		return
	}

	bc.metrics.Record("review_created")
	utils.SendSuccess(c, http.StatusCreated, "Review created", "Create successful")
}
