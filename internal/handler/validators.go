package handler

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	offeringDomain "github.com/LankaTrails/service-booking/internal/domain/offering"
	reservationDomain "github.com/LankaTrails/service-booking/internal/domain/reservation"
)

// RegisterValidators installs the custom binding tags used by request DTOs:
// isodate (YYYY-MM-DD) and booking_domain (hotel, guide, tour_guide, transport).
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("isodate", validateISODate); err != nil {
		return err
	}
	return v.RegisterValidation("booking_domain", validateBookingDomain)
}

func validateISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse(reservationDomain.DateLayout, s)
	return err == nil
}

func validateBookingDomain(fl validator.FieldLevel) bool {
	_, err := offeringDomain.ParseServiceType(fl.Field().String())
	return err == nil
}
