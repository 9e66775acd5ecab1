package handler

import (
	"context"
	"errors"
	"homeservice-booking/internal/model"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// BookingAPI is the booking lifecycle as seen by the HTTP layer
type BookingAPI interface {
	CreateBooking(ctx context.Context, p model.Principal, req *model.CreateBookingRequest) (*model.CreateBookingResult, error)
	GetBooking(ctx context.Context, p model.Principal, id string) (*model.Booking, error)
	ListBookings(ctx context.Context, p model.Principal, filter model.BookingFilter) ([]*model.Booking, error)
	HandleRequest(ctx context.Context, p model.Principal, id string, req *model.HandleRequestRequest) (*model.Booking, error)
	StartBooking(ctx context.Context, p model.Principal, id string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, p model.Principal, id string, req *model.UpdateStatusRequest) (*model.Booking, error)
	CancelBooking(ctx context.Context, p model.Principal, id, reason string) (*model.Booking, error)
}

// createBookingHandler handles POST /api/bookings
func createBookingHandler(svc BookingAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			resp.BadRequest(c, err)
			return
		}

		res, err := svc.CreateBooking(c.Request.Context(), principal(c), &req)
		if err != nil {
			resp.Error(c, err)
			return
		}

		resp.OK(c, http.StatusCreated, "booking created", gin.H{
			"booking":        res.Booking,
			"payment":        res.Payment,
			"priceBreakdown": res.PriceBreakdown,
		})
	}
}

// listBookingsHandler handles GET /api/bookings
func listBookingsHandler(svc BookingAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		filter := model.BookingFilter{
			Status: model.BookingStatus(c.Query("status")),
			Page:   page,
			Limit:  limit,
		}

		bookings, err := svc.ListBookings(c.Request.Context(), principal(c), filter)
		if err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, http.StatusOK, "bookings retrieved", gin.H{"bookings": bookings})
	}
}

// getBookingHandler handles GET /api/bookings/:id
func getBookingHandler(svc BookingAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := svc.GetBooking(c.Request.Context(), principal(c), c.Param("id"))
		if err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, http.StatusOK, "booking retrieved", gin.H{"booking": booking})
	}
}

// handleRequestHandler handles POST /api/bookings/:id/handle-request
func handleRequestHandler(svc BookingAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.HandleRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			resp.BadRequest(c, err)
			return
		}

		booking, err := svc.HandleRequest(c.Request.Context(), principal(c), c.Param("id"), &req)
		if err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, http.StatusOK, "booking "+req.Action+"ed", gin.H{"booking": booking})
	}
}

// startBookingHandler handles POST /api/bookings/:id/start
func startBookingHandler(svc BookingAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := svc.StartBooking(c.Request.Context(), principal(c), c.Param("id"))
		if err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, http.StatusOK, "booking started", gin.H{"booking": booking})
	}
}

// updateStatusHandler handles PATCH /api/bookings/:id/status
func updateStatusHandler(svc BookingAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			resp.BadRequest(c, err)
			return
		}

		booking, err := svc.UpdateStatus(c.Request.Context(), principal(c), c.Param("id"), &req)
		if err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, http.StatusOK, "booking status updated", gin.H{"booking": booking})
	}
}

// cancelBookingHandler handles DELETE /api/bookings/:id; the body is optional
func cancelBookingHandler(svc BookingAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CancelBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			resp.BadRequest(c, err)
			return
		}

		booking, err := svc.CancelBooking(c.Request.Context(), principal(c), c.Param("id"), req.Reason)
		if err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, http.StatusOK, "booking cancelled", gin.H{"booking": booking})
	}
}
