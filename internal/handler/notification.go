package handler

import (
	"context"
	"homeservice-booking/internal/model"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// NotificationAPI reads and acknowledges a user's notifications
type NotificationAPI interface {
	List(ctx context.Context, p model.Principal, page, limit int64) ([]*model.Notification, error)
	MarkRead(ctx context.Context, p model.Principal, id string) (*model.Notification, error)
}

// listNotificationsHandler handles GET /api/notifications
func listNotificationsHandler(svc NotificationAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

		items, err := svc.List(c.Request.Context(), principal(c), page, limit)
		if err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, http.StatusOK, "notifications retrieved", gin.H{"notifications": items})
	}
}

// markReadHandler handles PATCH /api/notifications/:id/read
func markReadHandler(svc NotificationAPI, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.MarkRead(c.Request.Context(), principal(c), c.Param("id"))
		if err != nil {
			resp.Error(c, err)
			return
		}
		resp.OK(c, http.StatusOK, "notification marked as read", gin.H{"notification": n})
	}
}
