package controllers

import (
	"net/http"

	"connectly/helper"
	"connectly/services"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

func (nc *NotificationController) GetAll(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	notifications, err := nc.notifications.List(c.Request.Context(), userID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Notifications fetched", notifications)
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	id, err := helper.ObjectIDParam(c, "id")
	if err != nil {
		helper.Fail(c, err)
		return
	}
	if err := nc.notifications.MarkRead(c.Request.Context(), userID, id); err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Notification marked as read", nil)
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	updated, err := nc.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Notifications marked as read", gin.H{"updated": updated})
}

func (nc *NotificationController) CountUnread(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	count, err := nc.notifications.CountUnread(c.Request.Context(), userID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Unread count fetched", gin.H{"count": count})
}

func (nc *NotificationController) Delete(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	id, err := helper.ObjectIDParam(c, "id")
	if err != nil {
		helper.Fail(c, err)
		return
	}
	if err := nc.notifications.Delete(c.Request.Context(), userID, id); err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Notification deleted", nil)
}

func (nc *NotificationController) DeleteAll(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	deleted, err := nc.notifications.DeleteAll(c.Request.Context(), userID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Notifications deleted", gin.H{"deleted": deleted})
}
