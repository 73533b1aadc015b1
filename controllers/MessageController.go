package controllers

import (
	"net/http"

	"connectly/helper"
	"connectly/services"

	"github.com/gin-gonic/gin"
)

type SendMessageInput struct {
	ConversationID string `json:"conversationId" validate:"required"`
	Content        string `json:"content" validate:"max=5000"`
}

type MessageController struct {
	conversations *services.ConversationService
}

func NewMessageController(conversations *services.ConversationService) *MessageController {
	return &MessageController{conversations: conversations}
}

func (mc *MessageController) GetConversations(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	result, err := mc.conversations.List(c.Request.Context(), userID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Conversations fetched", result)
}

func (mc *MessageController) GetOrCreateConversation(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	otherUserID, err := helper.ObjectIDParam(c, "otherUserId")
	if err != nil {
		helper.Fail(c, err)
		return
	}
	conversation, err := mc.conversations.GetOrCreate(c.Request.Context(), userID, otherUserID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Conversation ready", conversation)
}

func (mc *MessageController) GetMessages(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	conversationID, err := helper.ObjectIDParam(c, "conversationId")
	if err != nil {
		helper.Fail(c, err)
		return
	}
	messages, err := mc.conversations.Messages(c.Request.Context(), userID, conversationID)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusOK, "Messages fetched", messages)
}

func (mc *MessageController) SendMessage(c *gin.Context) {
	userID, err := helper.CurrentUserID(c)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	var in SendMessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		helper.Fail(c, helper.InvalidRequest("Invalid request body"))
		return
	}
	if err := helper.Validate(in); err != nil {
		helper.Fail(c, err)
		return
	}
	conversationID, err := helper.ParseObjectID(in.ConversationID, "conversationId")
	if err != nil {
		helper.Fail(c, err)
		return
	}
	message, err := mc.conversations.Send(c.Request.Context(), userID, conversationID, in.Content)
	if err != nil {
		helper.Fail(c, err)
		return
	}
	helper.Respond(c, http.StatusCreated, "Message sent", message)
}
