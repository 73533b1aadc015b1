package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectly/database"
	"connectly/helper"
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventMessageNew is published to both participants after a message is stored.
const EventMessageNew = "message:new"

type ConversationService struct {
	conversations ConversationStore
	messages      MessageStore
	friends       FriendStore
	users         UserStore
	events        Publisher
}

func NewConversationService(conversations ConversationStore, messages MessageStore, friends FriendStore, users UserStore, events Publisher) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		friends:       friends,
		users:         users,
		events:        events,
	}
}

// GetOrCreate returns the single conversation between caller and other,
// creating it on first contact. Only friends may start a conversation.
func (s *ConversationService) GetOrCreate(ctx context.Context, callerID, otherID primitive.ObjectID) (models.Conversation, error) {
	if callerID.IsZero() {
		return models.Conversation{}, helper.Unauthorized("User is unauthorized")
	}
	if otherID.IsZero() {
		return models.Conversation{}, helper.InvalidRequest("Invalid user id")
	}
	if callerID == otherID {
		return models.Conversation{}, helper.InvalidRequest("You cannot chat with yourself")
	}

	isFriend, err := s.friends.Exists(ctx, callerID, otherID)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("check friendship: %w", err)
	}
	if !isFriend {
		return models.Conversation{}, helper.Forbidden("You can only message friends")
	}

	conv, err := s.conversations.GetOrCreate(ctx, callerID, otherID)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("get or create conversation: %w", err)
	}
	return conv, nil
}

// List returns the caller's conversations, most recently active first, each
// with the other participant's profile and the last message.
func (s *ConversationService) List(ctx context.Context, callerID primitive.ObjectID) ([]models.ConversationSummary, error) {
	if callerID.IsZero() {
		return nil, helper.Unauthorized("User is unauthorized")
	}

	convs, err := s.conversations.ListForUser(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	otherIDs := make([]primitive.ObjectID, 0, len(convs))
	lastIDs := make([]primitive.ObjectID, 0, len(convs))
	for _, c := range convs {
		otherIDs = append(otherIDs, c.OtherParticipant(callerID))
		if c.LastMessage != nil {
			lastIDs = append(lastIDs, *c.LastMessage)
		}
	}

	profiles, err := s.users.FindPublicProfiles(ctx, otherIDs)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	lastMessages, err := s.messages.FindByIDs(ctx, lastIDs)
	if err != nil {
		return nil, fmt.Errorf("load last messages: %w", err)
	}

	out := make([]models.ConversationSummary, 0, len(convs))
	for _, c := range convs {
		summary := models.ConversationSummary{ID: c.ID, UpdatedAt: c.UpdatedAt}
		if p, ok := profiles[c.OtherParticipant(callerID)]; ok {
			summary.User = &p
		}
		if c.LastMessage != nil {
			if m, ok := lastMessages[*c.LastMessage]; ok {
				summary.LastMessage = &m
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

// Messages returns the conversation's messages oldest first.
func (s *ConversationService) Messages(ctx context.Context, callerID, conversationID primitive.ObjectID) ([]models.MessageView, error) {
	if _, err := s.authorize(ctx, callerID, conversationID, "Access denied"); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	senders := make([]primitive.ObjectID, 0, 2)
	seen := map[primitive.ObjectID]bool{}
	for _, m := range messages {
		if !seen[m.Sender] {
			seen[m.Sender] = true
			senders = append(senders, m.Sender)
		}
	}
	profiles, err := s.users.FindPublicProfiles(ctx, senders)
	if err != nil {
		return nil, fmt.Errorf("load senders: %w", err)
	}

	out := make([]models.MessageView, 0, len(messages))
	for _, m := range messages {
		sender, ok := profiles[m.Sender]
		if !ok {
			sender = models.PublicProfile{ID: m.Sender}
		}
		out = append(out, models.MessageView{
			ID:           m.ID,
			Conversation: m.Conversation,
			Sender:       sender,
			Content:      m.Content,
			CreatedAt:    m.CreatedAt,
		})
	}
	return out, nil
}

// Send stores a message from the caller and moves the conversation's
// last-message pointer to it.
func (s *ConversationService) Send(ctx context.Context, callerID, conversationID primitive.ObjectID, content string) (models.Message, error) {
	if callerID.IsZero() {
		return models.Message{}, helper.Unauthorized("User is unauthorized")
	}
	if strings.TrimSpace(content) == "" {
		return models.Message{}, helper.InvalidRequest("Message cannot be empty")
	}
	conv, err := s.authorize(ctx, callerID, conversationID, "You are not part of this conversation")
	if err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ID:           primitive.NewObjectID(),
		Conversation: conv.ID,
		Sender:       callerID,
		Content:      content,
		CreatedAt:    now(),
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return models.Message{}, fmt.Errorf("create message: %w", err)
	}
	if err := s.conversations.SetLastMessage(ctx, conv.ID, msg.ID, msg.CreatedAt); err != nil {
		return models.Message{}, fmt.Errorf("update last message: %w", err)
	}

	if s.events != nil {
		s.events.Publish(conv.Participants, EventMessageNew, msg)
	}
	return msg, nil
}

// authorize loads the conversation and checks the caller is one of its
// participants.
func (s *ConversationService) authorize(ctx context.Context, callerID, conversationID primitive.ObjectID, denied string) (models.Conversation, error) {
	if callerID.IsZero() {
		return models.Conversation{}, helper.Unauthorized("User is unauthorized")
	}
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if errors.Is(err, database.ErrNotFound) {
		return models.Conversation{}, helper.NotFound("Conversation not found")
	}
	if err != nil {
		return models.Conversation{}, fmt.Errorf("find conversation: %w", err)
	}
	if !conv.HasParticipant(callerID) {
		return models.Conversation{}, helper.Forbidden(denied)
	}
	return conv, nil
}
