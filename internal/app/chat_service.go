package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"rolechat/internal/ai"
	"rolechat/internal/catalog"
	"rolechat/internal/markdown"
	"rolechat/internal/memory"
	"rolechat/internal/model"
	"rolechat/internal/repository"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageEmpty         = errors.New("message content is empty")
	ErrCompletion           = errors.New("completion backend failed")
)

// Completer turns an assembled prompt into reply text.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// ContextProvider assembles the memory context block for one user message.
type ContextProvider interface {
	EnhancedContext(ctx context.Context, memoryUUID string, conversationID, roleID uint, query string) string
}

// HistoryCache is the Redis-backed conversation history cache.
type HistoryCache interface {
	GetHistory(ctx context.Context, conversationID uint) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, conversationID uint, messages []model.Message) error
	DeleteHistory(ctx context.Context, conversationID uint) error
	MarkDirty(ctx context.Context, conversationID uint) error
	IsDirty(ctx context.Context, conversationID uint) (bool, error)
}

type ChatService struct {
	userRepo        *repository.UserRepository
	roleRepo        *repository.RoleRepository
	convRepo        *repository.ConversationRepository
	messageRepo     *repository.MessageRepository
	completer       Completer
	contextProvider ContextProvider
	ingestor        memory.Ingestor
	scopes          memory.ScopeSet
	historyCache    HistoryCache
	maxContext      int
	log             *zap.Logger
}

func NewChatService(
	userRepo *repository.UserRepository,
	roleRepo *repository.RoleRepository,
	convRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
	completer Completer,
	contextProvider ContextProvider,
	ingestor memory.Ingestor,
	scopes memory.ScopeSet,
	historyCache HistoryCache,
	maxContext int,
	log *zap.Logger,
) *ChatService {
	if maxContext <= 0 {
		maxContext = 20
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{
		userRepo:        userRepo,
		roleRepo:        roleRepo,
		convRepo:        convRepo,
		messageRepo:     messageRepo,
		completer:       completer,
		contextProvider: contextProvider,
		ingestor:        ingestor,
		scopes:          scopes,
		historyCache:    historyCache,
		maxContext:      maxContext,
		log:             log,
	}
}

type ConversationView struct {
	ID          uint      `json:"id"`
	RoleID      uint      `json:"role_id"`
	RoleName    string    `json:"role_name"`
	RoleIcon    string    `json:"role_icon,omitempty"`
	Title       string    `json:"title"`
	LastMessage string    `json:"last_message"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AIMessageView struct {
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html"`
	CreatedAt   time.Time `json:"created_at"`
}

type SendMessageResult struct {
	UserMessage model.Message `json:"user_message"`
	AIMessage   AIMessageView `json:"ai_message"`
}

func (s *ChatService) CreateConversation(userID, roleID uint) (*model.Conversation, error) {
	if userID == 0 || roleID == 0 {
		return nil, ErrInvalidInput
	}

	role, err := s.roleRepo.GetByID(roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}

	conversation := &model.Conversation{
		UserID: userID,
		RoleID: role.ID,
		Title:  "Chat with " + role.Name,
	}
	if err := s.convRepo.Create(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *ChatService) ListConversations(userID uint) ([]ConversationView, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	conversations, err := s.convRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	views := make([]ConversationView, 0, len(conversations))
	for _, conversation := range conversations {
		view := ConversationView{
			ID:        conversation.ID,
			RoleID:    conversation.RoleID,
			Title:     conversation.Title,
			CreatedAt: conversation.CreatedAt,
			UpdatedAt: conversation.UpdatedAt,
		}
		if role, err := s.roleRepo.GetByID(conversation.RoleID); err == nil && role != nil {
			view.RoleName = role.Name
			view.RoleIcon = catalog.Icon(role.Name)
		}
		if last, err := s.messageRepo.LastByConversationID(conversation.ID); err == nil && last != nil {
			view.LastMessage = previewOf(last.Content)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ChatService) GetConversation(userID, conversationID uint) (*model.Conversation, *model.AIRole, error) {
	conversation, err := s.ownedConversation(userID, conversationID)
	if err != nil {
		return nil, nil, err
	}
	role, err := s.roleRepo.GetByID(conversation.RoleID)
	if err != nil {
		return nil, nil, err
	}
	return conversation, role, nil
}

// SendMessage runs the whole exchange: persist the user message, hand both
// scope copies to the memory ingestor, assemble context, call the completion
// backend, persist and render the reply. Memory failures are logged and the
// request continues; a completion failure aborts before any assistant row is
// written.
//
// memoryUUID normally comes from the caller's token claims; an empty value
// falls back to the user row. With no UUID at all the exchange still runs,
// just without memory storage or retrieval.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID uint, memoryUUID, content string) (*SendMessageResult, error) {
	if userID == 0 || conversationID == 0 {
		return nil, ErrInvalidInput
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	conversation, err := s.ownedConversation(userID, conversationID)
	if err != nil {
		return nil, err
	}

	if memoryUUID == "" {
		user, err := s.userRepo.GetByID(userID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			memoryUUID = user.MemoryUUID
		}
	}

	role, err := s.roleRepo.GetByID(conversation.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}

	messageCount, err := s.messageRepo.CountByConversationID(conversationID)
	if err != nil {
		return nil, err
	}
	isFirstMessage := messageCount == 0

	// History snapshot before the new message lands, so the prompt does not
	// carry the current message twice.
	recent, err := s.messageRepo.ListRecentByConversationID(conversationID, s.maxContext)
	if err != nil {
		return nil, err
	}

	userMessage := &model.Message{
		ConversationID: conversationID,
		Role:           model.MessageRoleUser,
		Content:        content,
	}
	if err := s.messageRepo.Create(userMessage); err != nil {
		return nil, err
	}
	s.invalidateHistory(ctx, conversationID)

	if isFirstMessage {
		title := conversationTitle(content)
		if err := s.convRepo.UpdateTitle(conversationID, title); err != nil {
			s.log.Warn("update conversation title failed", zap.Uint("conversation_id", conversationID), zap.Error(err))
		} else {
			conversation.Title = title
		}
	}

	s.storeMemory(ctx, memoryUUID, conversationID, model.MessageRoleUser, content)

	memoryContext := ""
	if s.contextProvider != nil && memoryUUID != "" {
		memoryContext = s.contextProvider.EnhancedContext(ctx, memoryUUID, conversationID, role.ID, content)
	}

	promptMessages := s.buildPromptMessages(role.SystemPrompt, memoryContext, recent, content)

	reply, err := s.completer.Complete(ctx, promptMessages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompletion, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = "The model returned an empty response."
	}

	assistantMessage := &model.Message{
		ConversationID: conversationID,
		Role:           model.MessageRoleAssistant,
		Content:        reply,
	}
	if err := s.messageRepo.Create(assistantMessage); err != nil {
		return nil, err
	}
	s.invalidateHistory(ctx, conversationID)

	s.storeMemory(ctx, memoryUUID, conversationID, model.MessageRoleAssistant, reply)

	if err := s.convRepo.Touch(conversationID); err != nil {
		s.log.Warn("touch conversation failed", zap.Uint("conversation_id", conversationID), zap.Error(err))
	}

	contentHTML, err := markdown.Render(reply)
	if err != nil {
		s.log.Warn("render assistant markdown failed", zap.Error(err))
		contentHTML = ""
	}

	return &SendMessageResult{
		UserMessage: *userMessage,
		AIMessage: AIMessageView{
			Content:     reply,
			ContentHTML: contentHTML,
			CreatedAt:   assistantMessage.CreatedAt,
		},
	}, nil
}

func (s *ChatService) GetHistory(ctx context.Context, userID, conversationID uint, limit int) ([]model.Message, error) {
	if _, err := s.ownedConversation(userID, conversationID); err != nil {
		return nil, err
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, conversationID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, conversationID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messageRepo.ListByConversationID(conversationID, limit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, conversationID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, conversationID, messages)
		}
	}
	return messages, nil
}

func (s *ChatService) DeleteConversation(ctx context.Context, userID, conversationID uint) error {
	if userID == 0 || conversationID == 0 {
		return ErrInvalidInput
	}
	if _, err := s.ownedConversation(userID, conversationID); err != nil {
		return err
	}
	if err := s.convRepo.DeleteWithMessages(conversationID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, conversationID)
	}
	return nil
}

func (s *ChatService) ownedConversation(userID, conversationID uint) (*model.Conversation, error) {
	conversation, err := s.convRepo.GetByIDAndUserID(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}

func (s *ChatService) storeMemory(ctx context.Context, memoryUUID string, conversationID uint, role, content string) {
	if s.ingestor == nil || memoryUUID == "" {
		return
	}
	item := memory.IngestItem{
		Content: memory.FormatMessage(role, content),
		ContainerTags: []string{
			s.scopes.UserTag(memoryUUID),
			s.scopes.ConversationTag(memoryUUID, conversationID),
		},
	}
	if err := s.ingestor.Enqueue(ctx, item); err != nil {
		s.log.Warn("enqueue memory item failed", zap.Uint("conversation_id", conversationID), zap.Error(err))
	}
}

func (s *ChatService) invalidateHistory(ctx context.Context, conversationID uint) {
	if s.historyCache == nil {
		return
	}
	_ = s.historyCache.MarkDirty(ctx, conversationID)
	_ = s.historyCache.DeleteHistory(ctx, conversationID)
}

func (s *ChatService) buildPromptMessages(rolePrompt, memoryContext string, history []model.Message, currentInput string) []ai.ChatMessage {
	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{
		Role:    "system",
		Content: buildSystemPrompt(rolePrompt, memoryContext),
	})
	for _, item := range history {
		role := item.Role
		if role == "" {
			role = model.MessageRoleUser
		}
		messages = append(messages, ai.ChatMessage{
			Role:    role,
			Content: item.Content,
		})
	}

	if isSimpleGreeting(currentInput) {
		currentInput += " (Please respond briefly and concisely.)"
	}
	messages = append(messages, ai.ChatMessage{
		Role:    model.MessageRoleUser,
		Content: currentInput,
	})
	return messages
}

func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

func previewOf(content string) string {
	content = strings.TrimSpace(content)
	if runes := []rune(content); len(runes) > 80 {
		return string(runes[:77]) + "..."
	}
	return content
}
