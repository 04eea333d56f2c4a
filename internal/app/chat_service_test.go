package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"gorm.io/gorm"

	"rolechat/internal/ai"
	"rolechat/internal/memory"
	"rolechat/internal/model"
	"rolechat/internal/repository"
)

type fakeCompleter struct {
	reply string
	err   error
	got   [][]ai.ChatMessage
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.got = append(f.got, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeContextProvider struct {
	context string
}

func (f *fakeContextProvider) EnhancedContext(_ context.Context, _ string, _, _ uint, _ string) string {
	return f.context
}

type recordingIngestor struct {
	items []memory.IngestItem
}

func (r *recordingIngestor) Enqueue(_ context.Context, item memory.IngestItem) error {
	r.items = append(r.items, item)
	return nil
}

type chatFixture struct {
	db        *gorm.DB
	svc       *ChatService
	completer *fakeCompleter
	ingestor  *recordingIngestor
	user      *model.User
	role      *model.AIRole
	conv      *model.Conversation
}

func newChatFixture(t *testing.T, maxContext int) *chatFixture {
	t.Helper()
	db := newTestDB(t)

	user := &model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	role := &model.AIRole{
		Name:             "Fitness Coach AI",
		ShortDescription: "Workouts.",
		SystemPrompt:     "You are a fitness coach.",
	}
	if err := db.Create(role).Error; err != nil {
		t.Fatalf("create role: %v", err)
	}

	completer := &fakeCompleter{reply: "Here is your workout plan."}
	ingestor := &recordingIngestor{}
	svc := NewChatService(
		repository.NewUserRepository(db),
		repository.NewRoleRepository(db),
		repository.NewConversationRepository(db),
		repository.NewMessageRepository(db),
		completer,
		&fakeContextProvider{context: "Relevant User History:\n[USER] I run daily"},
		ingestor,
		memory.NewScopeSet("test"),
		nil,
		maxContext,
		nil,
	)

	conv, err := svc.CreateConversation(user.ID, role.ID)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	return &chatFixture{
		db:        db,
		svc:       svc,
		completer: completer,
		ingestor:  ingestor,
		user:      user,
		role:      role,
		conv:      conv,
	}
}

func (f *chatFixture) messages(t *testing.T) []model.Message {
	t.Helper()
	var rows []model.Message
	if err := f.db.Where("conversation_id = ?", f.conv.ID).Order("id ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load messages: %v", err)
	}
	return rows
}

func TestSendMessagePersistsExchange(t *testing.T) {
	f := newChatFixture(t, 20)

	result, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, f.user.MemoryUUID, "  Build me a plan  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if result.UserMessage.Content != "Build me a plan" {
		t.Errorf("user message = %q, want trimmed content", result.UserMessage.Content)
	}
	if result.AIMessage.Content != "Here is your workout plan." {
		t.Errorf("ai message = %q", result.AIMessage.Content)
	}
	if result.AIMessage.ContentHTML == "" {
		t.Error("expected rendered html for the assistant reply")
	}

	rows := f.messages(t)
	if len(rows) != 2 {
		t.Fatalf("message rows = %d, want 2", len(rows))
	}
	if rows[0].Role != model.MessageRoleUser || rows[1].Role != model.MessageRoleAssistant {
		t.Errorf("row roles = %q, %q; want user then assistant", rows[0].Role, rows[1].Role)
	}
}

func TestSendMessageSetsTitleFromFirstMessage(t *testing.T) {
	f := newChatFixture(t, 20)

	if _, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, f.user.MemoryUUID, "Plan my marathon training"); err != nil {
		t.Fatalf("send: %v", err)
	}

	var conv model.Conversation
	if err := f.db.First(&conv, f.conv.ID).Error; err != nil {
		t.Fatalf("reload conversation: %v", err)
	}
	if conv.Title != "Plan my marathon training" {
		t.Errorf("title = %q", conv.Title)
	}

	// A second message must not rewrite the title.
	if _, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, f.user.MemoryUUID, "Something else entirely"); err != nil {
		t.Fatalf("second send: %v", err)
	}
	if err := f.db.First(&conv, f.conv.ID).Error; err != nil {
		t.Fatalf("reload conversation: %v", err)
	}
	if conv.Title != "Plan my marathon training" {
		t.Errorf("title after second message = %q", conv.Title)
	}
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	f := newChatFixture(t, 20)

	if _, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, f.user.MemoryUUID, "   \n\t "); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("err = %v, want ErrMessageEmpty", err)
	}
	if rows := f.messages(t); len(rows) != 0 {
		t.Errorf("empty message must not persist rows, got %d", len(rows))
	}
}

func TestSendMessageForeignConversation(t *testing.T) {
	f := newChatFixture(t, 20)

	other := &model.User{Username: "mallory", Email: "mallory@example.com", PasswordHash: "x"}
	if err := f.db.Create(other).Error; err != nil {
		t.Fatalf("create other user: %v", err)
	}

	if _, err := f.svc.SendMessage(context.Background(), other.ID, f.conv.ID, other.MemoryUUID, "hello"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("err = %v, want ErrConversationNotFound", err)
	}
	if rows := f.messages(t); len(rows) != 0 {
		t.Errorf("cross-user send must not persist rows, got %d", len(rows))
	}
}

func TestSendMessageCompletionFailureKeepsUserRow(t *testing.T) {
	f := newChatFixture(t, 20)
	f.completer.err = errors.New("upstream 500")

	_, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, f.user.MemoryUUID, "hello")
	if !errors.Is(err, ErrCompletion) {
		t.Fatalf("err = %v, want ErrCompletion", err)
	}

	rows := f.messages(t)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want only the user message", len(rows))
	}
	if rows[0].Role != model.MessageRoleUser {
		t.Errorf("surviving row role = %q", rows[0].Role)
	}
}

func TestSendMessagePromptAssembly(t *testing.T) {
	f := newChatFixture(t, 20)

	if _, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, f.user.MemoryUUID, "Plan my week"); err != nil {
		t.Fatalf("send: %v", err)
	}

	prompt := f.completer.got[0]
	if prompt[0].Role != "system" {
		t.Fatalf("first prompt message role = %q", prompt[0].Role)
	}
	if !strings.Contains(prompt[0].Content, "You are a fitness coach.") {
		t.Error("system prompt missing role prompt")
	}
	if !strings.Contains(prompt[0].Content, "I run daily") {
		t.Error("system prompt missing memory context")
	}
	last := prompt[len(prompt)-1]
	if last.Role != model.MessageRoleUser || last.Content != "Plan my week" {
		t.Errorf("last prompt message = %+v", last)
	}
}

func TestSendMessageContextWindow(t *testing.T) {
	f := newChatFixture(t, 4)

	for i := 0; i < 4; i++ {
		if _, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, f.user.MemoryUUID, "message"); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	// After 3 exchanges there are 6 stored rows; the 4th prompt must carry
	// only the newest 4 as history: system + 4 + current = 6.
	lastPrompt := f.completer.got[len(f.completer.got)-1]
	if len(lastPrompt) != 6 {
		t.Errorf("prompt size = %d, want 6", len(lastPrompt))
	}
}

func TestSendMessageGreetingSuffix(t *testing.T) {
	f := newChatFixture(t, 20)

	if _, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, f.user.MemoryUUID, "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	prompt := f.completer.got[0]
	last := prompt[len(prompt)-1]
	if !strings.Contains(last.Content, "(Please respond briefly and concisely.)") {
		t.Errorf("greeting should carry the brevity hint, got %q", last.Content)
	}

	rows := f.messages(t)
	if rows[0].Content != "hi" {
		t.Errorf("stored user message = %q, hint must not be persisted", rows[0].Content)
	}
}

func TestSendMessageIngestsBothScopes(t *testing.T) {
	f := newChatFixture(t, 20)

	if _, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, f.user.MemoryUUID, "hello coach"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(f.ingestor.items) != 2 {
		t.Fatalf("ingested items = %d, want user + assistant", len(f.ingestor.items))
	}

	var dbUser model.User
	if err := f.db.First(&dbUser, f.user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	scopes := memory.NewScopeSet("test")
	wantTags := []string{
		scopes.UserTag(dbUser.MemoryUUID),
		scopes.ConversationTag(dbUser.MemoryUUID, f.conv.ID),
	}

	first := f.ingestor.items[0]
	if !strings.HasPrefix(first.Content, "[USER] ") {
		t.Errorf("first ingested content = %q", first.Content)
	}
	if len(first.ContainerTags) != 2 || first.ContainerTags[0] != wantTags[0] || first.ContainerTags[1] != wantTags[1] {
		t.Errorf("container tags = %v, want %v", first.ContainerTags, wantTags)
	}
	if !strings.HasPrefix(f.ingestor.items[1].Content, "[ASSISTANT] ") {
		t.Errorf("second ingested content = %q", f.ingestor.items[1].Content)
	}
}

func TestSendMessageFallsBackToStoredMemoryUUID(t *testing.T) {
	f := newChatFixture(t, 20)

	if _, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, "", "hello coach"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(f.ingestor.items) != 2 {
		t.Fatalf("ingested items = %d, want user + assistant", len(f.ingestor.items))
	}

	var dbUser model.User
	if err := f.db.First(&dbUser, f.user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	scopes := memory.NewScopeSet("test")
	wantUserTag := scopes.UserTag(dbUser.MemoryUUID)
	if tags := f.ingestor.items[0].ContainerTags; len(tags) != 2 || tags[0] != wantUserTag {
		t.Errorf("container tags = %v, want first %q", tags, wantUserTag)
	}
}

func TestPreviewOfKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("你", 100)
	got := previewOf(long)
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid utf-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long preview should end with ellipsis, got %q", got)
	}
	if runes := []rune(got); len(runes) != 80 {
		t.Errorf("preview runes = %d, want 80", len(runes))
	}

	if got := previewOf("short message"); got != "short message" {
		t.Errorf("short preview = %q", got)
	}
}

func TestCreateConversationUnknownRole(t *testing.T) {
	f := newChatFixture(t, 20)
	if _, err := f.svc.CreateConversation(f.user.ID, 999); !errors.Is(err, ErrRoleNotFound) {
		t.Errorf("err = %v, want ErrRoleNotFound", err)
	}
}

func TestListConversationsWithPreview(t *testing.T) {
	f := newChatFixture(t, 20)

	if _, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, f.user.MemoryUUID, "hello coach"); err != nil {
		t.Fatalf("send: %v", err)
	}

	views, err := f.svc.ListConversations(f.user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	if views[0].RoleName != "Fitness Coach AI" {
		t.Errorf("role name = %q", views[0].RoleName)
	}
	if views[0].LastMessage == "" {
		t.Error("expected a last-message preview")
	}
}

func TestGetHistoryOrdering(t *testing.T) {
	f := newChatFixture(t, 20)

	for _, content := range []string{"first", "second"} {
		if _, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, f.user.MemoryUUID, content); err != nil {
			t.Fatalf("send %q: %v", content, err)
		}
	}

	history, err := f.svc.GetHistory(context.Background(), f.user.ID, f.conv.ID, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("history rows = %d, want 4", len(history))
	}
	if history[0].Content != "first" || history[2].Content != "second" {
		t.Errorf("history out of order: %q, %q", history[0].Content, history[2].Content)
	}
}

func TestDeleteConversationCascades(t *testing.T) {
	f := newChatFixture(t, 20)

	if _, err := f.svc.SendMessage(context.Background(), f.user.ID, f.conv.ID, f.user.MemoryUUID, "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := f.svc.DeleteConversation(context.Background(), f.user.ID, f.conv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var convCount, msgCount int64
	f.db.Model(&model.Conversation{}).Where("id = ?", f.conv.ID).Count(&convCount)
	f.db.Model(&model.Message{}).Where("conversation_id = ?", f.conv.ID).Count(&msgCount)
	if convCount != 0 || msgCount != 0 {
		t.Errorf("after delete: conversations = %d, messages = %d; want 0, 0", convCount, msgCount)
	}

	if err := f.svc.DeleteConversation(context.Background(), f.user.ID, f.conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("second delete err = %v, want ErrConversationNotFound", err)
	}
}

func TestDeleteConversationForeignUser(t *testing.T) {
	f := newChatFixture(t, 20)

	other := &model.User{Username: "mallory", Email: "mallory@example.com", PasswordHash: "x"}
	if err := f.db.Create(other).Error; err != nil {
		t.Fatalf("create other user: %v", err)
	}

	if err := f.svc.DeleteConversation(context.Background(), other.ID, f.conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("err = %v, want ErrConversationNotFound", err)
	}
}
