package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	conversationSearchLimit = 10
	userSearchLimit         = 5
	roleSearchLimit         = 3
	preferencesSearchLimit  = 50
)

// Searcher is the read side of the memory API.
type Searcher interface {
	Search(ctx context.Context, query, containerTag string, limit int) ([]Result, error)
}

// ContextBuilder assembles the combined context block sent alongside the
// system prompt. Every retrieval failure degrades to an empty section; the
// chat request itself never fails because memory is unreachable.
type ContextBuilder struct {
	searcher Searcher
	scopes   ScopeSet
	log      *zap.Logger
}

func NewContextBuilder(searcher Searcher, scopes ScopeSet, log *zap.Logger) *ContextBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContextBuilder{searcher: searcher, scopes: scopes, log: log}
}

// FormatMessage is the storage form of a chat message: role marker + content.
func FormatMessage(role, content string) string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(role), content)
}

// EnhancedContext concatenates conversation-scope, user-scope, role-scope and
// preference snippets under section labels. Sections with no results are
// omitted; the upstream API enforces its own length budget, so nothing is
// truncated here.
func (b *ContextBuilder) EnhancedContext(ctx context.Context, memoryUUID string, conversationID, roleID uint, query string) string {
	var sections []string

	convResults := b.search(ctx, query, b.scopes.ConversationTag(memoryUUID, conversationID), conversationSearchLimit)
	if block := joinResults(convResults); block != "" {
		sections = append(sections, "Previous Conversation Context:\n"+block)
	}

	userResults := b.search(ctx, query, b.scopes.UserTag(memoryUUID), userSearchLimit)
	if block := joinResults(userResults); block != "" {
		sections = append(sections, "Relevant User History:\n"+block)
	}

	roleResults := b.search(ctx, query, b.scopes.RoleTag(roleID), roleSearchLimit)
	if block := joinResults(roleResults); block != "" {
		sections = append(sections, "Role Knowledge:\n"+block)
	}

	if prefs := b.Preferences(ctx, memoryUUID); len(prefs) > 0 {
		keys := make([]string, 0, len(prefs))
		for key := range prefs {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		lines := make([]string, 0, len(keys))
		for _, key := range keys {
			lines = append(lines, key+": "+prefs[key])
		}
		sections = append(sections, "User Preferences:\n"+strings.Join(lines, "\n"))
	}

	return strings.Join(sections, "\n\n")
}

// Preferences retrieves stored "key: value" snippets and parses them back
// into a map. Later snippets win on duplicate keys.
func (b *ContextBuilder) Preferences(ctx context.Context, memoryUUID string) map[string]string {
	results := b.search(ctx, "preferences", b.scopes.PreferencesTag(memoryUUID), preferencesSearchLimit)
	if len(results) == 0 {
		return nil
	}

	prefs := make(map[string]string)
	for _, result := range results {
		key, value, ok := strings.Cut(result.Content, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key != "" && value != "" {
			prefs[key] = value
		}
	}
	if len(prefs) == 0 {
		return nil
	}
	return prefs
}

func (b *ContextBuilder) search(ctx context.Context, query, tag string, limit int) []Result {
	results, err := b.searcher.Search(ctx, query, tag, limit)
	if err != nil {
		b.log.Warn("memory search failed", zap.String("container_tag", tag), zap.Error(err))
		return nil
	}
	return results
}

func joinResults(results []Result) string {
	var parts []string
	for _, result := range results {
		if strings.TrimSpace(result.Content) == "" {
			continue
		}
		parts = append(parts, result.Content)
	}
	return strings.Join(parts, "\n")
}
