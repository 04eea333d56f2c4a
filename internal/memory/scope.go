package memory

import "fmt"

// ScopeSet derives the container tags that partition stored snippets in the
// external memory API. Tags are deterministic and embed the owning user's
// memory UUID, so two users can never share a scope.
type ScopeSet struct {
	Namespace string
}

func NewScopeSet(namespace string) ScopeSet {
	if namespace == "" {
		namespace = "default"
	}
	return ScopeSet{Namespace: namespace}
}

// UserTag is the cross-conversation scope for one user.
func (s ScopeSet) UserTag(memoryUUID string) string {
	return fmt.Sprintf("%s_user_%s", s.Namespace, memoryUUID)
}

// ConversationTag scopes snippets to a single conversation.
func (s ScopeSet) ConversationTag(memoryUUID string, conversationID uint) string {
	return fmt.Sprintf("%s_user_%s_conv_%d", s.Namespace, memoryUUID, conversationID)
}

// PreferencesTag holds "key: value" preference snippets for one user.
func (s ScopeSet) PreferencesTag(memoryUUID string) string {
	return fmt.Sprintf("%s_user_%s_prefs", s.Namespace, memoryUUID)
}

// RoleTag scopes knowledge shared by every conversation with one AI role.
func (s ScopeSet) RoleTag(roleID uint) string {
	return fmt.Sprintf("%s_role_%d", s.Namespace, roleID)
}
