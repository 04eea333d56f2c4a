package catalog

import "strings"

// Keyword table for deriving a role's catalog category from its name and
// descriptions. Order matters: the first matching category wins.
var categories = []struct {
	Name     string
	Keywords []string
}{
	{"Health & Fitness", []string{
		"diet", "fitness", "health", "nutrition", "exercise", "sleep", "wellness",
		"workout", "meal", "recipe",
	}},
	{"Finance", []string{
		"financial", "tax", "investment", "budget", "debt", "money", "finance",
		"saving", "spending", "coupon",
	}},
	{"Travel", []string{
		"travel", "holiday", "trip", "vacation", "packing", "destination",
	}},
	{"Productivity", []string{
		"productivity", "time management", "task", "schedule", "organization",
		"efficiency", "personal assistant",
	}},
	{"Lifestyle", []string{
		"fashion", "shopping", "home", "decor", "style", "personal shopper",
		"interior", "gift",
	}},
	{"Career", []string{
		"career", "job", "resume", "interview", "business", "sales",
		"professional", "public relations",
	}},
	{"Education", []string{
		"study", "learning", "language", "college", "school", "education",
		"homework", "memory",
	}},
	{"Relationships", []string{
		"relationship", "dating", "social", "etiquette", "compatibility", "love",
	}},
	{"Personal Development", []string{
		"life coach", "confidence", "growth", "mindfulness", "meditation",
		"self-care", "mental health", "stress", "spiritual",
	}},
	{"Creative", []string{
		"writing", "speech", "content", "social media", "public speaking", "voice",
	}},
	{"Parenting & Family", []string{
		"parenting", "parent", "children", "child", "pet",
	}},
	{"Events & Planning", []string{
		"event", "wedding", "party",
	}},
}

const DefaultCategory = "Other"

// Categorize picks the catalog category for a role by keyword match over its
// name and descriptions.
func Categorize(name, shortDescription, longDescription string) string {
	searchText := strings.ToLower(name + " " + shortDescription + " " + longDescription)
	for _, category := range categories {
		for _, keyword := range category.Keywords {
			if strings.Contains(searchText, keyword) {
				return category.Name
			}
		}
	}
	return DefaultCategory
}

// AllCategories lists every category a role can land in, excluding the
// default bucket.
func AllCategories() []string {
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}
	return names
}
