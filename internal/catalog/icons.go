package catalog

import "strings"

// Bootstrap Icon classes for well-known role names.
var roleIcons = map[string]string{
	"Diet Planner AI":         "bi-egg-fried",
	"Fitness Coach AI":        "bi-activity",
	"Sleep Coach AI":          "bi-moon-stars",
	"Nutritionist AI":         "bi-apple",
	"Financial Advisor AI":    "bi-cash-stack",
	"Tax Assistant AI":        "bi-receipt",
	"Investment Advisor AI":   "bi-graph-up-arrow",
	"Travel Guide AI":         "bi-geo-alt",
	"Holiday Planner AI":      "bi-airplane",
	"Productivity Coach AI":   "bi-rocket-takeoff",
	"Personal Assistant AI":   "bi-calendar-event",
	"Fashion Stylist AI":      "bi-bag",
	"Interior Designer AI":    "bi-house-heart",
	"Career Coach AI":         "bi-briefcase",
	"Resume Builder AI":       "bi-file-earmark-text",
	"Study Buddy AI":          "bi-book-half",
	"Language Learning AI":    "bi-translate",
	"Relationship Advisor AI": "bi-heart-fill",
	"Life Coach AI":           "bi-compass",
	"Meditation Guide AI":     "bi-circle",
	"Public Speaking Coach AI": "bi-mic",
	"Parenting Advisor AI":    "bi-people-fill",
	"Event Planner AI":        "bi-calendar-event",
	"Wedding Planner AI":      "bi-heart",
	"Legal Advisor AI":        "bi-scale",
}

// Icon returns the Bootstrap Icon class for a role name: exact match first,
// then keyword fallback, then a generic robot.
func Icon(roleName string) string {
	if icon, ok := roleIcons[roleName]; ok {
		return icon
	}

	lower := strings.ToLower(roleName)
	switch {
	case strings.Contains(lower, "diet"), strings.Contains(lower, "meal"), strings.Contains(lower, "nutrition"):
		return "bi-apple"
	case strings.Contains(lower, "fitness"), strings.Contains(lower, "exercise"), strings.Contains(lower, "workout"):
		return "bi-activity"
	case strings.Contains(lower, "sleep"):
		return "bi-moon-stars"
	case strings.Contains(lower, "health"):
		return "bi-heart-pulse"
	case strings.Contains(lower, "financ"), strings.Contains(lower, "budget"):
		return "bi-cash-stack"
	case strings.Contains(lower, "travel"), strings.Contains(lower, "holiday"), strings.Contains(lower, "trip"):
		return "bi-airplane"
	case strings.Contains(lower, "career"), strings.Contains(lower, "job"):
		return "bi-briefcase"
	case strings.Contains(lower, "study"), strings.Contains(lower, "learning"), strings.Contains(lower, "education"):
		return "bi-book-half"
	case strings.Contains(lower, "relationship"), strings.Contains(lower, "love"):
		return "bi-heart-fill"
	case strings.Contains(lower, "coach"):
		return "bi-compass"
	case strings.Contains(lower, "writing"):
		return "bi-pencil-square"
	case strings.Contains(lower, "speech"), strings.Contains(lower, "speaking"), strings.Contains(lower, "voice"):
		return "bi-mic"
	case strings.Contains(lower, "parent"):
		return "bi-people-fill"
	case strings.Contains(lower, "event"), strings.Contains(lower, "wedding"):
		return "bi-calendar-event"
	}
	return "bi-robot"
}
