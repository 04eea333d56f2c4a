package catalog

import "testing"

func TestCategorize(t *testing.T) {
	cases := []struct {
		name, short, long string
		want              string
	}{
		{"Diet Planner AI", "Meal plans.", "", "Health & Fitness"},
		{"Travel Guide AI", "Trip itineraries.", "", "Travel"},
		{"Resume Builder AI", "Sharper resumes.", "", "Career"},
		{"Meditation Guide AI", "Guided mindfulness.", "", "Personal Development"},
		{"Mystery Helper", "Does things.", "Nothing keyword-shaped.", DefaultCategory},
	}
	for _, tc := range cases {
		if got := Categorize(tc.name, tc.short, tc.long); got != tc.want {
			t.Errorf("Categorize(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCategorizeFirstMatchWins(t *testing.T) {
	// "diet" (Health & Fitness) appears before "travel" in the table.
	if got := Categorize("Diet on Travel AI", "", ""); got != "Health & Fitness" {
		t.Errorf("got %q", got)
	}
}

func TestIcon(t *testing.T) {
	if got := Icon("Fitness Coach AI"); got != "bi-activity" {
		t.Errorf("exact match icon = %q", got)
	}
	if got := Icon("Weekend Trip Helper"); got != "bi-airplane" {
		t.Errorf("keyword icon = %q", got)
	}
	if got := Icon("Completely Unknown"); got != "bi-robot" {
		t.Errorf("fallback icon = %q", got)
	}
}

func TestAllCategoriesExcludesDefault(t *testing.T) {
	for _, name := range AllCategories() {
		if name == DefaultCategory {
			t.Errorf("default bucket %q should not be listed", DefaultCategory)
		}
	}
	if len(AllCategories()) == 0 {
		t.Error("expected at least one category")
	}
}
