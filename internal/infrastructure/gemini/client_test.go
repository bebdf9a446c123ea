package gemini

import (
	"strings"
	"testing"

	"github.com/gdugdh24/location-insights/internal/domain"
)

func TestFallbackSummary(t *testing.T) {
	profile := &domain.DistanceProfile{
		LineItems: []domain.LineItem{
			{Category: domain.CategorySchools, RadiusMeters: 1000, Places: domain.Places{
				{Name: "Lord Roberts Elementary", DistanceMeters: 412.4},
				{Name: "King George Secondary", DistanceMeters: 880},
			}},
			{Category: domain.CategoryParks, RadiusMeters: 500},
		},
	}

	got := FallbackSummary(profile)
	if !strings.Contains(got, "schools (Lord Roberts Elementary, 412 m)") {
		t.Errorf("summary does not mention nearest school: %q", got)
	}
	if strings.Contains(got, "King George") {
		t.Errorf("summary should only mention the nearest place: %q", got)
	}
	if !strings.Contains(got, "No parks within") {
		t.Errorf("summary does not mention empty category: %q", got)
	}
}

func TestFallbackSummaryEmpty(t *testing.T) {
	got := FallbackSummary(&domain.DistanceProfile{})
	if got != "No nearby amenities were found within the selected distances." {
		t.Errorf("unexpected summary %q", got)
	}
}

func TestDescribeLineItemsCapsPlaces(t *testing.T) {
	places := domain.Places{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	got := describeLineItems(&domain.DistanceProfile{
		LineItems: []domain.LineItem{{Category: domain.CategoryCafes, RadiusMeters: 300, Places: places}},
	})
	if strings.Contains(got, " d ") {
		t.Errorf("expected at most %d places, got %q", nearestPerCategory, got)
	}
	if !strings.HasPrefix(got, "- Cafes (within 300m):") {
		t.Errorf("unexpected description %q", got)
	}
}
