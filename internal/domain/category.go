package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Category is a class of point of interest searchable within a radius.
type Category string

const (
	CategorySchools         Category = "schools"
	CategoryTransitStations Category = "transit_stations"
	CategoryRestaurants     Category = "restaurants"
	CategoryGroceryStores   Category = "grocery_stores"
	CategoryParks           Category = "parks"
	CategoryHospitals       Category = "hospitals"
	CategoryPharmacies      Category = "pharmacies"
	CategoryCafes           Category = "cafes"
	CategoryGyms            Category = "gyms"
	CategoryShopping        Category = "shopping"
	CategoryBanks           Category = "banks"
	CategoryLibraries       Category = "libraries"
)

// CategoryInfo describes one entry of the category vocabulary.
type CategoryInfo struct {
	Category      Category `json:"category"`
	Label         string   `json:"label"`
	PlaceType     string   `json:"place_type"`
	DefaultOn     bool     `json:"default_enabled"`
	DefaultRadius int      `json:"default_radius_meters"`
}

// Vocabulary is the single source of truth for categories. Order is the
// display order used in reports.
var Vocabulary = []CategoryInfo{
	{CategorySchools, "Schools", "school", true, 2000},
	{CategoryTransitStations, "Transit stations", "transit_station", true, 1000},
	{CategoryRestaurants, "Restaurants", "restaurant", true, 1000},
	{CategoryGroceryStores, "Grocery stores", "supermarket", true, 1500},
	{CategoryParks, "Parks", "park", true, 1500},
	{CategoryHospitals, "Hospitals", "hospital", true, 5000},
	{CategoryPharmacies, "Pharmacies", "pharmacy", false, 1500},
	{CategoryCafes, "Cafes", "cafe", false, 1000},
	{CategoryGyms, "Gyms", "gym", false, 2000},
	{CategoryShopping, "Shopping", "shopping_mall", false, 3000},
	{CategoryBanks, "Banks", "bank", false, 1500},
	{CategoryLibraries, "Libraries", "library", false, 2500},
}

const (
	MinRadiusMeters = 50
	MaxRadiusMeters = 50000
)

var vocabularyIndex = func() map[Category]CategoryInfo {
	m := make(map[Category]CategoryInfo, len(Vocabulary))
	for _, info := range Vocabulary {
		m[info.Category] = info
	}
	return m
}()

// ParseCategory normalizes and validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := vocabularyIndex[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// IsKnownCategory reports whether s names a vocabulary category.
func IsKnownCategory(s string) bool {
	_, err := ParseCategory(s)
	return err == nil
}

// Info returns the vocabulary entry for c.
func (c Category) Info() (CategoryInfo, bool) {
	info, ok := vocabularyIndex[c]
	return info, ok
}

// DefaultRadius returns the default search radius for c in meters.
func (c Category) DefaultRadius() int {
	return vocabularyIndex[c].DefaultRadius
}

// DefaultCategories returns the standard enabled-category map.
func DefaultCategories() CategorySet {
	out := make(CategorySet, len(Vocabulary))
	for _, info := range Vocabulary {
		out[info.Category] = info.DefaultOn
	}
	return out
}

// DefaultDistances returns the standard radius for every category.
func DefaultDistances() RadiusMap {
	out := make(RadiusMap, len(Vocabulary))
	for _, info := range Vocabulary {
		out[info.Category] = info.DefaultRadius
	}
	return out
}

// priorityCategories maps questionnaire priorities onto the vocabulary.
var priorityCategories = map[string][]Category{
	"family":      {CategorySchools, CategoryParks, CategoryLibraries, CategoryHospitals},
	"commute":     {CategoryTransitStations},
	"nightlife":   {CategoryRestaurants, CategoryCafes},
	"dining":      {CategoryRestaurants, CategoryCafes},
	"fitness":     {CategoryGyms, CategoryParks},
	"healthcare":  {CategoryHospitals, CategoryPharmacies},
	"errands":     {CategoryGroceryStores, CategoryBanks, CategoryPharmacies},
	"shopping":    {CategoryShopping, CategoryGroceryStores},
	"outdoors":    {CategoryParks},
	"education":   {CategorySchools, CategoryLibraries},
	"convenience": {CategoryGroceryStores, CategoryPharmacies, CategoryBanks},
}

// CategoriesForPriorities maps questionnaire priority keywords to an
// enabled-category map. Unknown keywords are ignored.
func CategoriesForPriorities(priorities []string) CategorySet {
	out := CategorySet{}
	for _, p := range priorities {
		for _, c := range priorityCategories[strings.ToLower(strings.TrimSpace(p))] {
			out[c] = true
		}
	}
	return out
}

// SortCategories orders categories by vocabulary position.
func SortCategories(cs []Category) {
	pos := make(map[Category]int, len(Vocabulary))
	for i, info := range Vocabulary {
		pos[info.Category] = i
	}
	sort.SliceStable(cs, func(i, j int) bool { return pos[cs[i]] < pos[cs[j]] })
}
