package domain

// Category is the community a post belongs to.
type Category string

const (
	CategoryInquiry    Category = "Inquiry"
	CategoryDiscovery  Category = "Discovery"
	CategoryExperiment Category = "Experiment"
	CategoryValidate   Category = "Validate"
	CategoryImplement  Category = "Implement"
)

var categories = map[Category]struct{}{
	CategoryInquiry:    {},
	CategoryDiscovery:  {},
	CategoryExperiment: {},
	CategoryValidate:   {},
	CategoryImplement:  {},
}

// Valid reports whether c is one of the known communities.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}
