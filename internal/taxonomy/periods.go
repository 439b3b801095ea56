package taxonomy

// Period is a named trailing time window.
type Period string

const (
	Today Period = "today"
	Week  Period = "week"
	Month Period = "month"
)

// Days returns how many calendar days, including today, the period covers.
func (p Period) Days() int {
	switch p {
	case Week:
		return 7
	case Month:
		return 30
	default:
		return 1
	}
}

// ParsePeriod validates a period tag.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case Today, Week, Month:
		return Period(s), true
	}
	return "", false
}

// Interval is the bucket width for entity history.
type Interval string

const (
	Hourly Interval = "hourly"
	Daily  Interval = "daily"
)

// ParseInterval validates an interval tag.
func ParseInterval(s string) (Interval, bool) {
	switch Interval(s) {
	case Hourly, Daily:
		return Interval(s), true
	}
	return "", false
}

// EntityType is the kind of a named entity.
type EntityType string

const (
	Location     EntityType = "location"
	Person       EntityType = "person"
	Organization EntityType = "organization"
)

// ParseEntityType validates an entity type.
func ParseEntityType(s string) (EntityType, bool) {
	switch EntityType(s) {
	case Location, Person, Organization:
		return EntityType(s), true
	}
	return "", false
}

// MentionLabel is the NER label raw mentions of this type are stored under.
func (e EntityType) MentionLabel() string {
	switch e {
	case Location:
		return "gpe"
	case Organization:
		return "org"
	default:
		return string(e)
	}
}
