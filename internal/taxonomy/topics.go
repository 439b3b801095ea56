package taxonomy

// Topic is a canonical topic tag.
type Topic string

const (
	Politics      Topic = "politics"
	Business      Topic = "business"
	Economy       Topic = "economy"
	Technology    Topic = "technology"
	Science       Topic = "science"
	Health        Topic = "health"
	Environment   Topic = "environment"
	Sports        Topic = "sports"
	Entertainment Topic = "entertainment"
	Conflict      Topic = "conflict"
	Crime         Topic = "crime"
)

// Topics lists every topic tag.
var Topics = []Topic{
	Politics, Business, Economy, Technology, Science, Health,
	Environment, Sports, Entertainment, Conflict, Crime,
}

var topicLabels = map[Topic]string{
	Politics:      "Politics",
	Business:      "Business",
	Economy:       "Economy",
	Technology:    "Technology",
	Science:       "Science",
	Health:        "Health",
	Environment:   "Environment",
	Sports:        "Sports",
	Entertainment: "Entertainment",
	Conflict:      "Conflict",
	Crime:         "Crime",
}

// ParseTopic validates a topic tag.
func ParseTopic(s string) (Topic, bool) {
	t := Topic(s)
	_, ok := topicLabels[t]
	return t, ok
}

// Label returns the display label stored on story_topics rows.
// Unknown topics yield "".
func (t Topic) Label() string {
	return topicLabels[t]
}
