package compliance

import "strings"

// Topic is one of the mandatory privacy webhooks. Anything the platform sends
// that is not one of them parses to TopicUnknown.
type Topic int

const (
	TopicUnknown Topic = iota
	TopicCustomersDataRequest
	TopicCustomersRedact
	TopicShopRedact
)

var topicNames = map[Topic]string{
	TopicCustomersDataRequest: "customers/data_request",
	TopicCustomersRedact:      "customers/redact",
	TopicShopRedact:           "shop/redact",
}

func ParseTopic(raw string) Topic {
	raw = strings.TrimSpace(raw)
	for t, name := range topicNames {
		if name == raw {
			return t
		}
	}
	return TopicUnknown
}

func (t Topic) String() string {
	if name, ok := topicNames[t]; ok {
		return name
	}
	return "unknown"
}

func (t Topic) IsCompliance() bool {
	return t != TopicUnknown
}
