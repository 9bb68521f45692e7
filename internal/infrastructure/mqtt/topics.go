package mqtt

import "strings"

// Topics builds the gateway's topic names under a configurable prefix.
//
//	topics := mqtt.Topics{Prefix: "thsgateway"}
//	topics.Orders("main") // "thsgateway/main/order"
//
// Account display names are used as a topic level; characters MQTT
// reserves are replaced with '_'.
type Topics struct {
	Prefix string
}

// Status is the retained gateway online/offline topic, also used for the
// Last Will.
func (t Topics) Status() string {
	return t.Prefix + "/status"
}

// Session is the retained login state topic for an account.
func (t Topics) Session(account string) string {
	return t.join(account, "session")
}

// Orders carries one event per order sent for an account.
func (t Topics) Orders(account string) string {
	return t.join(account, "order")
}

// Cancels carries one event per cancel request for an account.
func (t Topics) Cancels(account string) string {
	return t.join(account, "cancel")
}

func (t Topics) join(account, leaf string) string {
	return t.Prefix + "/" + topicLevel(account) + "/" + leaf
}

var levelReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_", "\x00", "_")

// topicLevel makes s safe to use as a single topic level.
func topicLevel(s string) string {
	if s == "" {
		return "_"
	}
	return levelReplacer.Replace(s)
}
