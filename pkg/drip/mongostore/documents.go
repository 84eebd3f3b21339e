package mongostore

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
)

// messageDoc is the stored shape of a drip.Message.
type messageDoc struct {
	OrderID  int64   `bson:"orderid"`
	ID       string  `bson:"id"`
	Text     string  `bson:"text"`
	MediaURL *string `bson:"mediaurl,omitempty"`
	Sent     string  `bson:"sent,omitempty"`
	Claim    string  `bson:"claim,omitempty"`
}

func toDoc(m drip.Message) messageDoc {
	d := messageDoc{OrderID: m.OrderID, ID: m.ID, Text: m.Text, Sent: m.Sent}
	if m.MediaURL != "" {
		media := m.MediaURL
		d.MediaURL = &media
	}
	return d
}

func (d messageDoc) message() drip.Message {
	m := drip.Message{OrderID: d.OrderID, ID: d.ID, Text: d.Text, Sent: d.Sent}
	if d.MediaURL != nil {
		m.MediaURL = *d.MediaURL
	}
	return m
}

// recordFromDoc reads a master document. Fields may be stored as strings or
// as numbers; both are turned into their textual form.
func recordFromDoc(doc bson.M) drip.MasterRecord {
	return drip.MasterRecord{
		RandomLevel:    asString(doc["randomlevel"]),
		Target:         asString(doc["target"]),
		TimeZone:       asString(doc["timezone"]),
		StartHour:      asString(doc["starthour"]),
		StartMinute:    asString(doc["startminute"]),
		CollectionName: asString(doc["collectionname"]),
		DeliveryMethod: asString(doc["deliverymethod"]),
		Frequency:      asString(doc["frequency"]),
	}
}

func docFromRecord(rec drip.MasterRecord) bson.M {
	return bson.M{
		"randomlevel":    rec.RandomLevel,
		"target":         rec.Target,
		"timezone":       rec.TimeZone,
		"starthour":      rec.StartHour,
		"startminute":    rec.StartMinute,
		"collectionname": rec.CollectionName,
		"deliverymethod": rec.DeliveryMethod,
		"frequency":      rec.Frequency,
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
