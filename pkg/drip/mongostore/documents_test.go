package mongostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
)

func TestRecordFromDoc_MixedTypes(t *testing.T) {
	t.Parallel()

	rec := recordFromDoc(bson.M{
		"randomlevel":    int32(3),
		"target":         "+15551111111,+15552222222",
		"timezone":       "America/New_York",
		"starthour":      "9",
		"startminute":    int64(30),
		"collectionname": "annie",
		"deliverymethod": "txt",
		"frequency":      "daily",
		"_id":            bson.NewObjectID(),
	})

	assert.Equal(t, drip.MasterRecord{
		RandomLevel:    "3",
		Target:         "+15551111111,+15552222222",
		TimeZone:       "America/New_York",
		StartHour:      "9",
		StartMinute:    "30",
		CollectionName: "annie",
		DeliveryMethod: "txt",
		Frequency:      "daily",
	}, rec)

	cfg, err := drip.ParseQueueConfig(rec)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.StartMinute)
}

func TestRecordFromDoc_MissingFields(t *testing.T) {
	t.Parallel()

	rec := recordFromDoc(bson.M{"collectionname": "bob", "starthour": 7.0})
	assert.Equal(t, "bob", rec.CollectionName)
	assert.Equal(t, "7", rec.StartHour)
	assert.Empty(t, rec.Target)
}

func TestMessageDocRoundTrip(t *testing.T) {
	t.Parallel()

	withMedia := drip.Message{OrderID: 1, ID: "a", Text: "hi", MediaURL: "https://example.com/a.jpg"}
	doc := toDoc(withMedia)
	require.NotNil(t, doc.MediaURL)
	assert.Equal(t, withMedia, doc.message())

	noMedia := drip.Message{OrderID: 2, ID: "b", Text: "plain"}
	doc = toDoc(noMedia)
	assert.Nil(t, doc.MediaURL)
	assert.Equal(t, noMedia, doc.message())
}

func TestMessageDoc_OmitsSentWhilePending(t *testing.T) {
	t.Parallel()

	raw, err := bson.Marshal(toDoc(drip.Message{OrderID: 1, ID: "a", Text: "hi"}))
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.NotContains(t, m, "sent")
	assert.NotContains(t, m, "claim")
	assert.Contains(t, m, "mediaurl")
	assert.Nil(t, m["mediaurl"])
}

func TestFilters(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bson.D{
		{Key: "id", Value: "m1"},
		{Key: "sent", Value: bson.D{{Key: "$exists", Value: false}}},
		{Key: "claim", Value: bson.D{{Key: "$ne", Value: "2024-03-07"}}},
	}, claimFilter("m1", "2024-03-07"))

	or := periodFilter("2024-03-07")
	require.Len(t, or, 1)
	assert.Equal(t, "$or", or[0].Key)
}
