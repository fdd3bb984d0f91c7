package validators

import "go.mongodb.org/mongo-driver/bson"

const (
	datePattern   = `^\d{4}-\d{2}-\d{2}$`
	timePattern   = `^([01]\d|2[0-3]):[0-5]\d$`
	slotIDPattern = `^\d{4}-\d{2}-\d{2}_([01]\d|2[0-3])[0-5]\d$`
)

// SlotValidator keys each slot by its date_HHmm token so the primary key
// rejects a second lock on the same time.
var SlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"date",
			"time",
			"booked",
			"booking_id",
			"created_at",
		},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  slotIDPattern,
			},
			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},
			"time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},
			"booked": bson.M{
				"bsonType": "bool",
			},
			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
