package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"date",
			"time",
			"name",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"time": bson.M{
				"bsonType": "string",
				"pattern":  timePattern,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{1,14}$`,
			},

			"email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"service": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"price": bson.M{
				"bsonType":  "string",
				"maxLength": 50,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"booked",
					"cancelled",
					"completed",
				},
			},

			"slot_id": bson.M{
				"bsonType": "string",
				"pattern":  slotIDPattern,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
