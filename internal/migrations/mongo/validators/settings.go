package validators

import "go.mongodb.org/mongo-driver/bson"

var dayBand = bson.M{
	"bsonType": "object",
	"properties": bson.M{
		"open":   bson.M{"bsonType": "string", "pattern": timePattern},
		"close":  bson.M{"bsonType": "string", "pattern": timePattern},
		"closed": bson.M{"bsonType": "bool"},
	},
}

var SettingsValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"timezone",
			"slot_duration_minutes",
			"hours",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"timezone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"slot_duration_minutes": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  30,
				"maximum":  480,
			},
			"hours": bson.M{
				"bsonType": "object",
				"required": []string{"mon_fri", "sat", "sun"},
				"properties": bson.M{
					"mon_fri": dayBand,
					"sat":     dayBand,
					"sun":     dayBand,
				},
			},
			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
