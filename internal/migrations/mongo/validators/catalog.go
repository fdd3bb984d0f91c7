package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"icon_key",
			"title",
			"active",
			"order",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"icon_key": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Wrench", "Gauge", "Settings", "Car", "ShieldCheck",
					"Hammer", "Sparkles", "Zap", "BatteryCharging",
				},
			},
			"title": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},
			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},
			"price_label": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},
			"active": bson.M{"bsonType": "bool"},
			"order":  bson.M{"bsonType": []string{"int", "long"}},
		},
	},
}

var PricingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"price",
			"details",
			"currency",
			"active",
			"order",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},
			"price": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},
			"details": bson.M{
				"bsonType": "array",
				"minItems": 3,
				"maxItems": 3,
				"items":    bson.M{"bsonType": "string", "maxLength": 200},
			},
			"currency": bson.M{
				"bsonType": "string",
				"pattern":  `^[A-Z]{3}$`,
			},
			"active": bson.M{"bsonType": "bool"},
			"order":  bson.M{"bsonType": []string{"int", "long"}},
		},
	},
}
