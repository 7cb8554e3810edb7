package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const EvaluationsCollection = "evaluations"

// Evaluation is one stored result message.
type Evaluation struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ResultMessage `bson:",inline"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
