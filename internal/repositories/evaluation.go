package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"linguamentor/backend/internal/models"
)

type EvaluationRepository interface {
	Create(ctx context.Context, eval *models.Evaluation) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Evaluation, error)
	FindAll(ctx context.Context, skip, limit int64) ([]models.Evaluation, error)
}

type evaluationRepository struct {
	collection *mongo.Collection
}

func NewEvaluationRepository(db *mongo.Database) EvaluationRepository {
	return &evaluationRepository{collection: db.Collection(models.EvaluationsCollection)}
}

// Create inserts a new document. It never upserts: storing the same result
// twice yields two documents.
func (r *evaluationRepository) Create(ctx context.Context, eval *models.Evaluation) error {
	result, err := r.collection.InsertOne(ctx, eval)
	if err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		eval.ID = oid
	}
	return nil
}

func (r *evaluationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Evaluation, error) {
	var eval models.Evaluation
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&eval); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("evaluation %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &eval, nil
}

func (r *evaluationRepository) FindAll(ctx context.Context, skip, limit int64) ([]models.Evaluation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}

	evals := make([]models.Evaluation, 0)
	if err := cursor.All(ctx, &evals); err != nil {
		return nil, fmt.Errorf("failed to decode evaluations: %w", err)
	}
	return evals, nil
}
