package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cares/internal/model"
)

// ReportRepo stores assessment records. Records are append-only.
type ReportRepo interface {
	Save(ctx context.Context, rec *model.ReportRecord) error
	// List returns summaries in insertion (id) order
	List(ctx context.Context) ([]model.ReportSummary, error)
	// GetByID returns nil, nil when the record does not exist
	GetByID(ctx context.Context, id int64) (*model.ReportRecord, error)
}

type reportRepo struct {
	reports *mongo.Collection
}

// NewReportRepo creates a new MongoDB report repository
func NewReportRepo(db *mongo.Database) ReportRepo {
	return &reportRepo{
		reports: db.Collection("reports"),
	}
}

func (r *reportRepo) Save(ctx context.Context, rec *model.ReportRecord) error {
	_, err := r.reports.InsertOne(ctx, rec)
	return err
}

// summaryDoc is the projected shape read by List
type summaryDoc struct {
	ID        int64           `bson:"_id"`
	Timestamp float64         `bson:"timestamp"`
	Child     model.ChildInfo `bson:"child"`
	Scores    model.Scores    `bson:"scores"`
}

func (r *reportRepo) List(ctx context.Context) ([]model.ReportSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1, "timestamp": 1, "child.child_name": 1, "scores": 1})

	cursor, err := r.reports.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summaries := []model.ReportSummary{}
	for cursor.Next(ctx) {
		var doc summaryDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		summaries = append(summaries, model.ReportSummary{
			ID:        doc.ID,
			Timestamp: doc.Timestamp,
			Child:     doc.Child.ChildName,
			Scores:    doc.Scores,
		})
	}
	return summaries, cursor.Err()
}

func (r *reportRepo) GetByID(ctx context.Context, id int64) (*model.ReportRecord, error) {
	var rec model.ReportRecord
	err := r.reports.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
