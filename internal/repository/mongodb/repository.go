package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

const reportsCollection = "finance_reports"

// Repository defines the interface for weekly report snapshots.
type Repository interface {
	SaveFinanceReport(ctx context.Context, report models.FinanceReport) error
	ListFinanceReports(ctx context.Context, userID int64, limit int64) ([]models.FinanceReport, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: reportsCollection,
	}

	// One snapshot per user and week; re-running the job replaces it.
	_, err = repo.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "period_start", Value: -1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create report index: %w", err)
	}

	return repo, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveFinanceReport upserts the report for its user and period.
func (r *MongoDBRepository) SaveFinanceReport(ctx context.Context, report models.FinanceReport) error {
	filter := bson.D{{Key: "user_id", Value: report.UserID}, {Key: "period_start", Value: report.PeriodStart}}
	_, err := r.collection().ReplaceOne(ctx, filter, report, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save finance report: %w", err)
	}
	return nil
}

// ListFinanceReports returns the user's most recent reports, newest first.
func (r *MongoDBRepository) ListFinanceReports(ctx context.Context, userID int64, limit int64) ([]models.FinanceReport, error) {
	if limit <= 0 {
		limit = 12
	}
	opts := options.Find().SetSort(bson.D{{Key: "period_start", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection().Find(ctx, bson.D{{Key: "user_id", Value: userID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query finance reports: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var reports []models.FinanceReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode finance reports: %w", err)
	}
	return reports, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
