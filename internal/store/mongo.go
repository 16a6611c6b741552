// server/internal/store/mongo.go
package store

import (
	"context"

	"courier-track-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDeliveryStore implements DeliveryStore on the "deliveries" collection.
type MongoDeliveryStore struct {
	DB *mongo.Database
}

func NewMongoDeliveryStore(db *mongo.Database) *MongoDeliveryStore {
	return &MongoDeliveryStore{DB: db}
}

func (s *MongoDeliveryStore) collection() *mongo.Collection {
	return s.DB.Collection("deliveries")
}

func (s *MongoDeliveryStore) FindUnassigned(ctx context.Context, statuses []string, limit int64) ([]models.Delivery, error) {
	// assignedPartner is either missing entirely or explicitly null in
	// legacy documents, both must match.
	filter := bson.M{
		"status": bson.M{"$in": statuses},
		"$or": []bson.M{
			{"assignedPartner": bson.M{"$exists": false}},
			{"assignedPartner": nil},
		},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(limit)

	cursor, err := s.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var deliveries []models.Delivery
	if err = cursor.All(ctx, &deliveries); err != nil {
		return nil, err
	}
	return deliveries, nil
}

func (s *MongoDeliveryStore) FindByTrackingID(ctx context.Context, trackingID string) (*models.Delivery, error) {
	var delivery models.Delivery
	err := s.collection().FindOne(ctx, bson.M{"trackingID": trackingID}).Decode(&delivery)
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (s *MongoDeliveryStore) Update(ctx context.Context, d *models.Delivery) error {
	_, err := s.collection().ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	return err
}

func (s *MongoDeliveryStore) Ping(ctx context.Context) error {
	return s.DB.Client().Ping(ctx, readpref.Primary())
}

// MongoPartnerStore implements PartnerStore on the "partners" collection.
type MongoPartnerStore struct {
	DB *mongo.Database
}

func NewMongoPartnerStore(db *mongo.Database) *MongoPartnerStore {
	return &MongoPartnerStore{DB: db}
}

func (s *MongoPartnerStore) collection() *mongo.Collection {
	return s.DB.Collection("partners")
}

func (s *MongoPartnerStore) FindAssignable(ctx context.Context, online bool) ([]models.Partner, error) {
	filter := bson.M{
		"status":   models.PartnerApproved,
		"isOnline": online,
	}

	// Fewest deliveries first, simple load balancing.
	opts := options.Find().SetSort(bson.D{{Key: "totalDeliveries", Value: 1}})

	cursor, err := s.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var partners []models.Partner
	if err = cursor.All(ctx, &partners); err != nil {
		return nil, err
	}
	return partners, nil
}

func (s *MongoPartnerStore) IncrementTotalDeliveries(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"totalDeliveries": 1}},
	)
	return err
}

func (s *MongoPartnerStore) RecordCompletion(ctx context.Context, id primitive.ObjectID, earnings float64) error {
	_, err := s.collection().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{
			"completedDeliveries": 1,
			"totalEarnings":       earnings,
		}},
	)
	return err
}
