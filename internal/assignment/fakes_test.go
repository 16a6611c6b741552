package assignment

import (
	"context"
	"sort"

	"courier-track-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakePartnerStore is an in-memory PartnerStore for tests.
type fakePartnerStore struct {
	partners   []models.Partner
	increments map[primitive.ObjectID]int
	findErr    error
}

func newFakePartnerStore(partners ...models.Partner) *fakePartnerStore {
	return &fakePartnerStore{
		partners:   partners,
		increments: make(map[primitive.ObjectID]int),
	}
}

func (f *fakePartnerStore) FindAssignable(ctx context.Context, online bool) ([]models.Partner, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []models.Partner
	for _, p := range f.partners {
		if p.Status == models.PartnerApproved && p.IsOnline == online {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalDeliveries < out[j].TotalDeliveries
	})
	return out, nil
}

func (f *fakePartnerStore) IncrementTotalDeliveries(ctx context.Context, id primitive.ObjectID) error {
	f.increments[id]++
	for i := range f.partners {
		if f.partners[i].ID == id {
			f.partners[i].TotalDeliveries++
		}
	}
	return nil
}

func (f *fakePartnerStore) RecordCompletion(ctx context.Context, id primitive.ObjectID, earnings float64) error {
	for i := range f.partners {
		if f.partners[i].ID == id {
			f.partners[i].CompletedDeliveries++
			f.partners[i].TotalEarnings += earnings
		}
	}
	return nil
}

func (f *fakePartnerStore) get(id primitive.ObjectID) *models.Partner {
	for i := range f.partners {
		if f.partners[i].ID == id {
			return &f.partners[i]
		}
	}
	return nil
}

// fakeDeliveryStore is an in-memory DeliveryStore for tests.
type fakeDeliveryStore struct {
	deliveries []models.Delivery
	updateErr  map[string]error // per-trackingID injected failure
	pingErr    error
	scans      int
}

func newFakeDeliveryStore(deliveries ...models.Delivery) *fakeDeliveryStore {
	return &fakeDeliveryStore{
		deliveries: deliveries,
		updateErr:  make(map[string]error),
	}
}

func (f *fakeDeliveryStore) FindUnassigned(ctx context.Context, statuses []string, limit int64) ([]models.Delivery, error) {
	f.scans++
	allowed := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		allowed[s] = struct{}{}
	}
	var out []models.Delivery
	for _, d := range f.deliveries {
		if _, ok := allowed[d.Status]; !ok {
			continue
		}
		if d.AssignedPartner != nil {
			continue
		}
		out = append(out, d)
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDeliveryStore) FindByTrackingID(ctx context.Context, trackingID string) (*models.Delivery, error) {
	for i := range f.deliveries {
		if f.deliveries[i].TrackingID == trackingID {
			return &f.deliveries[i], nil
		}
	}
	return nil, nil
}

func (f *fakeDeliveryStore) Update(ctx context.Context, d *models.Delivery) error {
	if err := f.updateErr[d.TrackingID]; err != nil {
		return err
	}
	for i := range f.deliveries {
		if f.deliveries[i].TrackingID == d.TrackingID {
			f.deliveries[i] = *d
			return nil
		}
	}
	f.deliveries = append(f.deliveries, *d)
	return nil
}

func (f *fakeDeliveryStore) Ping(ctx context.Context) error {
	return f.pingErr
}

func (f *fakeDeliveryStore) get(trackingID string) *models.Delivery {
	for i := range f.deliveries {
		if f.deliveries[i].TrackingID == trackingID {
			return &f.deliveries[i]
		}
	}
	return nil
}
