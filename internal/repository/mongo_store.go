package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/helper-marketplace/internal/domain"
)

// Collection names in the document store.
const (
	UsersCollection    = "users"
	HelpersCollection  = "helpers"
	BookingsCollection = "bookings"
	ContactsCollection = "contact_messages"
)

var (
	defaultUserSort    = bson.D{{Key: FieldCreatedAt, Value: 1}}
	defaultHelperSort  = bson.D{{Key: FieldCreatedAt, Value: 1}}
	newestFirst        = bson.D{{Key: FieldCreatedAt, Value: -1}}
	mongoTimePrecision = time.Millisecond
)

// NewMongoStore wires the document-backed repositories and makes sure the
// unique indexes exist.
func NewMongoStore(ctx context.Context, db *mongo.Database) (Store, error) {
	users := db.Collection(UsersCollection)
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return Store{}, fmt.Errorf("create user indexes: %w", err)
	}
	bookings := db.Collection(BookingsCollection)
	if _, err := bookings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: FieldCreatedAt, Value: -1}},
	}); err != nil {
		return Store{}, fmt.Errorf("create booking indexes: %w", err)
	}

	return Store{
		Users:    &mongoUserRepository{col: users},
		Helpers:  &mongoHelperRepository{col: db.Collection(HelpersCollection)},
		Bookings: &mongoBookingRepository{col: bookings},
		Contacts: &mongoContactRepository{col: db.Collection(ContactsCollection)},
	}, nil
}

func mongoNow() time.Time {
	return time.Now().UTC().Truncate(mongoTimePrecision)
}

func findOne[D any, T any](ctx context.Context, col *mongo.Collection, filter bson.D, schema docSchema, convert func(D) (T, error)) (*T, error) {
	raw, err := col.FindOne(ctx, filter).Raw()
	if err != nil {
		return nil, translateMongoError(err)
	}
	var doc D
	if err := strictDecode(raw, schema, &doc); err != nil {
		return nil, err
	}
	out, err := convert(doc)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func findMany[D any, T any](ctx context.Context, col *mongo.Collection, filter bson.D, opts *options.FindOptions, schema docSchema, convert func(D) (T, error)) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateMongoError(err)
	}
	defer cur.Close(ctx)

	var out []T
	for cur.Next(ctx) {
		var doc D
		if err := strictDecode(cur.Current, schema, &doc); err != nil {
			return nil, err
		}
		item, err := convert(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, cur.Err()
}

func replaceByID(ctx context.Context, col *mongo.Collection, id string, doc any) error {
	res, err := col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc)
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// conditionalSet applies set only while the document's status equals from.
func conditionalSet(ctx context.Context, col *mongo.Collection, id, from string, set bson.D) error {
	res, err := col.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "status", Value: from}},
		bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := col.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return translateMongoError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrStale
}

type mongoUserRepository struct {
	col *mongo.Collection
}

func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	now := mongoNow()
	user.ID = uuid.NewString()
	user.Status = activeIfUnset(user.Status)
	user.CreatedAt, user.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, newUserDoc(user))
	return translateMongoError(err)
}

func (r *mongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = mongoNow()
	return replaceByID(ctx, r.col, user.ID, newUserDoc(user))
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id)
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return findOne(ctx, r.col, bson.D{{Key: "_id", Value: id}}, userSchema, userDoc.toDomain)
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findOne(ctx, r.col, bson.D{{Key: "email", Value: email}}, userSchema, userDoc.toDomain)
}

func (r *mongoUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return findOne(ctx, r.col, bson.D{{Key: "username", Value: username}}, userSchema, userDoc.toDomain)
}

func (r *mongoUserRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := bson.D{}
	if filter.Role != nil {
		query = append(query, bson.E{Key: "role", Value: string(*filter.Role)})
	}
	sort, err := mongoSort(filter.OrderBy, userSortable, defaultUserSort)
	if err != nil {
		return nil, err
	}
	return findMany(ctx, r.col, query, options.Find().SetSort(sort), userSchema, userDoc.toDomain)
}

type mongoHelperRepository struct {
	col *mongo.Collection
}

func (r *mongoHelperRepository) Create(ctx context.Context, helper *domain.Helper) error {
	now := mongoNow()
	helper.ID = uuid.NewString()
	helper.CreatedAt, helper.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, newHelperDoc(helper))
	return translateMongoError(err)
}

func (r *mongoHelperRepository) Update(ctx context.Context, helper *domain.Helper) error {
	helper.UpdatedAt = mongoNow()
	return replaceByID(ctx, r.col, helper.ID, newHelperDoc(helper))
}

func (r *mongoHelperRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id)
}

func (r *mongoHelperRepository) GetByID(ctx context.Context, id string) (*domain.Helper, error) {
	return findOne(ctx, r.col, bson.D{{Key: "_id", Value: id}}, helperSchema, helperDoc.toDomain)
}

func (r *mongoHelperRepository) List(ctx context.Context, filter HelperFilter) ([]domain.Helper, error) {
	query := bson.D{}
	if filter.Available != nil {
		query = append(query, bson.E{Key: FieldIsAvailable, Value: *filter.Available})
	}
	if filter.ServiceType != nil {
		query = append(query, bson.E{Key: FieldServiceType, Value: *filter.ServiceType})
	}
	sort, err := mongoSort(filter.OrderBy, helperSortable, defaultHelperSort)
	if err != nil {
		return nil, err
	}
	return findMany(ctx, r.col, query, options.Find().SetSort(sort), helperSchema, helperDoc.toDomain)
}

type mongoBookingRepository struct {
	col *mongo.Collection
}

func (r *mongoBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	now := mongoNow()
	b.ID = uuid.NewString()
	b.CreatedAt, b.UpdatedAt = now, now
	b.ScheduledAt = b.ScheduledAt.UTC().Truncate(mongoTimePrecision)
	_, err := r.col.InsertOne(ctx, newBookingDoc(b))
	return translateMongoError(err)
}

func (r *mongoBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return findOne(ctx, r.col, bson.D{{Key: "_id", Value: id}}, bookingSchema, bookingDoc.toDomain)
}

func (r *mongoBookingRepository) List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	query := bson.D{}
	if filter.UserID != nil {
		query = append(query, bson.E{Key: "user_id", Value: *filter.UserID})
	}
	if filter.HelperID != nil {
		query = append(query, bson.E{Key: "helper_id", Value: *filter.HelperID})
	}
	if filter.Status != nil {
		query = append(query, bson.E{Key: "status", Value: string(*filter.Status)})
	}
	sort, err := mongoSort(filter.OrderBy, bookingSortable, newestFirst)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(sort)
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return findMany(ctx, r.col, query, opts, bookingSchema, bookingDoc.toDomain)
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus, completedAt *time.Time) error {
	set := bson.D{{Key: "status", Value: string(to)}, {Key: "updated_at", Value: mongoNow()}}
	if completedAt != nil {
		set = append(set, bson.E{Key: "completed_at", Value: completedAt.UTC()})
	}
	return conditionalSet(ctx, r.col, id, string(from), set)
}

type mongoContactRepository struct {
	col *mongo.Collection
}

func (r *mongoContactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	msg.ID = uuid.NewString()
	msg.CreatedAt = mongoNow()
	_, err := r.col.InsertOne(ctx, newContactDoc(msg))
	return translateMongoError(err)
}

func (r *mongoContactRepository) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	return findOne(ctx, r.col, bson.D{{Key: "_id", Value: id}}, contactSchema, contactDoc.toDomain)
}

func (r *mongoContactRepository) List(ctx context.Context, filter ContactFilter) ([]domain.ContactMessage, error) {
	query := bson.D{}
	if filter.Status != nil {
		query = append(query, bson.E{Key: "status", Value: string(*filter.Status)})
	}
	sort, err := mongoSort(filter.OrderBy, contactSortable, newestFirst)
	if err != nil {
		return nil, err
	}
	return findMany(ctx, r.col, query, options.Find().SetSort(sort), contactSchema, contactDoc.toDomain)
}

func (r *mongoContactRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ContactStatus) error {
	return conditionalSet(ctx, r.col, id, string(from), bson.D{{Key: "status", Value: string(to)}})
}

func (r *mongoContactRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id)
}
