// Package mongostore persists users, friendships, check-ins and attendees in
// MongoDB. Check-in locations are stored as GeoJSON points.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hangouts-server/models"
	"hangouts-server/store"
)

type Store struct {
	client      *mongo.Client
	users       *mongo.Collection
	friendships *mongo.Collection
	checkins    *mongo.Collection
	attendees   *mongo.Collection
}

// Connect dials MongoDB, verifies the connection and makes sure the unique
// indexes the services rely on exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Println("Connected to MongoDB")

	db := client.Database(database)
	s := &Store{
		client:      client,
		users:       db.Collection("users"),
		friendships: db.Collection("friendships"),
		checkins:    db.Collection("checkins"),
		attendees:   db.Collection("attendees"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		s.friendships: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "friend_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "friend_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		s.checkins: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "expires_at", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		s.attendees: {
			{Keys: bson.D{{Key: "checkin_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: unique},
		},
	}
	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mapWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	return err
}

func mapFindErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNoRecord
	}
	return err
}

// Users

func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	_, err := s.users.InsertOne(ctx, user)
	return mapWriteErr(err)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	return user, mapFindErr(err)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	return user, mapFindErr(err)
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) SetPushToken(ctx context.Context, userID, token string) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"push_token": token}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNoRecord
	}
	return nil
}

// Friendships

func (s *Store) GetFriendship(ctx context.Context, userID, friendID string) (models.Friendship, error) {
	var f models.Friendship
	err := s.friendships.FindOne(ctx, bson.M{"user_id": userID, "friend_id": friendID}).Decode(&f)
	return f, mapFindErr(err)
}

func (s *Store) InsertFriendship(ctx context.Context, f models.Friendship) error {
	_, err := s.friendships.InsertOne(ctx, f)
	return mapWriteErr(err)
}

func (s *Store) UpdateFriendshipStatus(ctx context.Context, userID, friendID string, from, to models.FriendshipStatus) (bool, error) {
	res, err := s.friendships.UpdateOne(ctx,
		bson.M{"user_id": userID, "friend_id": friendID, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) DeleteFriendship(ctx context.Context, userID, friendID string, status models.FriendshipStatus) (bool, error) {
	res, err := s.friendships.DeleteOne(ctx, bson.M{"user_id": userID, "friend_id": friendID, "status": status})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) ListFriendIDs(ctx context.Context, userID string, status models.FriendshipStatus) ([]string, error) {
	return s.edgeEnds(ctx, bson.M{"user_id": userID, "status": status}, func(f models.Friendship) string { return f.FriendID })
}

func (s *Store) ListRequesterIDs(ctx context.Context, friendID string, status models.FriendshipStatus) ([]string, error) {
	return s.edgeEnds(ctx, bson.M{"friend_id": friendID, "status": status}, func(f models.Friendship) string { return f.UserID })
}

func (s *Store) edgeEnds(ctx context.Context, filter bson.M, pick func(models.Friendship) string) ([]string, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.friendships.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var edges []models.Friendship
	if err := cursor.All(ctx, &edges); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(edges))
	for _, f := range edges {
		ids = append(ids, pick(f))
	}
	return ids, nil
}

// Check-ins

func (s *Store) InsertCheckin(ctx context.Context, c models.Checkin) error {
	_, err := s.checkins.InsertOne(ctx, c)
	return mapWriteErr(err)
}

func (s *Store) GetCheckin(ctx context.Context, id string) (models.Checkin, error) {
	var c models.Checkin
	err := s.checkins.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	return c, mapFindErr(err)
}

// DeleteCheckin removes the check-in and then its attendees. MongoDB has no
// foreign keys, so the cascade is done here.
func (s *Store) DeleteCheckin(ctx context.Context, id string) error {
	res, err := s.checkins.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNoRecord
	}
	_, err = s.attendees.DeleteMany(ctx, bson.M{"checkin_id": id})
	return err
}

func (s *Store) ListActiveCheckins(ctx context.Context, ownerIDs []string, now time.Time) ([]models.Checkin, error) {
	filter := bson.M{
		"user_id":    bson.M{"$in": ownerIDs},
		"expires_at": bson.M{"$gt": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.checkins.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var checkins []models.Checkin
	if err := cursor.All(ctx, &checkins); err != nil {
		return nil, err
	}
	return checkins, nil
}

func (s *Store) CountCheckins(ctx context.Context, userID string) (int64, error) {
	return s.checkins.CountDocuments(ctx, bson.M{"user_id": userID})
}

func (s *Store) ListLocationNames(ctx context.Context, userID string, limit int) ([]string, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"location_name": 1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.checkins.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var rows []struct {
		LocationName string `bson:"location_name"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.LocationName)
	}
	return names, nil
}

// Attendees

func (s *Store) GetAttendee(ctx context.Context, checkinID, userID string) (models.Attendee, error) {
	var a models.Attendee
	err := s.attendees.FindOne(ctx, bson.M{"checkin_id": checkinID, "user_id": userID}).Decode(&a)
	return a, mapFindErr(err)
}

func (s *Store) InsertAttendee(ctx context.Context, a models.Attendee) error {
	_, err := s.attendees.InsertOne(ctx, a)
	return mapWriteErr(err)
}

func (s *Store) ListAttendees(ctx context.Context, checkinID string) ([]models.Attendee, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.attendees.Find(ctx, bson.M{"checkin_id": checkinID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var attendees []models.Attendee
	if err := cursor.All(ctx, &attendees); err != nil {
		return nil, err
	}
	return attendees, nil
}
