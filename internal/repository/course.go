package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/advancelms/lms-api/internal/model"
)

// CourseRepository defines the interface for course-related database operations.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course *model.Course) (*model.Course, error)
	GetCourse(ctx context.Context, id string) (*model.Course, error)

	// GetCourseAndIncrementViews returns the course after atomically adding 1
	// to its view counter.
	GetCourseAndIncrementViews(ctx context.Context, id string) (*model.Course, error)

	// ListCourses returns every course with the lectures field omitted.
	ListCourses(ctx context.Context) ([]*model.Course, error)

	// AddLecture appends a lecture and bumps num_of_videos in a single
	// document write, keeping the counter equal to the lecture count.
	AddLecture(ctx context.Context, courseID string, lecture model.Lecture) (*model.Course, error)

	// RemoveLecture pulls the lecture and decrements num_of_videos in a single
	// document write. Returns mongo.ErrNoDocuments when the course does not
	// contain the lecture.
	RemoveLecture(ctx context.Context, courseID, lectureID string) (*model.Course, error)

	DeleteCourse(ctx context.Context, id string) (*model.Course, error)
}

const courseCollection = "courses"

type courseMongoRepository struct {
	db *mongo.Database
}

func NewCourseMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) CourseRepository {
	collection := db.Collection(courseCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create course indexes")
	}

	return &courseMongoRepository{db: db}
}

func (r *courseMongoRepository) CreateCourse(ctx context.Context, course *model.Course) (*model.Course, error) {
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	if course.Lectures == nil {
		course.Lectures = []model.Lecture{}
	}
	course.NumOfVideos = len(course.Lectures)

	result, err := r.db.Collection(courseCollection).InsertOne(ctx, course)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		course.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return course, nil
}

func (r *courseMongoRepository) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(courseCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var course model.Course
	if err := result.Decode(&course); err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseMongoRepository) GetCourseAndIncrementViews(
	ctx context.Context,
	id string,
) (*model.Course, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(courseCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var course model.Course
	if err := result.Decode(&course); err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseMongoRepository) ListCourses(ctx context.Context) ([]*model.Course, error) {
	findOptions := options.Find().
		SetProjection(bson.M{"lectures": 0}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(courseCollection).Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var courses []*model.Course
	for cursor.Next(ctx) {
		var course model.Course
		if err := cursor.Decode(&course); err != nil {
			return nil, err
		}
		courses = append(courses, &course)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseMongoRepository) AddLecture(
	ctx context.Context,
	courseID string,
	lecture model.Lecture,
) (*model.Course, error) {
	objectID, err := bson.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, err
	}

	if lecture.ID.IsZero() {
		lecture.ID = bson.NewObjectID()
	}
	lecture.CreatedAt = time.Now()

	result := r.db.Collection(courseCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$push": bson.M{"lectures": lecture},
			"$inc":  bson.M{"num_of_videos": 1},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var course model.Course
	if err := result.Decode(&course); err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseMongoRepository) RemoveLecture(
	ctx context.Context,
	courseID, lectureID string,
) (*model.Course, error) {
	courseObjectID, err := bson.ObjectIDFromHex(courseID)
	if err != nil {
		return nil, err
	}

	lectureObjectID, err := bson.ObjectIDFromHex(lectureID)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(courseCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": courseObjectID, "lectures._id": lectureObjectID},
		bson.M{
			"$pull": bson.M{"lectures": bson.M{"_id": lectureObjectID}},
			"$inc":  bson.M{"num_of_videos": -1},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var course model.Course
	if err := result.Decode(&course); err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseMongoRepository) DeleteCourse(ctx context.Context, id string) (*model.Course, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(courseCollection).FindOneAndDelete(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var course model.Course
	if err := result.Decode(&course); err != nil {
		return nil, err
	}

	return &course, nil
}
