package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MediaAsset references an object stored on the external media host.
type MediaAsset struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url"       json:"url"`
}

// Lecture is a single video unit embedded in exactly one course. Lecture ids
// are assigned once when the lecture is appended and never change; the slice
// order is insertion order.
type Lecture struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string        `bson:"title"         json:"title"`
	Description string        `bson:"description"   json:"description"`
	Video       MediaAsset    `bson:"video"         json:"video"`
	Duration    float64       `bson:"duration"      json:"duration"`
	CreatedAt   time.Time     `bson:"created_at"    json:"createdAt"`
}

// Course is a purchasable unit of lectures.
//
// NumOfVideos is denormalized and must always equal len(Lectures); every
// lecture mutation updates both in a single document write.
type Course struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string        `bson:"title"         json:"title"`
	Description string        `bson:"description"   json:"description"`
	Category    string        `bson:"category"      json:"category"`
	CreatedBy   string        `bson:"created_by"    json:"createdBy"`
	Price       int64         `bson:"price"         json:"price"`
	Poster      MediaAsset    `bson:"poster"        json:"poster"`
	Lectures    []Lecture     `bson:"lectures"      json:"lectures,omitempty"`
	NumOfVideos int           `bson:"num_of_videos" json:"numOfVideos"`
	Views       int64         `bson:"views"         json:"views"`
	CreatedAt   time.Time     `bson:"created_at"    json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updated_at"    json:"updatedAt"`
}

// LectureByID returns the embedded lecture with the given id, or nil.
func (c *Course) LectureByID(id bson.ObjectID) *Lecture {
	for i := range c.Lectures {
		if c.Lectures[i].ID == id {
			return &c.Lectures[i]
		}
	}
	return nil
}
