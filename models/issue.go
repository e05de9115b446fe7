package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	CategoryRoad        IssueCategory = "road"
	CategoryWater       IssueCategory = "water"
	CategoryElectricity IssueCategory = "electricity"
	CategoryGarbage     IssueCategory = "garbage"
	CategoryDrainage    IssueCategory = "drainage"
	CategoryPark        IssueCategory = "park"
	CategoryTraffic     IssueCategory = "traffic"
	CategoryOther       IssueCategory = "other"
)

// ValidCategory reports whether c is a known issue category.
func ValidCategory(c string) bool {
	switch IssueCategory(c) {
	case CategoryRoad, CategoryWater, CategoryElectricity, CategoryGarbage,
		CategoryDrainage, CategoryPark, CategoryTraffic, CategoryOther:
		return true
	}
	return false
}

// IssuePriority enum
type IssuePriority string

const (
	PriorityLow      IssuePriority = "low"
	PriorityMedium   IssuePriority = "medium"
	PriorityHigh     IssuePriority = "high"
	PriorityCritical IssuePriority = "critical"
)

// ValidPriority reports whether p is a known issue priority.
func ValidPriority(p string) bool {
	switch IssuePriority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	StatusPending      IssueStatus = "pending"
	StatusAcknowledged IssueStatus = "acknowledged"
	StatusInProgress   IssueStatus = "in-progress"
	StatusResolved     IssueStatus = "resolved"
	StatusRejected     IssueStatus = "rejected"
)

// ValidStatus reports whether s is a known issue status.
func ValidStatus(s string) bool {
	switch IssueStatus(s) {
	case StatusPending, StatusAcknowledged, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Department enum
type Department string

const (
	DeptPublicWorks Department = "public-works"
	DeptSanitation  Department = "sanitation"
	DeptWaterSupply Department = "water-supply"
	DeptElectricity Department = "electricity"
	DeptTraffic     Department = "traffic"
	DeptOther       Department = "other"
)

// VoteType enum
type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

// IssueImage holds the stored metadata for one uploaded photo.
type IssueImage struct {
	URL        string    `bson:"url" json:"url"`
	PublicID   string    `bson:"publicId,omitempty" json:"publicId,omitempty"`
	Width      int       `bson:"width,omitempty" json:"width,omitempty"`
	Height     int       `bson:"height,omitempty" json:"height,omitempty"`
	Format     string    `bson:"format,omitempty" json:"format,omitempty"`
	Bytes      int64     `bson:"bytes,omitempty" json:"bytes,omitempty"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// IssueUpdate is one entry of the append-only update log.
type IssueUpdate struct {
	Note      string             `bson:"note" json:"note"`
	Images    []IssueImage       `bson:"images,omitempty" json:"images,omitempty"`
	Status    *IssueStatus       `bson:"status,omitempty" json:"status,omitempty"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// GeoPoint is the legacy GeoJSON position some pre-migration records still
// carry instead of the flat latitude/longitude fields. Coordinates are
// stored [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Category    IssueCategory       `bson:"category" json:"category"`
	Priority    IssuePriority       `bson:"priority" json:"priority"`
	Status      IssueStatus         `bson:"status" json:"status"`
	Longitude   *float64            `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Latitude    *float64            `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Coordinates *GeoPoint           `bson:"coordinates,omitempty" json:"-"`
	Address     string              `bson:"address,omitempty" json:"address,omitempty"`
	Images      []IssueImage        `bson:"images,omitempty" json:"images,omitempty"`
	ReportedBy  primitive.ObjectID  `bson:"reportedBy" json:"reportedBy"`
	AssignedTo  *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Department  Department          `bson:"department" json:"department"`
	IsAnonymous bool                `bson:"isAnonymous" json:"isAnonymous"`
	Tags        []string            `bson:"tags,omitempty" json:"tags,omitempty"`
	Updates     []IssueUpdate       `bson:"updates,omitempty" json:"updates,omitempty"`

	ResolutionNotes         string     `bson:"resolutionNotes,omitempty" json:"resolutionNotes,omitempty"`
	EstimatedResolutionTime *time.Time `bson:"estimatedResolutionTime,omitempty" json:"estimatedResolutionTime,omitempty"`
	ActualResolutionTime    *time.Time `bson:"actualResolutionTime,omitempty" json:"actualResolutionTime,omitempty"`

	Upvotes   []primitive.ObjectID `bson:"upvotes,omitempty" json:"upvotes,omitempty"`
	Downvotes []primitive.ObjectID `bson:"downvotes,omitempty" json:"downvotes,omitempty"`

	// Version is the optimistic concurrency token; the repository refuses a
	// save when the stored version no longer matches.
	Version int64 `bson:"version" json:"-"`

	LastUpdated time.Time `bson:"lastUpdated" json:"lastUpdated"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Position returns the issue's coordinates, preferring the flat
// latitude/longitude fields and falling back to the legacy GeoJSON point.
// ok is false when the record carries neither.
func (i *Issue) Position() (lat, lon float64, ok bool) {
	if i.Latitude != nil && i.Longitude != nil {
		return *i.Latitude, *i.Longitude, true
	}
	if i.Coordinates != nil && len(i.Coordinates.Coordinates) == 2 {
		return i.Coordinates.Coordinates[1], i.Coordinates.Coordinates[0], true
	}
	return 0, 0, false
}

// HasUpvoted reports whether userID is in the upvoter set.
func (i *Issue) HasUpvoted(userID primitive.ObjectID) bool {
	return containsID(i.Upvotes, userID)
}

// HasDownvoted reports whether userID is in the downvoter set.
func (i *Issue) HasDownvoted(userID primitive.ObjectID) bool {
	return containsID(i.Downvotes, userID)
}

// ApplyVote toggles the user's vote. Casting the same vote again retracts
// it; casting the opposite vote moves membership from one set to the other.
// The two sets stay disjoint.
func (i *Issue) ApplyVote(voteType VoteType, userID primitive.ObjectID) {
	switch voteType {
	case Upvote:
		if i.HasUpvoted(userID) {
			i.Upvotes = removeID(i.Upvotes, userID)
			return
		}
		i.Downvotes = removeID(i.Downvotes, userID)
		i.Upvotes = append(i.Upvotes, userID)
	case Downvote:
		if i.HasDownvoted(userID) {
			i.Downvotes = removeID(i.Downvotes, userID)
			return
		}
		i.Upvotes = removeID(i.Upvotes, userID)
		i.Downvotes = append(i.Downvotes, userID)
	}
}

// VoteCount returns upvotes minus downvotes.
func (i *Issue) VoteCount() int {
	return len(i.Upvotes) - len(i.Downvotes)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
