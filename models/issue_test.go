package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func assertDisjointVotes(t *testing.T, issue *Issue) {
	t.Helper()
	for _, up := range issue.Upvotes {
		for _, down := range issue.Downvotes {
			assert.NotEqual(t, up, down, "user appears in both vote sets")
		}
	}
}

func TestApplyVote_FreshVote(t *testing.T) {
	issue := &Issue{}
	user := primitive.NewObjectID()

	issue.ApplyVote(Upvote, user)

	assert.True(t, issue.HasUpvoted(user))
	assert.False(t, issue.HasDownvoted(user))
	assert.Equal(t, 1, issue.VoteCount())
}

func TestApplyVote_SameVoteRetracts(t *testing.T) {
	issue := &Issue{}
	user := primitive.NewObjectID()

	issue.ApplyVote(Upvote, user)
	issue.ApplyVote(Upvote, user)

	assert.False(t, issue.HasUpvoted(user))
	assert.False(t, issue.HasDownvoted(user))
	assert.Equal(t, 0, issue.VoteCount())

	issue.ApplyVote(Downvote, user)
	issue.ApplyVote(Downvote, user)

	assert.False(t, issue.HasDownvoted(user))
	assert.Equal(t, 0, issue.VoteCount())
}

func TestApplyVote_OppositeVoteMoves(t *testing.T) {
	issue := &Issue{}
	user := primitive.NewObjectID()

	issue.ApplyVote(Upvote, user)
	issue.ApplyVote(Downvote, user)

	assert.False(t, issue.HasUpvoted(user))
	assert.True(t, issue.HasDownvoted(user))
	assert.Equal(t, -1, issue.VoteCount())
	assertDisjointVotes(t, issue)
}

func TestApplyVote_SetsStayDisjoint(t *testing.T) {
	issue := &Issue{}
	users := []primitive.ObjectID{
		primitive.NewObjectID(),
		primitive.NewObjectID(),
		primitive.NewObjectID(),
	}

	sequence := []struct {
		user int
		vote VoteType
	}{
		{0, Upvote}, {1, Downvote}, {0, Downvote}, {2, Upvote},
		{1, Downvote}, {1, Upvote}, {0, Downvote}, {2, Downvote},
		{2, Downvote}, {0, Upvote},
	}

	for _, step := range sequence {
		issue.ApplyVote(step.vote, users[step.user])
		assertDisjointVotes(t, issue)
	}
}

func TestApplyVote_CountsMultipleUsers(t *testing.T) {
	issue := &Issue{}
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	issue.ApplyVote(Upvote, a)
	issue.ApplyVote(Upvote, b)
	issue.ApplyVote(Downvote, c)

	assert.Len(t, issue.Upvotes, 2)
	assert.Len(t, issue.Downvotes, 1)
	assert.Equal(t, 1, issue.VoteCount())
}

func TestPosition_PrefersFlatFields(t *testing.T) {
	lat, lon := 24.58, 73.68
	issue := &Issue{
		Latitude:  &lat,
		Longitude: &lon,
		Coordinates: &GeoPoint{
			Type:        "Point",
			Coordinates: []float64{10.0, 20.0},
		},
	}

	gotLat, gotLon, ok := issue.Position()
	require.True(t, ok)
	assert.Equal(t, 24.58, gotLat)
	assert.Equal(t, 73.68, gotLon)
}

func TestPosition_LegacyFallback(t *testing.T) {
	issue := &Issue{
		Coordinates: &GeoPoint{
			Type:        "Point",
			Coordinates: []float64{73.68, 24.58}, // [longitude, latitude]
		},
	}

	gotLat, gotLon, ok := issue.Position()
	require.True(t, ok)
	assert.Equal(t, 24.58, gotLat)
	assert.Equal(t, 73.68, gotLon)
}

func TestPosition_Absent(t *testing.T) {
	issue := &Issue{}
	_, _, ok := issue.Position()
	assert.False(t, ok)
}

func TestEnumValidators(t *testing.T) {
	assert.True(t, ValidCategory("road"))
	assert.True(t, ValidCategory("drainage"))
	assert.False(t, ValidCategory("Road"))
	assert.False(t, ValidCategory("pothole"))

	assert.True(t, ValidPriority("critical"))
	assert.False(t, ValidPriority("urgent"))

	assert.True(t, ValidStatus("in-progress"))
	assert.True(t, ValidStatus("rejected"))
	assert.False(t, ValidStatus("closed"))
}
