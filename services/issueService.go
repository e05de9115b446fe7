package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"civicreport-be/geo"
	"civicreport-be/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultRadiusKm is used when a nearby search does not specify a radius.
	DefaultRadiusKm = 10.0
	// MaxNearbyResults caps the final nearby result set.
	MaxNearbyResults = 50
	// nearbyFetchCeiling bounds the bounding-box pre-fetch. When the box is
	// much coarser than the radius (large radii, high latitudes) the true
	// result set can be truncated before the distance filter runs; that is
	// an accepted approximation.
	nearbyFetchCeiling = 100

	saveAttempts = 3
)

// IssueStore is the persistence contract for issues. GetByID returns
// (nil, nil) when the issue is absent. Save must refuse a write whose
// version no longer matches the stored record and return ErrVersionConflict.
type IssueStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	Insert(ctx context.Context, issue *models.Issue) error
	Save(ctx context.Context, issue *models.Issue) error
	FindInBoundingBox(ctx context.Context, box geo.Box, limit int64) ([]*models.Issue, error)
}

// UserStore resolves user identities. GetByID returns (nil, nil) when the
// user is absent.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// NotificationPublisher queues a notification for delivery. Publishing must
// be cheap; a failure is logged and swallowed, never propagated to the
// mutation that produced the notification.
type NotificationPublisher interface {
	Publish(ctx context.Context, n *models.Notification) error
}

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	ID   primitive.ObjectID
	Role models.UserRole
}

// IssueService implements the nearby search, the issue state machine, and
// the vote ledger on top of the store/notifier contracts.
type IssueService struct {
	issues   IssueStore
	users    UserStore
	notifier NotificationPublisher
	logger   *logrus.Logger
}

func NewIssueService(issues IssueStore, users UserStore, notifier NotificationPublisher, logger *logrus.Logger) *IssueService {
	return &IssueService{
		issues:   issues,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// transitionAllowed validates a status transition. Every transition is
// currently permitted; the status field is a flat enum, not a guarded
// graph. Kept as a single function so a guarded version is a local change.
func transitionAllowed(from, to models.IssueStatus) bool {
	return true
}

// IssueDetails is an issue with its reporter/assignee identities expanded
// and the vote tallies precomputed.
type IssueDetails struct {
	*models.Issue
	Reporter      *models.UserRef `json:"reporter,omitempty"`
	Assignee      *models.UserRef `json:"assignee,omitempty"`
	UpvoteCount   int             `json:"upvoteCount"`
	DownvoteCount int             `json:"downvoteCount"`
	VoteScore     int             `json:"voteCount"`
}

// FindNearby returns issues within radiusKm of the center, newest first,
// at most limit entries. The store is queried by bounding box and the exact
// haversine distance filters the candidates; ordering stays recency-based,
// never distance-based.
func (s *IssueService) FindNearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]*models.Issue, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, invalidArgument("latitude must be in [-90,90] and longitude in [-180,180]")
	}
	if math.IsNaN(radiusKm) || radiusKm <= 0 {
		return nil, invalidArgument("radius must be a positive number of kilometers")
	}
	if limit <= 0 || limit > MaxNearbyResults {
		limit = MaxNearbyResults
	}

	box := geo.BoundingBox(lat, lon, radiusKm)
	candidates, err := s.issues.FindInBoundingBox(ctx, box, nearbyFetchCeiling)
	if err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}

	matches := make([]*models.Issue, 0, len(candidates))
	for _, issue := range candidates {
		issueLat, issueLon, ok := issue.Position()
		if !ok {
			continue
		}
		if geo.DistanceKm(lat, lon, issueLat, issueLon) <= radiusKm {
			matches = append(matches, issue)
		}
		if len(matches) == limit {
			break
		}
	}

	s.logger.WithFields(logrus.Fields{
		"service":    "issue",
		"method":     "FindNearby",
		"candidates": len(candidates),
		"matches":    len(matches),
		"radius_km":  radiusKm,
	}).Debug("nearby search completed")

	return matches, nil
}

// CreateIssueInput carries the citizen-supplied fields of a new report.
type CreateIssueInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Latitude    float64
	Longitude   float64
	Address     string
	IsAnonymous bool
	Tags        []string
	Images      []models.IssueImage
}

// Create inserts a new issue reported by the actor.
func (s *IssueService) Create(ctx context.Context, input CreateIssueInput, actor Actor) (*IssueDetails, error) {
	if !models.ValidCategory(input.Category) {
		return nil, invalidArgument("unknown category: " + input.Category)
	}
	priority := models.PriorityMedium
	if input.Priority != "" {
		if !models.ValidPriority(input.Priority) {
			return nil, invalidArgument("unknown priority: " + input.Priority)
		}
		priority = models.IssuePriority(input.Priority)
	}
	if math.IsNaN(input.Latitude) || math.IsNaN(input.Longitude) ||
		input.Latitude < -90 || input.Latitude > 90 ||
		input.Longitude < -180 || input.Longitude > 180 {
		return nil, invalidArgument("latitude must be in [-90,90] and longitude in [-180,180]")
	}

	now := time.Now()
	lat, lon := input.Latitude, input.Longitude
	issue := &models.Issue{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Description: input.Description,
		Category:    models.IssueCategory(input.Category),
		Priority:    priority,
		Status:      models.StatusPending,
		Latitude:    &lat,
		Longitude:   &lon,
		Address:     input.Address,
		Images:      input.Images,
		ReportedBy:  actor.ID,
		Department:  models.DeptOther,
		IsAnonymous: input.IsAnonymous,
		Tags:        input.Tags,
		LastUpdated: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.issues.Insert(ctx, issue); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"service":  "issue",
		"method":   "Create",
		"issue_id": issue.ID.Hex(),
		"category": issue.Category,
	}).Info("issue created")

	return s.expand(ctx, issue), nil
}

// Get returns one issue with identities expanded.
func (s *IssueService) Get(ctx context.Context, id primitive.ObjectID) (*IssueDetails, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}
	if issue == nil {
		return nil, notFound("issue not found")
	}
	return s.expand(ctx, issue), nil
}

// VoteResult is the recomputed tally after a vote mutation.
type VoteResult struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	VoteCount int `json:"voteCount"`
}

// Vote toggles the user's vote on an issue and returns the new tally.
func (s *IssueService) Vote(ctx context.Context, issueID primitive.ObjectID, voteType string, userID primitive.ObjectID) (*VoteResult, error) {
	vt := models.VoteType(voteType)
	if vt != models.Upvote && vt != models.Downvote {
		return nil, invalidArgument(`vote type must be "upvote" or "downvote"`)
	}

	issue, err := s.mutate(ctx, issueID, func(issue *models.Issue) error {
		issue.ApplyVote(vt, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &VoteResult{
		Upvotes:   len(issue.Upvotes),
		Downvotes: len(issue.Downvotes),
		VoteCount: issue.VoteCount(),
	}, nil
}

// UpdateStatusInput is a partial update; only non-nil fields are applied.
type UpdateStatusInput struct {
	Status                  *string
	AssignedTo              *primitive.ObjectID
	ResolutionNotes         *string
	EstimatedResolutionTime *time.Time
}

// UpdateStatus applies a partial status/assignment update. Resolving stamps
// the actual resolution time, overwritably on repeat. A status change
// notifies the reporter; an assignee change notifies the new assignee.
func (s *IssueService) UpdateStatus(ctx context.Context, issueID primitive.ObjectID, input UpdateStatusInput, actor Actor) (*IssueDetails, error) {
	if input.Status != nil && !models.ValidStatus(*input.Status) {
		return nil, invalidArgument("unknown status: " + *input.Status)
	}

	var prevStatus models.IssueStatus
	var prevAssignee *primitive.ObjectID

	issue, err := s.mutate(ctx, issueID, func(issue *models.Issue) error {
		prevStatus = issue.Status
		prevAssignee = issue.AssignedTo

		if input.Status != nil {
			next := models.IssueStatus(*input.Status)
			if !transitionAllowed(issue.Status, next) {
				return invalidArgument(fmt.Sprintf("transition %s -> %s is not allowed", issue.Status, next))
			}
			issue.Status = next
			if next == models.StatusResolved {
				now := time.Now()
				issue.ActualResolutionTime = &now
			}
		}
		if input.AssignedTo != nil {
			assignee := *input.AssignedTo
			issue.AssignedTo = &assignee
		}
		if input.ResolutionNotes != nil {
			issue.ResolutionNotes = *input.ResolutionNotes
		}
		if input.EstimatedResolutionTime != nil {
			est := *input.EstimatedResolutionTime
			issue.EstimatedResolutionTime = &est
		}
		issue.LastUpdated = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if input.Status != nil && issue.Status != prevStatus {
		s.notify(ctx, &models.Notification{
			Recipient:    issue.ReportedBy,
			Title:        "Issue Status Updated",
			Message:      fmt.Sprintf("Your issue %q status has been updated to %s", issue.Title, issue.Status),
			Type:         models.NotifStatusChange,
			RelatedIssue: &issue.ID,
			Priority:     models.NotifPriorityMedium,
		})
	}
	if input.AssignedTo != nil && assigneeChanged(prevAssignee, issue.AssignedTo) {
		s.notify(ctx, &models.Notification{
			Recipient:      *issue.AssignedTo,
			Title:          "New Issue Assigned",
			Message:        fmt.Sprintf("You have been assigned issue: %q", issue.Title),
			Type:           models.NotifAssignment,
			RelatedIssue:   &issue.ID,
			Priority:       models.NotifPriorityHigh,
			ActionRequired: true,
		})
	}

	return s.expand(ctx, issue), nil
}

// Assign sets the issue's assignee after verifying the target user exists
// and holds an assignable role. The assignment notification fires whenever
// an assignee is set, changed or not.
func (s *IssueService) Assign(ctx context.Context, issueID, assigneeID primitive.ObjectID, estimate *time.Time, actor Actor) (*IssueDetails, error) {
	existing, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("assign issue: %w", err)
	}
	if existing == nil {
		return nil, notFound("issue not found")
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("assign issue: %w", err)
	}
	if assignee == nil {
		return nil, notFound("assigned user not found")
	}
	if !assignee.Role.CanBeAssigned() {
		return nil, invalidRole("can only assign issues to admin or staff members")
	}

	issue, err := s.mutate(ctx, issueID, func(issue *models.Issue) error {
		issue.AssignedTo = &assignee.ID
		if estimate != nil {
			est := *estimate
			issue.EstimatedResolutionTime = &est
		}
		issue.LastUpdated = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, &models.Notification{
		Recipient:      assignee.ID,
		Title:          "New Issue Assigned",
		Message:        fmt.Sprintf("You have been assigned issue: %q", issue.Title),
		Type:           models.NotifAssignment,
		RelatedIssue:   &issue.ID,
		Priority:       models.NotifPriorityHigh,
		ActionRequired: true,
	})

	return s.expand(ctx, issue), nil
}

// AddUpdate appends an entry to the issue's update log. A status carried on
// the entry also overwrites the issue's current status; unlike
// UpdateStatus, this path emits no notification.
func (s *IssueService) AddUpdate(ctx context.Context, issueID primitive.ObjectID, note string, status *string, images []models.IssueImage, actor Actor) (*IssueDetails, error) {
	if !actor.Role.CanPostUpdates() {
		return nil, forbidden("not authorized to add updates")
	}
	if status != nil && !models.ValidStatus(*status) {
		return nil, invalidArgument("unknown status: " + *status)
	}

	issue, err := s.mutate(ctx, issueID, func(issue *models.Issue) error {
		entry := models.IssueUpdate{
			Note:      note,
			Images:    images,
			CreatedBy: actor.ID,
			CreatedAt: time.Now(),
		}
		if status != nil {
			st := models.IssueStatus(*status)
			entry.Status = &st
			issue.Status = st
		}
		issue.Updates = append(issue.Updates, entry)
		issue.LastUpdated = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.expand(ctx, issue), nil
}

// UpdateIssueInput is a partial update of the citizen-editable fields.
type UpdateIssueInput struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *string
	Address     *string
	Tags        []string
}

// UpdateIssue overwrites the citizen-editable fields. Only the original
// reporter or admin/staff may call it; status and assignment are never
// touched here.
func (s *IssueService) UpdateIssue(ctx context.Context, issueID primitive.ObjectID, input UpdateIssueInput, actor Actor) (*IssueDetails, error) {
	existing, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("update issue: %w", err)
	}
	if existing == nil {
		return nil, notFound("issue not found")
	}
	if existing.ReportedBy != actor.ID && !actor.Role.IsStaffOrAdmin() {
		return nil, forbidden("not authorized to update this issue")
	}
	if input.Category != nil && !models.ValidCategory(*input.Category) {
		return nil, invalidArgument("unknown category: " + *input.Category)
	}
	if input.Priority != nil && !models.ValidPriority(*input.Priority) {
		return nil, invalidArgument("unknown priority: " + *input.Priority)
	}

	issue, err := s.mutate(ctx, issueID, func(issue *models.Issue) error {
		if input.Title != nil {
			issue.Title = *input.Title
		}
		if input.Description != nil {
			issue.Description = *input.Description
		}
		if input.Category != nil {
			issue.Category = models.IssueCategory(*input.Category)
		}
		if input.Priority != nil {
			issue.Priority = models.IssuePriority(*input.Priority)
		}
		if input.Address != nil {
			issue.Address = *input.Address
		}
		if input.Tags != nil {
			issue.Tags = input.Tags
		}
		issue.LastUpdated = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.expand(ctx, issue), nil
}

// mutate runs a read-modify-write against one issue, retrying on version
// conflicts so concurrent writers serialize instead of clobbering each
// other.
func (s *IssueService) mutate(ctx context.Context, id primitive.ObjectID, fn func(*models.Issue) error) (*models.Issue, error) {
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		issue, err := s.issues.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load issue: %w", err)
		}
		if issue == nil {
			return nil, notFound("issue not found")
		}

		if err := fn(issue); err != nil {
			return nil, err
		}
		issue.UpdatedAt = time.Now()

		err = s.issues.Save(ctx, issue)
		if err == nil {
			return issue, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, fmt.Errorf("save issue: %w", err)
		}

		s.logger.WithFields(logrus.Fields{
			"service":  "issue",
			"issue_id": id.Hex(),
			"attempt":  attempt,
		}).Warn("issue save lost a concurrent write, retrying")
	}
	return nil, conflict("issue was modified concurrently, retry the request")
}

// notify queues a notification; failures are logged and swallowed so the
// parent mutation never fails or rolls back on a notification error.
func (s *IssueService) notify(ctx context.Context, n *models.Notification) {
	n.CreatedAt = time.Now()
	if err := s.notifier.Publish(ctx, n); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"service":   "issue",
			"type":      n.Type,
			"recipient": n.Recipient.Hex(),
		}).Warn("failed to queue notification")
	}
}

func (s *IssueService) expand(ctx context.Context, issue *models.Issue) *IssueDetails {
	details := &IssueDetails{
		Issue:         issue,
		UpvoteCount:   len(issue.Upvotes),
		DownvoteCount: len(issue.Downvotes),
		VoteScore:     issue.VoteCount(),
	}
	if reporter, err := s.users.GetByID(ctx, issue.ReportedBy); err == nil && reporter != nil {
		details.Reporter = reporter.Ref()
	}
	if issue.AssignedTo != nil {
		if assignee, err := s.users.GetByID(ctx, *issue.AssignedTo); err == nil && assignee != nil {
			details.Assignee = assignee.Ref()
		}
	}
	return details
}

func assigneeChanged(prev, next *primitive.ObjectID) bool {
	if next == nil {
		return prev != nil
	}
	return prev == nil || *prev != *next
}
