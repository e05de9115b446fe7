package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"civicreport-be/models"
	"civicreport-be/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueController exposes the issue operations over HTTP.
type IssueController struct {
	service *services.IssueService
}

func NewIssueController(service *services.IssueService) *IssueController {
	return &IssueController{service: service}
}

// CreateIssue handles the creation of a new issue
func (ic *IssueController) CreateIssue(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title       string   `json:"title" binding:"required,min=5,max=200"`
		Description string   `json:"description" binding:"required,min=10,max=2000"`
		Category    string   `json:"category" binding:"required"`
		Priority    string   `json:"priority,omitempty"`
		Latitude    *float64 `json:"latitude" binding:"required"`
		Longitude   *float64 `json:"longitude" binding:"required"`
		Address     string   `json:"address,omitempty" binding:"max=300"`
		IsAnonymous bool     `json:"isAnonymous,omitempty"`
		Tags        string   `json:"tags,omitempty"`
		ImageURLs   []string `json:"imageUrls,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_ARGUMENT"})
		return
	}

	var tags []string
	if input.Tags != "" {
		for _, tag := range strings.Split(input.Tags, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
	}

	var images []models.IssueImage
	for _, url := range input.ImageURLs {
		images = append(images, models.IssueImage{URL: url, UploadedAt: time.Now()})
	}

	issue, err := ic.service.Create(c.Request.Context(), services.CreateIssueInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
		Latitude:    *input.Latitude,
		Longitude:   *input.Longitude,
		Address:     input.Address,
		IsAnonymous: input.IsAnonymous,
		Tags:        tags,
		Images:      images,
	}, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetIssue retrieves an issue by its ID with vote tallies and expanded identities
func (ic *IssueController) GetIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID", "code": "INVALID_ARGUMENT"})
		return
	}

	issue, err := ic.service.Get(c.Request.Context(), issueID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// NearbyIssues returns issues within a radius of the given coordinates,
// newest first.
func (ic *IssueController) NearbyIssues(c *gin.Context) {
	latStr := c.Query("lat")
	lngStr := c.Query("lng")
	if latStr == "" || lngStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required", "code": "INVALID_ARGUMENT"})
		return
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng must be numbers", "code": "INVALID_ARGUMENT"})
		return
	}

	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "10"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "radius must be a number", "code": "INVALID_ARGUMENT"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	issues, err := ic.service.FindNearby(c.Request.Context(), lat, lng, radius, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues": issues,
		"count":  len(issues),
		"searchParams": gin.H{
			"lat":    lat,
			"lng":    lng,
			"radius": radius,
		},
	})
}

// UpdateIssue allows the reporter or admin/staff to update issue details
func (ic *IssueController) UpdateIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID", "code": "INVALID_ARGUMENT"})
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		Category    *string `json:"category,omitempty"`
		Priority    *string `json:"priority,omitempty"`
		Address     *string `json:"address,omitempty"`
		Tags        *string `json:"tags,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_ARGUMENT"})
		return
	}

	var tags []string
	if input.Tags != nil {
		for _, tag := range strings.Split(*input.Tags, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
	}

	issue, err := ic.service.UpdateIssue(c.Request.Context(), issueID, services.UpdateIssueInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
		Address:     input.Address,
		Tags:        tags,
	}, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// VoteOnIssue toggles the user's upvote or downvote on an issue
func (ic *IssueController) VoteOnIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID", "code": "INVALID_ARGUMENT"})
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		VoteType string `json:"voteType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_ARGUMENT"})
		return
	}

	result, err := ic.service.Vote(c.Request.Context(), issueID, input.VoteType, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Vote recorded successfully",
		"data":    result,
	})
}

// UpdateIssueStatus applies a partial status/assignment update (admin/staff)
func (ic *IssueController) UpdateIssueStatus(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID", "code": "INVALID_ARGUMENT"})
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Status                  *string    `json:"status,omitempty"`
		AssignedTo              *string    `json:"assignedTo,omitempty"`
		ResolutionNotes         *string    `json:"resolutionNotes,omitempty"`
		EstimatedResolutionTime *time.Time `json:"estimatedResolutionTime,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_ARGUMENT"})
		return
	}

	update := services.UpdateStatusInput{
		Status:                  input.Status,
		ResolutionNotes:         input.ResolutionNotes,
		EstimatedResolutionTime: input.EstimatedResolutionTime,
	}
	if input.AssignedTo != nil {
		assigneeID, err := primitive.ObjectIDFromHex(*input.AssignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID", "code": "INVALID_ARGUMENT"})
			return
		}
		update.AssignedTo = &assigneeID
	}

	issue, err := ic.service.UpdateStatus(c.Request.Context(), issueID, update, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issue status updated successfully",
		"data":    issue,
	})
}

// AssignIssue sets the issue's assignee (admin/staff targets only)
func (ic *IssueController) AssignIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID", "code": "INVALID_ARGUMENT"})
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		AssignedTo              string     `json:"assignedTo" binding:"required"`
		EstimatedResolutionTime *time.Time `json:"estimatedResolutionTime,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_ARGUMENT"})
		return
	}

	assigneeID, err := primitive.ObjectIDFromHex(input.AssignedTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID", "code": "INVALID_ARGUMENT"})
		return
	}

	issue, err := ic.service.Assign(c.Request.Context(), issueID, assigneeID, input.EstimatedResolutionTime, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Issue assigned successfully",
		"data":    issue,
	})
}

// AddIssueUpdate appends an entry to the issue's update log (admin/department/staff)
func (ic *IssueController) AddIssueUpdate(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID", "code": "INVALID_ARGUMENT"})
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Note      string   `json:"note" binding:"required,max=1000"`
		Status    *string  `json:"status,omitempty"`
		ImageURLs []string `json:"imageUrls,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_ARGUMENT"})
		return
	}

	var images []models.IssueImage
	for _, url := range input.ImageURLs {
		images = append(images, models.IssueImage{URL: url, UploadedAt: time.Now()})
	}

	issue, err := ic.service.AddUpdate(c.Request.Context(), issueID, input.Note, input.Status, images, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Update added",
		"data":    issue,
	})
}

// GetIssueUpdates returns an issue's append-only update log
func (ic *IssueController) GetIssueUpdates(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID", "code": "INVALID_ARGUMENT"})
		return
	}

	issue, err := ic.service.Get(c.Request.Context(), issueID)
	if err != nil {
		respondError(c, err)
		return
	}

	updates := issue.Updates
	if updates == nil {
		updates = []models.IssueUpdate{}
	}
	c.JSON(http.StatusOK, gin.H{"data": updates})
}
