package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"mindtype/database"
	"mindtype/middleware"
	"mindtype/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SubmitContactRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Subject  string `json:"subject" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Category string `json:"category"`
}

type UpdateContactRequest struct {
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	AssignedTo *string `json:"assignedTo"`
	AdminNotes *string `json:"adminNotes"`
	Resolution *string `json:"resolution"`
}

// SubmitContact accepts the public contact form. A logged-in submitter gets
// linked to the ticket via the optional auth middleware.
func SubmitContact(c *gin.Context) {
	var req SubmitContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	if len(req.Name) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name cannot exceed 100 characters"})
		return
	}
	if len(req.Subject) > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Subject cannot exceed 200 characters"})
		return
	}
	if len(req.Message) < 10 || len(req.Message) > 2000 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Message must be between 10 and 2000 characters"})
		return
	}

	category := req.Category
	if category == "" {
		category = "general"
	}
	if !models.ValidContactCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category"})
		return
	}

	now := time.Now()
	contact := models.Contact{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   strings.TrimSpace(req.Message),
		Category:  category,
		Status:    models.ContactStatusNew,
		Priority:  "medium",
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user, ok := middleware.CurrentUser(c); ok {
		contact.User = &user.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := database.Contacts.InsertOne(ctx, contact); err != nil {
		log.Printf("Contact submission error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit contact form"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Contact form submitted successfully. We'll get back to you soon!",
		"contact": gin.H{
			"id":        contact.ID.Hex(),
			"name":      contact.Name,
			"email":     contact.Email,
			"subject":   contact.Subject,
			"category":  contact.Category,
			"status":    contact.Status,
			"createdAt": contact.CreatedAt,
		},
	})
}

// GetContacts lists tickets for admins with triage filters.
func GetContacts(c *gin.Context) {
	page, limit := parsePagination(c)

	query := bson.M{}
	if status := c.Query("status"); status != "" {
		query["status"] = status
	}
	if category := c.Query("category"); category != "" {
		query["category"] = category
	}
	if priority := c.Query("priority"); priority != "" {
		query["priority"] = priority
	}
	if search := c.Query("search"); search != "" {
		regex := primitive.Regex{Pattern: search, Options: "i"}
		query["$or"] = []bson.M{
			{"name": regex},
			{"email": regex},
			{"subject": regex},
			{"message": regex},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOpts := options.Find().
		SetSort(parseSort(c.Query("sort"))).
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit))

	cursor, err := database.Contacts.Find(ctx, query, findOpts)
	if err != nil {
		log.Printf("Get contacts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch contacts"})
		return
	}
	defer cursor.Close(ctx)

	var contacts []models.Contact
	if err := cursor.All(ctx, &contacts); err != nil {
		log.Printf("Get contacts decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch contacts"})
		return
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}

	total, err := database.Contacts.CountDocuments(ctx, query)
	if err != nil {
		log.Printf("Count contacts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch contacts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contacts":   contacts,
		"pagination": buildPagination(page, limit, total),
	})
}

func GetContact(c *gin.Context) {
	contactID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Contact not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var contact models.Contact
	err = database.Contacts.FindOne(ctx, bson.M{"_id": contactID}).Decode(&contact)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Contact not found"})
		return
	}
	if err != nil {
		log.Printf("Get contact error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch contact"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contact": contact})
}

// UpdateContact applies only the fields present. The first transition into
// resolved stamps resolvedAt and the response time in hours.
func UpdateContact(c *gin.Context) {
	contactID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Contact not found"})
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var contact models.Contact
	err = database.Contacts.FindOne(ctx, bson.M{"_id": contactID}).Decode(&contact)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Contact not found"})
		return
	}
	if err != nil {
		log.Printf("Update contact fetch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update contact"})
		return
	}

	if req.Status != nil {
		if !models.ValidContactStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
			return
		}
		contact.Status = *req.Status
		if contact.Status == models.ContactStatusResolved {
			contact.MarkResolved(time.Now())
		}
	}
	if req.Priority != nil {
		if !models.ValidContactPriority(*req.Priority) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid priority"})
			return
		}
		contact.Priority = *req.Priority
	}
	if req.AssignedTo != nil {
		if *req.AssignedTo == "" {
			contact.AssignedTo = nil
		} else {
			assigneeID, err := primitive.ObjectIDFromHex(*req.AssignedTo)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid assignee ID"})
				return
			}
			contact.AssignedTo = &assigneeID
		}
	}
	if req.AdminNotes != nil {
		if len(*req.AdminNotes) > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Admin notes cannot exceed 1000 characters"})
			return
		}
		contact.AdminNotes = *req.AdminNotes
	}
	if req.Resolution != nil {
		if len(*req.Resolution) > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Resolution cannot exceed 1000 characters"})
			return
		}
		contact.Resolution = *req.Resolution
	}
	contact.UpdatedAt = time.Now()

	if _, err := database.Contacts.ReplaceOne(ctx, bson.M{"_id": contactID}, contact); err != nil {
		log.Printf("Update contact error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update contact"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Contact updated successfully",
		"contact": contact,
	})
}

func DeleteContact(c *gin.Context) {
	contactID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Contact not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.Contacts.DeleteOne(ctx, bson.M{"_id": contactID})
	if err != nil {
		log.Printf("Delete contact error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete contact"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Contact not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contact deleted successfully"})
}

// GetContactStats aggregates ticket totals, per-field breakdowns and the
// average response time across resolved tickets.
func GetContactStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := database.Contacts.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Printf("Contact stats count error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch contact stats"})
		return
	}

	byStatus, err := groupCounts(ctx, "$status")
	if err != nil {
		log.Printf("Contact status stats error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch contact stats"})
		return
	}
	byCategory, err := groupCounts(ctx, "$category")
	if err != nil {
		log.Printf("Contact category stats error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch contact stats"})
		return
	}
	byPriority, err := groupCounts(ctx, "$priority")
	if err != nil {
		log.Printf("Contact priority stats error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch contact stats"})
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "responseTime", Value: bson.D{{Key: "$ne", Value: nil}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avgTime", Value: bson.D{{Key: "$avg", Value: "$responseTime"}}},
		}}},
	}
	cursor, err := database.Contacts.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("Contact response time stats error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch contact stats"})
		return
	}
	defer cursor.Close(ctx)

	var avg []struct {
		AvgTime float64 `bson:"avgTime"`
	}
	if err := cursor.All(ctx, &avg); err != nil {
		log.Printf("Contact response time decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch contact stats"})
		return
	}
	avgResponseTime := 0.0
	if len(avg) > 0 {
		avgResponseTime = avg[0].AvgTime
	}

	c.JSON(http.StatusOK, gin.H{
		"total":           total,
		"byStatus":        byStatus,
		"byCategory":      byCategory,
		"byPriority":      byPriority,
		"avgResponseTime": avgResponseTime,
	})
}

func groupCounts(ctx context.Context, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := database.Contacts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Count
	}
	return out, nil
}
