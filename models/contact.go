package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContactStatusNew        = "new"
	ContactStatusInProgress = "in-progress"
	ContactStatusResolved   = "resolved"
	ContactStatusClosed     = "closed"
)

var ContactCategories = []string{"general", "support", "bug", "feature", "business", "other"}

var ContactPriorities = []string{"low", "medium", "high", "urgent"}

type Contact struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Email        string              `bson:"email" json:"email"`
	Subject      string              `bson:"subject" json:"subject"`
	Message      string              `bson:"message" json:"message"`
	Category     string              `bson:"category" json:"category"`
	Status       string              `bson:"status" json:"status"`
	Priority     string              `bson:"priority" json:"priority"`
	User         *primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"`
	AssignedTo   *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	AdminNotes   string              `bson:"adminNotes" json:"adminNotes"`
	Resolution   string              `bson:"resolution" json:"resolution"`
	ResolvedAt   *time.Time          `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	ResponseTime *float64            `bson:"responseTime,omitempty" json:"responseTime,omitempty"`
	IPAddress    string              `bson:"ipAddress" json:"-"`
	UserAgent    string              `bson:"userAgent" json:"-"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// MarkResolved records the resolution moment and the response time in hours,
// only on the first transition into resolved.
func (c *Contact) MarkResolved(now time.Time) {
	if c.ResolvedAt != nil {
		return
	}
	c.ResolvedAt = &now
	hours := math.Round(now.Sub(c.CreatedAt).Hours())
	c.ResponseTime = &hours
}

func ValidContactCategory(category string) bool {
	for _, c := range ContactCategories {
		if c == category {
			return true
		}
	}
	return false
}

func ValidContactStatus(status string) bool {
	switch status {
	case ContactStatusNew, ContactStatusInProgress, ContactStatusResolved, ContactStatusClosed:
		return true
	}
	return false
}

func ValidContactPriority(priority string) bool {
	for _, p := range ContactPriorities {
		if p == priority {
			return true
		}
	}
	return false
}
