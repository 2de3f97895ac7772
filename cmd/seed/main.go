// Seeds the database with fixture users, posts and contact tickets for local
// development. Existing data in the three collections is dropped first.
package main

import (
	"context"
	"log"
	"time"

	"mindtype/database"
	"mindtype/models"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	if err := database.ConnectMongo(); err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer database.DisconnectMongo()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, coll := range []string{"users", "posts", "contacts"} {
		if _, err := database.Client.Database(database.DatabaseName).Collection(coll).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("Failed to clear %s: %v", coll, err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash fixture password: ", err)
	}

	now := time.Now()
	newUser := func(username, email, first, last, bio, role string) models.User {
		return models.User{
			ID:        primitive.NewObjectID(),
			Username:  username,
			Email:     email,
			Password:  string(hashed),
			FirstName: first,
			LastName:  last,
			Bio:       bio,
			Role:      role,
			IsActive:  true,
			Posts:     []primitive.ObjectID{},
			Followers: []primitive.ObjectID{},
			Following: []primitive.ObjectID{},
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	users := []models.User{
		newUser("elizabeth_johnson", "elizabeth@example.com", "Elizabeth", "Johnson",
			"Tech writer and software enthusiast.", models.RoleAdmin),
		newUser("john_doe", "john@example.com", "John", "Doe",
			"Designer with a love for minimalism.", models.RoleUser),
		newUser("jane_smith", "jane@example.com", "Jane", "Smith",
			"Travel blogger exploring the world one city at a time.", models.RoleUser),
	}

	newPost := func(author models.User, title, content, category string, tags []string) models.Post {
		post := models.Post{
			ID:            primitive.NewObjectID(),
			Title:         title,
			Content:       content,
			Category:      category,
			Tags:          tags,
			Author:        author.ID,
			Status:        models.PostStatusPublished,
			AllowComments: true,
			Likes:         []models.Like{},
			Comments:      []models.Comment{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		post.RecalculateDerived()
		return post
	}

	posts := []models.Post{
		newPost(users[0], "Getting Started with Modern Web Development",
			"Modern web development has changed dramatically over the last decade. Frameworks, build tools and deployment platforms now form an ecosystem that can feel overwhelming at first, but a few core ideas carry you a long way. Start with the fundamentals of HTML, CSS and JavaScript before reaching for a framework, and learn how the browser actually loads and renders a page.",
			"Technology", []string{"webdev", "javascript", "beginners"}),
		newPost(users[1], "The Art of Minimalist Design",
			"Minimalism is not about removing things until nothing is left. It is about removing things until only the essential remains. Every element on the page should earn its place, and whitespace is a design element in its own right, not an absence to be filled.",
			"Design", []string{"design", "minimalism"}),
		newPost(users[2], "Hidden Gems: 10 Underrated Travel Destinations",
			"Everyone knows Paris, Rome and Tokyo. But some of the most memorable trips happen in places nobody posts about. From the fishing villages of northern Portugal to the high plateaus of Kyrgyzstan, these destinations reward travelers who wander off the beaten path with genuine hospitality and landscapes untouched by mass tourism.",
			"Travel", []string{"travel", "adventure"}),
		newPost(users[0], "Building Healthy Habits That Stick",
			"Habit formation is less about willpower and more about environment design. Make the good habit obvious and easy, and the bad habit invisible and hard. Small consistent actions compound into remarkable results over months and years.",
			"Health", []string{"habits", "wellness"}),
		newPost(users[1], "The Future of Remote Work",
			"Remote work went from a perk to a default in a few short years. Companies that treat distributed collaboration as a first-class discipline, with written communication and async decision making at the core, are pulling ahead of those that simply moved meetings onto video calls.",
			"Business", []string{"remote", "work", "productivity"}),
	}

	for i := range posts {
		for j := range users {
			if users[j].ID == posts[i].Author {
				users[j].Posts = append(users[j].Posts, posts[i].ID)
			}
		}
	}

	contacts := []models.Contact{
		{
			ID:        primitive.NewObjectID(),
			Name:      "Sam Wilson",
			Email:     "sam@example.com",
			Subject:   "Problem uploading a cover image",
			Message:   "Whenever I try to attach a cover image to a new post the upload spinner never finishes.",
			Category:  "bug",
			Status:    models.ContactStatusNew,
			Priority:  "high",
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        primitive.NewObjectID(),
			Name:      "Ava Martinez",
			Email:     "ava@example.com",
			Subject:   "Feature request: scheduled publishing",
			Message:   "It would be great to write a draft and schedule it to go live at a specific time.",
			Category:  "feature",
			Status:    models.ContactStatusNew,
			Priority:  "medium",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	for _, u := range users {
		if _, err := database.Users.InsertOne(ctx, u); err != nil {
			log.Fatal("Failed to insert user: ", err)
		}
	}
	for _, p := range posts {
		if _, err := database.Posts.InsertOne(ctx, p); err != nil {
			log.Fatal("Failed to insert post: ", err)
		}
	}
	for _, ct := range contacts {
		if _, err := database.Contacts.InsertOne(ctx, ct); err != nil {
			log.Fatal("Failed to insert contact: ", err)
		}
	}

	log.Printf("Seeded %d users, %d posts, %d contacts", len(users), len(posts), len(contacts))
	log.Println("All fixture accounts use password: password123")
}
