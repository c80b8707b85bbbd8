// Command main fills the database with demo users, posts, comments and likes.
package main

import (
	"flag"
	"log"

	"github.com/minkgkyaw9899/m-blog-server/internal/config"
	"github.com/minkgkyaw9899/m-blog-server/internal/database"
	"github.com/minkgkyaw9899/m-blog-server/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	maxLikes := flag.Int("likes", 10, "Maximum likes per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed; 0 picks one from the clock")
	flag.Parse()

	log.Printf("Target: %d users, %d posts, clean=%v", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	s, err := seed.NewSeeder(db, seed.Options{
		NumUsers:           *numUsers,
		NumPosts:           *numPosts,
		MaxCommentsPerPost: *maxComments,
		MaxLikesPerPost:    *maxLikes,
		ShouldClean:        *shouldClean,
		RandSeed:           *randSeed,
	})
	if err != nil {
		log.Fatalf("Failed to prepare seeder: %v", err)
	}

	res, err := s.Run()
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d posts, %d comments, %d likes (password %q)",
		res.Users, res.Posts, res.Comments, res.Likes, seed.DefaultPassword)
}
