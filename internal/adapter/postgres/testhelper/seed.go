package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UniqueSuffix returns a short unique string for generating non-conflicting test data.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedEntry inserts a journal entry with the given title and tags and returns its id.
func SeedEntry(t *testing.T, pool *pgxpool.Pool, title string, tags ...string) string {
	t.Helper()
	if tags == nil {
		tags = []string{}
	}

	var id string
	err := pool.QueryRow(context.Background(),
		`INSERT INTO journal_entries (title, description, full_content, tags, read_time)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id::text`,
		title, "about "+title, `["first paragraph","second paragraph"]`, tags, "4 min read",
	).Scan(&id)
	if err != nil {
		t.Fatalf("SeedEntry: %v", err)
	}
	return id
}

// SeedPost inserts a plain social post with the given like count and returns its id.
func SeedPost(t *testing.T, pool *pgxpool.Pool, content string, likes int) string {
	t.Helper()

	var id string
	err := pool.QueryRow(context.Background(),
		`INSERT INTO social_posts (platform, platform_name, author, handle, content, likes)
		 VALUES ('twitter', 'X', 'Test Author', '@test', $1, $2)
		 RETURNING id::text`,
		content, likes,
	).Scan(&id)
	if err != nil {
		t.Fatalf("SeedPost: %v", err)
	}
	return id
}
