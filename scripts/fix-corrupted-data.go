package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Simple representation to check data structure
type EntityData struct {
	ID    string          `json:"id"`
	Stats json.RawMessage `json:"stats"`
}

const (
	allIndexKey      = "entity:all"
	layerIndexPrefix = "entity:layer:"
)

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Scanning for corrupted entity data...")

	// Find all entity keys
	iter := client.Scan(ctx, 0, "entity:*", 0).Iterator()

	var corruptedKeys []string
	var checkedCount int
	live := make(map[string]bool)

	for iter.Next(ctx) {
		key := iter.Val()
		if key == allIndexKey || strings.HasPrefix(key, layerIndexPrefix) {
			continue
		}
		checkedCount++

		// Get the data
		data, err := client.Get(ctx, key).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", key, err)
			continue
		}

		// Try to parse it
		var entData EntityData
		if err := json.Unmarshal([]byte(data), &entData); err != nil {
			fmt.Printf("✗ Corrupted JSON in %s\n", key)
			corruptedKeys = append(corruptedKeys, key)
			continue
		}

		// Check if stats is an array (old export format) instead of a
		// name → value object
		if entData.Stats != nil {
			statBody := strings.TrimSpace(string(entData.Stats))
			if strings.HasPrefix(statBody, "[") {
				fmt.Printf("✗ Old format detected in %s: stats is an array\n", key)
				corruptedKeys = append(corruptedKeys, key)
				continue
			}
		}

		live[entData.ID] = true
	}

	if err := iter.Err(); err != nil {
		log.Fatal("Error during scan:", err)
	}

	// Index members with no backing entity record break LoadAll
	orphans := 0
	ids, err := client.SMembers(ctx, allIndexKey).Result()
	if err != nil {
		log.Fatal("Error reading entity index:", err)
	}
	for _, id := range ids {
		if !live[id] {
			fmt.Printf("✗ Orphaned index entry: %s\n", id)
			if err := client.SRem(ctx, allIndexKey, id).Err(); err != nil {
				fmt.Printf("Failed to remove index entry %s: %v\n", id, err)
				continue
			}
			orphans++
		}
	}
	if orphans > 0 {
		fmt.Printf("Removed %d orphaned index entries\n", orphans)
	}

	fmt.Printf("\nChecked %d keys, found %d corrupted entries\n", checkedCount, len(corruptedKeys))

	if len(corruptedKeys) == 0 {
		fmt.Println("No corrupted data found!")
		return
	}

	fmt.Println("\nCorrupted keys:")
	for _, key := range corruptedKeys {
		fmt.Printf("  - %s\n", key)
	}

	// Ask for confirmation before deletion
	fmt.Print("\nDo you want to DELETE these corrupted entries? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response == "yes" {
		for _, key := range corruptedKeys {
			if err := client.Del(ctx, key).Err(); err != nil {
				fmt.Printf("Failed to delete %s: %v\n", key, err)
			} else {
				fmt.Printf("Deleted %s\n", key)
				client.SRem(ctx, allIndexKey, strings.TrimPrefix(key, "entity:"))
			}
		}
		fmt.Println("\nCleanup complete!")
	} else {
		fmt.Println("Aborted - no changes made")
	}
}
