package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newTestMongoStore connects to SCROLLR_TEST_MONGO_URI and returns a store
// on a throwaway database that is dropped when the test ends.
func newTestMongoStore(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("SCROLLR_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SCROLLR_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database(fmt.Sprintf("scrollr_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	s := NewMongoStore(db)
	require.NoError(t, s.EnsureIndexes(ctx))
	return s
}

func TestMongoStore_Users(t *testing.T) {
	runUserStoreTests(t, newTestMongoStore(t))
}

func TestMongoStore_Posts(t *testing.T) {
	runPostStoreTests(t, newTestMongoStore(t))
}
