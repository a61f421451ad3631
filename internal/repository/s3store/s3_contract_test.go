package s3store_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/maxviazov/hoops-tagging-service/internal/config"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
	"github.com/maxviazov/hoops-tagging-service/internal/repository/contract"
	"github.com/maxviazov/hoops-tagging-service/internal/repository/s3store"
)

// newStore targets S3_TEST_BUCKET (for example a local MinIO) under a
// fresh prefix per test.
func newStore(t *testing.T) (*s3store.Store, func()) {
	bucket := os.Getenv("S3_TEST_BUCKET")
	if bucket == "" {
		t.Skip("s3 contract tests skipped; set S3_TEST_BUCKET")
	}
	region := os.Getenv("S3_TEST_REGION")
	if region == "" {
		region = "us-east-1"
	}
	cfg := config.S3Config{
		Bucket:          bucket,
		Region:          region,
		Endpoint:        os.Getenv("S3_TEST_ENDPOINT"),
		Prefix:          "hoops-test/" + uuid.NewString() + "/",
		AccessKeyID:     os.Getenv("S3_TEST_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("S3_TEST_SECRET_ACCESS_KEY"),
		UsePathStyle:    os.Getenv("S3_TEST_ENDPOINT") != "",
	}
	store, err := s3store.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("s3 store: %v", err)
	}
	cleanup := func() {
		ctx := context.Background()
		infos, err := store.List(ctx)
		if err != nil {
			return
		}
		for _, info := range infos {
			_ = store.Delete(ctx, info.Handle)
		}
	}
	return store, cleanup
}

func TestSaveStore_S3Contract(t *testing.T) {
	contract.RunSaveStoreContract(t, func(t *testing.T) (repository.SaveStore, func()) {
		return newStore(t)
	})
}

func TestPinger_S3Contract(t *testing.T) {
	contract.RunPingerContract(t, func(t *testing.T) (repository.Pinger, func()) {
		return newStore(t)
	})
}

func TestNew_RequiresBucket(t *testing.T) {
	if _, err := s3store.New(context.Background(), config.S3Config{Region: "us-east-1"}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}
