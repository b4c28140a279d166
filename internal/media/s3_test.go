package media

import (
	"context"
	"testing"
)

func TestNewS3StoreRequiresBucketAndRegion(t *testing.T) {
	if _, err := NewS3Store(context.Background(), S3StoreConfig{Region: "eu-west-1"}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if _, err := NewS3Store(context.Background(), S3StoreConfig{Bucket: "gallery-media"}); err == nil {
		t.Fatalf("expected missing region error")
	}
}

func TestPublicURLUsesVirtualHostedAddress(t *testing.T) {
	store, err := NewS3Store(context.Background(), S3StoreConfig{
		Bucket: "gallery-media",
		Region: "eu-west-1",
	})
	if err != nil {
		t.Fatalf("unexpected construct error: %v", err)
	}

	url := store.PublicURL("public/abc.jpg")
	expected := "https://gallery-media.s3.eu-west-1.amazonaws.com/public/abc.jpg"
	if url != expected {
		t.Fatalf("expected %s, got %s", expected, url)
	}
}

func TestPublicURLHonorsBaseURLOverride(t *testing.T) {
	store, err := NewS3Store(context.Background(), S3StoreConfig{
		Bucket:  "gallery-media",
		Region:  "eu-west-1",
		BaseURL: "https://cdn.example.com/",
	})
	if err != nil {
		t.Fatalf("unexpected construct error: %v", err)
	}

	url := store.PublicURL("public/abc.jpg")
	if url != "https://cdn.example.com/public/abc.jpg" {
		t.Fatalf("unexpected url: %s", url)
	}
}
