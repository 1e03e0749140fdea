package database

import (
	"context"
	"log"
	"testing"
	"time"


	// Load env
	_ "github.com/joho/godotenv/autoload"
)

var testDB *DBinstanceStruct

func TestMain(m *testing.M) {
	var err error
	var midTeardown func(context.Context) error
	midTeardown, testDB, err = GetTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
}

func TestHealth(t *testing.T) {
	stats := testDB.Health()

	if stats["status"] != "up" {
		t.Fatalf("expected status to be up, got %s", stats["status"])
	}

	if _, ok := stats["error"]; ok {
		t.Fatalf("expected error not to be present")
	}

	if stats["message"] != "It's healthy" {
		t.Fatalf("expected message to be 'It's healthy', got %s", stats["message"])
	}
}

func TestSeededData(t *testing.T) {
	if TestApplicant1.ID == TestApplicant2.ID {
		t.Fatal("seeded applicants should be distinct")
	}
	if TestJobPostSingle.MaxApplicants != 1 {
		t.Fatalf("expected single-slot post cap of 1, got %d", TestJobPostSingle.MaxApplicants)
	}
	if len(TestJobPostScreened.ScreeningQuestions) == 0 {
		t.Fatal("expected screened post to carry screening questions")
	}
}
