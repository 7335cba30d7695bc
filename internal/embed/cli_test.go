package embed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"voxcut/internal/services"
)

func stubHelper(t *testing.T, mode string) *[]string {
	t.Helper()
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "EMBED_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return &capturedArgs
}

func TestCLIEmbedBatch(t *testing.T) {
	args := stubHelper(t, "success")

	cli := NewCLI(WithModel("test-model"))
	vectors, err := cli.EmbedBatch(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("embed batch: %v", err)
	}
	if len(vectors) != 2 || len(vectors[0]) != 3 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}

	foundModel := false
	for i, arg := range *args {
		if arg == "--model" && i+1 < len(*args) && (*args)[i+1] == "test-model" {
			foundModel = true
		}
	}
	if !foundModel {
		t.Fatalf("expected model flag in args, got %v", *args)
	}
}

func TestCLIEmbedBatchHelperFailure(t *testing.T) {
	stubHelper(t, "failure")

	cli := NewCLI()
	_, err := cli.EmbedBatch(context.Background(), []string{"one"})
	if !errors.Is(err, services.ErrEmbeddingUnavailable) {
		t.Fatalf("expected embedding unavailable, got %v", err)
	}
}

func TestCLIEmbedBatchCountMismatch(t *testing.T) {
	stubHelper(t, "short")

	cli := NewCLI()
	_, err := cli.EmbedBatch(context.Background(), []string{"one", "two"})
	if !errors.Is(err, services.ErrEmbeddingUnavailable) {
		t.Fatalf("expected embedding unavailable, got %v", err)
	}
}

func TestCLIEmbedEmptyBatch(t *testing.T) {
	cli := NewCLI()
	vectors, err := cli.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("embed batch: %v", err)
	}
	if vectors != nil {
		t.Fatalf("expected nil vectors for empty batch, got %v", vectors)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("EMBED_HELPER_MODE") {
	case "success":
		fmt.Println(`{"vectors":[[0.1,0.2,0.3],[0.4,0.5,0.6]]}`)
		os.Exit(0)
	case "short":
		fmt.Println(`{"vectors":[[0.1,0.2,0.3]]}`)
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "model load failed")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
