package api

import (
	"context"
	"errors"
	"testing"

	"voxcut/internal/render"
	"voxcut/internal/services"
	"voxcut/internal/testsupport"
)

func TestRenderSpecUsesConfiguredDefaults(t *testing.T) {
	svc := newTestService(t)

	spec, err := svc.renderSpec(context.Background(), RenderRequest{OutputPath: "out.mp4"})
	if err != nil {
		t.Fatalf("renderSpec: %v", err)
	}
	if spec.Transition != render.Transition(svc.cfg.Render.Transition) {
		t.Fatalf("transition = %q, want config %q", spec.Transition, svc.cfg.Render.Transition)
	}
	if spec.BatchSize != svc.cfg.Render.BatchSize {
		t.Fatalf("batch size = %d, want %d", spec.BatchSize, svc.cfg.Render.BatchSize)
	}
	if spec.Encoder != "" {
		t.Fatalf("encoder = %q, want empty without hardware accel", spec.Encoder)
	}
	if spec.WorkDir != svc.cfg.Paths.StagingDir {
		t.Fatalf("work dir = %q, want staging dir", spec.WorkDir)
	}
}

func TestRenderSpecHonorsConfiguredTransition(t *testing.T) {
	svc := newTestService(t, testsupport.WithTransition("dissolve"))

	spec, err := svc.renderSpec(context.Background(), RenderRequest{OutputPath: "out.mp4"})
	if err != nil {
		t.Fatalf("renderSpec: %v", err)
	}
	if spec.Transition != render.TransitionDissolve {
		t.Fatalf("transition = %q, want configured dissolve", spec.Transition)
	}
}

func TestRenderSpecOverrides(t *testing.T) {
	svc := newTestService(t)

	spec, err := svc.renderSpec(context.Background(), RenderRequest{
		OutputPath:         "out.mp4",
		Transition:         "crossfade",
		TransitionDuration: 1.25,
		BatchSize:          7,
		Concurrency:        3,
		BurnSubtitles:      true,
	})
	if err != nil {
		t.Fatalf("renderSpec: %v", err)
	}
	if spec.Transition != render.TransitionCrossfade || spec.TransitionDuration != 1.25 {
		t.Fatalf("transition overrides not applied: %+v", spec)
	}
	if spec.BatchSize != 7 || spec.Concurrency != 3 || !spec.BurnSubtitles {
		t.Fatalf("batch overrides not applied: %+v", spec)
	}
}

func TestRenderSpecRejectsBadTransition(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.renderSpec(context.Background(), RenderRequest{Transition: "wipe"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
